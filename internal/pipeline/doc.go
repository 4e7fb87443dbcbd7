// Package pipeline provides a framework for executing crawl workflow
// steps in sequence.
//
// A crawl invocation runs through multiple stages: the crawl itself,
// corpus file generation, summary reporting, and session persistence.
// Each stage is implemented as a Step that receives the current Run and
// can extend it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running crawls
//
// The pipeline supports both single-domain runs and batch processing of
// several domains with concurrency control using errgroup.
package pipeline
