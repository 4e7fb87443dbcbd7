// Package main provides the entry point for the corpuscrawl CLI.
//
// corpuscrawl is a continuous, politeness-bounded site crawler that
// aggregates the visible text of one domain into a delimited corpus file.
//
// Usage:
//
//	corpuscrawl crawl <seed-url> [seed-url...]
//	corpuscrawl crawl -c sites.yaml
//
// See --help for all available options.
package main

// main is the entry point for corpuscrawl.
func main() {
	Execute()
}
