// Package model defines the data structures shared across the crawler,
// the corpus aggregator, the report writers, and the database layer.
//
// The types here are plain data carriers with no behavior beyond
// convenience accessors. Keeping them in a leaf package avoids import
// cycles between the crawler and its consumers.
package model
