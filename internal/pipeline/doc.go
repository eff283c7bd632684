// Package pipeline runs the steps that turn a document path into a
// CheckReport: load, validate, optionally inspect, optionally record in
// the history database.
//
// Each step receives the report built so far and adds to it. A failing
// step records its error in the report; by default the remaining steps are
// skipped because later steps depend on what earlier ones produced.
//
// BatchProcessor runs one fresh pipeline per document with bounded
// concurrency using errgroup, keeping results in input order.
package pipeline
