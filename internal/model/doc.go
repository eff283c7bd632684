// Package model defines the data structures shared by the check pipeline,
// the report writers and the history database.
//
// This package contains the following main types:
//   - CheckReport: the outcome of checking one document
//   - Summary: aggregate counts over many CheckReports
//
// Models live in their own package so that pipeline, report and database
// can share them without import cycles. They serialize to JSON for report
// output.
package model
