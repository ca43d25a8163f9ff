// Package compiler runs the graduated validation pipeline over a module
// document.
//
// The passes run in a fixed order: parse, extract, classify, schema,
// correct, execute, semantic. Parse, extract, schema, correct and execute
// halt the pipeline when they report an error; classify and semantic never
// do. Every call produces a fresh *module.ValidationResult and failure is
// reported through it, never as a Go error.
package compiler
