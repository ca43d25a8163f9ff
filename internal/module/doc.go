// Package module defines the data model shared by the stato validator and
// state manager: module kinds, per-kind field schemas, diagnostics and the
// ValidationResult produced by one run of the pipeline.
//
// Nothing in this package reads files or executes documents. The types here
// are the public contract consumed by the CLI, the bundle importer and any
// other collaborator that needs to reason about a validated module.
package module
