// Package sandbox evaluates a module declaration without ambient
// capabilities.
//
// The class body of the selected declaration is translated into a
// Starlark program. Field expressions are evaluated by the Starlark
// interpreter; literal fields are injected as values. Methods, imports and
// nested classes are bound to inert stand-ins, so no method body, module
// import or host function is ever run. The interpreter has no file,
// network or process access, load statements are disabled and execution is
// bounded by a step budget.
package sandbox
