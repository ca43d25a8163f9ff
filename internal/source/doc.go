// Package source parses module documents without executing them.
//
// A module document is written in a Python-style class syntax. The
// tokenizer and parser here understand enough of that grammar to reject
// malformed documents, locate the primary class with byte-accurate spans
// and evaluate literal field values. Method bodies are tokenized and their
// indentation checked, but are otherwise opaque.
package source
