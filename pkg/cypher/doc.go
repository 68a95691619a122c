// Package cypher builds parameterized Cypher text from structured inputs.
//
// The package enforces a strict two-phase construction: structural tokens
// (labels, relationship types, clause text) are assembled as text with
// backtick quoting, while data values are always collected into a bound
// parameter map and never interpolated. Property keys may contain arbitrary
// characters, including blanks, which is why generated parameter names use a
// sequential token scheme (par_1, par_2, ...) instead of names derived from
// the keys.
package cypher
