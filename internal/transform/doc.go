// Package transform maps raw federation rows into typed place records:
// scanning the lightweight column set, deriving lifecycle status
// inputs, parsing supersession lists, and decoding geometry payloads.
//
// Geometry decoding has partial-failure semantics: a malformed payload
// degrades that one record to geometry-absent and records a warning;
// it never aborts the batch.
package transform
