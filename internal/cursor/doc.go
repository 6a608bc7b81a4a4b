// Package cursor implements two-phase exploration over search results:
// navigate cheap lightweight rows first, materialize full records with
// geometry only for a selected subset.
//
// A cursor binds the filter spec that produced it to its lightweight
// row set and total count. It is the only entity that may trigger the
// second (geometry) fetch for its own rows, always as one batched
// query. A single cursor is not safe for concurrent state-changing
// calls; create independent cursors from the same spec instead.
package cursor
