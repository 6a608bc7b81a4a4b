// Package wof defines the domain model for the gazetteer engine: the
// placetype taxonomy, place records with lifecycle status and spatial
// summaries, decoded geometries, search filter specifications, and the
// error taxonomy surfaced to callers.
//
// Types in this package are plain values. Nothing here touches a
// database; construction happens in the federation and transform
// packages and records are immutable once built.
package wof
