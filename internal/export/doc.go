// Package export serializes materialized place records into the
// supported interchange formats: GeoJSON feature collections, flat CSV
// tables, and WKT geometry listings.
//
// The format set is closed. Each format lives behind the Serializer
// interface and is obtained through New, so callers never switch on
// format names themselves. Serialization is read-only over the records
// it is given; a record without geometry is a valid input for every
// format and each format defines its own representation for it.
package export
