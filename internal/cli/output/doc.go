// Package output renders command results as a table, JSON or YAML.
//
// Results that implement Tabler control their own table layout. Other
// values are converted by reflection: slices of structs become one row per
// element, a single struct or map becomes a FIELD/VALUE listing.
package output
