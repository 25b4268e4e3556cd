// Package catalog provides the book catalogue record model and its codecs.
//
// Catalogues come in two shapes:
//   - Flat: one record per TSV line (or Excel row), a fixed column order,
//     and dates split over separate year, month and day cells
//   - Mapped: a JSON array of records, dates as {year, month, day} objects
//
// Flat records are converted to mapped ones on load. Mapped documents are
// checked against an embedded CUE schema before decoding so structural
// problems are reported with file positions.
//
// Record identity for storage is the content hash computed by Hash, which
// serialises a record after NFC normalisation of its text fields.
package catalog
