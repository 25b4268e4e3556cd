// Package pdate implements partial calendar dates: dates known only to the
// year, to the year and month, or to the exact day.
//
// The package has four operations over the immutable Date value:
//   - IsValid checks a (year, month, day) triple against the proleptic
//     Gregorian calendar
//   - Parse turns "YYYY", "YYYY-MM" or "YYYY-MM-DD" text into a Date
//   - Format renders a Date back into that canonical text
//   - Compare orders a candidate date against a reference date
//
// Compare is directional. A reference given only to the year (or month)
// contains every candidate inside that year (or month) and compares equal
// to it, while the reverse comparison does not. Callers that filter rows
// against a boundary should always pass the boundary as the reference.
//
// The zero Date is the absent date. Malformed or impossible input is never
// an error in this package: Parse reports it with a false second result.
package pdate
