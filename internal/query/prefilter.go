package query

import (
	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/datefilter"
)

// RecordsTable holds one row per catalogue record.
const RecordsTable = "records"

// YearColumn names the indexed year column of a date field.
func YearColumn(field catalog.DateField) string {
	if field == catalog.ArrivalDate {
		return "arrival_year"
	}
	return "purchase_year"
}

// ForDate returns a prefilter on the year column of field that keeps every
// row p can match. It may keep rows p rejects; a nil result keeps all.
//
// The year alone decides most comparisons. When the years are equal the
// outcome depends on finer components, so equality is always admitted.
// An absent candidate date is stored as NULL; of the predicate types only
// Before and Not admit it.
func ForDate(field catalog.DateField, p datefilter.Predicate) Predicate {
	col := YearColumn(field)
	switch p.Type {
	case datefilter.Before:
		return Or{Predicates: []Predicate{
			IsNull{Column: col},
			Compare{Column: col, Op: OpLE, Value: p.Lower.Year()},
		}}
	case datefilter.After:
		return Compare{Column: col, Op: OpGE, Value: p.Lower.Year()}
	case datefilter.On:
		return Compare{Column: col, Op: OpEQ, Value: p.Lower.Year()}
	case datefilter.Between:
		return And{Predicates: []Predicate{
			Compare{Column: col, Op: OpGE, Value: p.Lower.Year()},
			Compare{Column: col, Op: OpLE, Value: p.Upper.Year()},
		}}
	default:
		return nil
	}
}
