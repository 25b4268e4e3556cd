package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/datefilter"
	"github.com/roach88/bookcat/internal/pdate"
)

// admits evaluates a prefilter against a year column value; nil year is
// SQL NULL.
func admits(t *testing.T, p Predicate, year *int) bool {
	t.Helper()
	switch pred := p.(type) {
	case nil:
		return true
	case Compare:
		if year == nil {
			return false
		}
		v := pred.Value.(int)
		switch pred.Op {
		case OpEQ:
			return *year == v
		case OpLT:
			return *year < v
		case OpLE:
			return *year <= v
		case OpGT:
			return *year > v
		case OpGE:
			return *year >= v
		}
	case IsNull:
		return year == nil
	case And:
		for _, sub := range pred.Predicates {
			if !admits(t, sub, year) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range pred.Predicates {
			if admits(t, sub, year) {
				return true
			}
		}
		return false
	}
	t.Fatalf("unexpected predicate %T", p)
	return false
}

func dateGrid() []pdate.Date {
	dates := []pdate.Date{{}}
	for _, y := range []int{2019, 2020, 2021} {
		dates = append(dates, pdate.MustNew(y))
		for _, m := range []int{1, 6, 12} {
			dates = append(dates, pdate.MustNew(y, m))
			for _, d := range []int{1, 15, 31} {
				if dd, err := pdate.New(y, m, d); err == nil {
					dates = append(dates, dd)
				}
			}
		}
	}
	return dates
}

func TestForDateNeverDropsMatches(t *testing.T) {
	grid := dateGrid()
	for _, typ := range []datefilter.Type{datefilter.Before, datefilter.After, datefilter.On, datefilter.Not} {
		for _, lower := range grid[1:] {
			p, err := datefilter.New(typ, lower, pdate.Date{})
			require.NoError(t, err)
			checkSuperset(t, p, grid)
		}
	}
	for _, lower := range grid[1:] {
		for _, upper := range grid[1:] {
			p, err := datefilter.New(datefilter.Between, lower, upper)
			require.NoError(t, err)
			checkSuperset(t, p, grid)
		}
	}
}

func checkSuperset(t *testing.T, p datefilter.Predicate, grid []pdate.Date) {
	t.Helper()
	pre := ForDate(catalog.PurchaseDate, p)
	for _, c := range grid {
		if !p.Match(c) {
			continue
		}
		var year *int
		if !c.IsZero() {
			y := c.Year()
			year = &y
		}
		assert.True(t, admits(t, pre, year), "%s dropped %q", p, pdate.Format(c))
	}
}

func TestForDateShapes(t *testing.T) {
	lower := pdate.MustNew(2020, 6)
	upper := pdate.MustNew(2021)

	before, _ := datefilter.New(datefilter.Before, lower, pdate.Date{})
	sql, params, err := Compile(Select{From: RecordsTable, Filter: ForDate(catalog.ArrivalDate, before)})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM records WHERE (arrival_year IS NULL OR arrival_year <= ?) ORDER BY id ASC", sql)
	assert.Equal(t, []any{2020}, params)

	between, _ := datefilter.New(datefilter.Between, lower, upper)
	sql, params, err = Compile(Select{From: RecordsTable, Filter: ForDate(catalog.PurchaseDate, between)})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM records WHERE (purchase_year >= ? AND purchase_year <= ?) ORDER BY id ASC", sql)
	assert.Equal(t, []any{2020, 2021}, params)

	not, _ := datefilter.New(datefilter.Not, lower, pdate.Date{})
	assert.Nil(t, ForDate(catalog.PurchaseDate, not))
}

func TestYearColumn(t *testing.T) {
	assert.Equal(t, "purchase_year", YearColumn(catalog.PurchaseDate))
	assert.Equal(t, "arrival_year", YearColumn(catalog.ArrivalDate))
}
