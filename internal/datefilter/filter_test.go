package datefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookcat/internal/pdate"
)

type row struct {
	id   int
	date pdate.Date
}

func rowDate(r row) pdate.Date { return r.date }

func ids(rows []row) []int {
	out := []int{}
	for _, r := range rows {
		out = append(out, r.id)
	}
	return out
}

func sampleRows() []row {
	return []row{
		{1, pdate.MustNew(2019)},
		{2, pdate.MustNew(2020, 6)},
		{3, pdate.MustNew(2020, 6, 15)},
		{4, pdate.MustNew(2021)},
	}
}

func TestBetween_AdmitsOnlyRowsInLowerYear(t *testing.T) {
	p, err := New(Between, pdate.MustNew(2020), pdate.MustNew(2021))
	require.NoError(t, err)

	got := Apply(sampleRows(), p, rowDate)
	assert.Equal(t, []int{2, 3}, ids(got))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		bound pdate.Date
		want  []int
	}{
		{"before 2020", Before, pdate.MustNew(2020), []int{1}},
		{"after 2020", After, pdate.MustNew(2020), []int{4}},
		{"on 2020", On, pdate.MustNew(2020), []int{2, 3}},
		{"not 2020", Not, pdate.MustNew(2020), []int{1, 4}},
		{"on 2020-06-15", On, pdate.MustNew(2020, 6, 15), []int{3}},
		// A month-precision row sorts before a day in the same month.
		{"before 2020-06-15", Before, pdate.MustNew(2020, 6, 15), []int{1, 2}},
		{"after 2020-06", After, pdate.MustNew(2020, 6), []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.typ, tt.bound, pdate.Date{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(Apply(sampleRows(), p, rowDate)))
		})
	}
}

func TestNot_UsesExplicitInequality(t *testing.T) {
	p, err := New(Not, pdate.MustNew(2020, 6), pdate.Date{})
	require.NoError(t, err)

	// Compare yields -1 here; Not must still pass.
	assert.True(t, p.Match(pdate.MustNew(2020, 7)))
	// Compare yields +1.
	assert.True(t, p.Match(pdate.MustNew(2020, 5)))
	assert.False(t, p.Match(pdate.MustNew(2020, 6, 1)))
}

func TestMatch_AbsentCandidate(t *testing.T) {
	bound := pdate.MustNew(2020)
	before, _ := New(Before, bound, pdate.Date{})
	after, _ := New(After, bound, pdate.Date{})
	on, _ := New(On, bound, pdate.Date{})

	// The absent date sorts before every bound.
	assert.True(t, before.Match(pdate.Date{}))
	assert.False(t, after.Match(pdate.Date{}))
	assert.False(t, on.Match(pdate.Date{}))
}

func TestNew_BoundChecks(t *testing.T) {
	y := pdate.MustNew(2020)

	_, err := New(Before, pdate.Date{}, pdate.Date{})
	assert.ErrorIs(t, err, ErrMissingBound)

	_, err = New(Between, y, pdate.Date{})
	assert.ErrorIs(t, err, ErrMissingBound)

	_, err = New(On, y, y)
	assert.ErrorIs(t, err, ErrUnexpectedBound)

	_, err = New(Type(99), y, pdate.Date{})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{
		"before":  Before,
		"AFTER":   After,
		" on ":    On,
		"in":      On,
		"not":     Not,
		"between": Between,
	} {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseType("around")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestParse(t *testing.T) {
	p, err := Parse("between", "2020", "2021-06")
	require.NoError(t, err)
	assert.Equal(t, "between 2020 and 2021-06", p.String())

	p, err = Parse("before", "2020-1", "")
	require.NoError(t, err)
	assert.Equal(t, "before 2020-01", p.String())

	_, err = Parse("on", "2020-02-30", "")
	assert.ErrorIs(t, err, ErrInvalidBound)

	_, err = Parse("between", "2020", "")
	assert.ErrorIs(t, err, ErrMissingBound)

	_, err = Parse("after", "2020", "2021")
	assert.ErrorIs(t, err, ErrUnexpectedBound)
}
