package pdate

import "fmt"

// Precision is how much of a Date is known.
type Precision int

const (
	PrecisionNone Precision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
)

func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	default:
		return "none"
	}
}

// Date is a partial calendar date. The zero value is the absent date.
//
// A Date never carries a day without a month: the constructors take
// components positionally, so there is no way to build one.
type Date struct {
	year  Field
	month Field
	day   Field
}

// InvalidDateError is returned by New for components that do not form a
// real date.
type InvalidDateError struct {
	Year  int
	Parts []int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date: year=%d parts=%v", e.Year, e.Parts)
}

// New builds a Date from a year and up to two further components, month
// then day. The result is validated.
//
//	New(2020)        // 2020
//	New(2020, 2)     // 2020-02
//	New(2020, 2, 29) // 2020-02-29
func New(year int, parts ...int) (Date, error) {
	if len(parts) > 2 {
		return Date{}, &InvalidDateError{Year: year, Parts: parts}
	}
	d := assemble(year, parts)
	if !IsValid(d.year, d.month, d.day) {
		return Date{}, &InvalidDateError{Year: year, Parts: parts}
	}
	return d, nil
}

// MustNew is New for literals known to be valid. It panics otherwise.
func MustNew(year int, parts ...int) Date {
	d, err := New(year, parts...)
	if err != nil {
		panic(err)
	}
	return d
}

func assemble(year int, parts []int) Date {
	d := Date{year: Some(year)}
	if len(parts) > 0 {
		d.month = Some(parts[0])
	}
	if len(parts) > 1 {
		d.day = Some(parts[1])
	}
	return d
}

// IsZero reports whether d is the absent date.
func (d Date) IsZero() bool {
	return !d.year.Set
}

// Year returns the year, or 0 for the absent date.
func (d Date) Year() int {
	return d.year.Value
}

// Month returns the month component.
func (d Date) Month() Field {
	return d.month
}

// Day returns the day component.
func (d Date) Day() Field {
	return d.day
}

// Precision reports how much of d is known.
func (d Date) Precision() Precision {
	switch {
	case !d.year.Set:
		return PrecisionNone
	case !d.month.Set:
		return PrecisionYear
	case !d.day.Set:
		return PrecisionMonth
	default:
		return PrecisionDay
	}
}

// Valid reports whether d satisfies IsValid. Dates built by ParseLenient
// may not.
func (d Date) Valid() bool {
	return IsValid(d.year, d.month, d.day)
}

// Parts returns the present components in order: year, then month, then
// day.
func (d Date) Parts() []int {
	var out []int
	for _, f := range []Field{d.year, d.month, d.day} {
		if !f.Set {
			break
		}
		out = append(out, f.Value)
	}
	return out
}

func (d Date) String() string {
	return Format(d)
}
