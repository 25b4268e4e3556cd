package pdate

// Field is an optional date component. Set distinguishes an absent
// component from one holding any integer value, zero included.
type Field struct {
	Value int
	Set   bool
}

// Some returns a set Field holding v.
func Some(v int) Field {
	return Field{Value: v, Set: true}
}

// None is the absent Field.
var None = Field{}

// daysInMonth is indexed by month-1 for a non-leap year.
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeap reports whether year is a leap year: divisible by 400, or
// divisible by 4 and not by 100.
func IsLeap(year int) bool {
	return year%400 == 0 || (year%4 == 0 && year%100 != 0)
}

// DaysIn returns the number of days in month of year, or 0 when month is
// outside 1..12.
func DaysIn(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeap(year) {
		return 29
	}
	return daysInMonth[month-1]
}

// IsValid reports whether the components denote a real calendar date at
// their precision. An unset year is vacuously valid. A day without a month
// is never valid.
//
// IsValid is total: it returns false for any out-of-range integer rather
// than panicking.
func IsValid(year, month, day Field) bool {
	if !year.Set {
		return true
	}
	if year.Value < 1 {
		return false
	}
	if month.Set && (month.Value < 1 || month.Value > 12) {
		return false
	}
	if !day.Set {
		return true
	}
	if !month.Set || day.Value < 1 {
		return false
	}
	return day.Value <= DaysIn(year.Value, month.Value)
}
