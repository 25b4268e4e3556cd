package pdate

// Compare orders candidate against reference and returns -1, 0 or +1.
//
// The relation is directional. A reference known only to the year compares
// equal to every candidate in that year, whatever the candidate's month and
// day; a reference known to the month likewise contains every candidate in
// that month. In the other direction a more specific reference compares
// after a less specific candidate with the same prefix, so
//
//	Compare(2000, 2000-02-20) == 0
//	Compare(2000-02-20, 2000) == +1
//
// The absent date sorts before every present date: Compare(absent, d) is
// -1, Compare(d, absent) is +1 and two absent dates compare equal.
//
// On fully specified dates Compare is ordinary chronological order.
func Compare(reference, candidate Date) int {
	switch {
	case reference.IsZero() && candidate.IsZero():
		return 0
	case reference.IsZero():
		return -1
	case candidate.IsZero():
		return 1
	}
	if c := sign(reference.year.Value - candidate.year.Value); c != 0 {
		return c
	}
	if c, done := compareField(reference.month, candidate.month); done {
		return c
	}
	if c, done := compareField(reference.day, candidate.day); done {
		return c
	}
	return 0
}

// compareField applies one level of the containment rules. done is false
// only when both fields are set and equal, meaning the next level decides.
func compareField(ref, cand Field) (c int, done bool) {
	switch {
	case !ref.Set:
		return 0, true
	case !cand.Set:
		return 1, true
	}
	if c := sign(ref.Value - cand.Value); c != 0 {
		return c, true
	}
	return 0, false
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b hold the same components. Unlike
// Compare(a, b) == 0 it is symmetric.
func Equal(a, b Date) bool {
	return a == b
}
