package pdate

import (
	"regexp"
	"strconv"
	"strings"
)

// Separator splits the components of a date string.
const Separator = "-"

var (
	yearPattern  = regexp.MustCompile(`^[1-9][0-9]*$`)
	monthPattern = regexp.MustCompile(`^(1[0-2]|0?[1-9])$`)
	dayPattern   = regexp.MustCompile(`^(0?[1-9]|[1-2][0-9]|3[01])$`)
)

// componentPatterns is indexed by component position.
var componentPatterns = [3]*regexp.Regexp{yearPattern, monthPattern, dayPattern}

// Parse reads "YYYY", "YYYY-MM" or "YYYY-MM-DD". Month and day may be one
// or two digits; the year has no sign and no leading zero. The second
// result is false when text is malformed or names a date that does not
// exist.
//
// The returned Date holds exactly the components present in text.
func Parse(text string) (Date, bool) {
	return parse(text, true)
}

// ParseLenient is Parse without the calendar check: "2021-02-31" is
// accepted. Each component must still match its pattern.
func ParseLenient(text string) (Date, bool) {
	return parse(text, false)
}

func parse(text string, validate bool) (Date, bool) {
	if text == "" {
		return Date{}, false
	}
	parts := strings.Split(text, Separator)
	if len(parts) == 0 || len(parts) > len(componentPatterns) {
		return Date{}, false
	}
	values := make([]int, len(parts))
	for i, p := range parts {
		v, ok := parseComponent(i, p)
		if !ok {
			return Date{}, false
		}
		values[i] = v
	}
	d := assemble(values[0], values[1:])
	if validate && !d.Valid() {
		return Date{}, false
	}
	return d, true
}

// parseComponent checks s against the pattern for position i (0 year,
// 1 month, 2 day) and converts it.
func parseComponent(i int, s string) (int, bool) {
	if !componentPatterns[i].MatchString(s) {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Only reachable for years wider than int.
		return 0, false
	}
	return v, true
}
