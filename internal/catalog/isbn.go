package catalog

import (
	"regexp"
	"strconv"
)

const (
	ISBN10Digits = 10
	ISBN13Digits = 13
	isbn13Prefix = "978"
)

var (
	isbn10Body = regexp.MustCompile(`^\d{9}$`)
	isbn13Body = regexp.MustCompile(`^978\d{9}$`)
	isbn10Full = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Full = regexp.MustCompile(`^978\d{9}[\dX]$`)
)

// ISBNCheckDigit returns the check digit for a 9-digit ISBN-10 body or a
// 12-digit ISBN-13 body, or "" when body is neither.
func ISBNCheckDigit(body string) string {
	switch {
	case isbn10Body.MatchString(body):
		sum := 0
		for i, c := range body {
			sum += (ISBN10Digits - i) * int(c-'0')
		}
		check := sum % 11
		if check > 0 {
			check = 11 - check
		}
		if check == 10 {
			return "X"
		}
		return strconv.Itoa(check)
	case isbn13Body.MatchString(body):
		sum := 0
		for i, c := range body {
			w := 1
			if i%2 == 1 {
				w = 3
			}
			sum += w * int(c-'0')
		}
		return strconv.Itoa((10 - sum%10) % 10)
	default:
		return ""
	}
}

// ValidISBN reports whether s is a well-formed ISBN-10 or 978-prefixed
// ISBN-13 with a correct check digit.
func ValidISBN(s string) bool {
	if !isbn10Full.MatchString(s) && !isbn13Full.MatchString(s) {
		return false
	}
	return ISBNCheckDigit(s[:len(s)-1]) == s[len(s)-1:]
}

// ConvertISBN converts between the 10 and 13 digit forms, recomputing the
// check digit. An ISBN already of the requested length is returned as is.
// It returns "" for an unsupported digit count or an input that cannot be
// converted.
func ConvertISBN(s string, digits int) string {
	if digits != ISBN10Digits && digits != ISBN13Digits {
		return ""
	}
	if len(s) == digits {
		return s
	}
	var body string
	switch {
	case digits == ISBN13Digits && isbn10Full.MatchString(s):
		body = isbn13Prefix + s[:len(s)-1]
	case digits == ISBN10Digits && isbn13Full.MatchString(s):
		body = s[len(isbn13Prefix) : len(s)-1]
	default:
		return ""
	}
	return body + ISBNCheckDigit(body)
}
