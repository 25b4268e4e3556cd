package pdate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// The mapped catalogue stores dates as objects with optional year, month
// and day keys. Older files hold the components as strings.
type jsonDate struct {
	Year  json.RawMessage `json:"year,omitempty"`
	Month json.RawMessage `json:"month,omitempty"`
	Day   json.RawMessage `json:"day,omitempty"`
}

// ErrDayWithoutMonth is returned when decoding a date that has a day but no
// month.
var ErrDayWithoutMonth = errors.New("date has a day but no month")

// MarshalJSON encodes d as {"year":Y,"month":M,"day":D}, omitting absent
// components. The absent date encodes as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	obj := struct {
		Year  int  `json:"year"`
		Month *int `json:"month,omitempty"`
		Day   *int `json:"day,omitempty"`
	}{Year: d.year.Value}
	if d.month.Set {
		m := d.month.Value
		obj.Month = &m
	}
	if d.day.Set {
		dd := d.day.Value
		obj.Day = &dd
	}
	return json.Marshal(obj)
}

// UnmarshalJSON accepts null, a canonical date string, or an object with
// year, month and day keys whose values are numbers or numeric strings.
// The decoded date is validated.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*d = Date{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return d.UnmarshalText([]byte(s))
	}

	var obj jsonDate
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	raws := []json.RawMessage{obj.Year, obj.Month, obj.Day}
	values := make([]int, 0, len(raws))
	for i, raw := range raws {
		text, present, err := componentText(raw)
		if err != nil {
			return fmt.Errorf("decode date: %w", err)
		}
		if !present {
			// Later components must be absent too.
			for _, rest := range raws[i+1:] {
				if _, later, _ := componentText(rest); later {
					if i == 0 {
						return fmt.Errorf("decode date: missing year")
					}
					return ErrDayWithoutMonth
				}
			}
			break
		}
		v, ok := parseComponent(i, text)
		if !ok {
			return fmt.Errorf("decode date: bad %s %q", componentNames[i], text)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := New(values[0], values[1:]...)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var componentNames = [3]string{"year", "month", "day"}

// componentText returns the textual form of a raw component. Empty
// strings and null count as absent, matching how the flat catalogue
// leaves cells blank.
func componentText(raw json.RawMessage) (string, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return s, s != "", nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false, err
	}
	return n.String(), true, nil
}

// MarshalText encodes d in canonical form.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(Format(d)), nil
}

// UnmarshalText parses canonical text. Empty text decodes to the absent
// date.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("invalid date %q", text)
	}
	*d = parsed
	return nil
}
