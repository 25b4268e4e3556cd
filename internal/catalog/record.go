package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/bookcat/internal/pdate"
)

// Record is one catalogue entry. JSON tags follow the mapped catalogue
// format; empty values are omitted the same way the flat converter never
// writes blank cells.
type Record struct {
	ID               int64           `json:"id"`
	ISBN13           string          `json:"isbn_13,omitempty"`
	ISBN10           string          `json:"isbn_10,omitempty"`
	Flags            Flags           `json:"flags"`
	Authors          []Author        `json:"authors,omitempty"`
	Title            string          `json:"title,omitempty"`
	Publishers       []string        `json:"publishers,omitempty"`
	PurchaseDate     pdate.Date      `json:"purchase_date,omitzero"`
	ArrivalDate      pdate.Date      `json:"arrival_date,omitzero"`
	NumberInOrder    int64           `json:"number_in_order,omitempty"`
	PurchasePrice    float64         `json:"purchase_price,omitempty"`
	ShippingPrice    float64         `json:"shipping_price,omitempty"`
	Currency         string          `json:"purchase_currency,omitempty"`
	ConversionRate   float64         `json:"price_conversion_rate,omitempty"`
	Seller           string          `json:"seller,omitempty"`
	SellerBranch     string          `json:"seller_branch,omitempty"`
	Purchaser        string          `json:"purchaser,omitempty"`
	Dimensions       Dimensions      `json:"dimensions,omitzero"`
	Amazon           *Source         `json:"amazon,omitempty"`
	OpenLib          json.RawMessage `json:"openlib,omitempty"`
	ElectronicFormat string          `json:"electronic_format,omitempty"`
	CoverRequired    string          `json:"cover_required,omitempty"`
	Location         string          `json:"location,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	IgnoredFields    []string        `json:"ignored_fields,omitempty"`
}

// Author is a book author split into surname and given names.
type Author struct {
	Surname    string   `json:"surname"`
	GivenNames []string `json:"given_names"`
}

// Dimensions are physical measurements in centimetres and kilograms, plus
// the page count as Length.
type Dimensions struct {
	Height    float64 `json:"height,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Thickness float64 `json:"thickness,omitempty"`
	Length    float64 `json:"length,omitempty"`
	Mass      float64 `json:"mass,omitempty"`
	MassUnits string  `json:"mass_units,omitempty"`
}

// IsZero reports whether no measurement is set.
func (d Dimensions) IsZero() bool {
	return d == Dimensions{}
}

// Source holds data taken from a third-party listing.
type Source struct {
	Dimensions Dimensions `json:"dimensions,omitzero"`
}

// Flags is a bit set of record states.
type Flags uint32

// Flag bit positions.
const (
	FlagOpenLibSynced = iota
	FlagInOpenLib
	FlagInvalidISBN13
	FlagInvalidISBN10
)

// Has reports whether bit is set.
func (f Flags) Has(bit int) bool {
	return f&(1<<bit) != 0
}

// With returns f with bit set.
func (f Flags) With(bit int) Flags {
	return f | 1<<bit
}

// DateField names one of the record's date columns.
type DateField int

const (
	PurchaseDate DateField = iota
	ArrivalDate
)

func (f DateField) String() string {
	if f == ArrivalDate {
		return "arrival"
	}
	return "purchase"
}

// ParseDateField reads "purchase" or "arrival".
func ParseDateField(s string) (DateField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "purchase", "purchase_date":
		return PurchaseDate, nil
	case "arrival", "arrival_date":
		return ArrivalDate, nil
	default:
		return 0, fmt.Errorf("unknown date field %q: must be purchase or arrival", s)
	}
}

// Date returns the value of field.
func (r Record) Date(field DateField) pdate.Date {
	if field == ArrivalDate {
		return r.ArrivalDate
	}
	return r.PurchaseDate
}

// SetDate replaces the value of field.
func (r *Record) SetDate(field DateField, d pdate.Date) {
	if field == ArrivalDate {
		r.ArrivalDate = d
		return
	}
	r.PurchaseDate = d
}

// AuthorNames renders authors as "Given Surname" joined by "; ".
func (r Record) AuthorNames() string {
	names := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		parts := append(append([]string{}, a.GivenNames...), a.Surname)
		names = append(names, strings.TrimSpace(strings.Join(parts, " ")))
	}
	return strings.Join(names, NameSeparator+" ")
}
