package catalog

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/bookcat/internal/pdate"
)

// Column is a flat catalogue column index.
type Column int

// Flat catalogue columns, in file order.
const (
	ColID Column = iota
	ColPurchaseDay
	ColPurchaseMonth
	ColPurchaseYear
	ColArrivalDay
	ColArrivalMonth
	ColArrivalYear
	ColNumberInOrder
	ColISBN13
	ColISBN10
	ColSurname
	ColGivenNames
	ColTitle
	ColPublisher
	ColSeller
	ColSellerBranch
	ColPurchaser
	ColPrice
	ColShipping
	ColCurrency
	ColConversion
	ColTotal
	ColAmazonLength
	ColAmazonHeightIn
	ColAmazonWidthIn
	ColAmazonThicknessIn
	ColAmazonMassOz
	ColAmazonMassLb
	ColAmazonHeightCm
	ColAmazonWidthCm
	ColAmazonThicknessCm
	ColAmazonMassKg
	ColLength
	ColHeight
	ColWidth
	ColThickness
	ColMassKg
	ColElectronicDownloadDate
	ColElectronicFormat
	ColCoverRequired
	ColLocation
	ColNotes
	ColIgnored

	ColumnCount
)

const (
	// HeaderLines is the number of lines before the first flat record.
	HeaderLines = 4

	// NameSeparator separates multiple names in one flat cell.
	NameSeparator = ";"

	ozToKg = 0.028
	lbToOz = 16
	lbToKg = lbToOz * ozToKg
)

// Range selects flat records by 1-based record number. Zero First or Last
// leaves that end open.
type Range struct {
	First int
	Last  int
}

// All selects every record.
var All = Range{}

func (r Range) contains(n int) bool {
	return (r.First == 0 || n >= r.First) && (r.Last == 0 || n <= r.Last)
}

func (r Range) pastEnd(n int) bool {
	return r.Last != 0 && n > r.Last
}

// FromFlat converts one flat row into a record. row is the 1-based record
// number used in errors. Cells that cannot be converted are left empty and
// reported; the record is still usable unless its id is missing or not
// positive, in which case the returned ID is 0.
func FromFlat(cells []string, row int) (Record, []*LoadError) {
	c := flatCells{cells: cells, row: row}
	var rec Record

	rec.ID = c.id()
	rec.PurchaseDate = c.date(ColPurchaseYear, ColPurchaseMonth, ColPurchaseDay)
	rec.ArrivalDate = c.date(ColArrivalYear, ColArrivalMonth, ColArrivalDay)
	rec.NumberInOrder = c.integer(ColNumberInOrder)

	rec.ISBN13 = c.str(ColISBN13)
	rec.ISBN10 = c.str(ColISBN10)
	if rec.ISBN13 == "" && rec.ISBN10 != "" && ValidISBN(rec.ISBN10) {
		rec.ISBN13 = ConvertISBN(rec.ISBN10, ISBN13Digits)
	}
	if rec.ISBN10 == "" && rec.ISBN13 != "" && ValidISBN(rec.ISBN13) {
		rec.ISBN10 = ConvertISBN(rec.ISBN13, ISBN10Digits)
	}
	if rec.ISBN13 != "" && !ValidISBN(rec.ISBN13) {
		rec.Flags = rec.Flags.With(FlagInvalidISBN13)
	}
	if rec.ISBN10 != "" && !ValidISBN(rec.ISBN10) {
		rec.Flags = rec.Flags.With(FlagInvalidISBN10)
	}

	rec.Authors = zipAuthors(splitNames(c.str(ColSurname)), splitNames(c.str(ColGivenNames)))
	rec.Title = c.str(ColTitle)
	rec.Publishers = splitList(c.str(ColPublisher))

	rec.Seller = c.str(ColSeller)
	rec.SellerBranch = c.str(ColSellerBranch)
	rec.Purchaser = c.str(ColPurchaser)
	rec.PurchasePrice = round2(c.number(ColPrice))
	rec.ShippingPrice = round2(c.number(ColShipping))
	rec.Currency = c.str(ColCurrency)
	rec.ConversionRate = c.number(ColConversion)

	rec.Dimensions = Dimensions{
		Length:    c.number(ColLength),
		Height:    c.number(ColHeight),
		Width:     c.number(ColWidth),
		Thickness: c.number(ColThickness),
		Mass:      c.number(ColMassKg),
	}
	amazon := Dimensions{
		Length:    c.number(ColAmazonLength),
		Height:    c.number(ColAmazonHeightCm),
		Width:     c.number(ColAmazonWidthCm),
		Thickness: c.number(ColAmazonThicknessCm),
		Mass:      round2(c.number(ColAmazonMassLb)*lbToKg + c.number(ColAmazonMassOz)*ozToKg),
	}
	if amazon.Mass == 0 {
		amazon.Mass = c.number(ColAmazonMassKg)
	}
	if !amazon.IsZero() {
		rec.Amazon = &Source{Dimensions: amazon}
	}

	rec.ElectronicFormat = c.str(ColElectronicFormat)
	rec.CoverRequired = c.str(ColCoverRequired)
	rec.Location = c.str(ColLocation)
	rec.Notes = c.str(ColNotes)
	rec.IgnoredFields = splitList(c.str(ColIgnored))

	return rec, c.errs
}

// ToFlat converts a record into flat cells.
func ToFlat(rec Record) []string {
	cells := make([]string, ColumnCount)
	set := func(col Column, v string) { cells[col] = v }

	set(ColID, formatInt(rec.ID))
	setDate(cells, rec.PurchaseDate, ColPurchaseYear, ColPurchaseMonth, ColPurchaseDay)
	setDate(cells, rec.ArrivalDate, ColArrivalYear, ColArrivalMonth, ColArrivalDay)

	if len(rec.Authors) > 0 {
		surnames := make([]string, len(rec.Authors))
		given := make([]string, len(rec.Authors))
		for i, a := range rec.Authors {
			surnames[i] = a.Surname
			given[i] = strings.Join(a.GivenNames, " ")
		}
		set(ColSurname, strings.Join(surnames, NameSeparator))
		set(ColGivenNames, strings.Join(given, NameSeparator))
	}
	set(ColTitle, rec.Title)
	set(ColPublisher, strings.Join(rec.Publishers, NameSeparator))
	set(ColNumberInOrder, formatInt(rec.NumberInOrder))
	set(ColISBN13, rec.ISBN13)
	set(ColISBN10, rec.ISBN10)
	set(ColPrice, formatFloat(rec.PurchasePrice))
	set(ColShipping, formatFloat(rec.ShippingPrice))
	set(ColConversion, formatFloat(rec.ConversionRate))
	set(ColCurrency, rec.Currency)
	set(ColSeller, rec.Seller)
	set(ColSellerBranch, rec.SellerBranch)
	set(ColPurchaser, rec.Purchaser)
	set(ColLength, formatFloat(rec.Dimensions.Length))
	set(ColHeight, formatFloat(rec.Dimensions.Height))
	set(ColWidth, formatFloat(rec.Dimensions.Width))
	set(ColThickness, formatFloat(rec.Dimensions.Thickness))
	set(ColMassKg, formatFloat(rec.Dimensions.Mass))
	if rec.Amazon != nil {
		d := rec.Amazon.Dimensions
		set(ColAmazonLength, formatFloat(d.Length))
		set(ColAmazonHeightCm, formatFloat(d.Height))
		set(ColAmazonWidthCm, formatFloat(d.Width))
		set(ColAmazonThicknessCm, formatFloat(d.Thickness))
		set(ColAmazonMassKg, formatFloat(d.Mass))
	}
	set(ColElectronicFormat, rec.ElectronicFormat)
	set(ColCoverRequired, rec.CoverRequired)
	set(ColLocation, rec.Location)
	set(ColNotes, rec.Notes)
	set(ColIgnored, strings.Join(rec.IgnoredFields, NameSeparator))
	return cells
}

func setDate(cells []string, d pdate.Date, year, month, day Column) {
	if d.IsZero() {
		return
	}
	cells[year] = strconv.Itoa(d.Year())
	if m := d.Month(); m.Set {
		cells[month] = strconv.Itoa(m.Value)
	}
	if dd := d.Day(); dd.Set {
		cells[day] = strconv.Itoa(dd.Value)
	}
}

// ReadTSV reads the records of a flat catalogue within rng. In
// LoadModeFailFast the first cell error aborts the read.
func ReadTSV(r io.Reader, rng Range, mode LoadMode) ([]Record, []*LoadError) {
	var (
		records []Record
		errs    []*LoadError
	)
	ids := idIndex{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if line <= HeaderLines {
			continue
		}
		n := line - HeaderLines
		if rng.pastEnd(n) {
			break
		}
		if !rng.contains(n) || strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		rec, recErrs := flatRecord(strings.Split(sc.Text(), "\t"), n, ids)
		errs = append(errs, recErrs...)
		if len(recErrs) > 0 && mode == LoadModeFailFast {
			return records, errs
		}
		if rec.ID != 0 {
			records = append(records, rec)
		}
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, &LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("reading flat catalogue: %v", err)})
	}
	return records, errs
}

// flatRecord converts a row with FromFlat and checks its id against the
// ids of earlier records. A repeated id is reported and the returned ID
// is 0, so the reader skips the record.
func flatRecord(cells []string, row int, ids idIndex) (Record, []*LoadError) {
	rec, errs := FromFlat(cells, row)
	if rec.ID == 0 {
		return rec, errs
	}
	if le := ids.claim(rec.ID, row); le != nil {
		le.Column = int(ColID) + 1
		rec.ID = 0
		errs = append(errs, le)
	}
	return rec, errs
}

// columnNames label the columns in the last header line.
var columnNames = [ColumnCount]string{
	"id",
	"purchase day", "purchase month", "purchase year",
	"arrival day", "arrival month", "arrival year",
	"number in order",
	"isbn 13", "isbn 10",
	"surname", "given names", "title", "publisher",
	"seller", "seller branch", "purchaser",
	"price", "shipping", "currency", "conversion", "total",
	"amazon length",
	"amazon height in", "amazon width in", "amazon thickness in",
	"amazon mass oz", "amazon mass lb",
	"amazon height cm", "amazon width cm", "amazon thickness cm",
	"amazon mass kg",
	"length", "height", "width", "thickness", "mass kg",
	"electronic download date", "electronic format",
	"cover required", "location", "notes", "ignored",
}

// String returns the column's header label.
func (c Column) String() string {
	if c < 0 || c >= ColumnCount {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnNames[c]
}

// WriteTSVHeader writes the HeaderLines lines that precede flat records:
// title, two blank lines, then the column labels.
func WriteTSVHeader(w io.Writer, title string) error {
	labels := make([]string, ColumnCount)
	for c := Column(0); c < ColumnCount; c++ {
		labels[c] = c.String()
	}
	_, err := fmt.Fprintf(w, "%s\n\n\n%s\n", title, strings.Join(labels, "\t"))
	if err != nil {
		return fmt.Errorf("write flat header: %w", err)
	}
	return nil
}

// WriteTSV writes records as flat lines, without header lines.
func WriteTSV(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.WriteString(strings.Join(ToFlat(rec), "\t") + "\n"); err != nil {
			return fmt.Errorf("write flat catalogue: %w", err)
		}
	}
	return bw.Flush()
}

// flatCells reads typed values out of a flat row, recording conversion
// errors instead of failing.
type flatCells struct {
	cells []string
	row   int
	errs  []*LoadError
}

func (c *flatCells) str(col Column) string {
	if int(col) >= len(c.cells) {
		return ""
	}
	return strings.TrimSpace(c.cells[col])
}

func (c *flatCells) fail(code string, col Column, format string, args ...any) {
	c.errs = append(c.errs, &LoadError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Row:     c.row,
		Column:  int(col) + 1,
	})
}

func (c *flatCells) integer(col Column) int64 {
	s := c.str(col)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		c.fail(ErrCodeBadCell, col, "not an integer: %q", s)
		return 0
	}
	return v
}

// id reads the record id, which must be a positive integer.
func (c *flatCells) id() int64 {
	s := c.str(ColID)
	if s == "" {
		c.fail(ErrCodeBadID, ColID, "id is missing")
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 1 {
		c.fail(ErrCodeBadID, ColID, "id is not a positive integer: %q", s)
		return 0
	}
	return v
}

func (c *flatCells) number(col Column) float64 {
	s := c.str(col)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.fail(ErrCodeBadCell, col, "not a number: %q", s)
		return 0
	}
	return v
}

// date assembles a partial date from separate cells. A day without a month
// or a component that does not parse leaves the date absent.
func (c *flatCells) date(year, month, day Column) pdate.Date {
	y, m, d := c.str(year), c.str(month), c.str(day)
	if y == "" && m == "" && d == "" {
		return pdate.Date{}
	}
	parts := []string{y}
	switch {
	case m != "" && d != "":
		parts = append(parts, m, d)
	case m != "":
		parts = append(parts, m)
	case d != "":
		c.fail(ErrCodeBadDate, day, "day %q given without a month", d)
		return pdate.Date{}
	}
	text := strings.Join(parts, pdate.Separator)
	date, ok := pdate.Parse(text)
	if !ok {
		c.fail(ErrCodeBadDate, year, "invalid date %q", text)
		return pdate.Date{}
	}
	return date
}

// splitList splits a multi-value cell, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, NameSeparator) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, NameSeparator)
}

// zipAuthors pairs surnames with given names by position; the longer list
// decides the author count.
func zipAuthors(surnames, given []string) []Author {
	n := max(len(surnames), len(given))
	if n == 0 {
		return nil
	}
	authors := make([]Author, n)
	for i := range authors {
		if i < len(surnames) {
			authors[i].Surname = strings.TrimSpace(surnames[i])
		}
		authors[i].GivenNames = []string{}
		if i < len(given) {
			if g := strings.TrimSpace(given[i]); g != "" {
				authors[i].GivenNames = []string{g}
			}
		}
	}
	return authors
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatInt(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
