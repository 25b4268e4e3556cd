package catalog

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the workbook sheet holding flat records.
const DefaultSheet = "Purchases"

// ReadExcel reads flat records from sheet of a workbook. The sheet has the
// same layout as a flat TSV catalogue, header lines included.
func ReadExcel(r io.Reader, sheet string, rng Range, mode LoadMode) ([]Record, []*LoadError) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, []*LoadError{{Code: ErrCodeRead, Message: fmt.Sprintf("open workbook: %v", err)}}
	}
	defer f.Close()

	found := false
	for _, name := range f.GetSheetList() {
		if name == sheet {
			found = true
			break
		}
	}
	if !found {
		return nil, []*LoadError{{Code: ErrCodeNoSheet, Message: fmt.Sprintf("sheet %q not found", sheet)}}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, []*LoadError{{Code: ErrCodeRead, Message: fmt.Sprintf("read sheet %q: %v", sheet, err)}}
	}

	var (
		records []Record
		errs    []*LoadError
	)
	ids := idIndex{}
	for i, cells := range rows {
		if i < HeaderLines {
			continue
		}
		n := i - HeaderLines + 1
		if rng.pastEnd(n) {
			break
		}
		if !rng.contains(n) || blankRow(cells) {
			continue
		}
		rec, recErrs := flatRecord(cells, n, ids)
		errs = append(errs, recErrs...)
		if len(recErrs) > 0 && mode == LoadModeFailFast {
			return records, errs
		}
		if rec.ID != 0 {
			records = append(records, rec)
		}
	}
	return records, errs
}

// WriteExcel writes records to a new workbook with a single sheet. The
// header lines match WriteTSVHeader: a title, two blank rows, then the
// column labels. Records start after HeaderLines.
func WriteExcel(w io.Writer, sheet string, records []Record) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetCellValue(sheet, "A1", "Book catalogue"); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	labels := make([]any, ColumnCount)
	for c := Column(0); c < ColumnCount; c++ {
		labels[c] = c.String()
	}
	labelCell, err := excelize.CoordinatesToCellName(1, HeaderLines)
	if err != nil {
		return fmt.Errorf("write column labels: %w", err)
	}
	if err := f.SetSheetRow(sheet, labelCell, &labels); err != nil {
		return fmt.Errorf("write column labels: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, HeaderLines+i+1)
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		flat := ToFlat(rec)
		row := make([]any, len(flat))
		for j, v := range flat {
			row[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
