package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/pdate"
)

// dateColumns splits d into the text, year, month and day column values.
// Absent parts are NULL.
func dateColumns(d pdate.Date) (text, year, month, day any) {
	if d.IsZero() {
		return nil, nil, nil, nil
	}
	text, year = pdate.Format(d), d.Year()
	if m := d.Month(); m.Set {
		month = m.Value
	}
	if dd := d.Day(); dd.Set {
		day = dd.Value
	}
	return text, year, month, day
}

// marshalRecord converts a record to JSON TEXT for the body column.
func marshalRecord(rec catalog.Record) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return "", fmt.Errorf("marshal record %d: %w", rec.ID, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalRecord parses a body column.
func unmarshalRecord(body string) (catalog.Record, error) {
	var rec catalog.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return catalog.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}

// scanBodies reads rows of a single body column.
func scanBodies(rows *sql.Rows) ([]catalog.Record, error) {
	defer rows.Close()

	records := []catalog.Record{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := unmarshalRecord(body)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
