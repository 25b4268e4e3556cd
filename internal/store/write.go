package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/bookcat/internal/catalog"
)

var (
	// ErrInvalidID is returned for a record id below 1.
	ErrInvalidID = errors.New("record id must be positive")
	// ErrDuplicateID is returned when one import holds two records with
	// the same id.
	ErrDuplicateID = errors.New("record id repeated in import")
)

// Import describes one run of loading a catalogue file.
type Import struct {
	ID        string
	Source    string
	Kind      string
	Records   int
	Warnings  int
	CreatedAt time.Time
}

// NewImportID returns a time-ordered UUIDv7 for an import run.
func NewImportID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// WriteOutcome says what a record write did.
type WriteOutcome int

const (
	Unchanged WriteOutcome = iota
	Inserted
	Updated
)

func (o WriteOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// ImportResult counts record outcomes of an import.
type ImportResult struct {
	Inserted  int
	Updated   int
	Unchanged int
}

// execer is the part of *sql.DB and *sql.Tx the writers need.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WriteImport inserts an import run. Uses ON CONFLICT(id) DO NOTHING for
// idempotency.
func (s *Store) WriteImport(ctx context.Context, imp Import) error {
	if err := writeImport(ctx, s.db, imp); err != nil {
		return fmt.Errorf("write import: %w", err)
	}
	return nil
}

func writeImport(ctx context.Context, db execer, imp Import) error {
	if imp.ID == "" {
		return fmt.Errorf("import id is empty")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO imports (id, source, kind, record_count, warning_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		imp.ID,
		imp.Source,
		imp.Kind,
		imp.Records,
		imp.Warnings,
		imp.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// WriteRecord inserts or replaces the record with rec.ID. A record whose
// content hash matches the stored one is left untouched. importID may be
// empty for records not written by an import.
func (s *Store) WriteRecord(ctx context.Context, importID string, rec catalog.Record) (WriteOutcome, error) {
	out, err := writeRecord(ctx, s.db, importID, rec)
	if err != nil {
		return Unchanged, fmt.Errorf("write record %d: %w", rec.ID, err)
	}
	return out, nil
}

func writeRecord(ctx context.Context, db execer, importID string, rec catalog.Record) (WriteOutcome, error) {
	if rec.ID < 1 {
		return Unchanged, fmt.Errorf("%w: %d", ErrInvalidID, rec.ID)
	}
	rec = catalog.Normalize(rec)
	hash, err := catalog.Hash(rec)
	if err != nil {
		return Unchanged, err
	}

	var existing string
	err = db.QueryRowContext(ctx, `SELECT hash FROM records WHERE id = ?`, rec.ID).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Unchanged, fmt.Errorf("read hash: %w", err)
	case existing == hash:
		return Unchanged, nil
	}

	body, err := marshalRecord(rec)
	if err != nil {
		return Unchanged, err
	}
	pText, pYear, pMonth, pDay := dateColumns(rec.PurchaseDate)
	aText, aYear, aMonth, aDay := dateColumns(rec.ArrivalDate)
	var imp any
	if importID != "" {
		imp = importID
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO records
		(id, hash, import_id, title,
		 purchase_date, purchase_year, purchase_month, purchase_day,
		 arrival_date, arrival_year, arrival_month, arrival_day,
		 body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hash = excluded.hash,
			import_id = excluded.import_id,
			title = excluded.title,
			purchase_date = excluded.purchase_date,
			purchase_year = excluded.purchase_year,
			purchase_month = excluded.purchase_month,
			purchase_day = excluded.purchase_day,
			arrival_date = excluded.arrival_date,
			arrival_year = excluded.arrival_year,
			arrival_month = excluded.arrival_month,
			arrival_day = excluded.arrival_day,
			body = excluded.body
	`,
		rec.ID, hash, imp, rec.Title,
		pText, pYear, pMonth, pDay,
		aText, aYear, aMonth, aDay,
		body,
	)
	if err != nil {
		return Unchanged, fmt.Errorf("upsert: %w", err)
	}
	if existing == "" {
		return Inserted, nil
	}
	return Updated, nil
}

// ImportRecords writes an import run and its records in one transaction.
// Either all records and the run are stored or none are. Two records with
// the same id fail the import with ErrDuplicateID.
func (s *Store) ImportRecords(ctx context.Context, imp Import, records []catalog.Record) (ImportResult, error) {
	var res ImportResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("import records: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeImport(ctx, tx, imp); err != nil {
		return res, fmt.Errorf("import records: write import: %w", err)
	}

	seen := make(map[int64]bool, len(records))
	for _, rec := range records {
		if seen[rec.ID] {
			return ImportResult{}, fmt.Errorf("import records: record %d: %w", rec.ID, ErrDuplicateID)
		}
		seen[rec.ID] = true
		out, err := writeRecord(ctx, tx, imp.ID, rec)
		if err != nil {
			return ImportResult{}, fmt.Errorf("import records: record %d: %w", rec.ID, err)
		}
		switch out {
		case Inserted:
			res.Inserted++
		case Updated:
			res.Updated++
		default:
			res.Unchanged++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("import records: commit: %w", err)
	}
	return res, nil
}

// DeleteRecord removes a record. Deleting a missing id is not an error.
func (s *Store) DeleteRecord(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	return nil
}
