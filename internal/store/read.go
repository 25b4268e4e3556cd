package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/datefilter"
	"github.com/roach88/bookcat/internal/pdate"
	"github.com/roach88/bookcat/internal/query"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ReadRecord retrieves a single record by id.
func (s *Store) ReadRecord(ctx context.Context, id int64) (catalog.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM records WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Record{}, fmt.Errorf("record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return catalog.Record{}, fmt.Errorf("read record %d: %w", id, err)
	}
	return unmarshalRecord(body)
}

// ListRecords returns every record ordered by id.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRecords(ctx context.Context) ([]catalog.Record, error) {
	return s.selectRecords(ctx, nil)
}

// QueryByDate returns the records whose field date passes p, ordered by
// id. The year-column prefilter narrows the rows read; p decides.
func (s *Store) QueryByDate(ctx context.Context, field catalog.DateField, p datefilter.Predicate) ([]catalog.Record, error) {
	candidates, err := s.selectRecords(ctx, query.ForDate(field, p))
	if err != nil {
		return nil, err
	}
	matched := datefilter.Apply(candidates, p, func(r catalog.Record) pdate.Date { return r.Date(field) })
	if matched == nil {
		matched = []catalog.Record{}
	}
	return matched, nil
}

func (s *Store) selectRecords(ctx context.Context, filter query.Predicate) ([]catalog.Record, error) {
	sqlText, params, err := query.Compile(query.Select{
		From:    query.RecordsTable,
		Columns: []string{"body"},
		Filter:  filter,
	})
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	return scanBodies(rows)
}

// CountRecords returns the number of stored records.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// ReadImport retrieves an import run by id.
func (s *Store) ReadImport(ctx context.Context, id string) (Import, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, kind, record_count, warning_count, created_at
		FROM imports
		WHERE id = ?
	`, id)
	imp, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, fmt.Errorf("import %s: %w", id, ErrNotFound)
	}
	return imp, err
}

// ListImports returns every import run, oldest first. UUIDv7 ids sort by
// creation time.
func (s *Store) ListImports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, kind, record_count, warning_count, created_at
		FROM imports
		ORDER BY id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	imports := []Import{}
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return imports, nil
}

// ImportRecordIDs returns the ids of the records an import run last wrote,
// ascending. Records the run left unchanged keep their earlier import.
func (s *Store) ImportRecordIDs(ctx context.Context, importID string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM records WHERE import_id = ? ORDER BY id ASC`, importID)
	if err != nil {
		return nil, fmt.Errorf("query import records: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan import record: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import records: %w", err)
	}
	return ids, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImport(row scanner) (Import, error) {
	var (
		imp     Import
		created string
	)
	if err := row.Scan(&imp.ID, &imp.Source, &imp.Kind, &imp.Records, &imp.Warnings, &created); err != nil {
		return Import{}, err
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return Import{}, fmt.Errorf("import %s: created_at: %w", imp.ID, err)
	}
	imp.CreatedAt = t
	return imp, nil
}
