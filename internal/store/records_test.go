package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/datefilter"
	"github.com/roach88/bookcat/internal/pdate"
)

func ids(records []catalog.Record) []int64 {
	out := []int64{}
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestWriteRecord_Outcomes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	out, err := s.WriteRecord(ctx, "", createTestRecord(1, "First", "2020-06"))
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)

	out, err = s.WriteRecord(ctx, "", createTestRecord(1, "First", "2020-06"))
	require.NoError(t, err)
	assert.Equal(t, Unchanged, out, "same content is a no-op")

	out, err = s.WriteRecord(ctx, "", createTestRecord(1, "Renamed", "2020-06"))
	require.NoError(t, err)
	assert.Equal(t, Updated, out)

	rec, err := s.ReadRecord(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", rec.Title)

	n, err := s.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "upsert by id")
}

func TestWriteRecord_DateColumns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRecord(1, "Dated", "2020-06")
	rec.ArrivalDate = pdate.MustNew(2020, 7, 2)
	_, err := s.WriteRecord(ctx, "", rec)
	require.NoError(t, err)
	_, err = s.WriteRecord(ctx, "", createTestRecord(2, "Undated", ""))
	require.NoError(t, err)

	var (
		pText            string
		pYear, pMonth    int
		pDay             *int
		aText            string
		aYear, aMonth, a int
	)
	err = s.db.QueryRow(`
		SELECT purchase_date, purchase_year, purchase_month, purchase_day,
		       arrival_date, arrival_year, arrival_month, arrival_day
		FROM records WHERE id = 1
	`).Scan(&pText, &pYear, &pMonth, &pDay, &aText, &aYear, &aMonth, &a)
	require.NoError(t, err)
	assert.Equal(t, "2020-06", pText)
	assert.Equal(t, 2020, pYear)
	assert.Equal(t, 6, pMonth)
	assert.Nil(t, pDay, "absent day is NULL")
	assert.Equal(t, "2020-07-02", aText)
	assert.Equal(t, 2, a)

	var year *int
	err = s.db.QueryRow(`SELECT purchase_year FROM records WHERE id = 2`).Scan(&year)
	require.NoError(t, err)
	assert.Nil(t, year, "absent date is NULL")
}

func TestReadRecord_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := catalog.Record{
		ID:           5,
		ISBN13:       "9780306406157",
		ISBN10:       "0306406152",
		Title:        "Round Trip",
		Authors:      []catalog.Author{{Surname: "Smith", GivenNames: []string{"Ann"}}},
		PurchaseDate: pdate.MustNew(2019, 12, 31),
		Dimensions:   catalog.Dimensions{Height: 21, Mass: 0.35},
	}
	_, err := s.WriteRecord(ctx, "", want)
	require.NoError(t, err)

	got, err := s.ReadRecord(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadRecord_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRecord(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRecords_OrderedByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		_, err := s.WriteRecord(ctx, "", createTestRecord(id, "r", ""))
		require.NoError(t, err)
	}

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(records))
}

func TestListRecords_Empty(t *testing.T) {
	s := createTestStore(t)

	records, err := s.ListRecords(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestDeleteRecord(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRecord(ctx, "", createTestRecord(1, "Gone", ""))
	require.NoError(t, err)
	require.NoError(t, s.DeleteRecord(ctx, 1))
	require.NoError(t, s.DeleteRecord(ctx, 1), "missing id is not an error")

	_, err = s.ReadRecord(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func seedDates(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	dates := map[int64]string{
		1: "2019",
		2: "2020-06",
		3: "2020-06-15",
		4: "2021",
		5: "",
		6: "2020",
		7: "2022-01-01",
	}
	for id, d := range dates {
		_, err := s.WriteRecord(ctx, "", createTestRecord(id, "r", d))
		require.NoError(t, err)
	}
}

func TestQueryByDate(t *testing.T) {
	s := createTestStore(t)
	seedDates(t, s)

	tests := []struct {
		name  string
		typ   string
		bound string
		until string
		want  []int64
	}{
		{"between years", "between", "2020", "2021", []int64{2, 3, 6}},
		{"before year", "before", "2020", "", []int64{1, 5}},
		{"before month", "before", "2020-06", "", []int64{1, 5, 6}},
		{"after year", "after", "2020", "", []int64{4, 7}},
		{"on year", "on", "2020", "", []int64{2, 3, 6}},
		{"on month", "in", "2020-06", "", []int64{2, 3}},
		{"on day", "on", "2020-06-15", "", []int64{3}},
		{"not year", "not", "2020", "", []int64{1, 4, 5, 7}},
		{"between days", "between", "2020-06-15", "2022-01-01", []int64{3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := datefilter.Parse(tt.typ, tt.bound, tt.until)
			require.NoError(t, err)

			records, err := s.QueryByDate(context.Background(), catalog.PurchaseDate, p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(records))
		})
	}
}

func TestQueryByDate_MatchesInMemoryFilter(t *testing.T) {
	s := createTestStore(t)
	seedDates(t, s)
	ctx := context.Background()

	all, err := s.ListRecords(ctx)
	require.NoError(t, err)

	bounds := []string{"2019", "2020", "2020-06", "2020-06-15", "2021", "2022-01-01"}
	types := []datefilter.Type{datefilter.Before, datefilter.After, datefilter.On, datefilter.Not}
	for _, typ := range types {
		for _, b := range bounds {
			p, err := datefilter.New(typ, mustDate(b), pdate.Date{})
			require.NoError(t, err)

			got, err := s.QueryByDate(ctx, catalog.PurchaseDate, p)
			require.NoError(t, err)
			want := datefilter.Apply(all, p, func(r catalog.Record) pdate.Date { return r.PurchaseDate })
			assert.Equal(t, ids(want), ids(got), "%s", p)
		}
	}
}

func mustDate(s string) pdate.Date {
	d, ok := pdate.Parse(s)
	if !ok {
		panic("bad test date " + s)
	}
	return d
}

func TestQueryByDate_ArrivalField(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRecord(1, "r", "2019")
	rec.ArrivalDate = pdate.MustNew(2020, 2)
	_, err := s.WriteRecord(ctx, "", rec)
	require.NoError(t, err)

	p, err := datefilter.Parse("on", "2020", "")
	require.NoError(t, err)

	got, err := s.QueryByDate(ctx, catalog.ArrivalDate, p)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(got))

	got, err = s.QueryByDate(ctx, catalog.PurchaseDate, p)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImportRecords(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	imp := Import{ID: NewImportID(), Source: "cat.tsv", Kind: "tsv", Records: 2, CreatedAt: created}
	res, err := s.ImportRecords(ctx, imp, []catalog.Record{
		createTestRecord(1, "A", "2020"),
		createTestRecord(2, "B", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Inserted: 2}, res)

	second := Import{ID: NewImportID(), Source: "cat.tsv", Kind: "tsv", Records: 2, CreatedAt: created.Add(time.Hour)}
	res, err = s.ImportRecords(ctx, second, []catalog.Record{
		createTestRecord(1, "A", "2020"),
		createTestRecord(2, "B changed", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Updated: 1, Unchanged: 1}, res)

	got, err := s.ReadImport(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, imp, got)

	imports, err := s.ListImports(ctx)
	require.NoError(t, err)
	require.Len(t, imports, 2)
	assert.Equal(t, imp.ID, imports[0].ID, "UUIDv7 ids sort by creation")
	assert.Equal(t, second.ID, imports[1].ID)

	var importID string
	require.NoError(t, s.db.QueryRow(`SELECT import_id FROM records WHERE id = 2`).Scan(&importID))
	assert.Equal(t, second.ID, importID)
}

func TestImportRecords_RollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	imp := Import{ID: NewImportID(), Source: "bad.json", Kind: "json", CreatedAt: time.Now()}
	broken := createTestRecord(2, "Broken", "")
	broken.OpenLib = []byte(`{`)

	_, err := s.ImportRecords(ctx, imp, []catalog.Record{createTestRecord(1, "Fine", ""), broken})
	require.Error(t, err)

	n, err := s.CountRecords(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.ReadImport(ctx, imp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewImportID(t *testing.T) {
	id, err := uuid.Parse(NewImportID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestWriteImport_RequiresID(t *testing.T) {
	s := createTestStore(t)
	assert.Error(t, s.WriteImport(context.Background(), Import{Source: "x"}))
}

func TestWriteOutcomeString(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "updated", Updated.String())
	assert.Equal(t, "unchanged", Unchanged.String())
}

func TestWriteRecord_InvalidID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{0, -1} {
		_, err := s.WriteRecord(ctx, "", createTestRecord(id, "No id", ""))
		assert.ErrorIs(t, err, ErrInvalidID, "id %d", id)
	}

	n, err := s.CountRecords(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportRecords_RejectsRepeatedID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	imp := Import{ID: NewImportID(), Source: "dup.tsv", Kind: "tsv", Records: 2, CreatedAt: time.Now()}
	_, err := s.ImportRecords(ctx, imp, []catalog.Record{
		createTestRecord(3, "First", "2020"),
		createTestRecord(3, "Second", "2021"),
	})
	require.ErrorIs(t, err, ErrDuplicateID)

	n, err := s.CountRecords(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "first record is rolled back too")
}

func TestImportRecords_RejectsMissingID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	imp := Import{ID: NewImportID(), Source: "blank.tsv", Kind: "tsv", Records: 2, CreatedAt: time.Now()}
	_, err := s.ImportRecords(ctx, imp, []catalog.Record{
		createTestRecord(0, "Blank id", ""),
		createTestRecord(0, "Another blank id", ""),
	})
	require.ErrorIs(t, err, ErrInvalidID)

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestImportRecordIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := Import{ID: NewImportID(), Source: "a.json", Kind: "json", Records: 3, CreatedAt: time.Now()}
	_, err := s.ImportRecords(ctx, first, []catalog.Record{
		createTestRecord(2, "B", ""),
		createTestRecord(1, "A", ""),
		createTestRecord(3, "C", ""),
	})
	require.NoError(t, err)

	second := Import{ID: NewImportID(), Source: "a.json", Kind: "json", Records: 2, CreatedAt: time.Now()}
	_, err = s.ImportRecords(ctx, second, []catalog.Record{
		createTestRecord(1, "A", ""),
		createTestRecord(3, "C changed", ""),
	})
	require.NoError(t, err)

	ids1, err := s.ImportRecordIDs(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids1, "unchanged record keeps its import")

	ids2, err := s.ImportRecordIDs(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids2)

	none, err := s.ImportRecordIDs(ctx, "no-such-import")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}
