package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/datefilter"
	"github.com/roach88/bookcat/internal/pdate"
	"github.com/roach88/bookcat/internal/store"
)

// Check is the outcome of one filter, compare or parse case.
type Check struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Got  string `json:"got"`
	Want string `json:"want"`
	Pass bool   `json:"pass"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Name   string  `json:"name"`
	Pass   bool    `json:"pass"`
	Checks []Check `json:"checks"`
}

func (r *Result) add(c Check) {
	r.Checks = append(r.Checks, c)
	if !c.Pass {
		r.Pass = false
	}
}

// Failures returns the checks that did not pass.
func (r *Result) Failures() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Pass {
			out = append(out, c)
		}
	}
	return out
}

// Report renders the result as stable text, one line per check.
func (r *Result) Report() string {
	var b strings.Builder
	status := "pass"
	if !r.Pass {
		status = "fail"
	}
	fmt.Fprintf(&b, "scenario %s: %s\n", r.Name, status)
	for _, c := range r.Checks {
		if c.Pass {
			fmt.Fprintf(&b, "  %s %s: %s ok\n", c.Kind, c.Name, c.Got)
		} else {
			fmt.Fprintf(&b, "  %s %s: %s FAIL (want %s)\n", c.Kind, c.Name, c.Got, c.Want)
		}
	}
	return b.String()
}

// Runner executes scenarios.
type Runner struct {
	logger *slog.Logger
}

// NewRunner returns a runner logging to logger; nil discards logs.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger}
}

// Run executes a scenario with a discarding logger.
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	return NewRunner(nil).Run(ctx, s)
}

// Run executes every case of s. Each run uses a fresh in-memory store.
// A returned error means the scenario could not be run, for example a row
// or compare date that does not parse; failed checks are reported in the
// Result.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Result, error) {
	result := &Result{Name: s.Name, Pass: true, Checks: []Check{}}

	if len(s.Filters) > 0 {
		if err := r.runFilters(ctx, s, result); err != nil {
			return nil, err
		}
	}

	for i, c := range s.Compare {
		ref, err := dateOrAbsent(c.Reference)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: compare[%d]: reference: %w", s.Name, i, err)
		}
		cand, err := dateOrAbsent(c.Candidate)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: compare[%d]: candidate: %w", s.Name, i, err)
		}
		got := pdate.Compare(ref, cand)
		result.add(Check{
			Kind: "compare",
			Name: fmt.Sprintf("%q %q", c.Reference, c.Candidate),
			Got:  fmt.Sprint(got),
			Want: fmt.Sprint(c.Expect),
			Pass: got == c.Expect,
		})
	}

	for _, c := range s.Parse {
		parse, kind := pdate.Parse, "parse"
		if c.Lenient {
			parse, kind = pdate.ParseLenient, "parse lenient"
		}
		got := "rejected"
		if d, ok := parse(c.Text); ok {
			got = pdate.Format(d)
		}
		want := c.Expect
		if want == "" {
			want = "rejected"
		}
		result.add(Check{
			Kind: kind,
			Name: fmt.Sprintf("%q", c.Text),
			Got:  got,
			Want: want,
			Pass: got == want,
		})
	}

	r.logger.Debug("scenario finished", "name", s.Name, "checks", len(result.Checks), "pass", result.Pass)
	return result, nil
}

func (r *Runner) runFilters(ctx context.Context, s *Scenario, result *Result) error {
	field, err := s.field()
	if err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	records := make([]catalog.Record, 0, len(s.Rows))
	for i, row := range s.Rows {
		d, err := dateOrAbsent(row.Date)
		if err != nil {
			return fmt.Errorf("scenario %s: rows[%d]: %w", s.Name, i, err)
		}
		rec := catalog.Record{ID: row.ID, Title: row.Title}
		if field == catalog.ArrivalDate {
			rec.ArrivalDate = d
		} else {
			rec.PurchaseDate = d
		}
		records = append(records, rec)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	imp := store.Import{ID: store.NewImportID(), Source: s.Name, Kind: "scenario", Records: len(records), CreatedAt: time.Now()}
	if _, err := st.ImportRecords(ctx, imp, records); err != nil {
		return fmt.Errorf("scenario %s: load rows: %w", s.Name, err)
	}

	for _, f := range s.Filters {
		p, err := datefilter.Parse(f.Type, f.Date, f.Until)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		stored, err := st.QueryByDate(ctx, field, p)
		if err != nil {
			return fmt.Errorf("scenario %s: query %s: %w", s.Name, p, err)
		}
		got := recordIDs(stored)
		inMemory := recordIDs(datefilter.Apply(records, p, func(rec catalog.Record) pdate.Date { return rec.Date(field) }))
		slices.Sort(inMemory)

		want := slices.Clone(f.Expect)
		if want == nil {
			want = []int64{}
		}
		slices.Sort(want)

		check := Check{
			Kind: "filter",
			Name: p.String(),
			Got:  fmt.Sprint(got),
			Want: fmt.Sprint(want),
			Pass: slices.Equal(got, want),
		}
		if !slices.Equal(got, inMemory) {
			check.Pass = false
			check.Want = fmt.Sprintf("%v (in memory %v)", want, inMemory)
		}
		r.logger.Debug("filter", "predicate", p.String(), "got", got, "pass", check.Pass)
		result.add(check)
	}
	return nil
}

func recordIDs(records []catalog.Record) []int64 {
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids
}
