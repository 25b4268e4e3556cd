package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/datefilter"
	"github.com/roach88/bookcat/internal/pdate"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	Database string
	Field    string
	Type     string
	Date     string
	Until    string
}

// FilterRow is one matching record.
type FilterRow struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Title   string `json:"title"`
	Authors string `json:"authors,omitempty"`
}

// FilterResult holds the outcome of the filter command.
type FilterResult struct {
	Field     string      `json:"field"`
	Predicate string      `json:"predicate"`
	Count     int         `json:"count"`
	Records   []FilterRow `json:"records"`
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List records whose date passes a filter",
		Long: `List stored records whose purchase or arrival date passes a filter.

Filter types:
  before   dates before the bound (records without a date included)
  after    dates after the bound
  on, in   dates the bound contains: "on 2020" admits 2020-06-15
  not      dates the bound does not contain (records without a date included)
  between  from --date (contained) up to anything --until contains, excluded

Exit codes:
  0 - At least one record matched
  1 - No record matched, or the filter is invalid
  2 - Command error

Examples:
  bookcat filter --db books.db --type between --date 2020 --until 2021
  bookcat filter --db books.db --field arrival --type on --date 2024-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Field, "field", "", "date to filter on: purchase|arrival (default from config)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "filter type: before|after|on|not|between (required)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "filter bound (required)")
	cmd.Flags().StringVar(&opts.Until, "until", "", "upper bound for between")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func runFilter(opts *FilterOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	field := opts.Config.Field
	if opts.Field != "" {
		f, err := catalog.ParseDateField(opts.Field)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidFilter, "invalid --field", err)
		}
		field = f
	}

	p, err := datefilter.Parse(opts.Type, opts.Date, opts.Until)
	if err != nil {
		code := ErrCodeInvalidFilter
		if errors.Is(err, datefilter.ErrInvalidBound) {
			code = ErrCodeInvalidDate
		}
		return formatter.Fail(ExitFailure, code, "invalid filter", err)
	}

	st, err := opts.openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter.VerboseLog("Filtering %s date: %s", field, p)
	records, err := st.QueryByDate(cmd.Context(), field, p)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to query records", err)
	}

	result := FilterResult{
		Field:     field.String(),
		Predicate: p.String(),
		Count:     len(records),
		Records:   make([]FilterRow, 0, len(records)),
	}
	for _, rec := range records {
		result.Records = append(result.Records, FilterRow{
			ID:      rec.ID,
			Date:    pdate.Format(rec.Date(field)),
			Title:   rec.Title,
			Authors: rec.AuthorNames(),
		})
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, row := range result.Records {
			fmt.Fprintf(w, "%d\t%s\t%s\n", row.ID, row.Date, row.Title)
		}
		if result.Count == 0 {
			fmt.Fprintln(w, "No matching records.")
		}
	}

	if result.Count == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: no records %s", ErrCodeNoMatch, p))
	}
	return nil
}
