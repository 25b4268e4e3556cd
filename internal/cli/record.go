package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/pdate"
	"github.com/roach88/bookcat/internal/store"
)

// RecordOptions holds flags shared by the record subcommands.
type RecordOptions struct {
	*RootOptions
	Database string
}

// SetDateOptions holds flags for record set-date.
type SetDateOptions struct {
	*RecordOptions
	Field string
}

// SetDateResult holds the outcome of record set-date.
type SetDateResult struct {
	ID      int64  `json:"id"`
	Field   string `json:"field"`
	Old     string `json:"old"`
	New     string `json:"new"`
	Outcome string `json:"outcome"`
}

// NewRecordCommand creates the record command and its subcommands.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Show, edit or delete one stored record",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	cmd.AddCommand(newRecordShowCommand(opts))
	cmd.AddCommand(newRecordSetDateCommand(opts))
	cmd.AddCommand(newRecordDeleteCommand(opts))

	return cmd
}

func newRecordShowCommand(opts *RecordOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordShow(opts, args[0], cmd)
		},
	}
}

func newRecordSetDateCommand(opts *RecordOptions) *cobra.Command {
	setOpts := &SetDateOptions{RecordOptions: opts}

	cmd := &cobra.Command{
		Use:   "set-date <id> <date>",
		Short: "Replace a record's purchase or arrival date",
		Long: `Replace the purchase or arrival date of one record.

The date is YYYY, YYYY-MM or YYYY-MM-DD; "" clears it. Writing the date
the record already holds changes nothing.

Examples:
  bookcat record set-date 12 2020-06
  bookcat record set-date 12 --field arrival 2020-07-01
  bookcat record set-date 12 ""`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordSetDate(setOpts, args[0], args[1], cmd)
		},
	}
	cmd.Flags().StringVar(&setOpts.Field, "field", "", "date to set: purchase|arrival (default from config)")

	return cmd
}

func newRecordDeleteCommand(opts *RecordOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordDelete(opts, args[0], cmd)
		},
	}
}

// loadRecord opens the store and reads the record named by idText. The
// caller closes the returned store.
func (opts *RecordOptions) loadRecord(formatter *OutputFormatter, idText string, cmd *cobra.Command) (*store.Store, catalog.Record, error) {
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil || id < 1 {
		return nil, catalog.Record{}, formatter.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("invalid record id %q", idText), nil)
	}
	st, err := opts.openStore(formatter, opts.Database)
	if err != nil {
		return nil, catalog.Record{}, err
	}
	rec, err := st.ReadRecord(cmd.Context(), id)
	if err != nil {
		st.Close()
		if errors.Is(err, store.ErrNotFound) {
			return nil, catalog.Record{}, formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("record %d not found", id), nil)
		}
		return nil, catalog.Record{}, formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read record", err)
	}
	return st, rec, nil
}

func runRecordShow(opts *RecordOptions, idText string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, rec, err := opts.loadRecord(formatter, idText, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if formatter.Format == "json" {
		return formatter.Success(rec)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "id:       %d\n", rec.ID)
	fmt.Fprintf(w, "title:    %s\n", rec.Title)
	if names := rec.AuthorNames(); names != "" {
		fmt.Fprintf(w, "authors:  %s\n", names)
	}
	if rec.ISBN13 != "" || rec.ISBN10 != "" {
		fmt.Fprintf(w, "isbn:     %s %s\n", rec.ISBN13, rec.ISBN10)
	}
	fmt.Fprintf(w, "purchase: %s\n", describeDate(rec.PurchaseDate))
	fmt.Fprintf(w, "arrival:  %s\n", describeDate(rec.ArrivalDate))
	return nil
}

func describeDate(d pdate.Date) string {
	if d.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", pdate.Format(d), d.Precision())
}

func runRecordSetDate(opts *SetDateOptions, idText, dateText string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	field := opts.Config.Field
	if opts.Field != "" {
		f, err := catalog.ParseDateField(opts.Field)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid --field", err)
		}
		field = f
	}

	var date pdate.Date
	if dateText != "" {
		d, ok := pdate.Parse(dateText)
		if !ok {
			return formatter.Fail(ExitFailure, ErrCodeInvalidDate, fmt.Sprintf("invalid date %q", dateText), nil)
		}
		date = d
	}

	st, rec, err := opts.loadRecord(formatter, idText, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	old := rec.Date(field)
	result := SetDateResult{
		ID:      rec.ID,
		Field:   field.String(),
		Old:     pdate.Format(old),
		New:     pdate.Format(date),
		Outcome: store.Unchanged.String(),
	}
	if !pdate.Equal(old, date) {
		rec.SetDate(field, date)
		out, err := st.WriteRecord(cmd.Context(), "", rec)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to write record", err)
		}
		result.Outcome = out.String()
	}
	formatter.VerboseLog("record %d %s date %q -> %q", rec.ID, field, result.Old, result.New)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("Record %d %s date: %s -> %s (%s)",
		result.ID, result.Field, orDash(result.Old), orDash(result.New), result.Outcome))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runRecordDelete(opts *RecordOptions, idText string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, rec, err := opts.loadRecord(formatter, idText, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteRecord(cmd.Context(), rec.ID); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to delete record", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"id": rec.ID, "deleted": true})
	}
	return formatter.Success(fmt.Sprintf("Deleted record %d (%s)", rec.ID, rec.Title))
}
