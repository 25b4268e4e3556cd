package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bookcat/internal/store"
)

// ImportsOptions holds flags for the imports command.
type ImportsOptions struct {
	*RootOptions
	Database string
}

// ImportRow describes one recorded import run.
type ImportRow struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Type      string `json:"type"`
	Records   int    `json:"records"`
	Warnings  int    `json:"warnings"`
	CreatedAt string `json:"created_at"`
}

// ImportDetail is one import run and the records it last wrote.
type ImportDetail struct {
	ImportRow
	RecordIDs []int64 `json:"record_ids"`
}

func importRow(imp store.Import) ImportRow {
	return ImportRow{
		ID:        imp.ID,
		Source:    imp.Source,
		Type:      imp.Kind,
		Records:   imp.Records,
		Warnings:  imp.Warnings,
		CreatedAt: imp.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewImportsCommand creates the imports command.
func NewImportsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "imports [import-id]",
		Short: "List recorded import runs",
		Long: `List the import runs recorded in the database, oldest first.

With an import id, show that run and the ids of the records it last
wrote. Records a later import changed belong to the later run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runImportShow(opts, args[0], cmd)
			}
			return runImportsList(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runImportsList(opts *ImportsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	imports, err := st.ListImports(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list imports", err)
	}
	rows := make([]ImportRow, 0, len(imports))
	for _, imp := range imports {
		rows = append(rows, importRow(imp))
	}

	if formatter.Format == "json" {
		return formatter.Success(rows)
	}
	w := formatter.Writer
	if len(rows) == 0 {
		fmt.Fprintln(w, "No imports.")
		return nil
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d records\t%d warnings\t%s\n",
			r.ID, r.CreatedAt, r.Type, r.Records, r.Warnings, r.Source)
	}
	return nil
}

func runImportShow(opts *ImportsOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	imp, err := st.ReadImport(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("import %s not found", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read import", err)
	}
	ids, err := st.ImportRecordIDs(cmd.Context(), id)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read import records", err)
	}

	detail := ImportDetail{ImportRow: importRow(imp), RecordIDs: ids}
	if formatter.Format == "json" {
		return formatter.Success(detail)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "import:   %s\n", detail.ID)
	fmt.Fprintf(w, "source:   %s (%s)\n", detail.Source, detail.Type)
	fmt.Fprintf(w, "created:  %s\n", detail.CreatedAt)
	fmt.Fprintf(w, "records:  %d (%d warnings)\n", detail.Records, detail.Warnings)
	idText := make([]string, len(ids))
	for i, recID := range ids {
		idText[i] = fmt.Sprint(recID)
	}
	fmt.Fprintf(w, "current:  %s\n", orDash(strings.Join(idText, " ")))
	return nil
}
