package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bookcat/internal/catalog"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Type     string
	Sheet    string
	Output   string
}

// ExportSummary holds the outcome of an export to a file.
type ExportSummary struct {
	Path    string `json:"path"`
	Type    string `json:"type"`
	Records int    `json:"records"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored catalogue",
		Long: `Write every stored record, in id order, as a mapped (JSON), flat (TSV)
or Excel catalogue.

Without -o the catalogue is written to stdout. Excel output needs -o.

Examples:
  bookcat export --db books.db > catalogue.json
  bookcat export --db books.db --type tsv -o purchases.tsv
  bookcat export --db books.db --type excel -o books.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Type, "type", TypeJSON, "catalogue type: json|tsv|excel")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "Excel sheet name (default from config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	typ, err := catalogueType(opts.Type, "")
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid --type", err)
	}
	if typ == TypeExcel && opts.Output == "" {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "excel export needs -o", nil)
	}

	st, err := opts.openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListRecords(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read records", err)
	}
	formatter.VerboseLog("Exporting %d records as %s", len(records), typ)

	var buf bytes.Buffer
	switch typ {
	case TypeJSON:
		err = catalog.WriteJSON(&buf, records)
	case TypeTSV:
		if err = catalog.WriteTSVHeader(&buf, "Book catalogue"); err == nil {
			err = catalog.WriteTSV(&buf, records)
		}
	case TypeExcel:
		sheet := opts.Sheet
		if sheet == "" {
			sheet = opts.Config.Sheet
		}
		err = catalog.WriteExcel(&buf, sheet, records)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to encode catalogue", err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write output", err)
	}

	summary := ExportSummary{Path: opts.Output, Type: typ, Records: len(records)}
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	return formatter.Success(fmt.Sprintf("Exported %d records to %s", summary.Records, summary.Path))
}
