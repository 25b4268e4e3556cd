package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/store"
)

// Catalogue file types.
const (
	TypeJSON  = "json"
	TypeTSV   = "tsv"
	TypeExcel = "excel"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
	Type     string
	Sheet    string
	First    int
	Last     int
	All      bool
	Strict   bool
}

// ImportSummary holds the outcome of an import.
type ImportSummary struct {
	ImportID  string   `json:"import_id"`
	Source    string   `json:"source"`
	Type      string   `json:"type"`
	Records   int      `json:"records"`
	Inserted  int      `json:"inserted"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Warnings  []string `json:"warnings,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a catalogue file into the database",
		Long: `Load a flat (TSV or Excel) or mapped (JSON) catalogue into the database.

Records are upserted by id; a record whose content is unchanged is left
alone. Cells that cannot be converted are reported as warnings and the
rest of the record is kept. With --strict the first problem aborts the
import and nothing is written.

Flat catalogues start with header lines; --first and --last select
records by 1-based number after them.

Examples:
  bookcat import --db books.db catalogue.json
  bookcat import --db books.db purchases.tsv --first 10 --last 20
  bookcat import --db books.db books.xlsx --sheet Purchases --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "catalogue type: json|tsv|excel (default from file extension)")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "Excel sheet name (default from config)")
	cmd.Flags().IntVar(&opts.First, "first", 0, "first flat record to import")
	cmd.Flags().IntVar(&opts.Last, "last", 0, "last flat record to import")
	cmd.Flags().BoolVar(&opts.All, "all", false, "import every record")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "abort on the first load problem")
	cmd.MarkFlagsMutuallyExclusive("all", "first")
	cmd.MarkFlagsMutuallyExclusive("all", "last")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	typ, err := catalogueType(opts.Type, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "cannot determine catalogue type", err)
	}
	if opts.First < 0 || opts.Last < 0 || (opts.Last > 0 && opts.Last < opts.First) {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("invalid record range %d..%d", opts.First, opts.Last), nil)
	}
	rng := catalog.Range{First: opts.First, Last: opts.Last}
	if opts.All {
		rng = catalog.All
	}
	mode := catalog.LoadModeCollectAll
	if opts.Strict {
		mode = catalog.LoadModeFailFast
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("catalogue not found: %s", path), nil)
		}
		return formatter.Fail(ExitCommandError, catalog.ErrCodeRead, "failed to open catalogue", err)
	}
	defer f.Close()

	logger.Info("loading catalogue", "path", path, "type", typ)
	var (
		records  []catalog.Record
		loadErrs []*catalog.LoadError
	)
	switch typ {
	case TypeJSON:
		records, loadErrs = catalog.ReadJSON(f, path, mode)
	case TypeTSV:
		records, loadErrs = catalog.ReadTSV(f, rng, mode)
	case TypeExcel:
		sheet := opts.Sheet
		if sheet == "" {
			sheet = opts.Config.Sheet
		}
		records, loadErrs = catalog.ReadExcel(f, sheet, rng, mode)
	}

	warnings := make([]string, 0, len(loadErrs))
	for _, le := range loadErrs {
		warnings = append(warnings, le.Error())
		logger.Warn("load problem", "code", le.Code, "message", le.Message, "record", le.Row)
	}

	if len(loadErrs) > 0 && (opts.Strict || len(records) == 0) {
		first := loadErrs[0]
		return formatter.Fail(ExitFailure, first.Code, "failed to load catalogue", first)
	}
	if len(records) == 0 {
		return formatter.Fail(ExitFailure, catalog.ErrCodeNoRecord, fmt.Sprintf("no records in %s", path), nil)
	}
	logger.Info("catalogue loaded", "records", len(records), "warnings", len(loadErrs))

	dbPath := opts.dbPath(opts.Database)
	logger.Debug("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	imp := store.Import{
		ID:        store.NewImportID(),
		Source:    filepath.Base(path),
		Kind:      typ,
		Records:   len(records),
		Warnings:  len(loadErrs),
		CreatedAt: time.Now().UTC(),
	}
	res, err := st.ImportRecords(cmd.Context(), imp, records)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to write records", err)
	}
	logger.Info("import finished", "import_id", imp.ID,
		"inserted", res.Inserted, "updated", res.Updated, "unchanged", res.Unchanged)

	summary := ImportSummary{
		ImportID:  imp.ID,
		Source:    imp.Source,
		Type:      typ,
		Records:   len(records),
		Inserted:  res.Inserted,
		Updated:   res.Updated,
		Unchanged: res.Unchanged,
		Warnings:  warnings,
	}
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Imported %d records from %s (%d inserted, %d updated, %d unchanged)\n",
		summary.Records, summary.Source, summary.Inserted, summary.Updated, summary.Unchanged)
	if len(warnings) > 0 {
		fmt.Fprintf(w, "%d warnings:\n", len(warnings))
		for _, warning := range warnings {
			fmt.Fprintf(w, "  %s\n", warning)
		}
	}
	return nil
}

// catalogueType returns explicit when set, or the type implied by path's
// extension.
func catalogueType(explicit, path string) (string, error) {
	if explicit != "" {
		switch t := strings.ToLower(explicit); t {
		case TypeJSON, TypeTSV, TypeExcel:
			return t, nil
		default:
			return "", fmt.Errorf("unknown type %q: must be json, tsv or excel", explicit)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return TypeJSON, nil
	case ".tsv", ".tab", ".txt":
		return TypeTSV, nil
	case ".xlsx", ".xlsm":
		return TypeExcel, nil
	default:
		return "", fmt.Errorf("no type for extension of %s: use --type", path)
	}
}
