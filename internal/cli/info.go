package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions
	Database string
}

// InfoResult summarises a catalogue database.
type InfoResult struct {
	Database      string     `json:"database"`
	SchemaVersion int        `json:"schema_version"`
	Records       int        `json:"records"`
	Imports       int        `json:"imports"`
	LastImport    *ImportRow `json:"last_import,omitempty"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Summarise the catalogue database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runInfo(opts *InfoOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := opts.openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	result := InfoResult{Database: opts.dbPath(opts.Database)}
	if result.SchemaVersion, err = st.SchemaVersion(ctx); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read schema version", err)
	}
	if result.Records, err = st.CountRecords(ctx); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to count records", err)
	}
	imports, err := st.ListImports(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list imports", err)
	}
	result.Imports = len(imports)
	if len(imports) > 0 {
		last := importRow(imports[len(imports)-1])
		result.LastImport = &last
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "database: %s\n", result.Database)
	fmt.Fprintf(w, "schema:   v%d\n", result.SchemaVersion)
	fmt.Fprintf(w, "records:  %d\n", result.Records)
	if result.LastImport != nil {
		fmt.Fprintf(w, "imports:  %d (last %s from %s)\n", result.Imports, result.LastImport.CreatedAt, result.LastImport.Source)
	} else {
		fmt.Fprintf(w, "imports:  0\n")
	}
	return nil
}
