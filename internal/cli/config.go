package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bookcat/internal/config"
)

// ConfigResult is the effective configuration and where it was read from.
type ConfigResult struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	DB     string `json:"db"`
	Format string `json:"format"`
	Field  string `json:"field"`
	Sheet  string `json:"sheet"`
}

// NewConfigCommand creates the config command and its subcommands.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration file",
		Long: `Show or write the TOML configuration file.

Settings come from defaults, then the file, then BOOKCAT_DB,
BOOKCAT_FORMAT and BOOKCAT_FIELD; command flags override all three.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(rootOpts, cmd)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(rootOpts, force, cmd)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}

func runConfigShow(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	path, err := opts.configPath()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "cannot locate config file", err)
	}
	_, statErr := os.Stat(path)

	cfg := opts.Config
	result := ConfigResult{
		Path:   path,
		Exists: statErr == nil,
		DB:     cfg.DB,
		Format: cfg.Format.String(),
		Field:  cfg.Field.String(),
		Sheet:  cfg.Sheet,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if result.Exists {
		fmt.Fprintf(w, "# %s\n", result.Path)
	} else {
		fmt.Fprintf(w, "# %s (not found, defaults)\n", result.Path)
	}
	fmt.Fprintf(w, "db = %q\nformat = %q\nfield = %q\nsheet = %q\n",
		result.DB, result.Format, result.Field, result.Sheet)
	return nil
}

func runConfigInit(opts *RootOptions, force bool, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	path, err := opts.configPath()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "cannot locate config file", err)
	}
	if _, err := os.Stat(path); err == nil && !force {
		return formatter.Fail(ExitFailure, ErrCodeConfig,
			fmt.Sprintf("config file exists: %s (use --force to overwrite)", path), nil)
	}
	if err := config.Save(path, opts.Config); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write config file", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"path": path})
	}
	return formatter.Success(fmt.Sprintf("Wrote config to %s", path))
}
