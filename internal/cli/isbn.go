package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bookcat/internal/catalog"
)

// ISBNResult describes one checked ISBN. The converted forms are set only
// for valid input.
type ISBNResult struct {
	ISBN   string `json:"isbn"`
	Valid  bool   `json:"valid"`
	ISBN10 string `json:"isbn_10,omitempty"`
	ISBN13 string `json:"isbn_13,omitempty"`
}

// NewISBNCommand creates the isbn command.
func NewISBNCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "isbn <isbn>...",
		Short: "Check ISBNs and convert between 10 and 13 digits",
		Long: `Check the check digit of each ISBN and print both forms.

Hyphens and spaces are ignored. ISBN-13s must carry the 978 prefix,
which is what makes them convertible.

Exit codes:
  0 - Every ISBN is valid
  1 - At least one ISBN is invalid

Example:
  bookcat isbn 0-306-40615-2 9780804429573`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runISBN(rootOpts, args, cmd)
		},
	}
}

func runISBN(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	results := make([]ISBNResult, 0, len(args))
	invalid := 0
	for _, arg := range args {
		isbn := strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(arg))
		r := ISBNResult{ISBN: isbn, Valid: catalog.ValidISBN(isbn)}
		if r.Valid {
			r.ISBN10 = catalog.ConvertISBN(isbn, catalog.ISBN10Digits)
			r.ISBN13 = catalog.ConvertISBN(isbn, catalog.ISBN13Digits)
		} else {
			invalid++
		}
		results = append(results, r)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(w, "%s: valid (ISBN-10 %s, ISBN-13 %s)\n", r.ISBN, r.ISBN10, r.ISBN13)
			} else {
				fmt.Fprintf(w, "%s: invalid\n", r.ISBN)
			}
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d of %d ISBNs invalid", ErrCodeInvalidISBN, invalid, len(args)))
	}
	return nil
}
