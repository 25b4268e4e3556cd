package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bookcat/internal/pdate"
)

// DateParseOptions holds flags for the date parse command.
type DateParseOptions struct {
	*RootOptions
	Lenient bool
}

// ParsedDate is one parse outcome. Date and Precision are empty when the
// text was rejected.
type ParsedDate struct {
	Text      string `json:"text"`
	Valid     bool   `json:"valid"`
	Date      string `json:"date,omitempty"`
	Precision string `json:"precision,omitempty"`
}

// DateParseResult holds the outcome of the date parse command.
type DateParseResult struct {
	Dates    []ParsedDate `json:"dates"`
	Rejected int          `json:"rejected"`
}

// CompareResult holds the outcome of the date compare command.
type CompareResult struct {
	Reference string `json:"reference"`
	Candidate string `json:"candidate"`
	Result    int    `json:"result"`
}

// ValidResult holds the outcome of the date valid command.
type ValidResult struct {
	Year  int  `json:"year"`
	Month *int `json:"month,omitempty"`
	Day   *int `json:"day,omitempty"`
	Valid bool `json:"valid"`
}

// NewDateCommand creates the date command and its subcommands.
func NewDateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Parse, format, compare and validate partial dates",
		Long: `Work with partial dates directly.

A partial date is YYYY, YYYY-MM or YYYY-MM-DD. Month and day may be
written with one or two digits; formatted output always pads them.`,
	}

	cmd.AddCommand(newDateParseCommand(rootOpts))
	cmd.AddCommand(newDateFormatCommand(rootOpts))
	cmd.AddCommand(newDateCompareCommand(rootOpts))
	cmd.AddCommand(newDateValidCommand(rootOpts))

	return cmd
}

func newDateParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DateParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <text>...",
		Short: "Parse date text",
		Long: `Parse each argument as a partial date and print its canonical form.

With --lenient the calendar check is skipped, so 2021-02-31 is accepted;
each component must still be well formed.

Exit codes:
  0 - Every argument parsed
  1 - At least one argument was rejected

Examples:
  bookcat date parse 2020-6 2020-06-15
  bookcat date parse --lenient 2021-02-31`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDateParse(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Lenient, "lenient", false, "skip the calendar check")

	return cmd
}

func runDateParse(opts *DateParseOptions, texts []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	parse := pdate.Parse
	if opts.Lenient {
		parse = pdate.ParseLenient
	}

	result := DateParseResult{Dates: make([]ParsedDate, 0, len(texts))}
	for _, text := range texts {
		d, ok := parse(text)
		if !ok {
			result.Dates = append(result.Dates, ParsedDate{Text: text})
			result.Rejected++
			continue
		}
		result.Dates = append(result.Dates, ParsedDate{
			Text:      text,
			Valid:     true,
			Date:      pdate.Format(d),
			Precision: d.Precision().String(),
		})
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		for _, p := range result.Dates {
			if p.Valid {
				fmt.Fprintf(w, "%s: %s (%s)\n", p.Text, p.Date, p.Precision)
			} else {
				fmt.Fprintf(w, "%s: invalid\n", p.Text)
			}
		}
	}

	if result.Rejected > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d dates rejected", result.Rejected, len(texts)))
	}
	return nil
}

func newDateFormatCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "format <year> [month [day]]",
		Short: "Format date components",
		Long: `Build a date from its components and print the canonical form.

Example:
  bookcat date format 2020 2 5    # 2020-02-05`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDateFormat(rootOpts, args, cmd)
		},
	}
}

func runDateFormat(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ints, err := atoiAll(args)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidDate, "components must be integers", err)
	}
	d, err := pdate.New(ints[0], ints[1:]...)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalidDate, fmt.Sprintf("%s is not a date", strings.Join(args, " ")), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ParsedDate{
			Text:      strings.Join(args, " "),
			Valid:     true,
			Date:      pdate.Format(d),
			Precision: d.Precision().String(),
		})
	}
	return formatter.Success(pdate.Format(d))
}

func newDateCompareCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <reference> <candidate>",
		Short: "Compare a candidate date against a reference",
		Long: `Compare a candidate date against a reference date and print -1, 0 or 1.

The comparison is directional: a reference known only to the year or
month contains every candidate inside it and compares 0, while a more
specific reference compares after a less specific candidate. An empty
argument is the absent date, which sorts before every date.

Examples:
  bookcat date compare 2020 2020-06-15     # 0
  bookcat date compare 2020-06-15 2020     # 1
  bookcat date compare "" 2020             # -1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDateCompare(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runDateCompare(opts *RootOptions, refText, candText string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ref, err := parseOptionalDate(refText)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidDate, "invalid reference", err)
	}
	cand, err := parseOptionalDate(candText)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidDate, "invalid candidate", err)
	}

	c := pdate.Compare(ref, cand)
	formatter.VerboseLog("compare %q (%s) with %q (%s)", refText, ref.Precision(), candText, cand.Precision())

	if formatter.Format == "json" {
		return formatter.Success(CompareResult{Reference: pdate.Format(ref), Candidate: pdate.Format(cand), Result: c})
	}
	return formatter.Success(c)
}

func newDateValidCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "valid <year> [month [day]]",
		Short: "Check whether components form a real date",
		Long: `Check whether the components form a real calendar date at their
precision.

Exit codes:
  0 - Valid
  1 - Not a date`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDateValid(rootOpts, args, cmd)
		},
	}
}

func runDateValid(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ints, err := atoiAll(args)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidDate, "components must be integers", err)
	}

	result := ValidResult{Year: ints[0]}
	month, day := pdate.None, pdate.None
	if len(ints) > 1 {
		month = pdate.Some(ints[1])
		result.Month = &ints[1]
	}
	if len(ints) > 2 {
		day = pdate.Some(ints[2])
		result.Day = &ints[2]
	}
	result.Valid = pdate.IsValid(pdate.Some(ints[0]), month, day)

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		status := "valid"
		if !result.Valid {
			status = "invalid"
		}
		fmt.Fprintln(formatter.Writer, status)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%s is not a date", strings.Join(args, " ")))
	}
	return nil
}

// parseOptionalDate parses text, treating "" as the absent date.
func parseOptionalDate(text string) (pdate.Date, error) {
	if text == "" {
		return pdate.Date{}, nil
	}
	d, ok := pdate.Parse(text)
	if !ok {
		return pdate.Date{}, fmt.Errorf("%q is not a date", text)
	}
	return d, nil
}

func atoiAll(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}
