package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateParse(t *testing.T) {
	stdout, _, code := runCLI(t, "date", "parse", "2020", "2020-6", "2020-06-15")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "2020: 2020 (year)\n2020-6: 2020-06 (month)\n2020-06-15: 2020-06-15 (day)\n", stdout)
}

func TestDateParse_Rejected(t *testing.T) {
	stdout, stderr, code := runCLI(t, "date", "parse", "2020-6", "2021-02-29", "0999")
	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, "2020-6: 2020-06 (month)\n2021-02-29: invalid\n0999: invalid\n", stdout)
	assert.Empty(t, stderr)
}

func TestDateParse_Lenient(t *testing.T) {
	stdout, _, code := runCLI(t, "date", "parse", "--lenient", "2021-02-31")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "2021-02-31: 2021-02-31 (day)\n", stdout)

	_, _, code = runCLI(t, "date", "parse", "--lenient", "2021-13")
	assert.Equal(t, ExitFailure, code, "components must still be well formed")
}

func TestDateParse_JSON(t *testing.T) {
	stdout, _, code := runCLI(t, "--format", "json", "date", "parse", "2020-02-29", "2021-02-29")
	assert.Equal(t, ExitFailure, code)

	var resp struct {
		Status string          `json:"status"`
		Data   DateParseResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Rejected)
	assert.Equal(t, []ParsedDate{
		{Text: "2020-02-29", Valid: true, Date: "2020-02-29", Precision: "day"},
		{Text: "2021-02-29"},
	}, resp.Data.Dates)
}

func TestDateFormat(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"2020"}, "2020\n"},
		{[]string{"2020", "2"}, "2020-02\n"},
		{[]string{"2020", "2", "5"}, "2020-02-05\n"},
		{[]string{"12345", "12", "31"}, "12345-12-31\n"},
	}
	for _, tt := range tests {
		stdout, _, code := runCLI(t, append([]string{"date", "format"}, tt.args...)...)
		assert.Equal(t, ExitSuccess, code, "%v", tt.args)
		assert.Equal(t, tt.want, stdout, "%v", tt.args)
	}
}

func TestDateFormat_Invalid(t *testing.T) {
	stdout, _, code := runCLI(t, "date", "format", "2021", "2", "29")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Error [E301]")

	stdout, _, code = runCLI(t, "date", "format", "twenty")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "components must be integers")
}

func TestDateCompare(t *testing.T) {
	tests := []struct {
		ref, cand string
		want      string
	}{
		{"2020", "2020-06-15", "0\n"},
		{"2020-06-15", "2020", "1\n"},
		{"2020-06", "2020-06-15", "0\n"},
		{"2019", "2020-01", "-1\n"},
		{"2020-03-01", "2020-02-29", "1\n"},
		{"", "2020", "-1\n"},
		{"2020", "", "1\n"},
		{"", "", "0\n"},
	}
	for _, tt := range tests {
		stdout, _, code := runCLI(t, "date", "compare", tt.ref, tt.cand)
		assert.Equal(t, ExitSuccess, code)
		assert.Equal(t, tt.want, stdout, "compare %q %q", tt.ref, tt.cand)
	}
}

func TestDateCompare_InvalidDate(t *testing.T) {
	stdout, _, code := runCLI(t, "date", "compare", "2020-13", "2020")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "invalid reference")
}

func TestDateCompare_JSON(t *testing.T) {
	stdout, _, code := runCLI(t, "--format", "json", "date", "compare", "", "2020-6")
	assert.Equal(t, ExitSuccess, code)

	var resp struct {
		Data CompareResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, CompareResult{Reference: "", Candidate: "2020-06", Result: -1}, resp.Data)
}

func TestDateValid(t *testing.T) {
	tests := []struct {
		args []string
		want string
		code int
	}{
		{[]string{"2020", "2", "29"}, "valid\n", ExitSuccess},
		{[]string{"2000", "2", "29"}, "valid\n", ExitSuccess},
		{[]string{"1900", "2", "29"}, "invalid\n", ExitFailure},
		{[]string{"2021", "4", "31"}, "invalid\n", ExitFailure},
		{[]string{"2021", "13"}, "invalid\n", ExitFailure},
		{[]string{"0"}, "invalid\n", ExitFailure},
		{[]string{"2021"}, "valid\n", ExitSuccess},
	}
	for _, tt := range tests {
		stdout, _, code := runCLI(t, append([]string{"date", "valid"}, tt.args...)...)
		assert.Equal(t, tt.code, code, "%v", tt.args)
		assert.Equal(t, tt.want, stdout, "%v", tt.args)
	}
}

func TestDateValid_JSON(t *testing.T) {
	stdout, _, code := runCLI(t, "--format", "json", "date", "valid", "2021", "2", "29")
	assert.Equal(t, ExitFailure, code)

	var resp struct {
		Data ValidResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Data.Day)
	assert.Equal(t, 29, *resp.Data.Day)
}
