package scenario

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Testdata(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, path := range paths {
		s, err := Load(path)
		require.NoError(t, err)

		t.Run(s.Name, func(t *testing.T) {
			result := RunWithGolden(t, s)
			assert.True(t, result.Pass, result.Report())
			assert.Empty(t, result.Failures())
		})
	}
}

func TestRun_ReportsFailures(t *testing.T) {
	s, err := Decode(strings.NewReader(`
name: wrong_expectations
description: "Every check expects the wrong answer"
rows:
  - id: 1
    date: "2020"
  - id: 2
    date: "2021"
filters:
  - type: on
    date: "2020"
    expect: [2]
compare:
  - reference: "2020-06"
    candidate: "2020"
    expect: 0
parse:
  - text: "2021-02-29"
    expect: "2021-02-29"
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Failures(), 3)

	want := `scenario wrong_expectations: fail
  filter on 2020: [1] FAIL (want [2])
  compare "2020-06" "2020": 1 FAIL (want 0)
  parse "2021-02-29": rejected FAIL (want 2021-02-29)
`
	assert.Equal(t, want, result.Report())
}

func TestRun_EmptyExpectation(t *testing.T) {
	s, err := Decode(strings.NewReader(`
name: nothing_matches
description: "A filter admitting no rows"
rows:
  - id: 1
    date: "2020"
filters:
  - type: after
    date: "2020"
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	require.Len(t, result.Checks, 1)
	assert.Equal(t, "[]", result.Checks[0].Got)
}

func TestRun_AbsentDatesPassBeforeAndNot(t *testing.T) {
	s, err := Decode(strings.NewReader(`
name: absent_rows
description: "Rows without a date"
rows:
  - id: 1
  - id: 2
    date: "2020-01-01"
filters:
  - type: before
    date: "2020"
    expect: [1]
  - type: not
    date: "2020"
    expect: [1]
  - type: on
    date: "2020"
    expect: [2]
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Report())
}

func TestRunner_Logs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := Decode(strings.NewReader(`
name: logged
description: "Runner logs each filter"
rows:
  - id: 1
    date: "2020"
filters:
  - type: on
    date: "2020"
    expect: [1]
`))
	require.NoError(t, err)

	_, err = NewRunner(logger).Run(context.Background(), s)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "scenario finished")
	assert.Contains(t, buf.String(), `predicate="on 2020"`)
}

func TestRun_RejectsUnparsedDates(t *testing.T) {
	tests := []struct {
		name    string
		s       *Scenario
		wantErr string
	}{
		{
			name: "row date",
			s: &Scenario{
				Name:    "built",
				Rows:    []Row{{ID: 1, Date: "2020-13"}},
				Filters: []FilterCase{{Type: "on", Date: "2020"}},
			},
			wantErr: `rows[0]: invalid date "2020-13"`,
		},
		{
			name: "compare reference",
			s: &Scenario{
				Name:    "built",
				Compare: []CompareCase{{Reference: "2020-13", Candidate: "2020"}},
			},
			wantErr: `compare[0]: reference: invalid date "2020-13"`,
		},
		{
			name: "compare candidate",
			s: &Scenario{
				Name:    "built",
				Compare: []CompareCase{{Reference: "2020", Candidate: "2021-02-29"}},
			},
			wantErr: `compare[0]: candidate: invalid date "2021-02-29"`,
		},
		{
			name: "field",
			s: &Scenario{
				Name:    "built",
				Field:   "shipped",
				Rows:    []Row{{ID: 1}},
				Filters: []FilterCase{{Type: "on", Date: "2020"}},
			},
			wantErr: "shipped",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(context.Background(), tt.s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, result)
		})
	}
}
