package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/datefilter"
	"github.com/roach88/bookcat/internal/pdate"
)

// Scenario is a set of rows and the checks to run against them.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Field selects the date the filters read: purchase (default) or
	// arrival.
	Field string `yaml:"field,omitempty"`

	Rows    []Row         `yaml:"rows"`
	Filters []FilterCase  `yaml:"filters,omitempty"`
	Compare []CompareCase `yaml:"compare,omitempty"`
	Parse   []ParseCase   `yaml:"parse,omitempty"`
}

// Row is one record. An empty Date is the absent date.
type Row struct {
	ID    int64  `yaml:"id"`
	Title string `yaml:"title,omitempty"`
	Date  string `yaml:"date,omitempty"`
}

// FilterCase applies one predicate and lists the ids it must admit.
type FilterCase struct {
	Type   string  `yaml:"type"`
	Date   string  `yaml:"date"`
	Until  string  `yaml:"until,omitempty"`
	Expect []int64 `yaml:"expect"`
}

// CompareCase checks one comparator call. Empty strings are absent dates.
type CompareCase struct {
	Reference string `yaml:"reference"`
	Candidate string `yaml:"candidate"`
	Expect    int    `yaml:"expect"`
}

// ParseCase checks one parse. Expect is the formatted result, or empty
// when the text must be rejected.
type ParseCase struct {
	Text    string `yaml:"text"`
	Lenient bool   `yaml:"lenient,omitempty"`
	Expect  string `yaml:"expect"`
}

// Load reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or fails validation.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses and validates a scenario.
func Decode(r io.Reader) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Field != "" {
		if _, err := catalog.ParseDateField(s.Field); err != nil {
			return err
		}
	}
	if len(s.Filters) == 0 && len(s.Compare) == 0 && len(s.Parse) == 0 {
		return fmt.Errorf("at least one of filters, compare or parse is required")
	}
	if len(s.Filters) > 0 && len(s.Rows) == 0 {
		return fmt.Errorf("filters need rows")
	}

	seen := make(map[int64]bool, len(s.Rows))
	for i, row := range s.Rows {
		if row.ID < 1 {
			return fmt.Errorf("rows[%d]: id must be positive", i)
		}
		if seen[row.ID] {
			return fmt.Errorf("rows[%d]: duplicate id %d", i, row.ID)
		}
		seen[row.ID] = true
		if _, err := dateOrAbsent(row.Date); err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
	}

	for i, f := range s.Filters {
		if _, err := datefilter.Parse(f.Type, f.Date, f.Until); err != nil {
			return fmt.Errorf("filters[%d]: %w", i, err)
		}
		for _, id := range f.Expect {
			if !seen[id] {
				return fmt.Errorf("filters[%d]: expected id %d is not a row", i, id)
			}
		}
	}

	for i, c := range s.Compare {
		if _, err := dateOrAbsent(c.Reference); err != nil {
			return fmt.Errorf("compare[%d]: reference: %w", i, err)
		}
		if _, err := dateOrAbsent(c.Candidate); err != nil {
			return fmt.Errorf("compare[%d]: candidate: %w", i, err)
		}
		if c.Expect < -1 || c.Expect > 1 {
			return fmt.Errorf("compare[%d]: expect must be -1, 0 or 1", i)
		}
	}
	return nil
}

// dateOrAbsent parses s, treating "" as the absent date.
func dateOrAbsent(s string) (pdate.Date, error) {
	if s == "" {
		return pdate.Date{}, nil
	}
	d, ok := pdate.Parse(s)
	if !ok {
		return pdate.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// field returns the date the filters read; purchase when unset.
func (s *Scenario) field() (catalog.DateField, error) {
	if s.Field == "" {
		return catalog.PurchaseDate, nil
	}
	return catalog.ParseDateField(s.Field)
}
