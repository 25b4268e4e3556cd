package catalog

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// LoadMode controls how errors are handled while loading a catalogue.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll keeps loading and returns every error.
	LoadModeCollectAll
)

// Load error codes.
const (
	ErrCodeRead     = "E201" // Input could not be read
	ErrCodeSyntax   = "E202" // Mapped catalogue is not valid JSON
	ErrCodeSchema   = "E203" // Mapped catalogue violates the schema
	ErrCodeBadDate  = "E204" // Date cells do not form a valid date
	ErrCodeBadCell  = "E205" // Numeric cell does not parse
	ErrCodeNoSheet  = "E206" // Excel sheet not found
	ErrCodeNoRecord = "E207" // Catalogue holds no records
	ErrCodeBadID    = "E208" // Record id missing, not positive or repeated
)

// LoadError describes a problem found while loading a catalogue. Flat
// sources set Row and Column; mapped sources set Pos.
type LoadError struct {
	Code    string
	Message string
	Row     int
	Column  int
	Pos     token.Pos
}

// idIndex remembers the record number that first used each id.
type idIndex map[int64]int

// claim records id for record row, or reports that an earlier record
// already holds it.
func (x idIndex) claim(id int64, row int) *LoadError {
	if first, ok := x[id]; ok {
		return &LoadError{
			Code:    ErrCodeBadID,
			Message: fmt.Sprintf("id %d already used by record %d", id, first),
			Row:     row,
		}
	}
	x[id] = row
	return nil
}

func (e *LoadError) Error() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	case e.Row > 0 && e.Column > 0:
		return fmt.Sprintf("record %d column %d: %s: %s", e.Row, e.Column, e.Code, e.Message)
	case e.Row > 0:
		return fmt.Sprintf("record %d: %s: %s", e.Row, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}
