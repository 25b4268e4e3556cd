package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaVal  cue.Value
	schemaErr  error
)

// catalogueSchema compiles the embedded schema once.
func catalogueSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile catalogue schema: %w", err)
			return
		}
		schemaVal = v.LookupPath(cue.ParsePath("#Catalogue"))
	})
	return schemaCtx, schemaVal, schemaErr
}

// CheckSchema validates a mapped catalogue document against the embedded
// CUE schema. filename is only used in error positions.
func CheckSchema(data []byte, filename string) []*LoadError {
	ctx, schema, err := catalogueSchema()
	if err != nil {
		return []*LoadError{{Code: ErrCodeSchema, Message: err.Error()}}
	}
	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return cueLoadErrors(ErrCodeSyntax, err)
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return cueLoadErrors(ErrCodeSyntax, err)
	}
	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return cueLoadErrors(ErrCodeSchema, err)
	}
	return nil
}

// cueLoadErrors converts CUE errors, keeping the first position of each.
func cueLoadErrors(code string, err error) []*LoadError {
	var out []*LoadError
	for _, e := range cueerrors.Errors(err) {
		le := &LoadError{Code: code, Message: e.Error()}
		if pos := cueerrors.Positions(e); len(pos) > 0 {
			le.Pos = pos[len(pos)-1]
		}
		out = append(out, le)
	}
	if len(out) == 0 {
		out = append(out, &LoadError{Code: code, Message: err.Error()})
	}
	return out
}

// ReadJSON loads a mapped catalogue. The document is checked against the
// schema first; a schema failure returns no records. Records whose values
// still fail to decode (an impossible date, say) are skipped and reported,
// or abort the load in LoadModeFailFast. So are records repeating the id
// of an earlier record.
func ReadJSON(r io.Reader, filename string, mode LoadMode) ([]Record, []*LoadError) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, []*LoadError{{Code: ErrCodeRead, Message: fmt.Sprintf("reading %s: %v", filename, err)}}
	}
	if errs := CheckSchema(data, filename); len(errs) > 0 {
		if mode == LoadModeFailFast {
			return nil, errs[:1]
		}
		return nil, errs
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, []*LoadError{{Code: ErrCodeSyntax, Message: err.Error()}}
	}

	var (
		records []Record
		errs    []*LoadError
	)
	ids := idIndex{}
	for i, raw := range raws {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadDate, Message: err.Error(), Row: i + 1})
			if mode == LoadModeFailFast {
				return records, errs
			}
			continue
		}
		if le := ids.claim(rec.ID, i+1); le != nil {
			errs = append(errs, le)
			if mode == LoadModeFailFast {
				return records, errs
			}
			continue
		}
		records = append(records, Normalize(rec))
	}
	return records, errs
}

// WriteJSON writes records as an indented mapped catalogue.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode mapped catalogue: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write mapped catalogue: %w", err)
	}
	return nil
}
