package query

import (
	"fmt"
	"regexp"
	"strings"
)

// identPattern restricts table and column names, which cannot be bound as
// parameters.
var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Compile converts a Select into SQL and its parameters. The result always
// ends in ORDER BY id so callers see rows in a deterministic order.
func Compile(s Select) (string, []any, error) {
	if err := checkIdent(s.From); err != nil {
		return "", nil, fmt.Errorf("compile select: table: %w", err)
	}

	columns := "*"
	if len(s.Columns) > 0 {
		for _, c := range s.Columns {
			if err := checkIdent(c); err != nil {
				return "", nil, fmt.Errorf("compile select: column: %w", err)
			}
		}
		columns = strings.Join(s.Columns, ", ")
	}

	var (
		where  string
		params []any
	)
	if s.Filter != nil {
		sql, p, err := compilePredicate(s.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		where = " WHERE " + sql
		params = p
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id ASC", columns, s.From, where)
	return sql, params, nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case Compare:
		return compileCompare(pred)
	case *Compare:
		return compileCompare(*pred)
	case IsNull:
		if err := checkIdent(pred.Column); err != nil {
			return "", nil, err
		}
		return pred.Column + " IS NULL", nil, nil
	case *IsNull:
		return compilePredicate(*pred)
	case And:
		return compileJunction(pred.Predicates, " AND ", "1 = 1")
	case *And:
		return compileJunction(pred.Predicates, " AND ", "1 = 1")
	case Or:
		return compileJunction(pred.Predicates, " OR ", "1 = 0")
	case *Or:
		return compileJunction(pred.Predicates, " OR ", "1 = 0")
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileCompare(c Compare) (string, []any, error) {
	if err := checkIdent(c.Column); err != nil {
		return "", nil, err
	}
	switch c.Op {
	case OpEQ, OpLT, OpLE, OpGT, OpGE:
	default:
		return "", nil, fmt.Errorf("unsupported operator %q", c.Op)
	}
	if c.Value == nil {
		return "", nil, fmt.Errorf("compare %s: nil value, use IsNull", c.Column)
	}
	return fmt.Sprintf("%s %s ?", c.Column, c.Op), []any{c.Value}, nil
}

// compileJunction joins predicates with sep. empty is used for an empty
// list. Parts are parenthesised so nesting keeps its meaning.
func compileJunction(preds []Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}
	parts := make([]string, 0, len(preds))
	var params []any
	for _, p := range preds {
		sql, ps, err := compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	if len(parts) == 1 {
		return parts[0], params, nil
	}
	return "(" + strings.Join(parts, sep) + ")", params, nil
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}
