package query

// Predicate is a WHERE condition.
type Predicate interface {
	predicateNode()
}

// Op is a comparison operator.
type Op string

const (
	OpEQ Op = "="
	OpLT Op = "<"
	OpLE Op = "<="
	OpGT Op = ">"
	OpGE Op = ">="
)

// Select reads Columns from a table. A nil Filter selects every row.
type Select struct {
	From    string
	Columns []string
	Filter  Predicate
}

// Compare is "column op value".
type Compare struct {
	Column string
	Op     Op
	Value  any
}

// IsNull is "column IS NULL".
type IsNull struct {
	Column string
}

// And holds when all predicates hold. An empty And is true.
type And struct {
	Predicates []Predicate
}

// Or holds when any predicate holds. An empty Or is false.
type Or struct {
	Predicates []Predicate
}

func (Compare) predicateNode() {}
func (IsNull) predicateNode()  {}
func (And) predicateNode()     {}
func (Or) predicateNode()      {}
