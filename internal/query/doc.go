// Package query compiles record selections into parameterised SQLite.
//
// A date filter cannot be evaluated exactly in SQL: a partial date's
// position relative to another depends on which components are present.
// Instead, ForDate derives a coarse year-column prefilter that admits a
// superset of the rows the exact predicate admits. The store runs the
// prefilter and applies the exact predicate to what comes back.
//
// Predicate is a sealed interface; only types in this package implement it.
//
//	Select{
//	  From:    "records",
//	  Columns: []string{"id", "body"},
//	  Filter:  And{Predicates: []Predicate{
//	    Compare{Column: "purchase_year", Op: OpGE, Value: 2020},
//	    Compare{Column: "purchase_year", Op: OpLE, Value: 2021},
//	  }},
//	}
//
// compiles to
//
//	SELECT id, body FROM records
//	WHERE (purchase_year >= ? AND purchase_year <= ?)
//	ORDER BY id ASC
//
// Every compiled query carries an ORDER BY on id so results are stable.
// Values are always bound as parameters, never interpolated.
package query
