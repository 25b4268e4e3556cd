// Package scenario runs date filter scenarios described in YAML.
//
// # Scenario Format
//
//	name: between_years
//	description: "Rows dated 2020 pass between 2020 and 2021"
//	field: purchase
//	rows:
//	  - id: 1
//	    date: "2019"
//	  - id: 2
//	    date: "2020-06"
//	  - id: 3            # no date: the absent date
//	filters:
//	  - type: between
//	    date: "2020"
//	    until: "2021"
//	    expect: [2]
//	compare:
//	  - reference: "2020"
//	    candidate: "2020-06"
//	    expect: 0
//	parse:
//	  - text: "2021-02-29"
//	    expect: ""       # rejected
//	  - text: "2021-02-29"
//	    lenient: true
//	    expect: "2021-02-29"
//
// Each row becomes a catalogue record stored in a fresh in-memory store.
// A filter passes when the store query returns exactly the expected ids,
// in id order, and agrees with filtering the rows in memory.
//
// Unknown YAML fields are rejected so typos do not silently skip checks.
package scenario
