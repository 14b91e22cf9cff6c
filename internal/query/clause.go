// Package query implements the search query language: a recursive-descent
// parser producing typed clauses, and a transformer turning clauses into a
// backend-ready query descriptor.
package query

import "strings"

// Operator is the inclusion mode of a clause.
type Operator int

const (
	// OpMust is the default: the clause must match.
	OpMust Operator = iota
	// OpMustNot excludes matches ('-' operator).
	OpMustNot
)

func (o Operator) String() string {
	if o == OpMustNot {
		return "must_not"
	}
	return "must"
}

// Clause is one parsed fragment of a query.
type Clause interface {
	clause()
}

// TermClause is a bare word (or #tag).
type TermClause struct {
	Operator Operator
	Term     string
}

// PhraseClause is a quoted multi-word sequence.
type PhraseClause struct {
	Operator Operator
	Phrase   string
}

// PrefixClause is a name:value directive. Prefix is already lowercased
// and guaranteed to be one of the recognized names; unrecognized prefixes
// never reach this type, they degrade to a TermClause at parse time.
type PrefixClause struct {
	Prefix  string
	Negated bool
	Value   string
}

func (TermClause) clause()   {}
func (PhraseClause) clause() {}
func (PrefixClause) clause() {}

// QueryText returns the text a term contributes to the free-text query.
// Hashtags are searched by name, so the leading '#' is stripped.
func (c TermClause) QueryText() string {
	return strings.TrimPrefix(c.Term, "#")
}

// QueryText returns the phrase re-quoted for the backend.
func (c PhraseClause) QueryText() string {
	return `"` + c.Phrase + `"`
}
