package query

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrParse is wrapped by every parser error. Callers match it with
// errors.Is and fall back to a plain text search; the parser never
// recovers partially.
var ErrParse = errors.New("query parse error")

// recognizedPrefixes is the fixed set of name: directives. Anything else
// written as name:value degrades to literal text.
var recognizedPrefixes = map[string]bool{
	"has":      true,
	"is":       true,
	"language": true,
	"from":     true,
	"before":   true,
	"after":    true,
	"during":   true,
	"in":       true,
}

// Parse tokenizes and parses raw query text into an ordered clause list.
// An empty or all-whitespace input yields an empty list.
func Parse(text string) ([]Clause, error) {
	p := &parser{input: []rune(text)}

	var clauses []Clause
	for {
		p.skipSpaces()
		if p.eof() {
			return clauses, nil
		}
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
}

type parser struct {
	input []rune
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() rune {
	return p.input[p.pos]
}

func (p *parser) skipSpaces() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.pos++
	}
}

// parseClause reads one clause: an optional +/- operator followed by a
// phrase, a prefix directive, or a bare term.
func (p *parser) parseClause() (Clause, error) {
	op := OpMust
	negated := false

	if c := p.peek(); c == '+' || c == '-' {
		p.pos++
		if c == '-' {
			op = OpMustNot
			negated = true
		}
		if p.eof() || unicode.IsSpace(p.peek()) {
			return nil, fmt.Errorf("%w: operator %q without operand", ErrParse, c)
		}
	}

	if p.peek() == '"' {
		phrase, err := p.parsePhrase()
		if err != nil {
			return nil, err
		}
		return PhraseClause{Operator: op, Phrase: phrase}, nil
	}

	word := p.readBare()
	if word == "" {
		return nil, fmt.Errorf("%w: unexpected character %q", ErrParse, p.peek())
	}

	if !p.eof() && p.peek() == ':' {
		p.pos++ // consume ':'

		var value string
		if !p.eof() && p.peek() == '"' {
			phrase, err := p.parsePhrase()
			if err != nil {
				return nil, err
			}
			value = phrase
		} else {
			value = p.readValue()
		}
		if value == "" {
			return nil, fmt.Errorf("%w: prefix %q has no value", ErrParse, word)
		}

		name := strings.ToLower(word)
		if recognizedPrefixes[name] {
			return PrefixClause{Prefix: name, Negated: negated, Value: value}, nil
		}

		// Unrecognized prefix: search for the literal text instead.
		return TermClause{Operator: op, Term: word + " " + value}, nil
	}

	return TermClause{Operator: op, Term: word}, nil
}

// parsePhrase consumes an opening quote and reads up to the closing one.
func (p *parser) parsePhrase() (string, error) {
	p.pos++ // consume '"'
	start := p.pos
	for !p.eof() {
		if p.peek() == '"' {
			phrase := string(p.input[start:p.pos])
			p.pos++ // consume closing '"'
			return phrase, nil
		}
		p.pos++
	}
	return "", fmt.Errorf("%w: unterminated quote", ErrParse)
}

// readBare reads a token up to whitespace, a quote, or a colon.
func (p *parser) readBare() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if unicode.IsSpace(c) || c == '"' || c == ':' {
			break
		}
		p.pos++
	}
	return string(p.input[start:p.pos])
}

// readValue reads a prefix value up to whitespace or a quote. Colons are
// allowed so values like URLs stay intact.
func (p *parser) readValue() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if unicode.IsSpace(c) || c == '"' {
			break
		}
		p.pos++
	}
	return string(p.input[start:p.pos])
}
