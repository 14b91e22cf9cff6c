package query

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Clause
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: "   \t ",
			want:  nil,
		},
		{
			name:  "single term",
			input: "hello",
			want:  []Clause{TermClause{Operator: OpMust, Term: "hello"}},
		},
		{
			name:  "multiple terms",
			input: "hello world",
			want: []Clause{
				TermClause{Operator: OpMust, Term: "hello"},
				TermClause{Operator: OpMust, Term: "world"},
			},
		},
		{
			name:  "explicit plus operator",
			input: "+hello",
			want:  []Clause{TermClause{Operator: OpMust, Term: "hello"}},
		},
		{
			name:  "negated term",
			input: "-spam",
			want:  []Clause{TermClause{Operator: OpMustNot, Term: "spam"}},
		},
		{
			name:  "hashtag term",
			input: "#golang",
			want:  []Clause{TermClause{Operator: OpMust, Term: "#golang"}},
		},
		{
			name:  "quoted phrase",
			input: `"exact phrase"`,
			want:  []Clause{PhraseClause{Operator: OpMust, Phrase: "exact phrase"}},
		},
		{
			name:  "negated phrase",
			input: `-"go away"`,
			want:  []Clause{PhraseClause{Operator: OpMustNot, Phrase: "go away"}},
		},
		{
			name:  "recognized prefix",
			input: "has:media",
			want:  []Clause{PrefixClause{Prefix: "has", Value: "media"}},
		},
		{
			name:  "prefix name is case insensitive",
			input: "FROM:alice",
			want:  []Clause{PrefixClause{Prefix: "from", Value: "alice"}},
		},
		{
			name:  "negated prefix",
			input: "-has:media",
			want:  []Clause{PrefixClause{Prefix: "has", Negated: true, Value: "media"}},
		},
		{
			name:  "prefix with quoted value",
			input: `from:"alice cooper"`,
			want:  []Clause{PrefixClause{Prefix: "from", Value: "alice cooper"}},
		},
		{
			name:  "unrecognized prefix degrades to literal text",
			input: "foo:bar",
			want:  []Clause{TermClause{Operator: OpMust, Term: "foo bar"}},
		},
		{
			name:  "url value keeps its colons",
			input: "foo:bar:baz",
			want:  []Clause{TermClause{Operator: OpMust, Term: "foo bar:baz"}},
		},
		{
			name:  "mixed clause kinds",
			input: `hello "exact phrase" -spam`,
			want: []Clause{
				TermClause{Operator: OpMust, Term: "hello"},
				PhraseClause{Operator: OpMust, Phrase: "exact phrase"},
				TermClause{Operator: OpMustNot, Term: "spam"},
			},
		},
		{
			name:  "directives mixed with terms",
			input: "cats from:me in:bookmark",
			want: []Clause{
				TermClause{Operator: OpMust, Term: "cats"},
				PrefixClause{Prefix: "from", Value: "me"},
				PrefixClause{Prefix: "in", Value: "bookmark"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unterminated quote",
			input: `"never closed`,
		},
		{
			name:  "unterminated quote after terms",
			input: `hello "broken`,
		},
		{
			name:  "unterminated prefix value quote",
			input: `from:"alice`,
		},
		{
			name:  "dangling operator",
			input: "hello -",
		},
		{
			name:  "prefix without value",
			input: "has:",
		},
		{
			name:  "leading colon",
			input: ":value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got none", tt.input)
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("Parse(%q) error = %v, want ErrParse", tt.input, err)
			}
		})
	}
}
