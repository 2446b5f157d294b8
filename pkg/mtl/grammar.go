package mtl

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Operator is a conditional comparison operator
type Operator string

const (
	OpContains   Operator = "contains"
	OpMatches    Operator = "matches"
	OpStartsWith Operator = "startswith"
	OpEndsWith   Operator = "endswith"
	OpEqual      Operator = "=="
	OpNotEqual   Operator = "!="
	OpLess       Operator = "<"
	OpLessEq     Operator = "<="
	OpGreater    Operator = ">"
	OpGreaterEq  Operator = ">="
)

// grammar holds the character classes and keyword tables used by the parser.
type grammar struct {
	// operators sorted longest first so "<=" wins over "<"
	operators []Operator
	// delimExcluded may not appear in a "DELIM+" prefix
	delimExcluded string
	// subfieldExcluded ends a subfield (whitespace ends it too)
	subfieldExcluded string
	negation         string
	assignment       string
}

var (
	grammarOnce     sync.Once
	grammarInstance *grammar
)

// mtlGrammar returns the process-wide grammar tables, building them on first use.
func mtlGrammar() *grammar {
	grammarOnce.Do(func() {
		ops := []Operator{
			OpContains, OpMatches, OpStartsWith, OpEndsWith,
			OpEqual, OpNotEqual, OpLessEq, OpGreaterEq, OpLess, OpGreater,
		}
		sort.SliceStable(ops, func(i, j int) bool { return len(ops[i]) > len(ops[j]) })
		grammarInstance = &grammar{
			operators:        ops,
			delimExcluded:    "{}+|[]?",
			subfieldExcluded: "{}|[?,",
			negation:         "not",
			assignment:       "var",
		}
	})
	return grammarInstance
}

// Operators returns the supported conditional operators.
func Operators() []Operator {
	ops := mtlGrammar().operators
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

func (g *grammar) isFieldChar(r byte) bool {
	return r == '_' || r == '.' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func (g *grammar) isFilterChar(r byte) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func (g *grammar) isDelimChar(r rune) bool {
	return !strings.ContainsRune(g.delimExcluded, r)
}

func (g *grammar) isSubfieldChar(r rune) bool {
	return !strings.ContainsRune(g.subfieldExcluded, r) && !unicode.IsSpace(r)
}

// matchOperator returns the operator at the start of s, if any.
func (g *grammar) matchOperator(s string) (Operator, bool) {
	for _, op := range g.operators {
		if strings.HasPrefix(s, string(op)) {
			return op, true
		}
	}
	return "", false
}
