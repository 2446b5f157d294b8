package mtl

import (
	"fmt"
	"sort"
	"strings"
)

// HelpEntry describes one field or filter for help output.
type HelpEntry struct {
	Name        string
	Description string
}

var punctuationOrder = []string{
	"comma", "semicolon", "questionmark", "pipe", "percent",
	"openbrace", "closebrace", "openparens", "closeparens",
	"openbracket", "closebracket", "newline", "lf", "cr", "crlf",
}

var punctuationAliases = map[string]string{
	"lf": "alias for {newline}",
}

// PunctuationHelp lists the punctuation fields.
func PunctuationHelp() []HelpEntry {
	entries := make([]HelpEntry, 0, len(punctuationOrder))
	for _, name := range punctuationOrder {
		desc := fmt.Sprintf("Inserts '%s'", strings.Trim(fmt.Sprintf("%q", punctuation[name]), `"`))
		if alias, ok := punctuationAliases[name]; ok {
			desc += ", " + alias
		}
		entries = append(entries, HelpEntry{Name: "{" + name + "}", Description: desc})
	}
	return entries
}

// FormatHelp lists the {strip} and {format} pseudo-fields.
func FormatHelp() []HelpEntry {
	return []HelpEntry{
		{
			Name:        "{strip}",
			Description: "Use in form '{strip,TEMPLATE}'; strips whitespace from beginning and end of rendered TEMPLATE value(s).",
		},
		{
			Name:        "{format}",
			Description: "Use in form '{format:TYPE:FORMAT,TEMPLATE}'; converts TEMPLATE value to TYPE then formats the value using the format codes in FORMAT; TYPE is one of 'int', 'float' or 'str'.",
		},
	}
}

// FilterHelp lists the built-in filters in declaration order.
func FilterHelp() []HelpEntry {
	defs := builtinFilters()
	entries := make([]HelpEntry, 0, len(filterOrder))
	for _, name := range filterOrder {
		def := defs[name]
		display := name
		switch def.arg {
		case argRequired:
			display = name + "(x)"
		case argOptional:
			display = name + "([x])"
		}
		entries = append(entries, HelpEntry{Name: display, Description: def.help})
	}
	return entries
}

// OperatorHelp lists the conditional operators alphabetically.
func OperatorHelp() []HelpEntry {
	descriptions := map[Operator]string{
		OpContains:   "Field contains value; '|' separates alternatives.",
		OpMatches:    "Field matches value exactly; '|' separates alternatives.",
		OpStartsWith: "Field starts with value; '|' separates alternatives.",
		OpEndsWith:   "Field ends with value; '|' separates alternatives.",
		OpEqual:      "Field values equal the value list, in any order.",
		OpNotEqual:   "Field values differ from the value list.",
		OpLess:       "Any field value is numerically less than value.",
		OpLessEq:     "Any field value is numerically less than or equal to value.",
		OpGreater:    "Any field value is numerically greater than value.",
		OpGreaterEq:  "Any field value is numerically greater than or equal to value.",
	}
	ops := Operators()
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	entries := make([]HelpEntry, 0, len(ops))
	for _, op := range ops {
		entries = append(entries, HelpEntry{Name: string(op), Description: descriptions[op]})
	}
	return entries
}
