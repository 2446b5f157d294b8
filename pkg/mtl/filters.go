package mtl

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FilterHandler handles filters the engine does not know. arg is nil when the
// filter was used without parentheses. A handler that does not recognize name
// returns ErrUnhandledFilter.
type FilterHandler func(name string, arg *string, values []string) ([]string, error)

type argMode int

const (
	argNone argMode = iota
	argOptional
	argRequired
)

type filterDef struct {
	name  string
	arg   argMode
	help  string
	apply func(arg string, values []string) ([]string, error)
}

var (
	filterRegistry     map[string]*filterDef
	filterOrder        []string
	filterRegistryOnce sync.Once
)

func builtinFilters() map[string]*filterDef {
	filterRegistryOnce.Do(func() {
		filterRegistry = make(map[string]*filterDef)
		for _, def := range []*filterDef{
			{name: "lower", help: "Convert value to lower case, e.g. 'Value' => 'value'.", apply: caseFilter(func() cases.Caser { return cases.Lower(language.Und) })},
			{name: "upper", help: "Convert value to upper case, e.g. 'Value' => 'VALUE'.", apply: caseFilter(func() cases.Caser { return cases.Upper(language.Und) })},
			{name: "strip", help: "Strip whitespace from beginning/end of value, e.g. ' Value ' => 'Value'.", apply: mapFilter(strings.TrimSpace)},
			{name: "titlecase", help: "Convert value to title case, e.g. 'my value' => 'My Value'.", apply: caseFilter(func() cases.Caser { return cases.Title(language.Und) })},
			{name: "capitalize", help: "Capitalize first word of value and convert other words to lower case, e.g. 'MY VALUE' => 'My value'.", apply: capitalize},
			{name: "braces", help: "Enclose value in curly braces, e.g. 'value => '{value}'.", apply: mapFilter(func(s string) string { return "{" + s + "}" })},
			{name: "parens", help: "Enclose value in parentheses, e.g. 'value' => '(value)'.", apply: mapFilter(func(s string) string { return "(" + s + ")" })},
			{name: "brackets", help: "Enclose value in brackets, e.g. 'value' => '[value]'.", apply: mapFilter(func(s string) string { return "[" + s + "]" })},
			{name: "shell_quote", help: "Quotes the value for safe usage in the shell, e.g. My file.jpeg => 'My file.jpeg'; only adds quotes if needed.", apply: mapFilter(func(s string) string { return shellquote.Join(s) })},
			{name: "split", arg: argRequired, help: "Split values into a list of values using delim, e.g. 'value1;value2' => ['value1', 'value2'] if used with split(;).", apply: split},
			{name: "autosplit", help: "Automatically split delimited string into separate values; splits on comma, semicolon and whitespace, e.g. 'value1,value2 value3' => ['value1', 'value2', 'value3'].", apply: autosplit},
			{name: "chop", arg: argRequired, help: "Remove x characters off the end of value, e.g. chop(1): 'Value' => 'Valu'.", apply: chop},
			{name: "chomp", arg: argRequired, help: "Remove x characters from the beginning of value, e.g. chomp(1): ['Value'] => ['alue'].", apply: chomp},
			{name: "sort", help: "Sort list of values, e.g. ['c', 'b', 'a'] => ['a', 'b', 'c'].", apply: sortValues(false)},
			{name: "rsort", help: "Sort list of values in reverse order, e.g. ['a', 'b', 'c'] => ['c', 'b', 'a'].", apply: sortValues(true)},
			{name: "reverse", help: "Reverse order of values, e.g. ['a', 'b', 'c'] => ['c', 'b', 'a'].", apply: reverse},
			{name: "uniq", help: "Remove duplicate values, e.g. ['a', 'b', 'c', 'b', 'a'] => ['a', 'b', 'c'].", apply: uniq},
			{name: "join", arg: argOptional, help: "Join list of values with delimiter, e.g. join(:): ['a', 'b', 'c'] => 'a:b:c'; the DELIM is optional and defaults to ''.", apply: join},
			{name: "append", arg: argRequired, help: "Append x to list of values, e.g. append(d): ['a', 'b', 'c'] => ['a', 'b', 'c', 'd'].", apply: appendValue},
			{name: "prepend", arg: argRequired, help: "Prepend x to list of values, e.g. prepend(d): ['a', 'b', 'c'] => ['d', 'a', 'b', 'c'].", apply: prependValue},
			{name: "remove", arg: argRequired, help: "Remove x from list of values, e.g. remove(b): ['a', 'b', 'c'] => ['a', 'c'].", apply: removeValue},
			{name: "slice", arg: argRequired, help: "Slice list using same semantics as Python's list slicing, e.g. slice(1:3): ['a', 'b', 'c', 'd'] => ['b', 'c']; slice(1:4:2): ['a', 'b', 'c', 'd'] => ['b', 'd']; slice(1:): ['a', 'b', 'c', 'd'] => ['b', 'c', 'd']; slice(:-1): ['a', 'b', 'c', 'd'] => ['a', 'b', 'c']; slice(::-1): ['a', 'b', 'c', 'd'] => ['d', 'c', 'b', 'a'].", apply: sliceValues},
			{name: "sslice", arg: argRequired, help: "[start:stop:step] Slice a string using same semantics as Python's string slicing, e.g. sslice(1:3):'abcd => 'bc'; sslice(1:4:2): 'abcd' => 'bd', etc.", apply: sliceStrings},
		} {
			filterRegistry[def.name] = def
			filterOrder = append(filterOrder, def.name)
		}
	})
	return filterRegistry
}

// applyFilter runs one filter over values. arg has already been
// variable-expanded; hasArg reports whether parentheses were present.
func applyFilter(name string, arg string, hasArg bool, values []string, handler FilterHandler) ([]string, error) {
	def, ok := builtinFilters()[name]
	if !ok {
		if handler == nil {
			return nil, NewSyntaxError("unhandled filter: %s", name)
		}
		var argp *string
		if hasArg {
			argp = &arg
		}
		out, err := handler(name, argp, values)
		if errors.Is(err, ErrUnhandledFilter) {
			return nil, NewSyntaxError("unhandled filter: %s", name)
		}
		return out, err
	}

	switch def.arg {
	case argNone:
		if hasArg {
			return nil, NewSyntaxError("filter %s does not take an argument", name)
		}
	case argRequired:
		if !hasArg || arg == "" {
			return nil, NewSyntaxError("filter %s requires an argument", name)
		}
	}
	return def.apply(arg, values)
}

func mapFilter(fn func(string) string) func(string, []string) ([]string, error) {
	return func(_ string, values []string) ([]string, error) {
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = fn(v)
		}
		return out, nil
	}
}

// caseFilter builds a fresh Caser per call since casers keep state.
func caseFilter(newCaser func() cases.Caser) func(string, []string) ([]string, error) {
	return func(_ string, values []string) ([]string, error) {
		c := newCaser()
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = c.String(v)
		}
		return out, nil
	}
}

func capitalize(_ string, values []string) ([]string, error) {
	lower := cases.Lower(language.Und)
	upper := cases.Title(language.Und)
	out := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(v)
		out[i] = upper.String(v[:size]) + lower.String(v[size:])
	}
	return out, nil
}

func split(delim string, values []string) ([]string, error) {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, delim)...)
	}
	return out, nil
}

func autosplit(_ string, values []string) ([]string, error) {
	var out []string
	for _, v := range values {
		v = strings.NewReplacer(",", " ", ";", " ").Replace(v)
		out = append(out, strings.Fields(v)...)
	}
	return out, nil
}

func chop(arg string, values []string) ([]string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return nil, NewSyntaxError("invalid value for chop: %s", arg)
	}
	if n == 0 {
		return values, nil
	}
	stop := -n
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = sliceString(v, sliceSpec{stop: &stop})
	}
	return out, nil
}

func chomp(arg string, values []string) ([]string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return nil, NewSyntaxError("invalid value for chomp: %s", arg)
	}
	if n == 0 {
		return values, nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = sliceString(v, sliceSpec{start: &n})
	}
	return out, nil
}

func sortValues(descending bool) func(string, []string) ([]string, error) {
	return func(_ string, values []string) ([]string, error) {
		out := append([]string(nil), values...)
		if descending {
			sort.Sort(sort.Reverse(sort.StringSlice(out)))
		} else {
			sort.Strings(out)
		}
		return out, nil
	}
}

func reverse(_ string, values []string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		out[len(values)-1-i] = v
	}
	return out, nil
}

func uniq(_ string, values []string) ([]string, error) {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func join(sep string, values []string) ([]string, error) {
	return []string{strings.Join(values, sep)}, nil
}

func appendValue(arg string, values []string) ([]string, error) {
	return append(append([]string(nil), values...), arg), nil
}

func prependValue(arg string, values []string) ([]string, error) {
	return append([]string{arg}, values...), nil
}

func removeValue(arg string, values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != arg {
			out = append(out, v)
		}
	}
	return out, nil
}

func sliceValues(arg string, values []string) ([]string, error) {
	spec, err := parseSliceSpec(arg)
	if err != nil {
		return nil, err
	}
	indices := spec.indices(len(values))
	out := make([]string, 0, len(indices))
	for _, i := range indices {
		out = append(out, values[i])
	}
	return out, nil
}

func sliceStrings(arg string, values []string) ([]string, error) {
	spec, err := parseSliceSpec(arg)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = sliceString(v, spec)
	}
	return out, nil
}

// sliceSpec is a start:stop:step slice where nil bounds are omitted.
type sliceSpec struct {
	start, stop, step *int
}

// parseSliceSpec parses "start:stop:step"; a lone "start" means "start:".
func parseSliceSpec(arg string) (sliceSpec, error) {
	var spec sliceSpec
	parts := strings.Split(strings.TrimSpace(arg), ":")
	if len(parts) > 3 {
		return spec, NewSyntaxError("invalid slice: %s", arg)
	}

	targets := []**int{&spec.start, &spec.stop, &spec.step}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return spec, NewSyntaxError("invalid slice: %s", arg)
		}
		*targets[i] = &n
	}
	if spec.step != nil && *spec.step == 0 {
		return spec, NewSyntaxError("slice step cannot be zero: %s", arg)
	}
	return spec, nil
}

// indices returns the selected positions of a sequence of the given length,
// clamping bounds and counting negative indices from the end.
func (s sliceSpec) indices(length int) []int {
	step := 1
	if s.step != nil {
		step = *s.step
	}

	lower, upper := 0, length
	if step < 0 {
		lower, upper = -1, length-1
	}

	bound := func(p *int, def int) int {
		if p == nil {
			return def
		}
		i := *p
		if i < 0 {
			i += length
			if i < lower {
				i = lower
			}
		} else if i > upper {
			i = upper
		}
		return i
	}

	var start, stop int
	if step > 0 {
		start, stop = bound(s.start, lower), bound(s.stop, upper)
	} else {
		start, stop = bound(s.start, upper), bound(s.stop, lower)
	}

	var out []int
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, i)
	}
	return out
}

func sliceString(v string, spec sliceSpec) string {
	runes := []rune(v)
	var b strings.Builder
	for _, i := range spec.indices(len(runes)) {
		b.WriteRune(runes[i])
	}
	return b.String()
}
