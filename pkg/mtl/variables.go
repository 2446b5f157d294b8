package mtl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Variables holds the bindings created by {var:name,value} during one render.
type Variables struct {
	values   map[string][]string
	maxDepth int
}

// NewVariables creates an empty variable store. maxDepth bounds the number of
// expansion passes; values <= 0 use the default.
func NewVariables(maxDepth int) *Variables {
	if maxDepth <= 0 {
		maxDepth = DefaultConfig().MaxDepth
	}
	return &Variables{values: make(map[string][]string), maxDepth: maxDepth}
}

// Set binds name to values, replacing any earlier binding.
func (v *Variables) Set(name string, values []string) {
	v.values[name] = append([]string(nil), values...)
}

// Get returns the values bound to name.
func (v *Variables) Get(name string) ([]string, bool) {
	values, ok := v.values[name]
	return values, ok
}

// Expand substitutes every %name reference in text with each value bound to name,
// producing one string per combination. "%%" yields a literal '%'.
func (v *Variables) Expand(text string) ([]string, error) {
	results := []string{text}

	for pass := 0; ; pass++ {
		if pass >= v.maxDepth {
			return nil, NewSyntaxError("variable expansion of %q did not settle after %d passes", text, v.maxDepth)
		}

		var next []string
		for _, s := range results {
			expanded, err := v.expandOnce(s)
			if err != nil {
				return nil, err
			}
			next = append(next, expanded...)
		}
		// A value that refers to itself, such as "%a" bound to a, is stable.
		stable := slices.Equal(next, results)
		results = next
		if stable {
			break
		}
	}

	for i, s := range results {
		results[i] = strings.ReplaceAll(s, "%%", "%")
	}
	return results, nil
}

// ExpandSingle expands text and requires exactly one result. construct names the
// template element that needs the single value and is used in the error message.
func (v *Variables) ExpandSingle(text, construct string) (string, error) {
	values, err := v.Expand(text)
	if err != nil {
		return "", err
	}
	if len(values) != 1 {
		return "", NewSyntaxError("%s must have a single value: %q", construct, values)
	}
	return values[0], nil
}

// expandOnce replaces every reference in s in a single left to right scan.
// Escaped "%%" pairs are kept for the final unescape.
func (v *Variables) expandOnce(s string) ([]string, error) {
	if !strings.Contains(s, "%") {
		return []string{s}, nil
	}

	results := []string{""}
	appendAll := func(suffix string) {
		for i := range results {
			results[i] += suffix
		}
	}

	for i := 0; i < len(s); {
		if s[i] != '%' {
			j := strings.IndexByte(s[i:], '%')
			if j < 0 {
				j = len(s) - i
			}
			appendAll(s[i : i+j])
			i += j
			continue
		}

		if i+1 < len(s) && s[i+1] == '%' {
			appendAll("%%")
			i += 2
			continue
		}

		end := i + 1
		for end < len(s) {
			r, size := utf8.DecodeRuneInString(s[end:])
			if !isWordRune(r) {
				break
			}
			end += size
		}
		if end == i+1 {
			appendAll("%")
			i++
			continue
		}

		name := s[i+1 : end]
		values, ok := v.values[name]
		if !ok {
			return nil, NewSyntaxError("variable '%s' is not defined", name)
		}

		product := make([]string, 0, len(results)*len(values))
		for _, value := range values {
			for _, r := range results {
				product = append(product, r+value)
			}
		}
		results = product
		i = end
	}
	return results, nil
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
