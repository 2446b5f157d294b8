package mtl

import (
	"sort"
	"strconv"
	"strings"
)

type operatorKind int

const (
	stringOperator operatorKind = iota
	multisetOperator
	numericOperator
)

type operatorSpec struct {
	kind    operatorKind
	strTest func(value, candidate string) bool
	setTest func(equal bool) bool
	numTest func(value, candidate float64) bool
}

var operatorTable = map[Operator]operatorSpec{
	OpContains:   {kind: stringOperator, strTest: strings.Contains},
	OpMatches:    {kind: stringOperator, strTest: func(v, c string) bool { return v == c }},
	OpStartsWith: {kind: stringOperator, strTest: strings.HasPrefix},
	OpEndsWith:   {kind: stringOperator, strTest: strings.HasSuffix},
	OpEqual:      {kind: multisetOperator, setTest: func(equal bool) bool { return equal }},
	OpNotEqual:   {kind: multisetOperator, setTest: func(equal bool) bool { return !equal }},
	OpLess:       {kind: numericOperator, numTest: func(v, c float64) bool { return v < c }},
	OpLessEq:     {kind: numericOperator, numTest: func(v, c float64) bool { return v <= c }},
	OpGreater:    {kind: numericOperator, numTest: func(v, c float64) bool { return v > c }},
	OpGreaterEq:  {kind: numericOperator, numTest: func(v, c float64) bool { return v >= c }},
}

// EvaluateCondition applies operator to the field values and the rendered
// comparison values. It returns ["True"] when the test passes and an empty list
// when it fails.
func EvaluateCondition(op Operator, negate bool, values, comparison []string) ([]string, error) {
	spec, ok := operatorTable[op]
	if !ok {
		return nil, NewSyntaxError("unknown conditional operator %q", op)
	}

	var match bool
	switch spec.kind {
	case stringOperator:
		var candidates []string
		for _, c := range comparison {
			candidates = append(candidates, strings.Split(c, "|")...)
		}
		match = anyMatch(values, candidates, spec.strTest)

	case multisetOperator:
		match = spec.setTest(sameMultiset(values, comparison))

	case numericOperator:
		if len(comparison) != 1 {
			return nil, NewSyntaxError("comparison operators may only be used with a single conditional value: %q", comparison)
		}
		target, err := parseNumber(comparison[0])
		if err != nil {
			return nil, NewSyntaxError("comparison operators may only be used with values that can be converted to numbers: %q %q", values, comparison)
		}
		for _, v := range values {
			n, err := parseNumber(v)
			if err != nil {
				return nil, NewSyntaxError("comparison operators may only be used with values that can be converted to numbers: %q %q", values, comparison)
			}
			if spec.numTest(n, target) {
				match = true
			}
		}
	}

	if match != negate {
		return []string{"True"}, nil
	}
	return []string{}, nil
}

func anyMatch(values, candidates []string, test func(string, string) bool) bool {
	for _, c := range candidates {
		for _, v := range values {
			if test(v, c) {
				return true
			}
		}
	}
	return false
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
