package mtl

// Value is a single resolved field value. The zero Value is null.
type Value struct {
	String string
	Valid  bool
}

// Str returns a non-null value.
func Str(s string) Value {
	return Value{String: s, Valid: true}
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Strs wraps each string as a non-null value.
func Strs(values ...string) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = Str(v)
	}
	return out
}

// Model is the parsed form of a template string. It is not modified after parsing.
type Model struct {
	Pieces []Piece
}

// Piece is literal text optionally surrounding one template expression.
type Piece struct {
	Pre      string
	Template *Template
	Post     string
}

// Template is one {...} expression.
type Template struct {
	// Delim is set when the expression starts with "DELIM+". An empty delimiter joins
	// values with nothing.
	Delim       *string
	Field       string
	Subfield    string
	Filters     []Filter
	FindReplace []FindReplace
	Conditional *Conditional
	Bool        *Model
	Default     *Model
}

// Filter is one "|name" or "|name(arg)" entry.
type Filter struct {
	Name   string
	Arg    string
	HasArg bool
}

// FindReplace is one find,replace pair from a [..] block.
type FindReplace struct {
	Find    string
	Replace string
}

// Conditional is a "[not] OPERATOR VALUE" test.
type Conditional struct {
	Operator Operator
	Negate   bool
	Value    *Model
}

// IsEmpty reports whether the model contains no text and no expressions.
func (m *Model) IsEmpty() bool {
	if m == nil {
		return true
	}
	for _, p := range m.Pieces {
		if p.Pre != "" || p.Post != "" || p.Template != nil {
			return false
		}
	}
	return true
}

// Fields returns the field names of the top-level expressions in order of appearance.
func (m *Model) Fields() []string {
	if m == nil {
		return nil
	}
	var fields []string
	for _, p := range m.Pieces {
		if p.Template != nil && p.Template.Field != "" {
			fields = append(fields, p.Template.Field)
		}
	}
	return fields
}

// IsVariableReference reports whether the field is a "%name" lookup.
func (t *Template) IsVariableReference() bool {
	return len(t.Field) > 1 && t.Field[0] == '%'
}

// IsVariableAssignment reports whether the expression is "{var:name,value}".
func (t *Template) IsVariableAssignment() bool {
	return t.Field == "var"
}
