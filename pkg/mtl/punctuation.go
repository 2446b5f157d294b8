package mtl

// punctuation maps the reserved punctuation fields to the text they insert.
var punctuation = map[string]string{
	"comma":        ",",
	"semicolon":    ";",
	"questionmark": "?",
	"pipe":         "|",
	"percent":      "%",
	"openbrace":    "{",
	"closebrace":   "}",
	"openparens":   "(",
	"closeparens":  ")",
	"openbracket":  "[",
	"closebracket": "]",
	"newline":      "\n",
	"lf":           "\n",
	"cr":           "\r",
	"crlf":         "\r\n",
}

// punctuationResolver resolves {comma}, {pipe} and the other punctuation fields.
type punctuationResolver struct{}

func (punctuationResolver) ResolveField(field, _ string, _ []string) ([]Value, bool, error) {
	if s, ok := punctuation[field]; ok {
		return []Value{Str(s)}, true, nil
	}
	return nil, false, nil
}
