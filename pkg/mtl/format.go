package mtl

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// formatSpecRegex matches [[fill]align][sign][#][0][width][grouping][.precision][type]
var formatSpecRegex = regexp.MustCompile(`^(?:(.)?([<>=^]))?([-+ ])?(#)?(0)?(\d+)?([,_])?(?:\.(\d+))?([bcdeEfFgGnosxX%])?$`)

// FormatSpec is a parsed format specification.
type FormatSpec struct {
	Fill      rune
	Align     byte
	Sign      byte
	Alternate bool
	Zero      bool
	Width     int
	Grouping  byte
	Precision int // -1 when not given
	Type      byte
}

// ParseFormatSpec parses a format specification such as "03d", "-^10" or "10.4f".
func ParseFormatSpec(spec string) (*FormatSpec, error) {
	m := formatSpecRegex.FindStringSubmatch(spec)
	if m == nil {
		return nil, NewSyntaxError("invalid format specifier %q", spec)
	}

	fs := &FormatSpec{Fill: ' ', Precision: -1}
	if m[1] != "" {
		fs.Fill, _ = utf8.DecodeRuneInString(m[1])
	}
	if m[2] != "" {
		fs.Align = m[2][0]
	}
	if m[3] != "" {
		fs.Sign = m[3][0]
	}
	fs.Alternate = m[4] != ""
	fs.Zero = m[5] != ""
	if m[6] != "" {
		fs.Width, _ = strconv.Atoi(m[6])
	}
	if m[7] != "" {
		fs.Grouping = m[7][0]
	}
	if m[8] != "" {
		fs.Precision, _ = strconv.Atoi(m[8])
	}
	if m[9] != "" {
		fs.Type = m[9][0]
	}

	if fs.Zero && fs.Align == 0 {
		fs.Fill = '0'
		fs.Align = '='
	}
	return fs, nil
}

// FormatValue converts value to typ ("int", "float" or "str") and formats it with spec.
func FormatValue(typ, spec, value string) (string, error) {
	fs, err := ParseFormatSpec(spec)
	if err != nil {
		return "", err
	}

	switch typ {
	case "int":
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return "", NewSyntaxError("cannot convert %q to int", value)
		}
		return fs.formatInt(n)
	case "float":
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return "", NewSyntaxError("cannot convert %q to float", value)
		}
		return fs.formatFloat(f)
	case "str":
		return fs.formatString(value)
	default:
		return "", NewSyntaxError("'%s' is not a valid type for {format}: must be one of 'int', 'float', 'str'", typ)
	}
}

func (fs *FormatSpec) formatString(s string) (string, error) {
	if fs.Type != 0 && fs.Type != 's' {
		return "", NewSyntaxError("unknown format code '%c' for str", fs.Type)
	}
	f := *fs
	if f.Zero && f.Align == '=' && f.Fill == '0' {
		f.Align = '<'
	}
	if f.Sign != 0 || f.Alternate || f.Grouping != 0 || f.Align == '=' {
		return "", NewSyntaxError("invalid format specifier for str")
	}
	if f.Precision >= 0 && utf8.RuneCountInString(s) > f.Precision {
		s = string([]rune(s)[:f.Precision])
	}
	return f.pad("", s, '<'), nil
}

func (fs *FormatSpec) formatInt(n int64) (string, error) {
	switch fs.Type {
	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		return fs.formatFloat(float64(n))
	case 's':
		return "", NewSyntaxError("unknown format code 's' for int")
	}
	if fs.Precision >= 0 {
		return "", NewSyntaxError("precision not allowed in integer format specifier")
	}

	negative := n < 0
	abs := uint64(n)
	if negative {
		abs = uint64(-n)
	}

	var digits, prefix string
	groupEvery := 3
	switch fs.Type {
	case 'b':
		digits, prefix, groupEvery = strconv.FormatUint(abs, 2), "0b", 4
	case 'o':
		digits, prefix, groupEvery = strconv.FormatUint(abs, 8), "0o", 4
	case 'x':
		digits, prefix, groupEvery = strconv.FormatUint(abs, 16), "0x", 4
	case 'X':
		digits, prefix, groupEvery = strings.ToUpper(strconv.FormatUint(abs, 16)), "0X", 4
	case 'c':
		if fs.Sign != 0 || fs.Alternate {
			return "", NewSyntaxError("sign not allowed with integer format code 'c'")
		}
		return fs.pad("", string(rune(n)), '>'), nil
	default:
		digits = strconv.FormatUint(abs, 10)
	}
	if !fs.Alternate {
		prefix = ""
	}
	if fs.Grouping == ',' && groupEvery != 3 {
		return "", NewSyntaxError("cannot specify ',' with '%c'", fs.Type)
	}
	if fs.Grouping != 0 {
		digits = group(digits, fs.Grouping, groupEvery)
	}

	return fs.pad(fs.signOf(negative)+prefix, digits, '>'), nil
}

func (fs *FormatSpec) formatFloat(f float64) (string, error) {
	switch fs.Type {
	case 'b', 'c', 'd', 'o', 'x', 'X', 's':
		return "", NewSyntaxError("unknown format code '%c' for float", fs.Type)
	}

	negative := math.Signbit(f) && !math.IsNaN(f)
	abs := math.Abs(f)
	upper := fs.Type == 'E' || fs.Type == 'F' || fs.Type == 'G'

	var body string
	switch {
	case math.IsInf(abs, 0):
		body = "inf"
	case math.IsNaN(abs):
		body = "nan"
	default:
		body = fs.floatBody(abs)
	}
	if upper {
		body = strings.ToUpper(body)
	}

	if fs.Grouping != 0 {
		intPart, rest := body, ""
		if i := strings.IndexAny(body, ".e%"); i >= 0 {
			intPart, rest = body[:i], body[i:]
		}
		if isDigits(intPart) {
			body = group(intPart, fs.Grouping, 3) + rest
		}
	}

	return fs.pad(fs.signOf(negative), body, '>'), nil
}

func (fs *FormatSpec) floatBody(abs float64) string {
	prec := fs.Precision
	switch fs.Type {
	case 'f', 'F':
		if prec < 0 {
			prec = 6
		}
		s := strconv.FormatFloat(abs, 'f', prec, 64)
		if fs.Alternate && prec == 0 {
			s += "."
		}
		return s
	case 'e', 'E':
		if prec < 0 {
			prec = 6
		}
		s := strconv.FormatFloat(abs, 'e', prec, 64)
		if fs.Alternate && prec == 0 {
			s = strings.Replace(s, "e", ".e", 1)
		}
		return s
	case '%':
		if prec < 0 {
			prec = 6
		}
		s := strconv.FormatFloat(abs*100, 'f', prec, 64)
		if fs.Alternate && prec == 0 {
			s += "."
		}
		return s + "%"
	case 'g', 'G', 'n':
		if prec < 0 {
			prec = 6
		}
		if prec == 0 {
			prec = 1
		}
		return strconv.FormatFloat(abs, 'g', prec, 64)
	default:
		if prec >= 0 {
			if prec == 0 {
				prec = 1
			}
			s := strconv.FormatFloat(abs, 'g', prec, 64)
			if !strings.ContainsAny(s, ".e") {
				s += ".0"
			}
			return s
		}
		return floatRepr(abs)
	}
}

// floatRepr renders the shortest representation that round-trips, always
// with a fractional part or an exponent: 42 -> "42.0", 1e16 -> "1e+16".
func floatRepr(abs float64) string {
	if abs != 0 {
		exp := math.Floor(math.Log10(abs))
		if exp < -4 || exp >= 16 {
			return strconv.FormatFloat(abs, 'e', -1, 64)
		}
	}
	s := strconv.FormatFloat(abs, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (fs *FormatSpec) signOf(negative bool) string {
	if negative {
		return "-"
	}
	switch fs.Sign {
	case '+':
		return "+"
	case ' ':
		return " "
	}
	return ""
}

// pad applies fill, alignment and width. sign is placed before the fill when
// aligning with '='.
func (fs *FormatSpec) pad(sign, body string, defaultAlign byte) string {
	length := utf8.RuneCountInString(sign) + utf8.RuneCountInString(body)
	if fs.Width <= length {
		return sign + body
	}

	padding := fs.Width - length
	fill := string(fs.Fill)
	align := fs.Align
	if align == 0 {
		align = defaultAlign
	}

	switch align {
	case '<':
		return sign + body + strings.Repeat(fill, padding)
	case '^':
		left := padding / 2
		return strings.Repeat(fill, left) + sign + body + strings.Repeat(fill, padding-left)
	case '=':
		return sign + strings.Repeat(fill, padding) + body
	default:
		return strings.Repeat(fill, padding) + sign + body
	}
}

func group(digits string, sep byte, every int) string {
	if len(digits) <= every {
		return digits
	}
	var b strings.Builder
	first := len(digits) % every
	if first > 0 {
		b.WriteString(digits[:first])
	}
	for i := first; i < len(digits); i += every {
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(digits[i : i+every])
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// formatResolver handles the {strip,TEMPLATE} and {format:TYPE:SPEC,TEMPLATE}
// pseudo-fields. The format spec may reference variables of the current render.
type formatResolver struct {
	vars *Variables
}

func (r formatResolver) ResolveField(field, subfield string, defaults []string) ([]Value, bool, error) {
	switch field {
	case "strip":
		values := make([]Value, len(defaults))
		for i, d := range defaults {
			values[i] = Str(strings.TrimSpace(d))
		}
		return values, true, nil

	case "format":
		typ, spec, ok := strings.Cut(subfield, ":")
		if !ok {
			return nil, true, NewSyntaxError("{format} requires subfield in form TYPE:FORMAT, got %q", subfield)
		}
		if typ != "int" && typ != "float" && typ != "str" {
			return nil, true, NewSyntaxError("'%s' is not a valid type for {format}: must be one of 'int', 'float', 'str'", typ)
		}
		spec, err := r.vars.ExpandSingle(spec, "{format} format string")
		if err != nil {
			return nil, true, err
		}
		values := make([]Value, 0, len(defaults))
		for _, d := range defaults {
			s, err := FormatValue(typ, spec, d)
			if err != nil {
				return nil, true, err
			}
			values = append(values, Str(s))
		}
		return values, true, nil
	}
	return nil, false, nil
}
