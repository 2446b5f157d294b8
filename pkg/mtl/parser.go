package mtl

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse parses a template string into a Model using the global configuration's
// nesting limit.
func Parse(text string) (*Model, error) {
	return parse(text, GetGlobalConfig().MaxDepth)
}

func parse(text string, maxDepth int) (*Model, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultConfig().MaxDepth
	}
	p := &parser{text: text, g: mtlGrammar(), maxDepth: maxDepth}

	model, err := p.parseStatement("", 0)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.text) {
		// only a stray '}' stops a top-level statement early
		return nil, p.errorf("unexpected '%c'", p.text[p.pos])
	}

	logger := GetLogger()
	if logger.IsDebugMode() {
		logger.WithFields(Fields{
			"pieces": len(model.Pieces),
			"fields": strings.Join(model.Fields(), ","),
		}).Debug("Parsed template %q", text)
		logger.DebugPieces(model)
	}
	return model, nil
}

type parser struct {
	text     string
	pos      int
	g        *grammar
	maxDepth int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return NewTemplateSyntaxError(fmt.Sprintf(format, args...), p.text, p.pos)
}

func (p *parser) eof() bool {
	return p.pos >= len(p.text)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.text[p.pos]
}

// parseStatement reads literal text and templates until one of the terminator
// bytes (left unconsumed), a '}' or the end of input.
func (p *parser) parseStatement(terminators string, depth int) (*Model, error) {
	if depth > p.maxDepth {
		return nil, p.errorf("template nesting exceeds maximum depth of %d", p.maxDepth)
	}

	model := &Model{}
	var literal strings.Builder

	for !p.eof() {
		c := p.text[p.pos]
		if strings.IndexByte(terminators, c) >= 0 || c == '}' {
			break
		}
		if c == '{' {
			tmpl, err := p.parseTemplate(depth)
			if err != nil {
				return nil, err
			}
			model.Pieces = append(model.Pieces, Piece{Pre: literal.String(), Template: tmpl})
			literal.Reset()
			continue
		}
		literal.WriteByte(c)
		p.pos++
	}

	if literal.Len() > 0 {
		if n := len(model.Pieces); n > 0 {
			model.Pieces[n-1].Post = literal.String()
		} else {
			model.Pieces = append(model.Pieces, Piece{Pre: literal.String()})
		}
	}
	return model, nil
}

// parseTemplate parses one {...} expression starting at the opening brace.
// A "DELIM+" prefix is tried first and abandoned if the rest does not parse.
func (p *parser) parseTemplate(depth int) (*Template, error) {
	p.pos++ // '{'
	start := p.pos

	end := start
	for end < len(p.text) {
		r, size := utf8.DecodeRuneInString(p.text[end:])
		if !p.g.isDelimChar(r) {
			break
		}
		end += size
	}

	if end < len(p.text) && p.text[end] == '+' {
		delim := p.text[start:end]
		p.pos = end + 1
		tmpl, delimErr := p.parseBody(depth, &delim)
		if delimErr == nil {
			return tmpl, nil
		}

		p.pos = start
		tmpl, err := p.parseBody(depth, nil)
		if err == nil {
			return tmpl, nil
		}
		// report whichever attempt got further
		if de, ok := delimErr.(*TemplateSyntaxError); ok {
			if e, ok := err.(*TemplateSyntaxError); ok && de.Position > e.Position {
				return nil, delimErr
			}
		}
		return nil, err
	}

	return p.parseBody(depth, nil)
}

func (p *parser) parseBody(depth int, delim *string) (*Template, error) {
	tmpl := &Template{Delim: delim}

	start := p.pos
	if p.peek() == '%' {
		p.pos++
	}
	for !p.eof() && p.g.isFieldChar(p.text[p.pos]) {
		p.pos++
	}
	tmpl.Field = p.text[start:p.pos]
	if tmpl.Field == "" || tmpl.Field == "%" {
		return nil, p.errorf("expected field name")
	}

	if p.peek() == ':' {
		p.pos++
		start = p.pos
		for !p.eof() {
			r, size := utf8.DecodeRuneInString(p.text[p.pos:])
			if !p.g.isSubfieldChar(r) {
				break
			}
			p.pos += size
		}
		if p.pos == start {
			return nil, p.errorf("expected subfield after ':'")
		}
		tmpl.Subfield = p.text[start:p.pos]
	}

	for p.peek() == '|' {
		p.pos++
		filter, err := p.parseFilter()
		if err != nil {
			return nil, err
		}
		tmpl.Filters = append(tmpl.Filters, filter)
	}

	if p.peek() == '[' {
		pairs, err := p.parseFindReplace()
		if err != nil {
			return nil, err
		}
		tmpl.FindReplace = pairs
	}

	if !p.eof() && isSpace(p.text[p.pos]) {
		cond, err := p.parseConditional(depth)
		if err != nil {
			return nil, err
		}
		tmpl.Conditional = cond
	}

	if p.peek() == '?' {
		p.pos++
		value, err := p.parseStatement(",", depth+1)
		if err != nil {
			return nil, err
		}
		tmpl.Bool = value
	}

	if p.peek() == ',' {
		p.pos++
		value, err := p.parseStatement("", depth+1)
		if err != nil {
			return nil, err
		}
		tmpl.Default = value
	}

	if p.eof() {
		return nil, p.errorf("unterminated template, expected '}'")
	}
	if p.peek() != '}' {
		return nil, p.errorf("unexpected '%c' in template, expected '}'", p.peek())
	}
	p.pos++
	return tmpl, nil
}

func (p *parser) parseFilter() (Filter, error) {
	start := p.pos
	for !p.eof() && p.g.isFilterChar(p.text[p.pos]) {
		p.pos++
	}
	filter := Filter{Name: p.text[start:p.pos]}
	if filter.Name == "" {
		return filter, p.errorf("expected filter name after '|'")
	}

	if p.peek() == '(' {
		end := strings.IndexByte(p.text[p.pos:], ')')
		if end < 0 {
			return filter, p.errorf("unterminated argument for filter %q", filter.Name)
		}
		filter.Arg = p.text[p.pos+1 : p.pos+end]
		filter.HasArg = true
		p.pos += end + 1
	}
	return filter, nil
}

func (p *parser) parseFindReplace() ([]FindReplace, error) {
	end := strings.IndexByte(p.text[p.pos:], ']')
	if end < 0 {
		return nil, p.errorf("unterminated find/replace, expected ']'")
	}
	body := p.text[p.pos+1 : p.pos+end]

	var pairs []FindReplace
	for _, pair := range strings.Split(body, "|") {
		i := strings.LastIndexByte(pair, ',')
		if i < 0 {
			return nil, p.errorf("find/replace pair %q must be in form find,replace", pair)
		}
		pairs = append(pairs, FindReplace{Find: pair[:i], Replace: pair[i+1:]})
	}
	p.pos += end + 1
	return pairs, nil
}

func (p *parser) parseConditional(depth int) (*Conditional, error) {
	p.skipSpace()
	cond := &Conditional{}

	if rest := p.text[p.pos:]; strings.HasPrefix(rest, p.g.negation) {
		after := len(p.g.negation)
		if after < len(rest) && isSpace(rest[after]) {
			p.pos += after
			p.skipSpace()
			cond.Negate = true
		}
	}

	op, ok := p.g.matchOperator(p.text[p.pos:])
	if !ok {
		return nil, p.errorf("expected conditional operator")
	}
	cond.Operator = op
	p.pos += len(op)

	if p.eof() || !isSpace(p.text[p.pos]) {
		return nil, p.errorf("expected whitespace after operator %q", op)
	}
	p.skipSpace()

	value, err := p.parseStatement("?,", depth+1)
	if err != nil {
		return nil, err
	}
	cond.Value = value
	return cond, nil
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.text[p.pos]) {
		p.pos++
	}
}

func isSpace(c byte) bool {
	return c < utf8.RuneSelf && unicode.IsSpace(rune(c))
}
