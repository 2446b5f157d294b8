package mtl

// Resolver supplies values for template fields.
//
// ResolveField returns ok == false when it does not recognize field, in which case
// the next resolver in the chain is asked. A recognized field may resolve to an
// empty list or to null values. defaults holds the rendered default values of the
// expression, which some fields use as arguments.
type Resolver interface {
	ResolveField(field, subfield string, defaults []string) (values []Value, ok bool, err error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(field, subfield string, defaults []string) ([]Value, bool, error)

func (f ResolverFunc) ResolveField(field, subfield string, defaults []string) ([]Value, bool, error) {
	return f(field, subfield, defaults)
}

// MapResolver resolves fields from a fixed map keyed by "field" or "field:subfield".
type MapResolver map[string][]string

func (m MapResolver) ResolveField(field, subfield string, _ []string) ([]Value, bool, error) {
	key := field
	if subfield != "" {
		key = field + ":" + subfield
	}
	if values, ok := m[key]; ok {
		return Strs(values...), true, nil
	}
	return nil, false, nil
}

// chain asks each resolver in order until one recognizes the field.
type chain []Resolver

func (c chain) ResolveField(field, subfield string, defaults []string) ([]Value, bool, error) {
	for _, r := range c {
		if r == nil {
			continue
		}
		values, ok, err := r.ResolveField(field, subfield, defaults)
		if err != nil {
			return nil, true, err
		}
		if ok {
			return values, true, nil
		}
	}
	return nil, false, nil
}
