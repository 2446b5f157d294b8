package providers

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"gopkg.in/yaml.v3"
)

// Static resolves fields from a fixed set of values, keyed by "field" or
// "field:subfield". It ignores the file path.
type Static struct {
	values map[string][]mtl.Value
}

// NewStatic creates a static provider from string values.
func NewStatic(values map[string][]string) *Static {
	s := &Static{values: make(map[string][]mtl.Value, len(values))}
	for k, v := range values {
		s.values[k] = mtl.Strs(v...)
	}
	return s
}

// LoadStatic reads a YAML mapping of field to value. A value may be a scalar,
// a list, or null. Nested mappings are flattened into "field:subfield" keys.
//
//	artist: [Alice, Bob]
//	title: Songs
//	album: ~
//	created:
//	  year: 2021
func LoadStatic(r io.Reader) (*Static, error) {
	var doc map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse values: %w", err)
	}

	s := &Static{values: make(map[string][]mtl.Value, len(doc))}
	for k, v := range doc {
		if nested, ok := v.(map[string]interface{}); ok {
			for sub, sv := range nested {
				values, err := staticValues(sv)
				if err != nil {
					return nil, fmt.Errorf("field %s:%s: %w", k, sub, err)
				}
				s.values[k+":"+sub] = values
			}
			continue
		}
		values, err := staticValues(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		s.values[k] = values
	}
	return s, nil
}

// LoadStaticFile reads values from a YAML file.
func LoadStaticFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open values file: %w", err)
	}
	defer f.Close()
	return LoadStatic(f)
}

func staticValues(v interface{}) ([]mtl.Value, error) {
	switch val := v.(type) {
	case nil:
		return []mtl.Value{mtl.Null()}, nil
	case []interface{}:
		out := make([]mtl.Value, 0, len(val))
		for _, item := range val {
			if item == nil {
				out = append(out, mtl.Null())
				continue
			}
			if _, ok := item.(map[string]interface{}); ok {
				return nil, fmt.Errorf("list items must be scalars")
			}
			out = append(out, mtl.Str(fmt.Sprint(item)))
		}
		return out, nil
	case map[string]interface{}:
		return nil, fmt.Errorf("values nest at most one level")
	default:
		return []mtl.Value{mtl.Str(fmt.Sprint(val))}, nil
	}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Resolve(_, field, subfield string, _ []string) ([]mtl.Value, bool, error) {
	key := field
	if subfield != "" {
		key = field + ":" + subfield
	}
	values, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]mtl.Value, len(values))
	copy(out, values)
	return out, true, nil
}

// Fields lists the keys the provider resolves.
func (s *Static) Fields() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Static) FieldHelp() []mtl.HelpEntry {
	fields := s.Fields()
	entries := make([]mtl.HelpEntry, 0, len(fields))
	for _, k := range fields {
		values := s.values[k]
		desc := make([]string, len(values))
		for i, v := range values {
			if v.Valid {
				desc[i] = v.String
			} else {
				desc[i] = "null"
			}
		}
		entries = append(entries, mtl.HelpEntry{Name: "{" + k + "}", Description: strings.Join(desc, ", ")})
	}
	return entries
}
