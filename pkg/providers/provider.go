// Package providers supplies per-file metadata to the template engine.
//
// Each provider recognizes a fixed set of fields. Bind turns a list of
// providers into an mtl.Resolver for one file; providers are asked in the
// order given and the first one that recognizes a field wins.
package providers

import (
	"github.com/benjaminschreck/go-mtl/pkg/mtl"
)

// Provider resolves template fields for the file at path.
//
// Resolve reports ok == false for fields it does not handle. A handled field
// may resolve to no values, or to null values when the file lacks the
// metadata.
type Provider interface {
	Name() string
	Resolve(path, field, subfield string, defaults []string) (values []mtl.Value, ok bool, err error)
}

// HelpProvider is implemented by providers that document their fields.
type HelpProvider interface {
	FieldHelp() []mtl.HelpEntry
}

// Bind returns a resolver that resolves fields of path against ps in order.
func Bind(path string, ps ...Provider) mtl.Resolver {
	return &boundResolver{path: path, providers: ps}
}

type boundResolver struct {
	path      string
	providers []Provider
}

func (b *boundResolver) ResolveField(field, subfield string, defaults []string) ([]mtl.Value, bool, error) {
	for _, p := range b.providers {
		values, ok, err := p.Resolve(b.path, field, subfield, defaults)
		if err != nil {
			return nil, true, err
		}
		if ok {
			if logger := mtl.GetLogger(); logger.IsDebugMode() {
				logger.WithFields(mtl.Fields{"provider": p.Name(), "field": field, "subfield": subfield}).
					Debug("resolved %d values", len(values))
			}
			return values, true, nil
		}
	}
	return nil, false, nil
}

// Default returns the providers that need no external tools, in lookup order.
func Default() []Provider {
	return []Provider{
		NewDocx(),
		NewPDF(),
		NewMimeType(),
		NewFilePath(FilePathOptions{}),
		NewFileDates(),
		NewFileStat(),
	}
}

// Help collects the field help of every provider that documents its fields.
func Help(ps ...Provider) map[string][]mtl.HelpEntry {
	help := make(map[string][]mtl.HelpEntry)
	for _, p := range ps {
		if hp, ok := p.(HelpProvider); ok {
			help[p.Name()] = hp.FieldHelp()
		}
	}
	return help
}
