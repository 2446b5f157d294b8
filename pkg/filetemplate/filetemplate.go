// Package filetemplate renders metadata templates for a single file.
//
//	ft, err := filetemplate.New("photos/pears.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	names, err := ft.Render("{created.year}/{filepath.stem|lower}", filetemplate.DefaultOptions())
//
// The file's fields are resolved by the providers in package providers. Extra
// providers given with WithProviders are consulted first.
package filetemplate

import (
	"fmt"
	"os"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/benjaminschreck/go-mtl/pkg/pathutil"
	"github.com/benjaminschreck/go-mtl/pkg/providers"
)

// Options control a single render.
type Options struct {
	// NoneStr is rendered for fields without a value.
	NoneStr string
	// InplaceSep joins multi-valued fields when ExpandInplace is set.
	InplaceSep string
	// ExpandInplace joins multi-valued fields instead of producing one result per value.
	ExpandInplace bool
	// SortInplace sorts values before an in-place join.
	SortInplace bool
	// Filename sanitizes results as file names.
	Filename bool
	// Dirname sanitizes field values as directory names.
	Dirname bool
	// Strip trims surrounding whitespace from each result.
	Strip bool
	// Quote shell-quotes {filepath} values.
	Quote bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	config := mtl.DefaultConfig()
	return Options{
		NoneStr:    config.NoneStr,
		InplaceSep: config.InplaceSep,
	}
}

// OptionsFromConfig takes the render settings from an engine configuration.
func OptionsFromConfig(config *mtl.Config) Options {
	config = mtl.NewConfigWithDefaults(config)
	return Options{
		NoneStr:       config.NoneStr,
		InplaceSep:    config.InplaceSep,
		ExpandInplace: config.ExpandInplace,
		SortInplace:   config.SortInplace,
		Strip:         config.Strip,
	}
}

// FileTemplate renders templates against the metadata of one file.
type FileTemplate struct {
	path          string
	extra         []providers.Provider
	filterHandler mtl.FilterHandler
	logger        *mtl.Logger
}

// Option configures a FileTemplate.
type Option func(*FileTemplate)

// WithProviders adds providers consulted before the built-in ones.
func WithProviders(ps ...providers.Provider) Option {
	return func(ft *FileTemplate) {
		ft.extra = append(ft.extra, ps...)
	}
}

// WithFilterHandler sets the handler for filters the engine does not know.
func WithFilterHandler(h mtl.FilterHandler) Option {
	return func(ft *FileTemplate) {
		ft.filterHandler = h
	}
}

// New creates a FileTemplate for path, which must exist.
func New(path string, opts ...Option) (*FileTemplate, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file %s does not exist: %w", path, err)
	}
	ft := &FileTemplate{
		path:   path,
		logger: mtl.GetLogger().WithField("file", path),
	}
	for _, opt := range opts {
		opt(ft)
	}
	return ft, nil
}

// NewDetached creates a FileTemplate bound to no file. Only the providers
// given with WithProviders and the engine's built-in fields resolve.
func NewDetached(opts ...Option) *FileTemplate {
	ft := &FileTemplate{logger: mtl.GetLogger()}
	for _, opt := range opts {
		opt(ft)
	}
	return ft
}

// Path returns the file the template renders for, or "" for a detached template.
func (ft *FileTemplate) Path() string {
	return ft.path
}

// Render renders template for the file.
func (ft *FileTemplate) Render(template string, opts Options) ([]string, error) {
	r := ft.renderer(opts)
	results, err := r.Render(template)
	if err != nil {
		return nil, err
	}
	if ft.logger.IsDebugMode() {
		ft.logger.Debug("rendered %q to %d results", template, len(results))
	}
	return results, nil
}

// Fields parses template and returns the fields it uses.
func (ft *FileTemplate) Fields(template string) ([]string, error) {
	model, err := mtl.Parse(template)
	if err != nil {
		return nil, err
	}
	return model.Fields(), nil
}

func (ft *FileTemplate) renderer(opts Options) *mtl.Renderer {
	ps := append([]providers.Provider(nil), ft.extra...)
	for _, p := range ft.fileProviders() {
		if _, ok := p.(*providers.FilePath); ok {
			p = providers.NewFilePath(providers.FilePathOptions{
				Quote:    opts.Quote,
				Filename: opts.Filename,
				Dirname:  opts.Dirname,
			})
		}
		ps = append(ps, p)
	}

	config := mtl.GetGlobalConfig()
	config.NoneStr = opts.NoneStr
	config.InplaceSep = opts.InplaceSep
	config.ExpandInplace = opts.ExpandInplace
	config.SortInplace = opts.SortInplace
	config.Strip = opts.Strip

	rendererOpts := []mtl.Option{
		mtl.WithConfig(config),
		mtl.WithLogger(ft.logger),
	}
	switch {
	case opts.Dirname:
		rendererOpts = append(rendererOpts, mtl.WithSanitizeValue(pathutil.SanitizeDirname))
	case opts.Filename:
		rendererOpts = append(rendererOpts, mtl.WithSanitizeValue(pathutil.SanitizePathPart))
	}
	if opts.Filename {
		rendererOpts = append(rendererOpts, mtl.WithSanitize(pathutil.SanitizeFilename))
	}
	if ft.filterHandler != nil {
		rendererOpts = append(rendererOpts, mtl.WithFilterHandler(ft.filterHandler))
	}

	return mtl.NewRenderer([]mtl.Resolver{providers.Bind(ft.path, ps...)}, rendererOpts...)
}

func (ft *FileTemplate) fileProviders() []providers.Provider {
	if ft.path == "" {
		return nil
	}
	return providers.Default()
}
