package main

import (
	"fmt"
	"io"
	"time"

	"github.com/benjaminschreck/go-mtl/pkg/filetemplate"
	"github.com/benjaminschreck/go-mtl/pkg/providers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// fileFlags are the per-file options shared by render and watch.
type fileFlags struct {
	values   string
	filename bool
	dirname  bool
	quote    bool
	exiftool bool
	exifPath string
}

func (f *fileFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.values, "values", "", "YAML file with extra field values")
	flags.BoolVar(&f.filename, "filename", false, "sanitize results as file names")
	flags.BoolVar(&f.dirname, "dirname", false, "sanitize field values as directory names")
	flags.BoolVar(&f.quote, "quote", false, "shell-quote {filepath} values")
	flags.BoolVar(&f.exiftool, "exiftool", false, "resolve {exiftool:...} fields by running exiftool")
	flags.StringVar(&f.exifPath, "exiftool-path", "exiftool", "exiftool executable")
}

// templateOptions returns the file template options for the installed engine
// configuration.
func (f *fileFlags) templateOptions(a *app, cmd *cobra.Command) (filetemplate.Options, error) {
	config, err := a.engineConfig(cmd)
	if err != nil {
		return filetemplate.Options{}, err
	}
	opts := filetemplate.OptionsFromConfig(config)
	opts.Filename = f.filename
	opts.Dirname = f.dirname
	opts.Quote = f.quote
	return opts, nil
}

// providers returns the extra providers selected by the flags.
func (f *fileFlags) providers() ([]providers.Provider, error) {
	var ps []providers.Provider
	if f.values != "" {
		static, err := providers.LoadStaticFile(f.values)
		if err != nil {
			return nil, err
		}
		ps = append(ps, static)
	}
	if f.exiftool {
		ps = append(ps, providers.NewExifTool(providers.ExifToolOptions{
			Path:    f.exifPath,
			Timeout: 30 * time.Second,
		}))
	}
	return ps, nil
}

func (a *app) newRenderCmd() *cobra.Command {
	var ff fileFlags
	cmd := &cobra.Command{
		Use:   "render TEMPLATE [FILE...]",
		Short: "Render a template for each file",
		Long: `Render TEMPLATE for each FILE and print one result per line.

Without files only built-in fields and --values resolve. With more than one
file every result is prefixed with the file path and a tab.`,
		Example: `  mtl render "{created.year}/{filepath.name}" photo.jpg
  mtl render --values album.yaml "{artist} - {title|titlecase}"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ff.templateOptions(a, cmd)
			if err != nil {
				return err
			}
			extra, err := ff.providers()
			if err != nil {
				return err
			}
			template, files := args[0], args[1:]

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				return renderTo(out, "", filetemplate.NewDetached(filetemplate.WithProviders(extra...)), template, opts)
			}
			for _, path := range files {
				ft, err := filetemplate.New(path, filetemplate.WithProviders(extra...))
				if err != nil {
					return err
				}
				prefix := ""
				if len(files) > 1 {
					prefix = path + "\t"
				}
				if err := renderTo(out, prefix, ft, template, opts); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			return nil
		},
	}
	ff.register(cmd.Flags())
	return cmd
}

func renderTo(w io.Writer, prefix string, ft *filetemplate.FileTemplate, template string, opts filetemplate.Options) error {
	results, err := ft.Render(template, opts)
	if err != nil {
		return err
	}
	for _, result := range results {
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, result); err != nil {
			return err
		}
	}
	return nil
}
