package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/benjaminschreck/go-mtl/pkg/pathutil"
	"github.com/kballard/go-shellquote"
)

// FilePathOptions controls how {filepath} values are post-processed.
type FilePathOptions struct {
	// Quote quotes the value for safe use in a shell command.
	Quote bool
	// Filename sanitizes the value as a file name part.
	Filename bool
	// Dirname sanitizes the value as a directory name.
	Dirname bool
}

// FilePath resolves {filepath} and its dotted path attributes, e.g.
// {filepath.parent.name}.
type FilePath struct {
	opts FilePathOptions
}

func NewFilePath(opts FilePathOptions) *FilePath {
	return &FilePath{opts: opts}
}

func (p *FilePath) Name() string { return "filepath" }

func (p *FilePath) Resolve(path, field, _ string, _ []string) ([]mtl.Value, bool, error) {
	parts := strings.Split(field, ".")
	if parts[0] != "filepath" {
		return nil, false, nil
	}

	value := path
	if len(parts) > 1 {
		current := filepath.Clean(path)
		for _, attr := range parts[1:] {
			next, err := pathAttribute(current, attr)
			if err != nil {
				return nil, true, err
			}
			value = next
			current = next
			if current == "" {
				current = "."
			}
		}
	}

	if p.opts.Quote {
		value = shellquote.Join(value)
	}
	switch {
	case p.opts.Filename:
		value = pathutil.SanitizePathPart(value)
	case p.opts.Dirname:
		value = pathutil.SanitizeDirname(value)
	}
	return []mtl.Value{mtl.Str(value)}, true, nil
}

func (p *FilePath) FieldHelp() []mtl.HelpEntry {
	return []mtl.HelpEntry{
		{Name: "{filepath}", Description: "The full path to the file being processed"},
		{Name: "{filepath.name}", Description: "The final path component"},
		{Name: "{filepath.stem}", Description: "The final path component without its suffix"},
		{Name: "{filepath.suffix}", Description: "The file extension of the final component, e.g. .jpg"},
		{Name: "{filepath.parent}", Description: "The logical parent of the path; attributes may be chained, e.g. {filepath.parent.name}"},
	}
}

func pathAttribute(p, attr string) (string, error) {
	switch attr {
	case "name":
		return pathName(p), nil
	case "stem":
		name := pathName(p)
		return strings.TrimSuffix(name, pathSuffix(name)), nil
	case "suffix":
		return pathSuffix(pathName(p)), nil
	case "parent":
		return filepath.Dir(p), nil
	default:
		return "", fmt.Errorf("illegal value for path template: %s", attr)
	}
}

func pathName(p string) string {
	name := filepath.Base(p)
	if name == string(filepath.Separator) || name == "." {
		return ""
	}
	return name
}

// pathSuffix is the final ".ext" of name. Leading dots and a trailing dot do
// not start a suffix.
func pathSuffix(name string) string {
	i := strings.LastIndex(name, ".")
	if i > 0 && i < len(name)-1 {
		return name[i:]
	}
	return ""
}
