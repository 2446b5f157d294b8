package providers

import (
	"fmt"
	"os"
	"time"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
)

// FileDates resolves {created}, {modified} and {accessed} with optional date
// attributes, e.g. {created.year}.
type FileDates struct {
	stat func(string) (os.FileInfo, error)
}

func NewFileDates() *FileDates {
	return &FileDates{stat: os.Stat}
}

func (p *FileDates) Name() string { return "filedates" }

func (p *FileDates) Resolve(path, field, _ string, defaults []string) ([]mtl.Value, bool, error) {
	name, attr, err := dateField(field)
	switch name {
	case "created", "modified", "accessed":
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}

	info, err := p.stat(path)
	if err != nil {
		return nil, true, fmt.Errorf("stat %s: %w", path, err)
	}

	var t time.Time
	created, accessed := fileTimes(info)
	switch name {
	case "created":
		t = created
	case "modified":
		t = info.ModTime()
	default:
		t = accessed
	}

	values, err := resolveDate(t.Local(), attr, false, defaults)
	return values, true, err
}

func (p *FileDates) FieldHelp() []mtl.HelpEntry {
	entries := []mtl.HelpEntry{
		{Name: "{created}", Description: "File creation date/time"},
		{Name: "{modified}", Description: "File modification date/time"},
		{Name: "{accessed}", Description: "File last accessed date/time"},
	}
	for _, attr := range DateAttributeHelp() {
		entries = append(entries, mtl.HelpEntry{Name: "." + attr.Name, Description: attr.Description})
	}
	return entries
}
