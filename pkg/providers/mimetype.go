package providers

import (
	"fmt"
	"os"
	"strings"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/gabriel-vasile/mimetype"
)

// MimeType resolves {mimetype[:SUBFIELD]} by sniffing the file content.
type MimeType struct{}

func NewMimeType() *MimeType { return &MimeType{} }

func (p *MimeType) Name() string { return "mimetype" }

func (p *MimeType) Resolve(path, field, subfield string, _ []string) ([]mtl.Value, bool, error) {
	if field != "mimetype" {
		return nil, false, nil
	}
	switch subfield {
	case "", "type", "subtype", "extension", "parent":
	default:
		return nil, true, fmt.Errorf("unknown mimetype subfield %s", subfield)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, true, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return []mtl.Value{mtl.Null()}, true, nil
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, true, fmt.Errorf("detect mimetype of %s: %w", path, err)
	}

	// Drop parameters such as "; charset=utf-8".
	base, _, _ := strings.Cut(mt.String(), ";")
	base = strings.TrimSpace(base)

	var value string
	switch subfield {
	case "":
		value = base
	case "type":
		value, _, _ = strings.Cut(base, "/")
	case "subtype":
		_, value, _ = strings.Cut(base, "/")
	case "extension":
		value = strings.TrimPrefix(mt.Extension(), ".")
	case "parent":
		if parent := mt.Parent(); parent != nil {
			value, _, _ = strings.Cut(parent.String(), ";")
		}
	}
	if value == "" {
		return []mtl.Value{mtl.Null()}, true, nil
	}
	return mtl.Strs(value), true, nil
}

func (p *MimeType) FieldHelp() []mtl.HelpEntry {
	return []mtl.HelpEntry{
		{Name: "{mimetype}", Description: "MIME type of the file detected from its content, e.g. image/jpeg"},
		{Name: "{mimetype:type}", Description: "Top-level media type, e.g. image"},
		{Name: "{mimetype:subtype}", Description: "Media subtype, e.g. jpeg"},
		{Name: "{mimetype:extension}", Description: "Preferred file extension for the type, without the dot, e.g. jpg"},
		{Name: "{mimetype:parent}", Description: "The more general type this one is derived from, e.g. text/plain for text/html"},
	}
}
