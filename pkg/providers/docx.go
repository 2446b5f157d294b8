package providers

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
)

const docxCorePart = "docProps/core.xml"

// docxCoreProperties maps docProps/core.xml. Elements are matched by local
// name so the dc, dcterms and cp namespaces need no declaration here.
type docxCoreProperties struct {
	XMLName        xml.Name `xml:"coreProperties"`
	Title          string   `xml:"title"`
	Subject        string   `xml:"subject"`
	Creator        string   `xml:"creator"`
	Keywords       string   `xml:"keywords"`
	Description    string   `xml:"description"`
	LastModifiedBy string   `xml:"lastModifiedBy"`
	Revision       string   `xml:"revision"`
	LastPrinted    string   `xml:"lastPrinted"`
	Created        string   `xml:"created"`
	Modified       string   `xml:"modified"`
	Category       string   `xml:"category"`
	ContentStatus  string   `xml:"contentStatus"`
	Identifier     string   `xml:"identifier"`
	Language       string   `xml:"language"`
	Version        string   `xml:"version"`
}

var docxSubfields = []mtl.HelpEntry{
	{Name: "author", Description: "An entity primarily responsible for making the content of the resource. (Dublin Core creator)"},
	{Name: "category", Description: "A categorization of the content of this package, e.g. Resume, Letter, Proposal."},
	{Name: "comments", Description: "An explanation of the content of the resource. (Dublin Core description)"},
	{Name: "content_status", Description: "The status of the content, e.g. Draft, Reviewed, Final."},
	{Name: "created", Description: "Date of creation of the resource; a date/time value."},
	{Name: "identifier", Description: "An unambiguous reference to the resource within a given context."},
	{Name: "keywords", Description: "A delimited set of keywords to support searching and indexing."},
	{Name: "language", Description: "The language of the intellectual content of the resource."},
	{Name: "last_modified_by", Description: "The user who performed the last modification."},
	{Name: "last_printed", Description: "The date and time of the last printing; a date/time value."},
	{Name: "modified", Description: "Date on which the resource was changed; a date/time value."},
	{Name: "revision", Description: "The revision number."},
	{Name: "subject", Description: "The topic of the content of the resource."},
	{Name: "title", Description: "The name given to the resource."},
	{Name: "version", Description: "The version designator."},
}

var docxDateSubfields = map[string]bool{"created": true, "modified": true, "last_printed": true}

func (c *docxCoreProperties) property(name string) (string, bool) {
	switch name {
	case "author":
		return c.Creator, true
	case "category":
		return c.Category, true
	case "comments":
		return c.Description, true
	case "content_status":
		return c.ContentStatus, true
	case "created":
		return c.Created, true
	case "identifier":
		return c.Identifier, true
	case "keywords":
		return c.Keywords, true
	case "language":
		return c.Language, true
	case "last_modified_by":
		return c.LastModifiedBy, true
	case "last_printed":
		return c.LastPrinted, true
	case "modified":
		return c.Modified, true
	case "revision":
		return c.Revision, true
	case "subject":
		return c.Subject, true
	case "title":
		return c.Title, true
	case "version":
		return c.Version, true
	default:
		return "", false
	}
}

// Docx resolves {docx:SUBFIELD[.attr]} from the core properties of a Word
// document. Files without a .docx suffix resolve to null.
type Docx struct{}

func NewDocx() *Docx { return &Docx{} }

func (p *Docx) Name() string { return "docx" }

func (p *Docx) Resolve(path, field, subfield string, defaults []string) ([]mtl.Value, bool, error) {
	if field != "docx" {
		return nil, false, nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".docx") {
		return []mtl.Value{mtl.Null()}, true, nil
	}

	name, attr, _ := strings.Cut(subfield, ".")
	if _, known := (&docxCoreProperties{}).property(name); !known {
		return nil, true, fmt.Errorf("unknown docx subfield %s", subfield)
	}
	core, err := readDocxCore(path)
	if err != nil {
		return nil, true, err
	}
	raw, _ := core.property(name)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []mtl.Value{mtl.Null()}, true, nil
	}
	if !docxDateSubfields[name] {
		return mtl.Strs(raw), true, nil
	}

	t, err := parseW3CDTF(raw)
	if err != nil {
		return nil, true, fmt.Errorf("docx %s: %w", name, err)
	}
	if attr != "" && !IsDateAttribute(attr) {
		return nil, true, fmt.Errorf("unknown docx datetime attribute %s", attr)
	}
	values, err := resolveDate(t, attr, false, defaults)
	return values, true, err
}

func (p *Docx) FieldHelp() []mtl.HelpEntry {
	entries := []mtl.HelpEntry{{
		Name:        "{docx}",
		Description: "Access metadata properties of Microsoft Word document files (.docx); use in format {docx:SUBFIELD}",
	}}
	for _, sf := range docxSubfields {
		entries = append(entries, mtl.HelpEntry{Name: "{docx:" + sf.Name + "}", Description: sf.Description})
	}
	return entries
}

// readDocxCore reads the core properties part. A package without one has no
// properties set.
func readDocxCore(path string) (*docxCoreProperties, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}
	defer zr.Close()

	core := &docxCoreProperties{}
	for _, file := range zr.File {
		if file.Name != docxCorePart {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", docxCorePart, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", docxCorePart, err)
		}
		if err := xml.Unmarshal(content, core); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", docxCorePart, err)
		}
		break
	}
	return core, nil
}

var w3cdtfLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// parseW3CDTF parses the W3C date formats used by OOXML properties and
// returns the time in UTC.
func parseW3CDTF(s string) (time.Time, error) {
	for _, layout := range w3cdtfLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid W3CDTF date %q", s)
}
