package providers

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var pdfSubfields = []mtl.HelpEntry{
	{Name: "author", Description: "Author of the document."},
	{Name: "creator", Description: "The application that created the document."},
	{Name: "producer", Description: "The application the produced the PDF (may be different than creator)."},
	{Name: "created", Description: "Date of creation of the document; a date/time value."},
	{Name: "modified", Description: "Date on which the document was changed; a date/time value."},
	{Name: "subject", Description: "The topic of the content of the document."},
	{Name: "title", Description: "The name given to the document."},
	{Name: "keywords", Description: "Keywords associated with the document; a string of delimited words."},
}

// pdfInfo is the document information dictionary of a PDF.
type pdfInfo map[string]string

// PDF resolves {pdf:SUBFIELD[.attr]} from the document information
// dictionary. Files without a .pdf suffix resolve to null.
type PDF struct {
	read func(path string) (pdfInfo, error)
}

func NewPDF() *PDF {
	return &PDF{read: readPDFInfo}
}

func (p *PDF) Name() string { return "pdf" }

func (p *PDF) Resolve(path, field, subfield string, defaults []string) ([]mtl.Value, bool, error) {
	if field != "pdf" {
		return nil, false, nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return []mtl.Value{mtl.Null()}, true, nil
	}

	name, attr, _ := strings.Cut(subfield, ".")
	if !isPDFSubfield(name) {
		return nil, true, fmt.Errorf("unknown pdf subfield %s", subfield)
	}

	info, err := p.read(path)
	if err != nil {
		return nil, true, err
	}
	raw := strings.TrimSpace(info[name])
	if raw == "" {
		return []mtl.Value{mtl.Null()}, true, nil
	}
	if name != "created" && name != "modified" {
		return mtl.Strs(raw), true, nil
	}

	t, err := ParsePDFDate(raw)
	if err != nil {
		if attr == "" {
			return mtl.Strs(raw), true, nil
		}
		return nil, true, err
	}
	if attr != "" && !IsDateAttribute(attr) {
		return nil, true, fmt.Errorf("unknown pdf datetime attribute %s", attr)
	}
	values, err := resolveDate(t, attr, true, defaults)
	return values, true, err
}

func (p *PDF) FieldHelp() []mtl.HelpEntry {
	entries := []mtl.HelpEntry{{
		Name:        "{pdf}",
		Description: "Access metadata properties of Adobe PDF files (.pdf); use in format {pdf:SUBFIELD}",
	}}
	for _, sf := range pdfSubfields {
		entries = append(entries, mtl.HelpEntry{Name: "{pdf:" + sf.Name + "}", Description: sf.Description})
	}
	return entries
}

func isPDFSubfield(name string) bool {
	for _, sf := range pdfSubfields {
		if sf.Name == name {
			return true
		}
	}
	return false
}

// readPDFInfo reads the information dictionary with pdfcpu. Malformed files
// can make the reader panic, which is reported as an error.
func readPDFInfo(path string) (info pdfInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read PDF %s: %w", path, mtl.RecoverError(r))
		}
	}()

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF %s: %w", path, err)
	}
	return infoFromContext(ctx), nil
}

func infoFromContext(ctx *model.Context) pdfInfo {
	return pdfInfo{
		"author":   ctx.Author,
		"creator":  ctx.Creator,
		"producer": ctx.Producer,
		"created":  ctx.XRefTable.CreationDate,
		"modified": ctx.ModDate,
		"subject":  ctx.Subject,
		"title":    ctx.Title,
		"keywords": ctx.Keywords,
	}
}

var pdfDatePattern = regexp.MustCompile(`^(?:D:)?(\d{4})(\d{2})(\d{2})(\d{2})(\d{2})(\d{2})([+\-zZ])?(\d{2})?'?(\d{2})?'?`)

// ParsePDFDate converts a PDF date such as "D:20120321183444+07'00'" to a
// time. Dates without an offset, or with "Z", are UTC.
func ParsePDFDate(s string) (time.Time, error) {
	m := pdfDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid PDF date string: %s", s)
	}

	n := make([]int, 6)
	for i := range n {
		n[i], _ = strconv.Atoi(m[i+1])
	}

	loc := time.UTC
	if sign := m[7]; sign == "+" || sign == "-" {
		hours, _ := strconv.Atoi(m[8])
		minutes, _ := strconv.Atoi(m[9])
		offset := hours*3600 + minutes*60
		if sign == "-" {
			offset = -offset
		}
		loc = time.FixedZone("", offset)
	}
	return time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], n[5], 0, loc), nil
}
