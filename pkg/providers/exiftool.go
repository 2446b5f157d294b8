package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/benjaminschreck/go-mtl/internal/lru"
	"github.com/benjaminschreck/go-mtl/pkg/mtl"
)

// ExifToolRunner runs exiftool on path and returns its JSON output.
type ExifToolRunner func(ctx context.Context, exe, path string) ([]byte, error)

// ExifToolOptions configures an ExifTool provider.
type ExifToolOptions struct {
	// Path is the exiftool executable; defaults to "exiftool" on $PATH.
	Path string
	// Timeout bounds a single exiftool run. 0 means no timeout.
	Timeout time.Duration
	// CacheSize is the number of files whose metadata is kept. 0 uses the default.
	CacheSize int
	// Runner replaces the subprocess, mainly for tests.
	Runner ExifToolRunner
}

const defaultExifCacheSize = 128

var exifCreatedTags = []string{
	"Composite:SubSecDateTimeOriginal",
	"Composite:DateTimeCreated",
	"QuickTime:CreationDate",
	"QuickTime:CreateDate",
	"EXIF:DateTimeOriginal",
	"EXIF:CreateDate",
	"IPTC:DateCreated",
	"XMP-xmp:CreateDate",
	"XMP-photoship:DateCreated",
}

var exifModifiedTags = []string{
	"Composite:SubSecModifyDate",
	"EXIF:ModifyDate",
	"QuickTime:ModifyDate",
	"XMP-prism:ModificationDate",
}

var exifDateLayouts = []string{
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05",
	"2006:01:02",
}

// exifData holds the tags of one file: grouped as reported, and normalized
// (lower case, with and without group).
type exifData struct {
	tags       map[string][]string
	normalized map[string][]string
}

// ExifTool resolves {exiftool:[GROUP:]TAG} and the derived
// {exiftool:created[.attr]} and {exiftool:modified[.attr]} subfields. Output
// of exiftool is cached per path.
type ExifTool struct {
	exe     string
	timeout time.Duration
	run     ExifToolRunner
	cache   *lru.Cache[string, *exifData]
	logger  *mtl.Logger
}

func NewExifTool(opts ExifToolOptions) *ExifTool {
	e := &ExifTool{
		exe:     opts.Path,
		timeout: opts.Timeout,
		run:     opts.Runner,
		logger:  mtl.GetLogger().WithField("provider", "exiftool"),
	}
	if e.exe == "" {
		e.exe = "exiftool"
	}
	if e.run == nil {
		e.run = runExifTool
	}
	size := opts.CacheSize
	if size <= 0 {
		size = defaultExifCacheSize
	}
	e.cache = lru.New[string, *exifData](lru.Config{MaxSize: size}).OnEvict(func(path string, _ *exifData) {
		e.logger.WithField("path", path).Debug("dropped cached tags")
	})
	return e
}

func (e *ExifTool) Name() string { return "exiftool" }

func (e *ExifTool) Resolve(path, field, subfield string, defaults []string) ([]mtl.Value, bool, error) {
	if field != "exiftool" {
		return nil, false, nil
	}
	if subfield == "" {
		return nil, true, fmt.Errorf("subfield not specified for %s", field)
	}

	data, err := e.load(path)
	if err != nil {
		return nil, true, err
	}

	tag, attr, _ := strings.Cut(strings.ToLower(subfield), ".")

	var values []string
	var date *time.Time
	switch tag {
	case "created", "modified":
		candidates := exifCreatedTags
		if tag == "modified" {
			candidates = exifModifiedTags
		}
		t, hasZone, found, err := data.firstDate(candidates)
		if err != nil {
			return nil, true, err
		}
		if found {
			date = &t
			values = []string{isoFormatSep(t, " ", hasZone)}
		}
	default:
		for _, v := range data.normalized[tag] {
			if !strings.HasPrefix(v, "(Binary data ") {
				values = append(values, v)
			}
		}
	}

	if len(values) == 0 || attr == "" {
		return mtl.Strs(values...), true, nil
	}

	if date == nil {
		return nil, true, fmt.Errorf("date/time formatting can only be used with created or modified subfields")
	}
	if !IsDateAttribute(attr) {
		return nil, true, fmt.Errorf("invalid value %s for date/time formatter", attr)
	}
	v, err := DateAttribute(*date, attr, defaults)
	if err != nil {
		return nil, true, err
	}
	return []mtl.Value{v}, true, nil
}

func (e *ExifTool) FieldHelp() []mtl.HelpEntry {
	entries := []mtl.HelpEntry{
		{
			Name: "{exiftool}",
			Description: "Format: '{exiftool:GROUP:TAGNAME}'; use exiftool (https://exiftool.org) to extract metadata, " +
				"in form GROUP:TAGNAME or TAGNAME, e.g. '{exiftool:Make}' or '{exiftool:IPTC:Keywords}'. " +
				"Derived subfields created and modified accept date/time attributes, e.g. {exiftool:created.year}.",
		},
	}
	for _, attr := range DateAttributeHelp() {
		entries = append(entries, mtl.HelpEntry{Name: "." + attr.Name, Description: attr.Description})
	}
	return entries
}

// Invalidate drops the cached metadata of path.
func (e *ExifTool) Invalidate(path string) {
	e.cache.Remove(path)
}

// Clear drops all cached metadata.
func (e *ExifTool) Clear() {
	e.cache.Clear()
}

func (e *ExifTool) load(path string) (*exifData, error) {
	return e.cache.GetOrLoad(path, func() (*exifData, error) {
		ctx := context.Background()
		if e.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}

		start := time.Now()
		out, err := e.run(ctx, e.exe, path)
		if err != nil {
			return nil, fmt.Errorf("exiftool %s: %w", path, err)
		}
		data, err := parseExifJSON(out)
		if err != nil {
			return nil, fmt.Errorf("exiftool %s: %w", path, err)
		}
		e.logger.WithField("path", path).Debug("read %d tags in %v", len(data.tags), time.Since(start))
		return data, nil
	})
}

func runExifTool(ctx context.Context, exe, path string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, "-G", "-j", path)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

func parseExifJSON(out []byte) (*exifData, error) {
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()

	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse exiftool output: %w", err)
	}

	data := &exifData{
		tags:       make(map[string][]string),
		normalized: make(map[string][]string),
	}
	if len(records) == 0 {
		return data, nil
	}

	keys := make([]string, 0, len(records[0]))
	for k := range records[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		values := exifValues(records[0][k])
		data.tags[k] = values
		lower := strings.ToLower(k)
		data.normalized[lower] = values
		if _, tag, found := strings.Cut(lower, ":"); found {
			data.normalized[tag] = values
		}
	}
	return data, nil
}

func exifValues(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, exifValues(item)...)
		}
		return out
	case string:
		return []string{val}
	case json.Number:
		return []string{val.String()}
	case bool:
		if val {
			return []string{"True"}
		}
		return []string{"False"}
	default:
		return []string{fmt.Sprint(val)}
	}
}

// firstDate parses the first of candidates present in the grouped tags.
func (d *exifData) firstDate(candidates []string) (t time.Time, hasZone, found bool, err error) {
	for _, tag := range candidates {
		values, ok := d.tags[tag]
		if !ok || len(values) == 0 {
			continue
		}
		t, hasZone, err = parseExifDate(values[0])
		if err != nil {
			return time.Time{}, false, false, fmt.Errorf("exiftool %s: %w", tag, err)
		}
		return t, hasZone, true, nil
	}
	return time.Time{}, false, false, nil
}

// parseExifDate accepts the date forms exiftool emits: with or without time,
// sub-seconds and UTC offset.
func parseExifDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	for i, layout := range exifDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, i == 0, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q", s)
}
