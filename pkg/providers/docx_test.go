package providers

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCoreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
    xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <dc:title>Quarterly Report</dc:title>
  <dc:creator>Jane Doe</dc:creator>
  <cp:keywords>finance; q3</cp:keywords>
  <cp:revision>3</cp:revision>
  <dcterms:created xsi:type="dcterms:W3CDTF">2021-10-23T14:05:06Z</dcterms:created>
  <dcterms:modified xsi:type="dcterms:W3CDTF">2021-11-01T06:16:00+01:00</dcterms:modified>
</cp:coreProperties>`

func writeTestDocx(t *testing.T, core string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`))
	require.NoError(t, err)
	if core != "" {
		w, err = zw.Create(docxCorePart)
		require.NoError(t, err)
		_, err = w.Write([]byte(core))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestDocx_Resolve(t *testing.T) {
	path := writeTestDocx(t, testCoreXML)
	p := NewDocx()

	tests := []struct {
		subfield string
		defaults []string
		want     []mtl.Value
	}{
		{"title", nil, mtl.Strs("Quarterly Report")},
		{"author", nil, mtl.Strs("Jane Doe")},
		{"keywords", nil, mtl.Strs("finance; q3")},
		{"revision", nil, mtl.Strs("3")},
		{"subject", nil, []mtl.Value{mtl.Null()}},
		{"created", nil, mtl.Strs("2021-10-23T14:05:06")},
		{"created.year", nil, mtl.Strs("2021")},
		{"created.strftime", []string{"%Y-%U"}, mtl.Strs("2021-42")},
		{"modified.hour", nil, mtl.Strs("05")},
		{"last_printed.year", nil, []mtl.Value{mtl.Null()}},
		{"title.year", nil, mtl.Strs("Quarterly Report")},
	}

	for _, tt := range tests {
		t.Run(tt.subfield, func(t *testing.T) {
			values, ok, err := p.Resolve(path, "docx", tt.subfield, tt.defaults)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestDocx_Errors(t *testing.T) {
	path := writeTestDocx(t, testCoreXML)
	p := NewDocx()

	_, ok, err := p.Resolve(path, "docx", "pages", nil)
	assert.True(t, ok)
	assert.ErrorContains(t, err, "unknown docx subfield")

	_, _, err = p.Resolve(path, "docx", "created.fortnight", nil)
	assert.ErrorContains(t, err, "unknown docx datetime attribute")

	bad := writeTempFile(t, "broken.docx", []byte("not a zip"))
	_, _, err = p.Resolve(bad, "docx", "title", nil)
	assert.Error(t, err)
}

func TestDocx_NonDocxAndMissingCore(t *testing.T) {
	p := NewDocx()

	values, ok, err := p.Resolve("notes.txt", "docx", "title", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []mtl.Value{mtl.Null()}, values)

	values, _, err = p.Resolve(writeTestDocx(t, ""), "docx", "title", nil)
	require.NoError(t, err)
	assert.Equal(t, []mtl.Value{mtl.Null()}, values)

	_, ok, _ = p.Resolve("notes.txt", "pdf", "title", nil)
	assert.False(t, ok)
}

func TestParseW3CDTF(t *testing.T) {
	for _, s := range []string{"2021-10-23T14:05:06Z", "2021-10-23T14:05:06.5+02:00", "2021-10-23", "2021"} {
		_, err := parseW3CDTF(s)
		assert.NoError(t, err, s)
	}
	_, err := parseW3CDTF("last tuesday")
	assert.Error(t, err)
}
