package providers

import (
	"errors"
	"testing"
	"time"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePDFDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"D:19981223195200-08'00'", time.Date(1998, 12, 23, 19, 52, 0, 0, time.FixedZone("", -8*3600))},
		{"D:20140327195230+05'00'", time.Date(2014, 3, 27, 19, 52, 30, 0, time.FixedZone("", 5*3600))},
		{"D:20211101061600", time.Date(2021, 11, 1, 6, 16, 0, 0, time.UTC)},
		{"D:20211101061600Z", time.Date(2021, 11, 1, 6, 16, 0, 0, time.UTC)},
		{"20211101061600+05'30", time.Date(2021, 11, 1, 6, 16, 0, 0, time.FixedZone("", 5*3600+30*60))},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePDFDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "ParsePDFDate(%q) = %v, want %v", tt.input, got, tt.want)
			_, wantOffset := tt.want.Zone()
			_, gotOffset := got.Zone()
			assert.Equal(t, wantOffset, gotOffset)
		})
	}

	_, err := ParsePDFDate("yesterday")
	assert.Error(t, err)
}

func fakePDF(info pdfInfo, err error) *PDF {
	return &PDF{read: func(string) (pdfInfo, error) { return info, err }}
}

func TestPDF_Resolve(t *testing.T) {
	p := fakePDF(pdfInfo{
		"title":    "Annual Report",
		"author":   "Jane Doe",
		"created":  "D:20211101061600+01'00'",
		"modified": "not a date",
	}, nil)

	tests := []struct {
		subfield string
		defaults []string
		want     []mtl.Value
	}{
		{"title", nil, mtl.Strs("Annual Report")},
		{"author", nil, mtl.Strs("Jane Doe")},
		{"keywords", nil, []mtl.Value{mtl.Null()}},
		{"created", nil, mtl.Strs("2021-11-01T06:16:00+01:00")},
		{"created.year", nil, mtl.Strs("2021")},
		{"created.strftime", []string{"%Y-%m"}, mtl.Strs("2021-11")},
		{"modified", nil, mtl.Strs("not a date")},
	}

	for _, tt := range tests {
		t.Run(tt.subfield, func(t *testing.T) {
			values, ok, err := p.Resolve("doc.PDF", "pdf", tt.subfield, tt.defaults)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestPDF_Errors(t *testing.T) {
	p := fakePDF(pdfInfo{"created": "D:20211101061600", "modified": "garbage"}, nil)

	_, _, err := p.Resolve("doc.pdf", "pdf", "pages", nil)
	assert.ErrorContains(t, err, "unknown pdf subfield")

	_, _, err = p.Resolve("doc.pdf", "pdf", "created.fortnight", nil)
	assert.ErrorContains(t, err, "unknown pdf datetime attribute")

	_, _, err = p.Resolve("doc.pdf", "pdf", "modified.year", nil)
	assert.Error(t, err)

	readErr := errors.New("corrupt")
	_, _, err = fakePDF(nil, readErr).Resolve("doc.pdf", "pdf", "title", nil)
	assert.ErrorIs(t, err, readErr)

	values, ok, err := p.Resolve("doc.txt", "pdf", "title", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []mtl.Value{mtl.Null()}, values)
}

func TestReadPDFInfo_InvalidFile(t *testing.T) {
	path := writeTempFile(t, "broken.pdf", []byte("%PDF-1.4\nnot really a pdf"))
	_, err := readPDFInfo(path)
	assert.Error(t, err)
}
