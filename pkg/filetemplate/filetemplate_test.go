package filetemplate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/benjaminschreck/go-mtl/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFile(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "test_files")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "pears.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not really a jpeg"), 0o644))
	return path
}

func testValues() *providers.Static {
	return providers.NewStatic(map[string][]string{
		"title":    {" warm lights (ft. apoxode) "},
		"keywords": {"fruit", "pears"},
		"slashed":  {"AC/DC"},
		"empty":    {},
	})
}

func TestFileTemplate_Render(t *testing.T) {
	ft, err := New(testFile(t), WithProviders(testValues()))
	require.NoError(t, err)

	tests := []struct {
		template string
		want     []string
	}{
		{"{filepath.name}", []string{"pears.jpg"}},
		{"{filepath.stem}", []string{"pears"}},
		{"{filepath.parent.name}", []string{"test_files"}},
		{"{filepath.stem|lower}", []string{"pears"}},
		{"{filepath.stem|upper}", []string{"PEARS"}},
		{"{filepath.stem|strip}", []string{"pears"}},
		{"{filepath.stem|braces}", []string{"{pears}"}},
		{"{filepath.stem|parens}", []string{"(pears)"}},
		{"{filepath.stem|brackets}", []string{"[pears]"}},
		{"{filepath.stem[e,E|a,A]}", []string{"pEArs"}},
		{"{size}", []string{"17"}},
		{"{title|strip|titlecase}", []string{"Warm Lights (Ft. Apoxode)"}},
		{"{title|strip|capitalize}", []string{"Warm lights (ft. apoxode)"}},
		{"{keywords}/{filepath.name}", []string{"fruit/pears.jpg", "pears/pears.jpg"}},
		{"{docx:title}", []string{"_"}},
		{"{empty,nothing}", []string{"nothing"}},
		{"{openbrace}{filepath.stem}{closebrace}", []string{"{pears}"}},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got, err := ft.Render(tt.template, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileTemplate_RenderOptions(t *testing.T) {
	ft, err := New(testFile(t), WithProviders(testValues()))
	require.NoError(t, err)

	tests := []struct {
		name     string
		template string
		opts     func(*Options)
		want     []string
	}{
		{"strip", "  {filepath.stem}  ", func(o *Options) { o.Strip = true }, []string{"pears"}},
		{"none string", "{empty}", func(o *Options) { o.NoneStr = "-" }, []string{"-"}},
		{"expand inplace", "{keywords}", func(o *Options) { o.ExpandInplace = true }, []string{"fruit,pears"}},
		{"inplace separator", "{keywords}", func(o *Options) { o.ExpandInplace = true; o.InplaceSep = ";" }, []string{"fruit;pears"}},
		{"filename", "{slashed}/x", func(o *Options) { o.Filename = true }, []string{"AC:DC:x"}},
		{"dirname", "{slashed}/x", func(o *Options) { o.Dirname = true }, []string{"AC:DC/x"}},
		{"quote", "{filepath.name}", func(o *Options) { o.Quote = true }, []string{"pears.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.opts(&opts)
			got, err := ft.Render(tt.template, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileTemplate_FilterHandler(t *testing.T) {
	handler := func(name string, _ *string, values []string) ([]string, error) {
		if name != "shout" {
			return nil, mtl.ErrUnhandledFilter
		}
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = strings.ToUpper(v) + "!"
		}
		return out, nil
	}
	ft, err := New(testFile(t), WithFilterHandler(handler))
	require.NoError(t, err)

	got, err := ft.Render("{filepath.stem|shout}", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"PEARS!"}, got)

	_, err = ft.Render("{filepath.stem|whisper}", DefaultOptions())
	assert.True(t, mtl.IsSyntaxError(err), "unknown filter error = %v", err)
}

func TestFileTemplate_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "New() error = %v", err)

	ft, err := New(testFile(t))
	require.NoError(t, err)

	_, err = ft.Render("{nosuchfield}", DefaultOptions())
	assert.True(t, mtl.IsUnknownFieldError(err))

	_, err = ft.Render("{filepath.name", DefaultOptions())
	assert.True(t, mtl.IsTemplateSyntaxError(err))
}

func TestFileTemplate_Fields(t *testing.T) {
	ft, err := New(testFile(t))
	require.NoError(t, err)

	fields, err := ft.Fields("{created.year}/{filepath.stem}-{size:human}")
	require.NoError(t, err)
	assert.Equal(t, []string{"created.year", "filepath.stem", "size"}, fields)
	assert.Equal(t, filepath.Base(ft.Path()), "pears.jpg")
}

func TestOptionsFromConfig(t *testing.T) {
	config := mtl.DefaultConfig()
	config.NoneStr = ""
	config.Strip = true

	opts := OptionsFromConfig(config)
	assert.Equal(t, "", opts.NoneStr)
	assert.True(t, opts.Strip)
	assert.Equal(t, ",", opts.InplaceSep)
}

func TestNewDetached(t *testing.T) {
	ft := NewDetached(WithProviders(testValues()))
	assert.Equal(t, "", ft.Path())

	got, err := ft.Render("{keywords|join(+)}", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"fruit+pears"}, got)

	_, err = ft.Render("{filepath.name}", DefaultOptions())
	assert.True(t, mtl.IsUnknownFieldError(err))
}
