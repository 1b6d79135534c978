package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/pkg/domain"
)

type fakeTarget struct {
	name  string
	path  string
	err   error
	panic bool
	calls int
}

func (f *fakeTarget) Name() string { return f.name }

func (f *fakeTarget) Export(_ context.Context, _ render.Page, dest string) (string, error) {
	f.calls++
	if f.panic {
		panic("renderer exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	if f.path != "" {
		return f.path, nil
	}
	return dest, nil
}

func testPage() render.Page {
	return render.Page{Spell: domain.StructuredSpell(domain.SpellDocument{
		Title:     "Hearth Charm",
		Materials: []domain.Material{{Name: "Candle"}},
	})}
}

func TestFallbackPrimarySucceeds(t *testing.T) {
	primary := &fakeTarget{name: "primary"}
	secondary := &fakeTarget{name: "secondary"}

	out, err := Fallback{Primary: primary, Secondary: secondary}.Export(context.Background(), testPage(), "/tmp/x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "primary", out.Target)
	assert.False(t, out.FellBack)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackOnError(t *testing.T) {
	primary := &fakeTarget{name: "primary", err: errors.New("no chrome")}
	secondary := &fakeTarget{name: "secondary", path: "/tmp/x.html"}

	out, err := Fallback{Primary: primary, Secondary: secondary}.Export(context.Background(), testPage(), "/tmp/x.pdf")
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	assert.Equal(t, "secondary", out.Target)
	assert.Equal(t, "/tmp/x.html", out.Path)
	assert.EqualError(t, out.PrimaryErr, "no chrome")
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackOnPanic(t *testing.T) {
	primary := &fakeTarget{name: "primary", panic: true}
	secondary := &fakeTarget{name: "secondary"}

	out, err := Fallback{Primary: primary, Secondary: secondary}.Export(context.Background(), testPage(), "/tmp/x.pdf")
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	assert.Contains(t, out.PrimaryErr.Error(), "panicked")
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackBothFail(t *testing.T) {
	primary := &fakeTarget{name: "primary", err: errors.New("no chrome")}
	secondary := &fakeTarget{name: "secondary", err: errors.New("no browser")}

	_, err := Fallback{Primary: primary, Secondary: secondary}.Export(context.Background(), testPage(), "/tmp/x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no browser")
	assert.Contains(t, err.Error(), "no chrome")
}

func TestPrintDialogExporter(t *testing.T) {
	dir := t.TempDir()
	var opened []string
	e := PrintDialogExporter{Open: func(u string) error {
		opened = append(opened, u)
		return nil
	}}

	path, err := e.Export(context.Background(), testPage(), filepath.Join(dir, "hearth-charm.pdf"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hearth-charm.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "window.print()")
	assert.Contains(t, string(data), "Candle")

	require.Len(t, opened, 1)
	assert.True(t, strings.HasPrefix(opened[0], "file://"))
	assert.True(t, strings.HasSuffix(opened[0], "hearth-charm.html"))
}

func TestPrintDialogOpenFailsKeepsPath(t *testing.T) {
	dir := t.TempDir()
	e := PrintDialogExporter{Open: func(string) error { return errors.New("no xdg-open") }}
	path, err := e.Export(context.Background(), testPage(), filepath.Join(dir, "x.pdf"))
	require.ErrorIs(t, err, ErrNotOpened)
	assert.Contains(t, err.Error(), "no xdg-open")
	assert.Equal(t, filepath.Join(dir, "x.html"), path)
	assert.FileExists(t, path)
}

// With no browser at all the printable page is still left on disk.
func TestChainWithoutAnyBrowserLeavesPrintablePage(t *testing.T) {
	dir := t.TempDir()
	f := NewChain(filepath.Join(dir, "no-such-chrome"), true, func(string) error {
		return errors.New("no xdg-open")
	}, nil)

	out, err := f.Export(context.Background(), testPage(), filepath.Join(dir, "hearth-charm.pdf"))
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	assert.True(t, out.NotOpened)
	assert.Equal(t, "print-dialog", out.Target)
	assert.Equal(t, filepath.Join(dir, "hearth-charm.html"), out.Path)
	assert.FileExists(t, out.Path)
}

// A browser binary that cannot start must land in the print dialog.
func TestSnapshotFailureFallsBackToPrintDialog(t *testing.T) {
	dir := t.TempDir()
	var opened int
	f := NewChain(filepath.Join(dir, "no-such-chrome"), true, func(string) error {
		opened++
		return nil
	}, nil)

	out, err := f.Export(context.Background(), testPage(), filepath.Join(dir, "hearth-charm.pdf"))
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	assert.Equal(t, "print-dialog", out.Target)
	assert.Equal(t, 1, opened)
	assert.Error(t, out.PrimaryErr)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hearth Charm", "hearth-charm.pdf"},
		{"  The Moon's Ward!  ", "the-moon-s-ward.pdf"},
		{"", "spell.pdf"},
		{"???", "spell.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.title, ".pdf"), "title %q", tt.title)
	}
}

func TestWriteImage(t *testing.T) {
	dir := t.TempDir()
	p := testPage()

	_, err := WriteImage(p, filepath.Join(dir, "a.pdf"))
	assert.ErrorIs(t, err, ErrNoImage)

	p.ImageBase64 = "aGVsbG8="
	path, err := WriteImage(p, filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.png"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	p.ImageBase64 = "%%%"
	_, err = WriteImage(p, filepath.Join(dir, "b.pdf"))
	assert.Error(t, err)
}
