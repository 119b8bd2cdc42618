package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmerge/internal/compose"
	"docmerge/internal/convert"
)

func writeDocx(t *testing.T, dir, name string, paras ...string) string {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	for _, p := range paras {
		w.AddParagraph().AddText(p)
	}
	path := filepath.Join(dir, name)
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func readParagraphs(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := docx.Parse(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	var out []string
	for _, it := range doc.Document.Body.Items {
		if p, ok := it.(*docx.Paragraph); ok {
			out = append(out, p.String())
		}
	}
	return out
}

// fakeConverter stands in for the conversion bridge.
type fakeConverter struct {
	available error
	err       error
	sources   []string
	prompted  int
}

func (f *fakeConverter) Available() error { return f.available }

func (f *fakeConverter) Convert(ctx context.Context, source string, choose convert.DestChooser) (string, error) {
	f.sources = append(f.sources, source)
	f.prompted++
	dest, ok := choose("/suggested.pdf")
	if !ok {
		return "", convert.ErrCanceled
	}
	if f.err != nil {
		return "", f.err
	}
	return dest, nil
}

func answer(dest string, ok bool) convert.DestChooser {
	return func(string) (string, bool) { return dest, ok }
}

func newDocxSession(conv Converter) *Session {
	return NewSession(compose.NewPipeline(compose.DocxLibrary{}, nil), conv, nil)
}

func TestScenarioCombineTwo(t *testing.T) {
	dir := t.TempDir()
	a := writeDocx(t, dir, "a.docx", "from a")
	b := writeDocx(t, dir, "b.docx", "from b")
	out := filepath.Join(dir, "out.docx")

	s := newDocxSession(nil)
	assert.Equal(t, 2, s.Drop(fmt.Sprintf("%s\n%s", a, b)))

	n := s.Combine(context.Background(), out)
	assert.Equal(t, LevelInfo, n.Level, n.Message)
	assert.Contains(t, n.Message, out)
	assert.Equal(t, []string{"from a", "from b"}, readParagraphs(t, out))

	got, ok := s.LastCombined()
	assert.True(t, ok)
	assert.Equal(t, out, got)
}

func TestScenarioRemoveFirstThenCombine(t *testing.T) {
	dir := t.TempDir()
	a := writeDocx(t, dir, "a.docx", "from a")
	b := writeDocx(t, dir, "b.docx", "from b")
	out := filepath.Join(dir, "out.docx")

	s := newDocxSession(nil)
	s.DropPaths([]string{a, b})
	assert.Equal(t, []string{b}, s.Remove(0))

	n := s.Combine(context.Background(), out)
	require.Equal(t, LevelInfo, n.Level, n.Message)
	assert.Equal(t, []string{"from b"}, readParagraphs(t, out))
}

func TestCombineEmptyList(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.docx")
	s := newDocxSession(nil)

	n, ok := s.CheckCombine()
	assert.False(t, ok)
	assert.Equal(t, noticeNoFiles, n)

	n = s.Combine(context.Background(), out)
	assert.Equal(t, noticeNoFiles, n)
	assert.NoFileExists(t, out)
	_, combined := s.LastCombined()
	assert.False(t, combined)
}

func TestCombineNoDestination(t *testing.T) {
	dir := t.TempDir()
	s := newDocxSession(nil)
	s.DropPaths([]string{writeDocx(t, dir, "a.docx", "x")})

	_, ok := s.CheckCombine()
	assert.True(t, ok)
	assert.Equal(t, noticeNoDestination, s.Combine(context.Background(), ""))
}

// recordingCombiner accepts anything, so the session's own checks are what
// stand between a missing destination and a success notice.
type recordingCombiner struct {
	calls int
}

func (c *recordingCombiner) Combine(context.Context, []string, string) error {
	c.calls++
	return nil
}

func TestCombineNoDestinationWithPermissiveCombiner(t *testing.T) {
	comb := &recordingCombiner{}
	s := NewSession(comb, nil, nil)
	s.DropPaths([]string{"/x/a.docx"})

	assert.Equal(t, noticeNoDestination, s.Combine(context.Background(), ""))
	assert.Zero(t, comb.calls)
	_, ok := s.LastCombined()
	assert.False(t, ok)

	n := s.Combine(context.Background(), "/x/out")
	assert.Equal(t, LevelInfo, n.Level)
	assert.Equal(t, 1, comb.calls)
}

func TestCombineAddsExtension(t *testing.T) {
	dir := t.TempDir()
	s := newDocxSession(nil)
	s.DropPaths([]string{writeDocx(t, dir, "a.docx", "x")})

	n := s.Combine(context.Background(), filepath.Join(dir, "merged"))
	require.Equal(t, LevelInfo, n.Level, n.Message)
	assert.FileExists(t, filepath.Join(dir, "merged.docx"))
}

func TestCombineLibraryErrorIsReported(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.docx")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o644))

	s := newDocxSession(nil)
	s.DropPaths([]string{writeDocx(t, dir, "a.docx", "x"), bad})

	n := s.Combine(context.Background(), filepath.Join(dir, "out.docx"))
	assert.Equal(t, LevelError, n.Level)
	assert.Contains(t, n.Message, "bad.docx")
	_, ok := s.LastCombined()
	assert.False(t, ok)
}

func TestDropFiltersSilently(t *testing.T) {
	s := newDocxSession(nil)
	assert.Equal(t, 1, s.Drop("/x/a.docx /x/notes.txt '/x/a.docx'"))
	assert.Equal(t, []string{"/x/a.docx"}, s.Files())
	assert.Equal(t, 0, s.Drop("/x/only.pdf"))
	assert.Len(t, s.Files(), 1)
}

func TestScenarioConvertWithoutCombine(t *testing.T) {
	fc := &fakeConverter{}
	s := newDocxSession(fc)

	n, ok := s.CheckConvert()
	assert.False(t, ok)
	assert.Equal(t, noticeNoCombined, n)

	n, shown := s.Convert(context.Background(), answer("/o.pdf", true))
	assert.True(t, shown)
	assert.Equal(t, LevelWarning, n.Level)
	assert.Equal(t, "No File", n.Title)
	assert.Zero(t, fc.prompted, "no automation started")
}

func TestScenarioAutomationAbsent(t *testing.T) {
	fc := &fakeConverter{available: fmt.Errorf("%w: soffice not found", convert.ErrAutomationUnavailable)}
	s := newDocxSession(fc)

	// even with a combined file, unavailability wins
	dir := t.TempDir()
	s.DropPaths([]string{writeDocx(t, dir, "a.docx", "x")})
	require.Equal(t, LevelInfo, s.Combine(context.Background(), filepath.Join(dir, "o.docx")).Level)

	n, ok := s.CheckConvert()
	assert.False(t, ok)
	assert.Equal(t, "Missing Dependency", n.Title)

	n, shown := s.Convert(context.Background(), answer("/o.pdf", true))
	assert.True(t, shown)
	assert.Equal(t, "Missing Dependency", n.Title)
	assert.Zero(t, fc.prompted, "no process, no destination prompt")
}

func TestConvertDisabledVariant(t *testing.T) {
	s := newDocxSession(nil)
	assert.False(t, s.ConversionOffered())

	n, ok := s.CheckConvert()
	assert.False(t, ok)
	assert.Equal(t, noticeUnavailable, n)
}

func TestConvertAfterCombine(t *testing.T) {
	dir := t.TempDir()
	fc := &fakeConverter{}
	s := newDocxSession(fc)
	s.DropPaths([]string{writeDocx(t, dir, "a.docx", "x")})
	out := filepath.Join(dir, "o.docx")
	require.Equal(t, LevelInfo, s.Combine(context.Background(), out).Level)

	_, ok := s.CheckConvert()
	assert.True(t, ok)

	n, shown := s.Convert(context.Background(), answer(filepath.Join(dir, "final"), true))
	assert.True(t, shown)
	assert.Equal(t, LevelInfo, n.Level)
	assert.Contains(t, n.Message, filepath.Join(dir, "final.pdf"))
	assert.Equal(t, []string{out}, fc.sources)
}

func TestConvertCanceledIsSilent(t *testing.T) {
	dir := t.TempDir()
	fc := &fakeConverter{}
	s := newDocxSession(fc)
	s.DropPaths([]string{writeDocx(t, dir, "a.docx", "x")})
	require.Equal(t, LevelInfo, s.Combine(context.Background(), filepath.Join(dir, "o.docx")).Level)

	_, shown := s.Convert(context.Background(), answer("", false))
	assert.False(t, shown)
	assert.Equal(t, 1, fc.prompted)
}

func TestConvertFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	fc := &fakeConverter{err: errors.New("soffice crashed")}
	s := newDocxSession(fc)
	s.DropPaths([]string{writeDocx(t, dir, "a.docx", "x")})
	require.Equal(t, LevelInfo, s.Combine(context.Background(), filepath.Join(dir, "o.docx")).Level)

	n, shown := s.Convert(context.Background(), answer("/o.pdf", true))
	assert.True(t, shown)
	assert.Equal(t, LevelError, n.Level)
	assert.Contains(t, n.Message, "soffice crashed")
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	s := newDocxSession(&fakeConverter{})
	s.DropPaths([]string{writeDocx(t, dir, "a.docx", "x")})
	require.Equal(t, LevelInfo, s.Combine(context.Background(), filepath.Join(dir, "o.docx")).Level)

	s.Reset()
	assert.Empty(t, s.Files())
	_, ok := s.LastCombined()
	assert.False(t, ok)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "error", LevelError.String())
}
