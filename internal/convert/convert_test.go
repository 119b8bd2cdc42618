package convert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAutomation records the automation calls made by the bridge.
type fakeAutomation struct {
	events    []string
	available error
	startErr  error
	openErr   error
	saveErr   error
	closeErr  error
	quitErr   error
}

func (f *fakeAutomation) Name() string { return "fake" }
func (f *fakeAutomation) Available() error { return f.available }

func (f *fakeAutomation) Start(ctx context.Context) (Application, error) {
	f.events = append(f.events, "start")
	if f.startErr != nil {
		return nil, f.startErr
	}
	return fakeApp{f}, nil
}

type fakeApp struct{ f *fakeAutomation }

func (a fakeApp) Open(ctx context.Context, path string) (Document, error) {
	a.f.events = append(a.f.events, "open "+path)
	if a.f.openErr != nil {
		return nil, a.f.openErr
	}
	return fakeDocument{a.f}, nil
}

func (a fakeApp) Quit() error {
	a.f.events = append(a.f.events, "quit")
	return a.f.quitErr
}

type fakeDocument struct{ f *fakeAutomation }

func (d fakeDocument) SaveAs(ctx context.Context, path string, format Format) error {
	d.f.events = append(d.f.events, "save "+path+" "+format.String())
	return d.f.saveErr
}

func (d fakeDocument) Close() error {
	d.f.events = append(d.f.events, "close")
	return d.f.closeErr
}

// chooser returns a DestChooser answering with dest and recording the call.
func chooser(dest string, ok bool, called *[]string) DestChooser {
	return func(suggested string) (string, bool) {
		*called = append(*called, suggested)
		return dest, ok
	}
}

func TestConvertSuccess(t *testing.T) {
	fa := &fakeAutomation{}
	var asked []string

	dest, err := NewBridge(fa, nil).Convert(context.Background(), "/w/combined.docx", chooser("/w/out.pdf", true, &asked))
	require.NoError(t, err)

	assert.Equal(t, "/w/out.pdf", dest)
	assert.Equal(t, []string{"/w/combined.pdf"}, asked, "prompt suggests the source name with .pdf")
	assert.Equal(t, []string{"start", "open /w/combined.docx", "save /w/out.pdf pdf", "close", "quit"}, fa.events)
}

func TestConvertCanceledStillReleases(t *testing.T) {
	for _, tc := range []struct {
		name string
		dest string
		ok   bool
	}{
		{name: "dismissed", dest: "", ok: false},
		{name: "empty answer", dest: "", ok: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fa := &fakeAutomation{}
			var asked []string

			_, err := NewBridge(fa, nil).Convert(context.Background(), "/w/c.docx", chooser(tc.dest, tc.ok, &asked))
			assert.ErrorIs(t, err, ErrCanceled)
			assert.Len(t, asked, 1)
			assert.Equal(t, []string{"start", "open /w/c.docx", "close", "quit"}, fa.events)
		})
	}
}

func TestConvertUnavailable(t *testing.T) {
	fa := &fakeAutomation{available: errors.New("soffice not found")}
	var asked []string

	_, err := NewBridge(fa, nil).Convert(context.Background(), "/w/c.docx", chooser("/w/o.pdf", true, &asked))
	assert.ErrorIs(t, err, ErrAutomationUnavailable)
	assert.Empty(t, fa.events, "no process started")
	assert.Empty(t, asked, "no destination prompt")

	_, err = NewBridge(nil, nil).Convert(context.Background(), "/w/c.docx", chooser("/w/o.pdf", true, &asked))
	assert.ErrorIs(t, err, ErrAutomationUnavailable)
}

func TestConvertFailuresRelease(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name       string
		fa         *fakeAutomation
		wantEvents []string
		wantAsked  int
	}{
		{
			name:       "start fails",
			fa:         &fakeAutomation{startErr: boom},
			wantEvents: []string{"start"},
		},
		{
			name:       "open fails",
			fa:         &fakeAutomation{openErr: boom},
			wantEvents: []string{"start", "open /w/c.docx", "quit"},
		},
		{
			name:       "save fails",
			fa:         &fakeAutomation{saveErr: boom},
			wantEvents: []string{"start", "open /w/c.docx", "save /w/o.pdf pdf", "close", "quit"},
			wantAsked:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var asked []string
			_, err := NewBridge(tt.fa, nil).Convert(context.Background(), "/w/c.docx", chooser("/w/o.pdf", true, &asked))
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.wantEvents, tt.fa.events)
			assert.Len(t, asked, tt.wantAsked)
		})
	}
}

func TestConvertReportsReleaseErrors(t *testing.T) {
	quitErr := errors.New("quit failed")
	closeErr := errors.New("close failed")
	fa := &fakeAutomation{quitErr: quitErr, closeErr: closeErr}
	var asked []string

	_, err := NewBridge(fa, nil).Convert(context.Background(), "/w/c.docx", chooser("/w/o.pdf", true, &asked))
	assert.ErrorIs(t, err, quitErr)
	assert.ErrorIs(t, err, closeErr)
	assert.Equal(t, []string{"start", "open /w/c.docx", "save /w/o.pdf pdf", "close", "quit"}, fa.events)
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "pdf", FormatPDF.String())
	assert.Equal(t, 17, int(FormatPDF))
	assert.Equal(t, "format(3)", Format(3).String())
}
