package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"docmerge/internal/app"
)

// promptKind says what the input line is collecting.
type promptKind int

const (
	promptNone promptKind = iota
	promptAdd
	promptCombine
	promptConvert
)

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Session *app.Session
	Files   []string // projection of Session.Files()
	ctx     context.Context

	// UI State
	SelectedIdx int
	WindowSize  tea.WindowSizeMsg
	Theme       Theme
	Busy        bool        // an action is running; input is ignored
	Quitting    bool        // quit once the running action has finished
	Notice      *app.Notice // blocking dialog
	Status      string

	// Prompt State
	Prompt      promptKind
	InputBuffer textinput.Model
	destReply   chan<- destReply // answers a pending convert destination request

	// Preview
	PreviewFor   string
	PreviewLines []string
	PreviewErr   error

	// Components
	PreviewViewport viewport.Model
	Spinner         spinner.Model
	Help            help.Model
	keys            keyMap
}

// InitialModel returns the initial state.
func InitialModel(ctx context.Context, session *app.Session, theme Theme) AppModel {
	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return AppModel{
		Session:         session,
		Files:           session.Files(),
		ctx:             ctx,
		Theme:           theme,
		InputBuffer:     ti,
		PreviewViewport: viewport.New(0, 0),
		Spinner:         sp,
		Help:            help.New(),
		keys:            newKeyMap(session.ConversionOffered()),
	}
}

// Init loads the preview of whatever the session already holds.
func (m AppModel) Init() tea.Cmd {
	return m.previewCmd()
}

// selectedPath returns the path under the cursor, if any.
func (m AppModel) selectedPath() (string, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Files) {
		return "", false
	}
	return m.Files[m.SelectedIdx], true
}
