package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"docmerge/internal/app"
	"docmerge/internal/model"
	"docmerge/internal/preview"
)

// previewLines is how much of a document the preview pane loads.
const previewLines = 200

// MsgPreview carries the text of a document for the preview pane.
type MsgPreview struct {
	Path  string
	Lines []string
	Err   error
}

// MsgCombined indicates that a combine action has finished.
type MsgCombined app.Notice

// MsgConverted indicates that a convert action has finished. Shown is false
// when the user canceled and there is nothing to report.
type MsgConverted struct {
	Notice app.Notice
	Shown  bool
}

// MsgDestRequest is the running conversion asking where to save.
type MsgDestRequest struct {
	Suggested string
	reply     chan<- destReply
}

type destReply struct {
	dest string
	ok   bool
}

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.PreviewViewport.Width = msg.Width/2 - 4
		m.PreviewViewport.Height = msg.Height - 12 // title, label, buttons, status, help, borders
		m.Help.Width = msg.Width
		m.InputBuffer.Width = msg.Width - 30
		return m, nil

	case spinner.TickMsg:
		if !m.Busy {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case MsgPreview:
		if p, ok := m.selectedPath(); ok && p == msg.Path {
			m.PreviewFor = msg.Path
			m.PreviewLines = msg.Lines
			m.PreviewErr = msg.Err
			m.PreviewViewport.SetContent(m.previewContent())
			m.PreviewViewport.GotoTop()
		}
		return m, nil

	case MsgCombined:
		n := app.Notice(msg)
		m.Busy = false
		m.Notice = &n
		m.Status = ""
		if m.Quitting {
			return m, tea.Quit
		}
		return m, nil

	case MsgConverted:
		m.Busy = false
		m.Prompt = promptNone
		m.destReply = nil
		m.Status = ""
		if msg.Shown {
			n := msg.Notice
			m.Notice = &n
		}
		if m.Quitting {
			return m, tea.Quit
		}
		return m, nil

	case MsgDestRequest:
		if m.Quitting {
			msg.reply <- destReply{}
			return m, nil
		}
		m.destReply = msg.reply
		cmd = m.openPrompt(promptConvert, msg.Suggested)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if !m.Busy {
				return m, tea.Quit
			}
			// The running action still holds the office suite or a
			// half-written file; quit when its result arrives.
			m.Quitting = true
			m.Prompt = promptNone
			m.InputBuffer.Blur()
			m.cancelPendingDest()
			m.Status = "Finishing before exit..."
			return m, nil
		}

		// A dialog blocks everything until dismissed.
		if m.Notice != nil {
			switch msg.Type {
			case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
				m.Notice = nil
			}
			return m, nil
		}

		if m.Prompt != promptNone {
			return m.updatePrompt(msg)
		}

		if m.Busy {
			return m, nil
		}

		// Files dropped on the terminal arrive as a bracketed paste.
		if msg.Paste {
			cmd = m.drop(string(msg.Runes))
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
				return m, m.previewCmd()
			}
		case key.Matches(msg, m.keys.Down):
			if m.SelectedIdx < len(m.Files)-1 {
				m.SelectedIdx++
				return m, m.previewCmd()
			}
		case key.Matches(msg, m.keys.MoveUp):
			if m.SelectedIdx > 0 {
				m.Files = m.Session.Move(m.SelectedIdx, m.SelectedIdx-1)
				m.SelectedIdx--
			}
		case key.Matches(msg, m.keys.MoveDown):
			if m.SelectedIdx < len(m.Files)-1 {
				m.Files = m.Session.Move(m.SelectedIdx, m.SelectedIdx+1)
				m.SelectedIdx++
			}
		case key.Matches(msg, m.keys.Add):
			cmd = m.openPrompt(promptAdd, "")
		case key.Matches(msg, m.keys.Remove):
			m.Files = m.Session.Remove(m.SelectedIdx)
			m.clampSelection()
			return m, m.previewCmd()
		case key.Matches(msg, m.keys.Clear):
			m.Files = m.Session.Clear()
			m.clampSelection()
			m.Status = ""
		case key.Matches(msg, m.keys.Combine):
			if n, ok := m.Session.CheckCombine(); !ok {
				m.Notice = &n
				return m, nil
			}
			cmd = m.openPrompt(promptCombine, m.defaultCombinedPath())
		case key.Matches(msg, m.keys.Convert):
			if n, ok := m.Session.CheckConvert(); !ok {
				m.Notice = &n
				return m, nil
			}
			m.Busy = true
			m.Status = "Converting to PDF..."
			requests := make(chan MsgDestRequest)
			return m, tea.Batch(
				convertCmd(m.ctx, m.Session, requests),
				waitForDestRequest(requests),
				m.Spinner.Tick,
			)
		case key.Matches(msg, m.keys.Help):
			m.Help.ShowAll = !m.Help.ShowAll
		}
	}

	return m, cmd
}

// updatePrompt routes keys to the input line while a prompt is open.
func (m AppModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		return m.submitPrompt(m.InputBuffer.Value(), true)
	case tea.KeyEsc:
		return m.submitPrompt("", false)
	}
	m.InputBuffer, cmd = m.InputBuffer.Update(msg)
	return m, cmd
}

func (m AppModel) submitPrompt(value string, ok bool) (tea.Model, tea.Cmd) {
	kind := m.Prompt
	m.Prompt = promptNone
	m.InputBuffer.Blur()
	m.InputBuffer.SetValue("")

	var cmd tea.Cmd
	switch kind {
	case promptAdd:
		if ok {
			cmd = m.drop(value)
		}
	case promptCombine:
		// An empty or dismissed prompt still goes through the session so the
		// missing destination is reported like any other validation error.
		if !ok {
			value = ""
		}
		m.Busy = true
		m.Status = "Combining..."
		return m, tea.Batch(combineCmd(m.ctx, m.Session, model.ExpandTilde(value)), m.Spinner.Tick)
	case promptConvert:
		if m.destReply != nil {
			m.destReply <- destReply{dest: model.ExpandTilde(value), ok: ok}
			m.destReply = nil
		}
	}
	return m, cmd
}

func (m *AppModel) openPrompt(kind promptKind, value string) tea.Cmd {
	m.Prompt = kind
	m.InputBuffer.SetValue(value)
	m.InputBuffer.CursorEnd()
	return tea.Batch(m.InputBuffer.Focus(), textinput.Blink)
}

// cancelPendingDest unblocks a conversion waiting on the prompt.
func (m *AppModel) cancelPendingDest() {
	if m.destReply != nil {
		m.destReply <- destReply{}
		m.destReply = nil
	}
}

// drop adds the paths of a drop payload and refreshes the projection.
// Rejected paths are skipped without comment.
func (m *AppModel) drop(payload string) tea.Cmd {
	n := m.Session.Drop(payload)
	m.Files = m.Session.Files()
	if n == 0 {
		return nil
	}
	m.Status = fmt.Sprintf("Added %d file(s)", n)
	if len(m.Files) == n {
		m.SelectedIdx = 0
	}
	m.clampSelection()
	return m.previewCmd()
}

func (m *AppModel) clampSelection() {
	if m.SelectedIdx >= len(m.Files) {
		m.SelectedIdx = len(m.Files) - 1
	}
	if m.SelectedIdx < 0 {
		m.SelectedIdx = 0
	}
}

// defaultCombinedPath pre-fills the save-as prompt next to the first file.
func (m AppModel) defaultCombinedPath() string {
	if last, ok := m.Session.LastCombined(); ok {
		return last
	}
	if len(m.Files) == 0 {
		return model.DefaultCombinedName
	}
	return filepath.Join(filepath.Dir(m.Files[0]), model.DefaultCombinedName)
}

// previewCmd loads the selected document's text in the background.
func (m AppModel) previewCmd() tea.Cmd {
	path, ok := m.selectedPath()
	if !ok || path == m.PreviewFor {
		return nil
	}
	return func() tea.Msg {
		lines, err := preview.Text(path, previewLines)
		return MsgPreview{Path: path, Lines: lines, Err: err}
	}
}

func combineCmd(ctx context.Context, s *app.Session, dest string) tea.Cmd {
	return func() tea.Msg {
		return MsgCombined(s.Combine(ctx, dest))
	}
}

// convertCmd runs the conversion. When it needs a destination it sends a
// MsgDestRequest on requests and waits for the prompt's answer.
func convertCmd(ctx context.Context, s *app.Session, requests chan MsgDestRequest) tea.Cmd {
	return func() tea.Msg {
		defer close(requests)

		choose := func(suggested string) (string, bool) {
			reply := make(chan destReply, 1)
			select {
			case requests <- MsgDestRequest{Suggested: suggested, reply: reply}:
			case <-ctx.Done():
				return "", false
			}
			select {
			case r := <-reply:
				return r.dest, r.ok
			case <-ctx.Done():
				return "", false
			}
		}

		n, shown := s.Convert(ctx, choose)
		return MsgConverted{Notice: n, Shown: shown}
	}
}

// waitForDestRequest delivers the conversion's destination request to
// Update, or nothing when the conversion ended without asking.
func waitForDestRequest(requests <-chan MsgDestRequest) tea.Cmd {
	return func() tea.Msg {
		req, ok := <-requests
		if !ok {
			return nil
		}
		return req
	}
}
