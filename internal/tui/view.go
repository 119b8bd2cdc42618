package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"docmerge/internal/app"
	"docmerge/internal/model"
)

const (
	appTitle  = "Word File Merger"
	dropLabel = "Drag and drop .docx files below:"
)

func (m AppModel) View() string {
	width := m.WindowSize.Width
	height := m.WindowSize.Height
	if width == 0 {
		width, height = 80, 24
	}

	if m.Notice != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.renderNotice(*m.Notice))
	}

	// Layout dimensions
	// Subtracting 4 for the two panel borders
	// Subtracting 10 for title, label, buttons, status, help and borders
	netWidth := width - 4
	if netWidth < 30 {
		netWidth = 30
	}
	listWidth := netWidth * 3 / 5
	previewWidth := netWidth - listWidth

	interiorHeight := height - 10
	if interiorHeight < 3 {
		interiorHeight = 3
	}

	var b strings.Builder
	b.WriteString(m.Theme.Title.Render(appTitle))
	b.WriteString("\n")
	b.WriteString(m.Theme.Label.Render(dropLabel))
	b.WriteString("\n")

	list := m.Theme.Panel.
		Width(listWidth).
		Height(interiorHeight).
		BorderForeground(m.Theme.ActiveBox).
		Render(m.renderList(listWidth, interiorHeight))
	prev := m.Theme.Panel.
		Width(previewWidth).
		Height(interiorHeight).
		Render(m.renderPreview(previewWidth, interiorHeight))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, prev))
	b.WriteString("\n")

	b.WriteString(m.renderButtons())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.Help.View(m.keys))

	return b.String()
}

// renderList draws the merge list, windowed around the selection.
func (m AppModel) renderList(width, height int) string {
	if len(m.Files) == 0 {
		return m.Theme.Dim.Render("No files yet. Drop .docx files on this window or press 'a'.")
	}

	visibleItems := height
	startIdx := 0
	endIdx := len(m.Files)
	if len(m.Files) > visibleItems {
		if m.SelectedIdx >= visibleItems/2 {
			startIdx = m.SelectedIdx - visibleItems/2
		}
		if startIdx+visibleItems > len(m.Files) {
			startIdx = len(m.Files) - visibleItems
		}
		endIdx = startIdx + visibleItems
	}

	var rows []string
	for i := startIdx; i < endIdx; i++ {
		path := m.Files[i]

		icon := model.IconDocument
		if i == 0 {
			icon = model.IconFirst
		}
		missing := !model.FileExists(path)
		if missing {
			icon = model.IconMissing
		}

		cursor := " "
		if i == m.SelectedIdx {
			cursor = model.IconCursor
		}

		line := fmt.Sprintf("%s%2d. %s %s", cursor, i+1, icon, model.DisplayName(path))
		if dir := filepath.Dir(path); dir != "." {
			line += "  " + dir
		}
		line = truncate(line, width)

		style := m.Theme.Normal
		switch {
		case i == m.SelectedIdx:
			style = m.Theme.Selected
		case missing:
			style = m.Theme.Missing
		}
		rows = append(rows, style.Render(line))
	}
	return strings.Join(rows, "\n")
}

func (m AppModel) renderPreview(width, height int) string {
	path, ok := m.selectedPath()
	if !ok {
		return m.Theme.Dim.Render("Preview")
	}
	header := m.Theme.Label.Render(truncate(model.DisplayName(path), width))
	if m.PreviewFor != path {
		return header + "\n" + m.Theme.Dim.Render("loading...")
	}
	vp := m.PreviewViewport
	vp.Width = width
	vp.Height = height - 1
	return header + "\n" + vp.View()
}

func (m AppModel) previewContent() string {
	if m.PreviewErr != nil {
		return fmt.Sprintf("Cannot preview: %v", m.PreviewErr)
	}
	if len(m.PreviewLines) == 0 {
		return "(empty document)"
	}
	return strings.Join(m.PreviewLines, "\n\n")
}

// renderButtons draws the action bar. The convert button only exists in the
// variant that offers conversion.
func (m AppModel) renderButtons() string {
	type button struct{ key, label string }
	buttons := []button{{"c", "Combine to Word"}}
	if m.Session.ConversionOffered() {
		buttons = append(buttons, button{"p", "Convert Combined to PDF"})
	}
	buttons = append(buttons,
		button{"x", "Remove Selected File"},
		button{"X", "Clear All Files"},
	)

	var out []string
	for _, b := range buttons {
		out = append(out, m.Theme.Button.Render(m.Theme.ButtonKey.Render(b.key)+" "+b.label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m AppModel) renderStatus() string {
	switch m.Prompt {
	case promptAdd:
		return m.Theme.Prompt.Render("Add file(s): ") + m.InputBuffer.View()
	case promptCombine:
		return m.Theme.Prompt.Render("Save combined .docx as: ") + m.InputBuffer.View()
	case promptConvert:
		return m.Theme.Prompt.Render("Save PDF as: ") + m.InputBuffer.View()
	}
	if m.Busy {
		return m.Spinner.View() + " " + m.Theme.Status.Render(m.Status)
	}
	summary := fmt.Sprintf("%d file(s)", len(m.Files))
	if last, ok := m.Session.LastCombined(); ok {
		summary += " | last combined: " + model.DisplayName(last)
	}
	if m.Status != "" {
		summary = m.Status + " | " + summary
	}
	return m.Theme.Status.Render(summary)
}

func (m AppModel) renderNotice(n app.Notice) string {
	style := m.Theme.DialogInfo
	icon := model.IconOK
	switch n.Level {
	case app.LevelWarning:
		style = m.Theme.DialogWarn
		icon = model.IconWarn
	case app.LevelError:
		style = m.Theme.DialogError
		icon = model.IconMissing
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.Theme.Prompt.Render(icon+" "+n.Title),
		"",
		n.Message,
		"",
		m.Theme.Dim.Render("[enter] OK"),
	)
	return style.Render(body)
}

func truncate(s string, width int) string {
	if width < 4 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-3 {
		r = r[:width-3]
	}
	return string(r) + "..."
}
