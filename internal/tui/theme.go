package tui

import (
	"github.com/charmbracelet/lipgloss"

	"docmerge/internal/config"
)

// Theme is the full set of styles the view draws with. The two variants
// differ only here.
type Theme struct {
	Name string

	Title     lipgloss.Style
	Label     lipgloss.Style
	Selected  lipgloss.Style
	Normal    lipgloss.Style
	Dim       lipgloss.Style
	Missing   lipgloss.Style
	Panel     lipgloss.Style
	ActiveBox lipgloss.Color
	Button    lipgloss.Style
	ButtonKey lipgloss.Style
	Status    lipgloss.Style
	Prompt    lipgloss.Style

	DialogInfo  lipgloss.Style
	DialogWarn  lipgloss.Style
	DialogError lipgloss.Style
}

// ClassicTheme mirrors a plain desktop window: neutral greys, square borders.
func ClassicTheme() Theme {
	border := lipgloss.Color("245")
	return Theme{
		Name: config.ThemeClassic,

		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Padding(0, 1),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("25")),
		Normal:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Missing:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Panel:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(border),
		ActiveBox: lipgloss.Color("252"),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("250")).
			Padding(0, 1).
			MarginRight(1),
		ButtonKey: lipgloss.NewStyle().Bold(true).Underline(true),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),

		DialogInfo:  dialog(lipgloss.Color("250")),
		DialogWarn:  dialog(lipgloss.Color("178")),
		DialogError: dialog(lipgloss.Color("160")),
	}
}

// ThemedTheme is the dark, rounded, violet variant.
func ThemedTheme() Theme {
	accent := lipgloss.Color("#7D56F4")
	return Theme{
		Name: config.ThemeThemed,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true), // Sky Blue/Cyan
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		Normal:    lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Missing:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // Orange
		Panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")),
		ActiveBox: lipgloss.Color("205"),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1).
			MarginRight(1),
		ButtonKey: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")), // Pinkish
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),

		DialogInfo:  dialog(accent),
		DialogWarn:  dialog(lipgloss.Color("208")),
		DialogError: dialog(lipgloss.Color("196")),
	}
}

func dialog(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.DoubleBorder()).
		BorderForeground(border)
}

// ThemeByName returns the theme for a --theme value, defaulting to classic.
func ThemeByName(name string) Theme {
	if name == config.ThemeThemed {
		return ThemedTheme()
	}
	return ClassicTheme()
}
