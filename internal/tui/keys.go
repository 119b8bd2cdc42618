package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Add      key.Binding
	Remove   key.Binding
	Clear    key.Binding
	Combine  key.Binding
	Convert  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap(convert bool) keyMap {
	k := keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveUp:   key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move down")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add path")),
		Remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove selected")),
		Clear:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all")),
		Combine:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "combine")),
		Convert:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "convert to PDF")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	k.Convert.SetEnabled(convert)
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Combine, k.Convert, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.Add, k.Remove, k.Clear},
		{k.Combine, k.Convert, k.Help, k.Quit},
	}
}
