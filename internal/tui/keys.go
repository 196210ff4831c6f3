package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Enter        key.Binding
	Escape       key.Binding
	Filter       key.Binding
	StatusFilter key.Binding
	Select       key.Binding
	SelectAll    key.Binding
	Logs         key.Binding
	Shell        key.Binding
	Describe     key.Binding
	Edit         key.Binding
	Delete       key.Binding
	Scale        key.Binding
	ScaleUp      key.Binding
	ScaleDn      key.Binding
	Restart      key.Binding
	Sort         key.Binding
	SortRev      key.Binding
	Contexts     key.Binding
	Namespaces   key.Binding
	TabNext      key.Binding
	TabPrev      key.Binding
	Quit         key.Binding
}

var keys = keyMap{
	Up:           key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:         key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Top:          key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "top")),
	Bottom:       key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
	PageUp:       key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown:     key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
	Enter:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Escape:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	StatusFilter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
	Select:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
	SelectAll:    key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("^a", "mark all")),
	Logs:         key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "logs")),
	Shell:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shell")),
	Describe:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "describe")),
	Edit:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:       key.NewBinding(key.WithKeys("D", "delete"), key.WithHelp("D", "delete")),
	Scale:        key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "scale")),
	ScaleUp:      key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "scale up")),
	ScaleDn:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "scale down")),
	Restart:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Sort:         key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
	SortRev:      key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "reverse sort")),
	Contexts:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "contexts")),
	Namespaces:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "namespaces")),
	TabNext:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	TabPrev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev view")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
