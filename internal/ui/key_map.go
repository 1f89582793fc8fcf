package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	next      key.Binding
	timeRange key.Binding
	recommend key.Binding
	publish   key.Binding
	login     key.Binding
	back      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next list")),
		timeRange: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range")),
		recommend: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recommendations")),
		publish:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "save as playlist")),
		login:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.next},
		{k.timeRange, k.recommend, k.publish},
		{k.login, k.back, k.quit},
	}
}
