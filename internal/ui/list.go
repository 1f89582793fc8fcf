package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/statify/internal/formatter"
)

var (
	_ list.Item = rowItem{}
	_ list.Item = cardItem{}
)

// rowItem wraps [formatter.Row] to implement [list.Item].
type rowItem struct {
	row formatter.Row
}

func (i rowItem) FilterValue() string { return i.row.Title }
func (i rowItem) Title() string       { return fmt.Sprintf("%d. %s", i.row.Rank, i.row.Title) }
func (i rowItem) Description() string { return i.row.Subtitle }

// cardItem wraps [formatter.Card] to implement [list.Item].
type cardItem struct {
	card formatter.Card
}

func (i cardItem) FilterValue() string { return i.card.Title }
func (i cardItem) Title() string       { return i.card.Title }
func (i cardItem) Description() string {
	if i.card.Link == "" {
		return i.card.Subtitle
	}
	return fmt.Sprintf("%s • %s", i.card.Subtitle, i.card.Link)
}

func rowItems(rows []formatter.Row) []list.Item {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = rowItem{row: r}
	}
	return items
}

func cardItems(cards []formatter.Card) []list.Item {
	items := make([]list.Item, len(cards))
	for i, c := range cards {
		items[i] = cardItem{card: c}
	}
	return items
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	return l
}
