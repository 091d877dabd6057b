package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/quickbrown/typist/internal/texts"
)

type itemKind int

const (
	itemText itemKind = iota
	itemSample
	itemQuit
)

type pickerItem struct {
	kind  itemKind
	entry texts.Entry
}

// Title implements list.DefaultItem.
func (i pickerItem) Title() string {
	switch i.kind {
	case itemSample:
		return "Sample text"
	case itemQuit:
		return "Quit"
	default:
		return i.entry.Name
	}
}

// Description implements list.DefaultItem.
func (i pickerItem) Description() string {
	switch i.kind {
	case itemSample:
		return "a short built-in passage"
	case itemQuit:
		return "leave without practicing"
	default:
		return fmt.Sprintf("%s · %d bytes", i.entry.Path, i.entry.Size)
	}
}

// FilterValue implements list.Item.
func (i pickerItem) FilterValue() string {
	return i.Title()
}

func newPicker(dir string) list.Model {
	entries, err := texts.Scan(dir)
	if err != nil {
		logErrf("failed to scan texts: %v\n", err)
	}
	items := make([]list.Item, 0, len(entries)+2)
	for _, e := range entries {
		items = append(items, pickerItem{kind: itemText, entry: e})
	}
	items = append(items, pickerItem{kind: itemSample}, pickerItem{kind: itemQuit})

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Choose a text to practice"
	l.SetShowStatusBar(false)
	return l
}
