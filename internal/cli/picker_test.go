package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/extension"
)

func pickerExts(t *testing.T) []*extension.Extension {
	t.Helper()
	noop := func(ctx context.Context, w *doctree.Node) (map[string]any, error) { return nil, nil }
	return []*extension.Extension{
		{ID: "transcription", Enhance: noop},
		{ID: "respelling", Dependencies: []string{"transcription"}, Enhance: noop},
		{ID: "stats", Enhance: noop},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPickerPreselection(t *testing.T) {
	m := NewExtensionListModel(pickerExts(t), nil)
	if got := m.Selected(); len(got) != 3 {
		t.Errorf("empty preselection should check all, got %v", got)
	}

	m = NewExtensionListModel(pickerExts(t), []string{"stats"})
	if got := m.Selected(); len(got) != 1 || got[0] != "stats" {
		t.Errorf("Selected = %v", got)
	}
}

func TestPickerToggleAndConfirm(t *testing.T) {
	m := NewExtensionListModel(pickerExts(t), nil)

	// Untoggle the first entry, then confirm.
	next, _ := m.Update(key(" "))
	next, _ = next.(ExtensionListModel).Update(key("enter"))
	final := next.(ExtensionListModel)

	if !final.Confirmed {
		t.Error("enter should confirm")
	}
	got := final.Selected()
	if len(got) != 2 || got[0] != "respelling" {
		t.Errorf("Selected = %v", got)
	}
}

func TestPickerNavigationBounds(t *testing.T) {
	m := NewExtensionListModel(pickerExts(t), nil)

	next, _ := m.Update(key("up"))
	if next.(ExtensionListModel).Cursor != 0 {
		t.Error("cursor moved above first entry")
	}
	for i := 0; i < 5; i++ {
		next, _ = next.(ExtensionListModel).Update(key("down"))
	}
	if next.(ExtensionListModel).Cursor != 2 {
		t.Errorf("cursor = %d, want clamped to 2", next.(ExtensionListModel).Cursor)
	}
}

func TestPickerAllNone(t *testing.T) {
	m := NewExtensionListModel(pickerExts(t), []string{"stats"})

	next, _ := m.Update(key("n"))
	if got := next.(ExtensionListModel).Selected(); len(got) != 0 {
		t.Errorf("n should clear selection, got %v", got)
	}
	next, _ = next.(ExtensionListModel).Update(key("a"))
	if got := next.(ExtensionListModel).Selected(); len(got) != 3 {
		t.Errorf("a should select all, got %v", got)
	}
}

func TestPickerView(t *testing.T) {
	m := NewExtensionListModel(pickerExts(t), nil)
	view := m.View()
	for _, want := range []string{"transcription", "respelling", "stats", "[3/3 selected]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
