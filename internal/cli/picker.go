package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fustilio/glost/pkg/extension"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ExtensionListModel - Interactive extension selection
// =============================================================================

// ExtensionListModel is the bubbletea model for interactive multi-select
// of extensions. Space toggles, enter confirms, q cancels.
type ExtensionListModel struct {
	Extensions []*extension.Extension
	Cursor     int
	Checked    map[int]bool
	Confirmed  bool
}

// NewExtensionListModel creates a picker over the registry's extensions.
// Ids in preselected start out checked; an empty preselection checks all.
func NewExtensionListModel(exts []*extension.Extension, preselected []string) ExtensionListModel {
	checked := make(map[int]bool, len(exts))
	if len(preselected) == 0 {
		for i := range exts {
			checked[i] = true
		}
	} else {
		want := make(map[string]bool, len(preselected))
		for _, id := range preselected {
			want[id] = true
		}
		for i, e := range exts {
			checked[i] = want[e.ID]
		}
	}
	return ExtensionListModel{Extensions: exts, Checked: checked}
}

func (m ExtensionListModel) Init() tea.Cmd {
	return nil
}

func (m ExtensionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Extensions)-1 {
				m.Cursor++
			}
		case " ":
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		case "a":
			for i := range m.Extensions {
				m.Checked[i] = true
			}
		case "n":
			for i := range m.Extensions {
				m.Checked[i] = false
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ExtensionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Extensions"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  n none  ⏎ confirm  q cancel"))
	b.WriteString("\n\n")

	for i, e := range m.Extensions {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		box := "[ ]"
		if m.Checked[i] {
			box = "[" + StyleSuccess.Render("✓") + "]"
		}

		deps := ""
		if len(e.Dependencies) > 0 {
			deps = listDimStyle.Render("  after " + strings.Join(e.Dependencies, ", "))
		}

		line := fmt.Sprintf("%s%s %-16s%s", cursor, box, e.ID, deps)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if m.Checked[i] {
			b.WriteString(listNormalStyle.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d selected]", m.selectedCount(), len(m.Extensions))))

	return b.String()
}

func (m ExtensionListModel) selectedCount() int {
	n := 0
	for _, ok := range m.Checked {
		if ok {
			n++
		}
	}
	return n
}

// Selected returns the checked extension ids in registration order.
func (m ExtensionListModel) Selected() []string {
	var ids []string
	for i, e := range m.Extensions {
		if m.Checked[i] {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// pickExtensions runs the interactive picker and returns the chosen ids.
// A cancelled picker returns nil without error.
func pickExtensions(registry *extension.Registry, preselected []string) ([]string, error) {
	model := NewExtensionListModel(registry.All(), preselected)
	p := tea.NewProgram(model)

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("extension picker: %w", err)
	}
	m, ok := final.(ExtensionListModel)
	if !ok || !m.Confirmed {
		return nil, nil
	}
	return m.Selected(), nil
}
