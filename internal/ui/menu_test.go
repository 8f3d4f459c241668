package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func pressMenu(m MenuModel, msg tea.KeyMsg) (MenuModel, tea.Cmd) {
	model, cmd := m.Update(msg)
	return model.(MenuModel), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMenuModel(t *testing.T) {
	m := NewMenuModel()

	if m.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", m.cursor)
	}

	m, _ = pressMenu(m, runes("j"))
	if m.cursor != 1 {
		t.Errorf("expected cursor 1 after 'j', got %d", m.cursor)
	}

	m, _ = pressMenu(m, runes("k"))
	if m.cursor != 0 {
		t.Errorf("expected cursor 0 after 'k', got %d", m.cursor)
	}

	m, cmd := pressMenu(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected() != "console" {
		t.Errorf("expected selection 'console', got %s", m.Selected())
	}
	if cmd == nil {
		t.Error("expected quit command after enter")
	}

	m, _ = pressMenu(m, runes("q"))
	if !m.quitting {
		t.Error("expected quitting true after 'q'")
	}
}

func TestMenuItemsFollowGroupOrder(t *testing.T) {
	m := NewMenuModel()

	var want []string
	for _, g := range m.groups {
		if len(g.items) == 0 {
			t.Errorf("group %q is empty", g.title)
		}
		for _, item := range g.items {
			want = append(want, item.command)
		}
	}
	if len(m.items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(m.items))
	}
	for i, item := range m.items {
		if item.command != want[i] {
			t.Errorf("item %d: expected %s, got %s", i, want[i], item.command)
		}
	}
	if m.groups[0].title != "Read" {
		t.Errorf("expected read commands first, got %q", m.groups[0].title)
	}
}

func TestMenuCursorStaysInBounds(t *testing.T) {
	m := NewMenuModel()

	m, _ = pressMenu(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("expected cursor 0 after up at top, got %d", m.cursor)
	}

	for i := 0; i < len(m.items)+3; i++ {
		m, _ = pressMenu(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.cursor != len(m.items)-1 {
		t.Errorf("expected cursor %d at bottom, got %d", len(m.items)-1, m.cursor)
	}

	m, _ = pressMenu(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected() != "init" {
		t.Errorf("expected selection 'init', got %s", m.Selected())
	}
}

func TestMenuJumpKeys(t *testing.T) {
	m := NewMenuModel()

	m, _ = pressMenu(m, runes("G"))
	if m.cursor != len(m.items)-1 {
		t.Errorf("expected cursor at last item after 'G', got %d", m.cursor)
	}
	m, _ = pressMenu(m, runes("g"))
	if m.cursor != 0 {
		t.Errorf("expected cursor 0 after 'g', got %d", m.cursor)
	}
}

func TestMenuNumberSelects(t *testing.T) {
	m := NewMenuModel()

	m, cmd := pressMenu(m, runes("4"))
	if m.Selected() != m.items[3].command {
		t.Errorf("expected selection %s, got %s", m.items[3].command, m.Selected())
	}
	if cmd == nil {
		t.Error("expected quit command after number")
	}

	m = NewMenuModel()
	m, cmd = pressMenu(m, runes("9"))
	if m.Selected() != "" || cmd != nil {
		t.Errorf("expected out-of-range number to be ignored, got %q", m.Selected())
	}
}

func TestMenuViewShowsGroups(t *testing.T) {
	view := NewMenuModel().View()

	for _, g := range menuGroups {
		if !strings.Contains(view, g.title) {
			t.Errorf("view missing group %q", g.title)
		}
		for _, item := range g.items {
			if !strings.Contains(view, item.desc) {
				t.Errorf("view missing description %q", item.desc)
			}
		}
	}
	if strings.Index(view, "list-tasks") > strings.Index(view, "export") {
		t.Error("expected read commands above write commands")
	}
}

func TestMenuViewEmptyWhenQuitting(t *testing.T) {
	m, _ := pressMenu(NewMenuModel(), tea.KeyMsg{Type: tea.KeyCtrlC})
	if v := m.View(); v != "" {
		t.Errorf("expected empty view after quit, got %q", v)
	}
}
