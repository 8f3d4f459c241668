package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	logoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	taglineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	groupStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
)

const logo = `
 _            _     _           _
| |_ __ _ ___| | __| | ___  ___| | __
| __/ _' / __| |/ /| |/ _ \/ __| |/ /
| || (_| \__ \   < | |  __/\__ \   <
 \__\__,_|___/_|\_\|_|\___||___/_|\_\
`

// menuItem names a CLI command and says what it does.
type menuItem struct {
	command string
	desc    string
}

type menuGroup struct {
	title string
	items []menuItem
}

// Read commands come first; anything that writes files or opens a
// listener sits below them.
var menuGroups = []menuGroup{
	{"Read", []menuItem{
		{"console", "open the task console"},
		{"list-tasks", "print every task"},
		{"status", "show task counts"},
	}},
	{"Serve", []menuItem{
		{"web", "serve the JSON API"},
		{"mcp", "serve MCP over stdio"},
	}},
	{"Write", []menuItem{
		{"export", "write a JSONL snapshot"},
		{"init", "set up .taskdesk/ here"},
	}},
}

type MenuModel struct {
	groups   []menuGroup
	items    []menuItem
	cursor   int
	selected string
	quitting bool
}

func NewMenuModel() MenuModel {
	m := MenuModel{groups: menuGroups}
	for _, g := range m.groups {
		m.items = append(m.items, g.items...)
	}
	return m
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch s := key.String(); s {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.items)-1)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.items) - 1
	case "enter":
		m.selected = m.items[m.cursor].command
		return m, tea.Quit
	default:
		// Digits pick an entry by its on-screen number.
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if n := int(s[0] - '1'); n < len(m.items) {
				m.cursor = n
				m.selected = m.items[n].command
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(logoStyle.Render(logo))
	s.WriteString("\n")
	s.WriteString(taglineStyle.Render("a small to-do list"))
	s.WriteString("\n")

	i := 0
	for _, g := range m.groups {
		s.WriteString("\n")
		s.WriteString(groupStyle.Render(g.title))
		s.WriteString("\n")
		for _, item := range g.items {
			line := fmt.Sprintf("%d %-12s %s", i+1, item.command, item.desc)
			if m.cursor == i {
				s.WriteString(selectedItemStyle.Render("> " + line))
			} else {
				s.WriteString(itemStyle.Render("  " + line))
			}
			s.WriteString("\n")
			i++
		}
	}

	s.WriteString("\n(j/k or arrows to move, enter or a number to run, q to quit)\n")

	return s.String()
}

func (m MenuModel) Selected() string {
	return m.selected
}

func RunMenu() (string, error) {
	p := tea.NewProgram(NewMenuModel())
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	return finalModel.(MenuModel).Selected(), nil
}
