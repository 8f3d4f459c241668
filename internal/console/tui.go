package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ldi/taskdesk/internal/ui/components"
	"github.com/ldi/taskdesk/pkg/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Width(24).
			Foreground(lipgloss.Color("252"))

	focusedLabelStyle = labelStyle.
				Foreground(lipgloss.Color("12")).
				Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("110")).
			Padding(0, 1)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	tableBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const (
	fieldTitle = iota
	fieldDescription
	fieldCategory
	fieldDueDate
	fieldPriority
	focusTable
)

var fieldLabels = []string{
	"Title",
	"Description",
	"Category",
	"Due Date (YYYY-MM-DD)",
	"Priority (1-5)",
}

var columns = []table.Column{
	{Title: "ID", Width: 5},
	{Title: "Title", Width: 20},
	{Title: "Description", Width: 24},
	{Title: "Category", Width: 12},
	{Title: "Due Date", Width: 10},
	{Title: "Priority", Width: 8},
	{Title: "Status", Width: 10},
}

// filterPrompt collects the field name and then the value. A nil result
// means the user cancelled.
type filterPrompt struct {
	step  int
	field string
	input textinput.Model
}

type Model struct {
	ctx     context.Context
	console *Console
	inputs  []textinput.Model
	table   table.Model
	focus   int
	prompt  *filterPrompt
	warning *Warning
	width   int
	height  int

	quitting bool
}

func NewModel(ctx context.Context, c *Console) *Model {
	inputs := make([]textinput.Model, len(fieldLabels))
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[fieldDueDate].Placeholder = "2025-01-01"
	inputs[fieldPriority].CharLimit = 2

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	m := &Model{
		ctx:     ctx,
		console: c,
		inputs:  inputs,
		table:   t,
	}
	m.loadForm()
	m.inputs[fieldTitle].Focus()
	m.refreshTable()
	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.warning != nil {
			m.warning = nil
			return m, nil
		}
		if m.prompt != nil {
			return m, m.updatePrompt(msg)
		}

		switch msg.String() {
		case "tab", "down":
			if m.focus != focusTable || msg.String() == "tab" {
				return m, m.moveFocus(1)
			}
		case "shift+tab", "up":
			if m.focus != focusTable || msg.String() == "shift+tab" {
				return m, m.moveFocus(-1)
			}
		}

		if m.focus == focusTable {
			return m, m.updateTable(msg)
		}
		if msg.Type == tea.KeyEnter {
			m.run(m.console.Add)
			return m, nil
		}
	}

	if m.focus < focusTable {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateTable(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		m.quitting = true
		return tea.Quit
	case "enter", " ":
		m.toggleSelection()
	case "esc":
		m.console.ClearSelection()
		m.refreshTable()
	case "d":
		m.run(m.console.Delete)
	case "u":
		m.run(m.console.Update)
	case "c":
		m.run(m.console.MarkComplete)
	case "f":
		return m.openPrompt()
	case "r":
		m.run(m.console.ShowAll)
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) toggleSelection() {
	rows := m.console.Rows()
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(rows) {
		return
	}

	id := rows[cursor].ID
	if cur, ok := m.console.Selected(); ok && cur == id {
		m.console.ClearSelection()
	} else {
		m.console.Select(id)
	}
	m.refreshTable()
}

func (m *Model) openPrompt() tea.Cmd {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Width = 40
	m.prompt = &filterPrompt{input: ti}
	return m.prompt.input.Focus()
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = nil
		m.run(func(ctx context.Context) error { return m.console.Filter(ctx, nil, nil) })
		return nil
	case tea.KeyEnter:
		value := m.prompt.input.Value()
		if m.prompt.step == 0 {
			m.prompt.field = value
			m.prompt.step = 1
			m.prompt.input.Reset()
			return nil
		}
		field := m.prompt.field
		m.prompt = nil
		m.run(func(ctx context.Context) error { return m.console.Filter(ctx, &field, &value) })
		return nil
	}

	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return cmd
}

// run executes a console command and refreshes the view from its result.
func (m *Model) run(cmd func(ctx context.Context) error) {
	m.storeForm()
	err := cmd(m.ctx)

	var w *Warning
	if errors.As(err, &w) {
		m.warning = w
	} else if err != nil {
		m.warning = &Warning{Title: titleStoreError, Message: err.Error(), Err: err}
	}

	m.loadForm()
	m.refreshTable()
}

func (m *Model) moveFocus(direction int) tea.Cmd {
	if m.focus < focusTable {
		m.inputs[m.focus].Blur()
	} else {
		m.table.Blur()
	}

	m.focus = (m.focus + direction + focusTable + 1) % (focusTable + 1)

	if m.focus == focusTable {
		m.table.Focus()
		return nil
	}
	return m.inputs[m.focus].Focus()
}

func (m *Model) storeForm() {
	m.console.Form = Form{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.inputs[fieldDescription].Value(),
		Category:    m.inputs[fieldCategory].Value(),
		DueDate:     m.inputs[fieldDueDate].Value(),
		Priority:    m.inputs[fieldPriority].Value(),
	}
}

func (m *Model) loadForm() {
	f := m.console.Form
	m.inputs[fieldTitle].SetValue(f.Title)
	m.inputs[fieldDescription].SetValue(f.Description)
	m.inputs[fieldCategory].SetValue(f.Category)
	m.inputs[fieldDueDate].SetValue(f.DueDate)
	m.inputs[fieldPriority].SetValue(f.Priority)
}

// refreshTable rebuilds every row from the console's current rows.
func (m *Model) refreshTable() {
	selected, hasSelection := m.console.Selected()
	tasks := m.console.Rows()

	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		id := strconv.FormatInt(t.ID, 10)
		if hasSelection && t.ID == selected {
			id = "* " + id
		}
		rows = append(rows, table.Row{
			id,
			t.Title,
			t.Description,
			t.Category,
			t.DueDate,
			strconv.Itoa(t.Priority),
			string(t.Status),
		})
	}
	m.table.SetRows(rows)

	// An empty table leaves the cursor at -1; pull it back once rows exist.
	if c := m.table.Cursor(); len(rows) > 0 && (c < 0 || c >= len(rows)) {
		m.table.SetCursor(min(max(c, 0), len(rows)-1))
	}
}

func (m *Model) resizeTable() {
	// header, form, button, summary, actions and help take roughly 18 lines
	h := m.height - 18
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	header := headerStyle.Render("To-Do List")

	if m.warning != nil {
		dialog := components.NewWarningDialog(m.warning.Title, m.warning.Message)
		return header + "\n\n" + dialog.View() + "\n"
	}
	if m.prompt != nil {
		return header + "\n\n" + m.promptView() + "\n"
	}

	var s strings.Builder
	s.WriteString(header)
	s.WriteString("\n\n")
	s.WriteString(m.formView())
	s.WriteString("\n\n")
	s.WriteString(m.summaryView())
	s.WriteString("\n")
	s.WriteString(tableBorderStyle.Render(m.table.View()))
	s.WriteString("\n")
	s.WriteString(m.actionsView())
	s.WriteString("\n")
	s.WriteString(m.helpView())
	return s.String()
}

func (m *Model) formView() string {
	var lines []string
	for i, label := range fieldLabels {
		style := labelStyle
		if m.focus == i {
			style = focusedLabelStyle
		}
		lines = append(lines, style.Render(label)+" "+m.inputs[i].View())
	}
	lines = append(lines, "", buttonStyle.Render("Add Task")+" "+helpStyle.Render("(enter)"))
	return strings.Join(lines, "\n")
}

func (m *Model) summaryView() string {
	summary := components.SummarizeTasks(m.console.Rows())
	summary.Filter = m.console.FilterLabel()
	line := summary.View()
	if id, ok := m.console.Selected(); ok {
		line = lipgloss.JoinHorizontal(lipgloss.Center, line, "  ", helpStyle.Render(fmt.Sprintf("selected: #%d", id)))
	}
	return line
}

func (m *Model) actionsView() string {
	actions := []struct{ key, label string }{
		{"d", "Delete Task"},
		{"u", "Update Task"},
		{"c", "Mark Complete"},
		{"f", "Filter Tasks"},
		{"r", "Show All Tasks"},
	}
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = actionStyle.Render(keyStyle.Render("["+a.key+"]") + " " + a.label)
	}
	return strings.Join(parts, "")
}

func (m *Model) promptView() string {
	p := m.prompt
	question := fmt.Sprintf("Filter by (%s):", models.FilterFieldNames())
	if p.step == 1 {
		question = fmt.Sprintf("Enter value for %s:", p.field)
	}
	dialog := components.NewPromptDialog("Filter", question+"\n\n"+p.input.View())
	return dialog.View()
}

func (m *Model) helpView() string {
	help := "tab/shift+tab to move • enter adds from the form • in the table: enter/space selects, esc clears • q or ctrl+c to quit"
	return helpStyle.Render(help)
}

// Run loads every task and starts the console.
func Run(ctx context.Context, c *Console) error {
	if err := c.ShowAll(ctx); err != nil {
		return err
	}

	m := NewModel(ctx, c)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
