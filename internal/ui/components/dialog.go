package components

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)

	dialogTitleStyle = lipgloss.NewStyle().
				Bold(true)

	dialogHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// Dialog is a bordered modal box. Warnings use an orange accent, prompts blue.
type Dialog struct {
	Title  string
	Body   string
	Hint   string
	Accent lipgloss.Color
	Width  int
}

func NewWarningDialog(title, body string) Dialog {
	return Dialog{
		Title:  title,
		Body:   body,
		Hint:   "press any key to continue",
		Accent: lipgloss.Color("208"),
		Width:  50,
	}
}

func NewPromptDialog(title, body string) Dialog {
	return Dialog{
		Title:  title,
		Body:   body,
		Hint:   "enter to confirm • esc to cancel",
		Accent: lipgloss.Color("39"),
		Width:  60,
	}
}

func (d Dialog) View() string {
	content := dialogTitleStyle.Foreground(d.Accent).Render(d.Title) + "\n\n" + d.Body
	if d.Hint != "" {
		content += "\n\n" + dialogHintStyle.Render(d.Hint)
	}

	style := dialogStyle.BorderForeground(d.Accent)
	if d.Width > 0 {
		style = style.Width(d.Width)
	}
	return style.Render(content)
}
