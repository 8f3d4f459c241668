package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ldi/taskdesk/pkg/models"
)

var (
	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)

	incompleteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	filterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Italic(true).
			Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)
)

// TaskSummary renders the number of complete and incomplete tasks among the
// visible rows.
type TaskSummary struct {
	Complete   int
	Incomplete int
	// Filter describes the active filter, if any.
	Filter string
}

func SummarizeTasks(tasks []*models.Task) TaskSummary {
	var s TaskSummary
	for _, t := range tasks {
		if t.Status == models.TaskStatusComplete {
			s.Complete++
		} else {
			s.Incomplete++
		}
	}
	return s
}

func (s TaskSummary) View() string {
	if s.Complete+s.Incomplete == 0 {
		content := placeholderStyle.Render("No tasks yet")
		if s.Filter != "" {
			content = placeholderStyle.Render("No tasks match " + s.Filter)
		}
		return content
	}

	boxes := []string{
		incompleteStyle.Render(fmt.Sprintf("○ %d incomplete", s.Incomplete)),
		completeStyle.Render(fmt.Sprintf("✓ %d complete", s.Complete)),
	}
	if s.Filter != "" {
		boxes = append(boxes, filterStyle.Render("filter: "+s.Filter))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, spaced(boxes)...)
}

func spaced(items []string) []string {
	out := make([]string, 0, len(items)*2)
	for i, it := range items {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, strings.TrimRight(it, "\n"))
	}
	return out
}
