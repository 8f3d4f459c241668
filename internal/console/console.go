// Package console implements the interactive task console: a form, a task
// table and the commands that connect them to the task service.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ldi/taskdesk/internal/tasks"
	"github.com/ldi/taskdesk/pkg/models"
)

const (
	titleInputError     = "Input Error"
	titleSelectionError = "Selection Error"
	titleLookupError    = "Lookup Error"
	titleStoreError     = "Error"
)

// Warning is shown to the user as a blocking dialog. The command that
// produced it left the store and the form untouched.
type Warning struct {
	Title   string
	Message string
	Err     error
}

func (w *Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.Title, w.Message)
}

func (w *Warning) Unwrap() error {
	return w.Err
}

// Form holds the current values of the five input fields.
type Form struct {
	Title       string
	Description string
	Category    string
	DueDate     string
	Priority    string
}

func NewForm() Form {
	return Form{Priority: strconv.Itoa(models.MinPriority)}
}

func (f *Form) Clear() {
	*f = NewForm()
}

// Draft converts the form into a task draft for creation.
func (f Form) Draft() (tasks.Draft, error) {
	priority, err := strconv.Atoi(strings.TrimSpace(f.Priority))
	if err != nil {
		return tasks.Draft{}, fmt.Errorf("%w: priority must be a number", tasks.ErrInvalidTask)
	}
	return tasks.Draft{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		DueDate:     f.DueDate,
		Priority:    priority,
	}, nil
}

// Patch converts the form into an update. An empty text box cannot be told
// apart from an untouched one, so it leaves the stored value in place.
func (f Form) Patch() (models.TaskPatch, error) {
	var p models.TaskPatch
	p.Title = nonEmpty(f.Title)
	p.Description = nonEmpty(f.Description)
	p.Category = nonEmpty(f.Category)
	p.DueDate = nonEmpty(f.DueDate)

	if s := strings.TrimSpace(f.Priority); s != "" {
		priority, err := strconv.Atoi(s)
		if err != nil {
			return models.TaskPatch{}, fmt.Errorf("%w: priority must be a number", tasks.ErrInvalidPatch)
		}
		p.Priority = &priority
	}
	return p, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Console is the command layer behind the task console. It holds the form,
// the visible rows and the current selection; it does no rendering.
type Console struct {
	Form Form

	svc      *tasks.Service
	log      *slog.Logger
	rows     []*models.Task
	selected *int64
	filter   string
}

func New(svc *tasks.Service, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{
		Form: NewForm(),
		svc:  svc,
		log:  log,
	}
}

func (c *Console) Rows() []*models.Task {
	return c.rows
}

// FilterLabel describes the filter behind the visible rows, or "" when
// every task is shown.
func (c *Console) FilterLabel() string {
	return c.filter
}

func (c *Console) Selected() (int64, bool) {
	if c.selected == nil {
		return 0, false
	}
	return *c.selected, true
}

func (c *Console) Select(id int64) {
	c.selected = &id
}

func (c *Console) ClearSelection() {
	c.selected = nil
}

func (c *Console) Add(ctx context.Context) error {
	d, err := c.Form.Draft()
	if err != nil {
		return c.warn("Please fill in all fields correctly.", err)
	}
	if err := d.Validate(); err != nil {
		return c.warn("Please fill in all fields correctly.", err)
	}

	if _, err := c.svc.Add(ctx, d); err != nil {
		return c.warn("Could not add task.", err)
	}
	c.Form.Clear()
	return c.ShowAll(ctx)
}

func (c *Console) Delete(ctx context.Context) error {
	id, ok := c.Selected()
	if !ok {
		return &Warning{Title: titleSelectionError, Message: "Please select a task to delete."}
	}

	if err := c.svc.Delete(ctx, id); err != nil {
		return c.warn("Could not delete task.", err)
	}
	return c.ShowAll(ctx)
}

func (c *Console) Update(ctx context.Context) error {
	id, ok := c.Selected()
	if !ok {
		return &Warning{Title: titleSelectionError, Message: "Please select a task to update."}
	}

	p, err := c.Form.Patch()
	if err != nil {
		return c.warn("Please fill in all fields correctly.", err)
	}
	if _, err := c.svc.Update(ctx, id, p); err != nil {
		return c.warn("Could not update task.", err)
	}
	c.Form.Clear()
	return c.ShowAll(ctx)
}

func (c *Console) MarkComplete(ctx context.Context) error {
	id, ok := c.Selected()
	if !ok {
		return &Warning{Title: titleSelectionError, Message: "Please select a task to mark complete."}
	}

	if _, err := c.svc.MarkComplete(ctx, id); err != nil {
		return c.warn("Could not mark task complete.", err)
	}
	return c.ShowAll(ctx)
}

// Filter replaces the rows with the tasks whose field equals value. A nil
// field or value means the prompt was cancelled: nothing happens.
func (c *Console) Filter(ctx context.Context, field, value *string) error {
	if field == nil || value == nil {
		c.log.Debug("filter cancelled")
		return nil
	}

	rows, err := c.svc.ListFiltered(ctx, *field, *value)
	if err != nil {
		return c.warn(fmt.Sprintf("Cannot filter by %q (use %s).", *field, models.FilterFieldNames()), err)
	}
	c.setRows(rows, fmt.Sprintf("%s=%s", strings.ToLower(strings.TrimSpace(*field)), *value))
	return nil
}

// ShowAll reloads every task from the store.
func (c *Console) ShowAll(ctx context.Context) error {
	rows, err := c.svc.ListAll(ctx)
	if err != nil {
		return c.warn("Could not load tasks.", err)
	}
	c.setRows(rows, "")
	return nil
}

func (c *Console) setRows(rows []*models.Task, filter string) {
	c.rows = rows
	c.filter = filter
	c.selected = nil
}

func (c *Console) warn(msg string, err error) *Warning {
	w := &Warning{Title: titleStoreError, Message: msg, Err: err}
	switch {
	case errors.Is(err, tasks.ErrInvalidTask),
		errors.Is(err, tasks.ErrInvalidPatch),
		errors.Is(err, models.ErrInvalidFilterField),
		errors.Is(err, models.ErrInvalidFilterValue):
		w.Title = titleInputError
		c.log.Debug("rejected input", "error", err)
		return w
	case errors.Is(err, models.ErrTaskNotFound):
		w.Title = titleLookupError
	}
	w.Message = fmt.Sprintf("%s %v", msg, err)
	c.log.Error("command failed", "error", err)
	return w
}
