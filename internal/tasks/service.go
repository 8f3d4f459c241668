// Package tasks sits between the console and the store. It owns input
// validation so that every caller rejects bad drafts before a store call.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ldi/taskdesk/pkg/models"
)

// Store is the persistence port. *db.DB implements it.
type Store interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	UpdateTask(ctx context.Context, id int64, p models.TaskPatch) (*models.Task, error)
	MarkComplete(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context) ([]*models.Task, error)
	ListTasksBy(ctx context.Context, field models.FilterField, value string) ([]*models.Task, error)
	CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error)
}

// Stats counts tasks by status.
type Stats struct {
	Total      int `json:"total"`
	Complete   int `json:"complete"`
	Incomplete int `json:"incomplete"`
}

// Draft holds the user-supplied fields of a new task.
type Draft struct {
	Title       string
	Description string
	Category    string
	DueDate     string
	Priority    int
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if strings.TrimSpace(d.DueDate) == "" {
		return fmt.Errorf("%w: due date is required", ErrInvalidTask)
	}
	if d.Priority < models.MinPriority || d.Priority > models.MaxPriority {
		return fmt.Errorf("%w: priority must be between %d and %d, got %d",
			ErrInvalidTask, models.MinPriority, models.MaxPriority, d.Priority)
	}
	return nil
}

type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log}
}

func (s *Service) Add(ctx context.Context, d Draft) (*models.Task, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	t := &models.Task{
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("task created", "id", t.ID, "title", t.Title)
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %d", models.ErrTaskNotFound, id)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		s.log.Debug("nothing to delete", "id", id)
		return nil
	}
	s.log.Info("task deleted", "id", id)
	return nil
}

func (s *Service) Update(ctx context.Context, id int64, p models.TaskPatch) (*models.Task, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidPatch)
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidPatch, *p.Status)
	}
	t, err := s.store.UpdateTask(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("task updated", "id", id)
	return t, nil
}

func (s *Service) MarkComplete(ctx context.Context, id int64) (*models.Task, error) {
	t, err := s.store.MarkComplete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("task completed", "id", id)
	return t, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*models.Task, error) {
	return s.store.ListTasks(ctx)
}

// ListFiltered returns tasks whose field equals value. Field names outside
// models.FilterFields are refused before the store is touched.
func (s *Service) ListFiltered(ctx context.Context, field, value string) ([]*models.Task, error) {
	f, err := models.ParseFilterField(field)
	if err != nil {
		s.log.Warn("rejected filter field", "field", field)
		return nil, err
	}
	return s.store.ListTasksBy(ctx, f, value)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for status, n := range counts {
		st.Total += n
		if status == models.TaskStatusComplete {
			st.Complete += n
		} else {
			st.Incomplete += n
		}
	}
	return st, nil
}
