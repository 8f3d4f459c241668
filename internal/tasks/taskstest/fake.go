// Package taskstest provides an in-memory tasks.Store for tests.
package taskstest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/ldi/taskdesk/pkg/models"
)

type FakeStore struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]models.Task

	// Calls counts every store method invocation.
	Calls int
	// Err, when set, is returned by every method.
	Err error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		nextID: 1,
		tasks:  make(map[int64]models.Task),
	}
}

func (s *FakeStore) CreateTask(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return s.Err
	}

	t.ID = s.nextID
	t.Status = models.TaskStatusIncomplete
	s.nextID++
	s.tasks[t.ID] = *t
	return nil
}

func (s *FakeStore) GetTask(_ context.Context, id int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}

	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *FakeStore) DeleteTask(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return false, s.Err
	}

	_, ok := s.tasks[id]
	delete(s.tasks, id)
	return ok, nil
}

func (s *FakeStore) UpdateTask(_ context.Context, id int64, p models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}

	cur, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrTaskNotFound, id)
	}
	updated := p.Apply(cur)
	s.tasks[id] = updated
	return &updated, nil
}

func (s *FakeStore) MarkComplete(ctx context.Context, id int64) (*models.Task, error) {
	status := models.TaskStatusComplete
	return s.UpdateTask(ctx, id, models.TaskPatch{Status: &status})
}

func (s *FakeStore) ListTasks(_ context.Context) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}

	return s.sorted(func(models.Task) bool { return true }), nil
}

func (s *FakeStore) ListTasksBy(_ context.Context, field models.FilterField, value string) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}

	var match func(models.Task) bool
	switch field {
	case models.FilterCategory:
		match = func(t models.Task) bool { return t.Category == value }
	case models.FilterDueDate:
		match = func(t models.Task) bool { return t.DueDate == value }
	case models.FilterStatus:
		match = func(t models.Task) bool { return string(t.Status) == value }
	case models.FilterPriority:
		p, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidFilterValue, value)
		}
		match = func(t models.Task) bool { return t.Priority == p }
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidFilterField, field)
	}
	return s.sorted(match), nil
}

func (s *FakeStore) CountByStatus(_ context.Context) (map[models.TaskStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}

	counts := make(map[models.TaskStatus]int)
	for _, t := range s.tasks {
		counts[t.Status]++
	}
	return counts, nil
}

func (s *FakeStore) sorted(keep func(models.Task) bool) []*models.Task {
	out := make([]*models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of stored tasks without counting as a call.
func (s *FakeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
