package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ldi/taskdesk/pkg/models"
)

const selectTasks = `
	SELECT id, title, COALESCE(description, '') AS description, COALESCE(category, '') AS category,
	       COALESCE(due_date, '') AS due_date, COALESCE(priority, 0) AS priority,
	       COALESCE(status, '') AS status
	FROM tasks
`

// Each filterable column has its own fixed query; the value is always bound.
var filterQueries = map[models.FilterField]string{
	models.FilterCategory: selectTasks + ` WHERE category = ? ORDER BY id`,
	models.FilterDueDate:  selectTasks + ` WHERE due_date = ? ORDER BY id`,
	models.FilterStatus:   selectTasks + ` WHERE status = ? ORDER BY id`,
	models.FilterPriority: selectTasks + ` WHERE priority = ? ORDER BY id`,
}

// CreateTask inserts a new task with status incomplete and sets t.ID.
func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	t.Status = models.TaskStatusIncomplete

	query := `
		INSERT INTO tasks (title, description, category, due_date, priority, status)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := db.QueryRowxContext(ctx, query,
		t.Title, t.Description, t.Category, t.DueDate, t.Priority, t.Status,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// GetTask retrieves a task by its ID. It returns nil, nil when no row matches.
func (db *DB) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	t := &models.Task{}
	err := db.GetContext(ctx, t, selectTasks+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks returns every task in insertion order.
func (db *DB) ListTasks(ctx context.Context) ([]*models.Task, error) {
	return db.queryTasks(ctx, selectTasks+` ORDER BY id`)
}

// ListTasksBy returns the tasks whose field equals value.
func (db *DB) ListTasksBy(ctx context.Context, field models.FilterField, value string) ([]*models.Task, error) {
	query, ok := filterQueries[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidFilterField, field)
	}

	var arg any = value
	if field == models.FilterPriority {
		p, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: priority must be a number, got %q", models.ErrInvalidFilterValue, value)
		}
		arg = p
	}

	return db.queryTasks(ctx, query, arg)
}

func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	var tasks []*models.Task
	if err := db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies p to the stored task. The read and the full-row write
// share one transaction.
func (db *DB) UpdateTask(ctx context.Context, id int64, p models.TaskPatch) (*models.Task, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current := models.Task{}
	err = tx.GetContext(ctx, &current, selectTasks+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", models.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task: %w", err)
	}

	updated := p.Apply(current)

	query := `
		UPDATE tasks
		SET title = ?, description = ?, category = ?, due_date = ?, priority = ?, status = ?
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, query,
		updated.Title, updated.Description, updated.Category, updated.DueDate,
		updated.Priority, updated.Status, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task update: %w", err)
	}

	db.triggerChange(ctx)
	return &updated, nil
}

// MarkComplete sets the status of a task to complete.
func (db *DB) MarkComplete(ctx context.Context, id int64) (*models.Task, error) {
	status := models.TaskStatusComplete
	return db.UpdateTask(ctx, id, models.TaskPatch{Status: &status})
}

// DeleteTask deletes a task by its ID and reports whether a row was removed.
// Deleting a missing task is not an error.
func (db *DB) DeleteTask(ctx context.Context, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		db.log.Debug("delete of missing task ignored", "id", id)
		return false, nil
	}

	db.triggerChange(ctx)
	return true, nil
}

// CountByStatus returns the number of tasks per status value.
func (db *DB) CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error) {
	var rows []struct {
		Status models.TaskStatus `db:"status"`
		Count  int               `db:"count"`
	}
	query := `SELECT COALESCE(status, '') AS status, COUNT(*) AS count FROM tasks GROUP BY status`
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	counts := make(map[models.TaskStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] += r.Count
	}
	return counts, nil
}
