package db

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ldi/taskdesk/pkg/models"
)

const (
	recordTypeMeta = "meta"
	recordTypeTask = "task"
)

type snapshotMeta struct {
	RecordType string    `json:"record_type"`
	SnapshotID string    `json:"snapshot_id"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
}

type snapshotTask struct {
	RecordType string `json:"record_type"`
	models.Task
}

// EnableAutoSnapshot sets up a hook that automatically exports a snapshot
// to the given path after every successful write operation.
func (db *DB) EnableAutoSnapshot(path string) {
	db.SetOnChange(func(ctx context.Context) {
		// Hooks are best-effort; a failed export must not fail the write.
		if err := db.ExportSnapshot(ctx, path); err != nil {
			db.log.Error("auto snapshot failed", "path", path, "error", err)
		}
	})
}

// ExportSnapshot writes every task as JSONL to the given path atomically
// using a temporary file. The first line is a meta record.
func (db *DB) ExportSnapshot(ctx context.Context, path string) error {
	tasks, err := db.ListTasks(ctx)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "snapshot-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	w := bufio.NewWriter(tempFile)
	enc := json.NewEncoder(w)

	meta := snapshotMeta{
		RecordType: recordTypeMeta,
		SnapshotID: uuid.NewString(),
		ExportedAt: time.Now().UTC(),
		Count:      len(tasks),
	}
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("failed to write snapshot meta: %w", err)
	}

	for _, t := range tasks {
		if err := enc.Encode(snapshotTask{RecordType: recordTypeTask, Task: *t}); err != nil {
			return fmt.Errorf("failed to write snapshot line: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	db.log.Debug("snapshot exported", "path", path, "snapshot_id", meta.SnapshotID, "count", meta.Count)
	return nil
}

// ImportSnapshot reads a JSONL snapshot and inserts every task record with a
// fresh id. The whole import runs in one transaction. It returns the number
// of tasks inserted.
func (db *DB) ImportSnapshot(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tasks (title, description, category, due_date, priority, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	imported := 0
	lineNo := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var base struct {
			RecordType string `json:"record_type"`
		}
		if err := json.Unmarshal(line, &base); err != nil {
			return 0, fmt.Errorf("failed to unmarshal record on line %d: %w", lineNo, err)
		}

		switch base.RecordType {
		case recordTypeMeta:
			// Skip meta
		case recordTypeTask:
			var rec snapshotTask
			if err := json.Unmarshal(line, &rec); err != nil {
				return 0, fmt.Errorf("failed to unmarshal task on line %d: %w", lineNo, err)
			}
			if rec.Status == "" {
				rec.Status = models.TaskStatusIncomplete
			}
			if _, err := tx.ExecContext(ctx, query,
				rec.Title, rec.Description, rec.Category, rec.DueDate, rec.Priority, rec.Status,
			); err != nil {
				return 0, fmt.Errorf("failed to insert task on line %d: %w", lineNo, err)
			}
			imported++
		default:
			return 0, fmt.Errorf("unknown record type %q on line %d", base.RecordType, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot import: %w", err)
	}

	db.triggerChange(ctx)
	return imported, nil
}
