package db

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ldi/taskdesk/pkg/models"
)

func countLines(t *testing.T, path string) int {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open snapshot: %v", err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n
}

func TestAutoSnapshot(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	snapshotPath := filepath.Join(t.TempDir(), "auto-snapshot.jsonl")
	db.EnableAutoSnapshot(snapshotPath)

	task := &models.Task{Title: "Auto task", DueDate: "2025-01-01", Priority: 1}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if _, err := os.Stat(snapshotPath); os.IsNotExist(err) {
		t.Fatalf("Snapshot file was not created after CreateTask")
	}
	if n := countLines(t, snapshotPath); n != 2 {
		t.Errorf("Expected 2 lines after create, got %d", n)
	}

	if _, err := db.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	if n := countLines(t, snapshotPath); n != 1 {
		t.Errorf("Expected only meta line after delete, got %d", n)
	}
}

func TestAutoSnapshotDisabled(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	snapshotPath := filepath.Join(t.TempDir(), "auto-snapshot.jsonl")
	db.EnableAutoSnapshot(snapshotPath)
	db.DisableOnChange()

	task := &models.Task{Title: "Quiet task", DueDate: "2025-01-01", Priority: 1}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if _, err := os.Stat(snapshotPath); !os.IsNotExist(err) {
		t.Errorf("Expected no snapshot while hooks are disabled")
	}

	db.EnableOnChange()
	if _, err := db.MarkComplete(ctx, task.ID); err != nil {
		t.Fatalf("MarkComplete failed: %v", err)
	}
	if _, err := os.Stat(snapshotPath); err != nil {
		t.Errorf("Expected snapshot after re-enabling hooks: %v", err)
	}
}
