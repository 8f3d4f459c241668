package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ldi/taskdesk/internal/db"
	"github.com/ldi/taskdesk/internal/tasks"
	"github.com/ldi/taskdesk/pkg/models"
)

func newTestServer(t *testing.T) (*db.DB, http.Handler) {
	t.Helper()

	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctx := context.Background()
	if err := database.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	seed := []*models.Task{
		{Title: "Buy milk", Category: "Errand", DueDate: "2025-01-01", Priority: 3},
		{Title: "File taxes", Category: "Admin", DueDate: "2025-04-15", Priority: 5},
	}
	for _, task := range seed {
		if err := database.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}
	if _, err := database.MarkComplete(ctx, seed[1].ID); err != nil {
		t.Fatalf("MarkComplete failed: %v", err)
	}

	srv := NewServer(tasks.NewService(database, nil), nil)
	return database, srv.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_API(t *testing.T) {
	_, h := newTestServer(t)

	t.Run("GET /api/tasks", func(t *testing.T) {
		w := get(t, h, "/api/tasks")

		if w.Code != http.StatusOK {
			t.Errorf("Expected status OK, got %v", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected application/json, got %q", ct)
		}
		var list []*models.Task
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatalf("Failed to unmarshal tasks: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 tasks, got %d", len(list))
		}
		if list[0].Title != "Buy milk" {
			t.Errorf("Expected first task Buy milk, got %s", list[0].Title)
		}
	})

	t.Run("GET /api/tasks filtered", func(t *testing.T) {
		w := get(t, h, "/api/tasks?field=status&value=complete")

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status OK, got %v", w.Code)
		}
		var list []*models.Task
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatalf("Failed to unmarshal tasks: %v", err)
		}
		if len(list) != 1 || list[0].Title != "File taxes" {
			t.Errorf("Expected only File taxes, got %+v", list)
		}
	})

	t.Run("GET /api/tasks no match", func(t *testing.T) {
		w := get(t, h, "/api/tasks?field=category&value=Nothing")

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status OK, got %v", w.Code)
		}
		if body := w.Body.String(); body != "[]\n" {
			t.Errorf("Expected empty JSON array, got %q", body)
		}
	})

	t.Run("GET /api/tasks unknown field", func(t *testing.T) {
		w := get(t, h, "/api/tasks?field=title&value=x")

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %v", w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to unmarshal error: %v", err)
		}
		if body["error"] == "" {
			t.Error("Expected error message in body")
		}
	})

	t.Run("GET /api/tasks bad priority", func(t *testing.T) {
		w := get(t, h, "/api/tasks?field=priority&value=high")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %v", w.Code)
		}
	})

	t.Run("GET /api/tasks/{id}", func(t *testing.T) {
		w := get(t, h, "/api/tasks/1")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status OK, got %v", w.Code)
		}
		var task models.Task
		if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
			t.Fatalf("Failed to unmarshal task: %v", err)
		}
		if task.ID != 1 || task.Title != "Buy milk" {
			t.Errorf("Unexpected task: %+v", task)
		}
	})

	t.Run("GET /api/tasks/{id} missing", func(t *testing.T) {
		w := get(t, h, "/api/tasks/99")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %v", w.Code)
		}
	})

	t.Run("GET /api/tasks/{id} not a number", func(t *testing.T) {
		w := get(t, h, "/api/tasks/abc")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %v", w.Code)
		}
	})

	t.Run("GET /api/stats", func(t *testing.T) {
		w := get(t, h, "/api/stats")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status OK, got %v", w.Code)
		}
		var stats tasks.Stats
		if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
			t.Fatalf("Failed to unmarshal stats: %v", err)
		}
		want := tasks.Stats{Total: 2, Complete: 1, Incomplete: 1}
		if stats != want {
			t.Errorf("Expected %+v, got %+v", want, stats)
		}
	})

	t.Run("POST is not allowed", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/tasks", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %v", w.Code)
		}
	})
}

func TestServer_InjectionLeavesSchemaIntact(t *testing.T) {
	database, h := newTestServer(t)

	w := get(t, h, "/api/tasks?field=id%3B%20DROP%20TABLE%20tasks&value=1")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %v", w.Code)
	}

	list, err := database.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks after injection attempt failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 tasks, got %d", len(list))
	}
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	srv := NewServer(nil, nil)
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown before Start returned %v", err)
	}
}
