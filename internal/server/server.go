// Package server exposes the task list as a read-only JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ldi/taskdesk/internal/tasks"
	"github.com/ldi/taskdesk/pkg/models"
)

type Server struct {
	svc    *tasks.Service
	log    *slog.Logger
	server *http.Server
}

func NewServer(svc *tasks.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, log: log}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", s.handleTasks)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleTask)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	return mux
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	s.log.Info("web server listening", "addr", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleTasks lists every task, or only those matching ?field=&value=.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		list []*models.Task
		err  error
	)
	if field := q.Get("field"); field != "" {
		list, err = s.svc.ListFiltered(r.Context(), field, q.Get("value"))
	} else {
		list, err = s.svc.ListAll(r.Context())
	}
	if list == nil {
		list = []*models.Task{}
	}
	s.respond(w, list, err)
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.respond(w, nil, fmt.Errorf("%w: task id %q is not a number", models.ErrInvalidFilterValue, r.PathValue("id")))
		return
	}
	task, err := s.svc.Get(r.Context(), id)
	s.respond(w, task, err)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	s.respond(w, stats, err)
}

func (s *Server) respond(w http.ResponseWriter, data any, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.log.Error("request failed", "error", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidFilterField), errors.Is(err, models.ErrInvalidFilterValue):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrTaskNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
