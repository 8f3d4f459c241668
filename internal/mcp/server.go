// Package mcp exposes the task service as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ldi/taskdesk/internal/tasks"
	"github.com/ldi/taskdesk/pkg/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server.
func NewServer(svc *tasks.Service) *server.MCPServer {
	s := server.NewMCPServer("taskdesk", "0.1.0")

	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task. New tasks start as incomplete."),
		mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithString("category", mcp.Description("Free-text category")),
		mcp.WithString("due_date", mcp.Description("Due date (YYYY-MM-DD)"), mcp.Required()),
		mcp.WithNumber("priority", mcp.Description("Priority (1-5)"), mcp.Required()),
	), createTaskHandler(svc))

	s.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task by id."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
	), getTaskHandler(svc))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update a task. Only the arguments given are changed; an empty string is written as-is."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("category", mcp.Description("New category")),
		mcp.WithString("due_date", mcp.Description("New due date")),
		mcp.WithNumber("priority", mcp.Description("New priority")),
		mcp.WithString("status", mcp.Description("New status (incomplete|complete)")),
	), updateTaskHandler(svc))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. Deleting a missing id succeeds."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(svc))

	s.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task complete."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
	), completeTaskHandler(svc))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally only those whose field equals value."),
		mcp.WithString("field", mcp.Description("Filter field (category|due_date|status|priority)")),
		mcp.WithString("value", mcp.Description("Value the field must equal")),
	), listTasksHandler(svc))

	s.AddTool(mcp.NewTool("task_stats",
		mcp.WithDescription("Count tasks by status."),
	), taskStatsHandler(svc))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func createTaskHandler(svc *tasks.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !wholeNumber(request, "priority") {
			return mcp.NewToolResultError("priority must be a whole number"), nil
		}

		d := tasks.Draft{
			Title:       mcp.ParseString(request, "title", ""),
			Description: mcp.ParseString(request, "description", ""),
			Category:    mcp.ParseString(request, "category", ""),
			DueDate:     mcp.ParseString(request, "due_date", ""),
			Priority:    mcp.ParseInt(request, "priority", 0),
		}

		t, err := svc.Add(ctx, d)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func getTaskHandler(svc *tasks.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t, err := svc.Get(ctx, taskID(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func updateTaskHandler(svc *tasks.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)

		var p models.TaskPatch
		if v, ok := args["title"].(string); ok {
			p.Title = &v
		}
		if v, ok := args["description"].(string); ok {
			p.Description = &v
		}
		if v, ok := args["category"].(string); ok {
			p.Category = &v
		}
		if v, ok := args["due_date"].(string); ok {
			p.DueDate = &v
		}
		if v, ok := args["priority"].(float64); ok {
			if v != math.Trunc(v) {
				return mcp.NewToolResultError("priority must be a whole number"), nil
			}
			priority := int(v)
			p.Priority = &priority
		}
		if v, ok := args["status"].(string); ok {
			status := models.TaskStatus(v)
			p.Status = &status
		}
		if p.IsEmpty() {
			return mcp.NewToolResultError("nothing to update"), nil
		}

		t, err := svc.Update(ctx, taskID(request), p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func deleteTaskHandler(svc *tasks.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := taskID(request)
		if err := svc.Delete(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task %d deleted", id)), nil
	}
}

func completeTaskHandler(svc *tasks.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t, err := svc.MarkComplete(ctx, taskID(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func listTasksHandler(svc *tasks.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		field := mcp.ParseString(request, "field", "")

		var (
			list []*models.Task
			err  error
		)
		if field != "" {
			list, err = svc.ListFiltered(ctx, field, mcp.ParseString(request, "value", ""))
		} else {
			list, err = svc.ListAll(ctx)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if list == nil {
			list = []*models.Task{}
		}
		return jsonResult(map[string]any{"tasks": list})
	}
}

func taskStatsHandler(svc *tasks.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(stats)
	}
}

// wholeNumber reports false when key holds a number with a fractional part.
func wholeNumber(request mcp.CallToolRequest, key string) bool {
	args, _ := request.Params.Arguments.(map[string]any)
	v, ok := args[key].(float64)
	return !ok || v == math.Trunc(v)
}

func taskID(request mcp.CallToolRequest) int64 {
	return int64(mcp.ParseInt(request, "id", 0))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
