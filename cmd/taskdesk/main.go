package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/ldi/taskdesk/internal/config"
	"github.com/ldi/taskdesk/internal/console"
	"github.com/ldi/taskdesk/internal/db"
	"github.com/ldi/taskdesk/internal/mcp"
	"github.com/ldi/taskdesk/internal/server"
	"github.com/ldi/taskdesk/internal/tasks"
	"github.com/ldi/taskdesk/internal/ui"
	"github.com/ldi/taskdesk/pkg/models"
)

var (
	configPath   string
	dbPath       string
	snapshotPath string
	verbose      bool

	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
)

func main() {
	flag.StringVar(&configPath, "config", config.DefaultPath, "Path to config file")
	flag.StringVar(&dbPath, "db-path", "", "Path to database file (overrides config)")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Path to snapshot file (overrides config)")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Usage = usage
	flag.Parse()

	var command string
	var args []string

	if flag.NArg() == 0 {
		selected, err := ui.RunMenu()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running menu: %v\n", err)
			os.Exit(1)
		}
		if selected == "" {
			os.Exit(0)
		}
		command = selected
	} else {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	if err := execute(command, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: taskdesk [flags] <command> [arguments]

Commands:
  init [dir]        Create .taskdesk/ with a config file and database
  console           Open the interactive task console
  list-tasks        Print tasks (-field and -value filter them)
  add               Create a task (-title, -due, -priority, ...)
  done <id>         Mark a task complete
  delete <id>       Delete a task
  status            Show task counts
  export [path]     Write a JSONL snapshot
  import [path]     Load tasks from a JSONL snapshot
  web               Serve the JSON API
  mcp               Serve MCP tools over stdio

Flags:
`)
	flag.PrintDefaults()
}

func execute(command string, args []string) error {
	switch command {
	case "init":
		return runInit(args)
	case "console":
		return runConsole(args)
	case "list-tasks":
		return runListTasks(args)
	case "add":
		return runAdd(args)
	case "done":
		return runDone(args)
	case "delete":
		return runDelete(args)
	case "status":
		return runStatus(args)
	case "export":
		return runExport(args)
	case "import":
		return runImport(args)
	case "web":
		return runWeb(args)
	case "mcp":
		return runMCP(args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// loadSettings reads the config file and applies the global flag overrides.
func loadSettings() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if snapshotPath != "" {
		cfg.SnapshotPath = snapshotPath
	}
	if verbose {
		cfg.LogLevel = "DEBUG"
	}
	return cfg, nil
}

// openStore opens and migrates the database named by cfg.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*db.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	database.SetLogger(log)

	if err := database.Init(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.AutoSnapshot {
		database.EnableAutoSnapshot(cfg.SnapshotPath)
	}
	return database, nil
}

// withService loads settings, opens the store and hands a service to fn.
func withService(fn func(ctx context.Context, cfg config.Config, database *db.DB, svc *tasks.Service) error) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg.LogLevel, errOut)

	ctx := context.Background()
	database, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(ctx, cfg, database, tasks.NewService(database, log))
}

func runInit(args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	taskdeskDir := filepath.Join(targetDir, ".taskdesk")
	if err := os.MkdirAll(taskdeskDir, 0755); err != nil {
		return fmt.Errorf("failed to create .taskdesk directory: %w", err)
	}
	fmt.Fprintln(out, "✓ Created .taskdesk/ directory")

	gitignorePath := filepath.Join(taskdeskDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("taskdesk.db*\ntaskdesk.log\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Fprintln(out, "✓ Created .taskdesk/.gitignore")

	cfgPath := filepath.Join(taskdeskDir, "config.yaml")
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(cfgPath, []byte(config.Default()), 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintln(out, "✓ Wrote .taskdesk/config.yaml")
	}

	finalDBPath := dbPath
	if finalDBPath == "" {
		finalDBPath = filepath.Join(taskdeskDir, "taskdesk.db")
	}
	finalSnapshotPath := snapshotPath
	if finalSnapshotPath == "" {
		finalSnapshotPath = filepath.Join(taskdeskDir, "snapshot.jsonl")
	}

	level := "INFO"
	if verbose {
		level = "DEBUG"
	}
	ctx := context.Background()
	database, err := openStore(ctx, config.Config{DBPath: finalDBPath}, config.NewLogger(level, errOut))
	if err != nil {
		return err
	}
	defer database.Close()
	fmt.Fprintf(out, "✓ Initialized database at %s\n", finalDBPath)

	// Only an empty database is seeded, so running init twice does not
	// duplicate the snapshot's tasks.
	if _, err := os.Stat(finalSnapshotPath); err == nil {
		existing, err := database.ListTasks(ctx)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			n, err := database.ImportSnapshot(ctx, finalSnapshotPath)
			if err != nil {
				return fmt.Errorf("failed to import snapshot: %w", err)
			}
			fmt.Fprintf(out, "✓ Imported %d tasks from %s\n", n, finalSnapshotPath)
		}
	}

	fmt.Fprintln(out, "✓ taskdesk initialized successfully")
	return nil
}

func runConsole(args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	// The console owns the terminal, so logs go to a file.
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log := config.NewLogger(cfg.LogLevel, logFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	log.Info("console started", "db", cfg.DBPath)
	c := console.New(tasks.NewService(database, log), log)
	return console.Run(ctx, c)
}

func runListTasks(args []string) error {
	taskFlags := flag.NewFlagSet("list-tasks", flag.ContinueOnError)
	taskFlags.SetOutput(errOut)
	field := taskFlags.String("field", "", "Filter field ("+models.FilterFieldNames()+")")
	value := taskFlags.String("value", "", "Value the filter field must equal")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	return withService(func(ctx context.Context, _ config.Config, _ *db.DB, svc *tasks.Service) error {
		var (
			list []*models.Task
			err  error
		)
		if *field != "" {
			list, err = svc.ListFiltered(ctx, *field, *value)
		} else {
			list, err = svc.ListAll(ctx)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%-5s %-25s %-15s %-12s %-9s %-12s\n", "ID", "TITLE", "CATEGORY", "DUE", "PRIORITY", "STATUS")
		fmt.Fprintln(out, "--------------------------------------------------------------------------------")
		for _, t := range list {
			fmt.Fprintf(out, "%-5d %-25s %-15s %-12s %-9d %-12s\n", t.ID, t.Title, t.Category, t.DueDate, t.Priority, t.Status)
		}
		return nil
	})
}

func runAdd(args []string) error {
	addFlags := flag.NewFlagSet("add", flag.ContinueOnError)
	addFlags.SetOutput(errOut)
	title := addFlags.String("title", "", "Task title")
	description := addFlags.String("description", "", "Task description")
	category := addFlags.String("category", "", "Task category")
	due := addFlags.String("due", "", "Due date (YYYY-MM-DD)")
	priority := addFlags.Int("priority", models.MinPriority, "Priority (1-5)")
	if err := addFlags.Parse(args); err != nil {
		return err
	}

	return withService(func(ctx context.Context, _ config.Config, _ *db.DB, svc *tasks.Service) error {
		t, err := svc.Add(ctx, tasks.Draft{
			Title:       *title,
			Description: *description,
			Category:    *category,
			DueDate:     *due,
			Priority:    *priority,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Created task #%d: %s\n", t.ID, t.Title)
		return nil
	})
}

func runDone(args []string) error {
	id, err := parseIDArg("done", args)
	if err != nil {
		return err
	}

	return withService(func(ctx context.Context, _ config.Config, _ *db.DB, svc *tasks.Service) error {
		t, err := svc.MarkComplete(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Completed task #%d: %s\n", t.ID, t.Title)
		return nil
	})
}

func runDelete(args []string) error {
	id, err := parseIDArg("delete", args)
	if err != nil {
		return err
	}

	return withService(func(ctx context.Context, _ config.Config, _ *db.DB, svc *tasks.Service) error {
		if err := svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Deleted task #%d\n", id)
		return nil
	})
}

func parseIDArg(command string, args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: taskdesk %s <id>", command)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}

func runStatus(args []string) error {
	return withService(func(ctx context.Context, cfg config.Config, _ *db.DB, svc *tasks.Service) error {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "taskdesk Status")
		fmt.Fprintln(out, "===============")
		fmt.Fprintf(out, "Database:    %s\n", cfg.DBPath)
		fmt.Fprintf(out, "Total Tasks: %d\n", stats.Total)
		fmt.Fprintf(out, "  Incomplete: %d\n", stats.Incomplete)
		fmt.Fprintf(out, "  Complete:   %d\n", stats.Complete)
		return nil
	})
}

func runExport(args []string) error {
	return withService(func(ctx context.Context, cfg config.Config, database *db.DB, _ *tasks.Service) error {
		path := cfg.SnapshotPath
		if len(args) > 0 {
			path = args[0]
		}
		if err := database.ExportSnapshot(ctx, path); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Exported snapshot to %s\n", path)
		return nil
	})
}

func runImport(args []string) error {
	return withService(func(ctx context.Context, cfg config.Config, database *db.DB, _ *tasks.Service) error {
		path := cfg.SnapshotPath
		if len(args) > 0 {
			path = args[0]
		}
		n, err := database.ImportSnapshot(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Imported %d tasks from %s\n", n, path)
		return nil
	})
}

func runWeb(args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	webFlags := flag.NewFlagSet("web", flag.ContinueOnError)
	webFlags.SetOutput(errOut)
	port := webFlags.String("port", cfg.WebPort, "Port to listen on")
	if err := webFlags.Parse(args); err != nil {
		return err
	}

	log := config.NewLogger(cfg.LogLevel, errOut)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	srv := server.NewServer(tasks.NewService(database, log), log)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(fmt.Sprintf(":%s", *port))
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP(args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	// stdout carries the protocol; logs go to stderr.
	log := config.NewLogger(cfg.LogLevel, os.Stderr)
	database, err := openStore(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer database.Close()

	s := mcp.NewServer(tasks.NewService(database, log))
	return mcp.Serve(s)
}
