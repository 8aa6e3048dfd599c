package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/todo-app/config"
	"github.com/example/todo-app/modules/activity"
	"github.com/example/todo-app/modules/api"
	"github.com/example/todo-app/modules/todo"
	"github.com/example/todo-app/store"
)

func main() {
	log.Println("=== Todo API ===")

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Order: event consumers first, then the store owner, then the HTTP adapter.
	modules := []mono.Module{
		activity.NewModule(logger),
		todo.NewModule(todo.Config{
			StoreURI:      cfg.StoreURI,
			StoreRequired: cfg.StoreRequired,
			Debug:         cfg.DBDebug,
		}, logger),
		api.NewModule(api.Config{
			Port:           cfg.Port,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		}, logger),
	}
	for _, m := range modules {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Server) {
	log.Println("")
	log.Printf("Store backend: %s", store.Backend(cfg.StoreURI))
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  GET    /api/todos                - List todos (?category=&priority=&completed=)")
	log.Println("  GET    /api/todos/stats          - Totals by status, category and priority")
	log.Println("  POST   /api/todos                - Create a todo")
	log.Println("  PUT    /api/todos/:id            - Update a todo")
	log.Println("  DELETE /api/todos/:id            - Delete a todo")
	log.Println("  DELETE /api/todos/completed/all  - Delete all completed todos")
	log.Println("  GET    /health                   - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
