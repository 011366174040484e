package main

import (
	"context"
	"log"
	"os"

	"github.com/example/meeting-relay/config"
	"github.com/example/meeting-relay/modules/activity"
	"github.com/example/meeting-relay/modules/api"
	"github.com/example/meeting-relay/modules/broadcast"
	"github.com/example/meeting-relay/modules/relay"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Meeting Relay - rooms, chat history and signaling over WebSocket ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == config.LogLevelError {
		logLevel = mono.LogLevelError
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Create modules
	broadcastModule := broadcast.NewModule(logger)
	relayModule := relay.NewModule(broadcastModule.GetHub(), cfg.InboundQueueSize, logger)
	activityModule := activity.NewModule(cfg.ActivityLogSize, logger)
	apiModule := api.NewModule(cfg, logger)

	// The hub and router are shared by pointer rather than through the
	// ServiceContainer: frames and connection events stay in process.
	apiModule.SetHub(broadcastModule.GetHub())
	apiModule.SetGateway(relayModule.Router())

	// Register modules with the framework.
	// - broadcast: connection hub (per-connection send queues)
	// - relay: router actor, request-reply services, event emitter
	// - activity: event consumer, activity-summary service
	// - api: Fiber HTTP/WebSocket server, depends on relay and activity
	app.Register(broadcastModule)
	app.Register(relayModule)
	app.Register(activityModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
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

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", cfg.Port)
	log.Println("  Client frames: join-call, signal, chat-message")
	log.Println("  Server frames: connected, user-joined, signal, chat-message, user-disconnected")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  GET    /health                        - Health check")
	log.Println("  GET    /api/v1/rooms                  - Live rooms and members")
	log.Println("  GET    /api/v1/rooms/history?room=KEY - Chat history of a room")
	log.Println("  GET    /api/v1/stats                  - Relay counters")
	log.Println("  GET    /api/v1/activity?limit=N       - Recent activity")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
