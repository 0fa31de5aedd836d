package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"

	fiber "github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/rackden/rackden/config"
	"github.com/rackden/rackden/internal/api/v1/handlers"
	v1 "github.com/rackden/rackden/internal/api/v1/routes"
	"github.com/rackden/rackden/internal/db"
	"github.com/rackden/rackden/internal/dispatch"
	"github.com/rackden/rackden/internal/ipmi"
	"github.com/rackden/rackden/internal/logger"
	"github.com/rackden/rackden/internal/services"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	logger.InitializeAndConfigure()

	database, err := db.New(db.Options{
		Host:     config.GetEnv("DB_HOST", db.DefaultHost),
		User:     config.GetEnv("DB_USER", db.DefaultUser),
		Password: config.GetEnv("DB_PASSWORD", db.DefaultPassword),
		DBName:   config.GetEnv("DB_NAME", db.DefaultDBName),
		Port:     config.GetEnvInt("DB_PORT", db.DefaultPort),
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// The engine handle is initialized exactly once, before the server
	// accepts requests; handlers observe it read-only from then on.
	handle := dispatch.NewHandle()
	queue := dispatch.NewQueue(engineSink)
	handle.Init(queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go queue.Run(ctx, &wg)

	bookingService := services.NewBookingService(database, handle)
	controller := ipmi.NewToolController(
		config.GetEnv("IPMI_USER", "admin"),
		config.GetEnv("IPMI_PASSWORD", ""),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})
	app.Use(fiberlogger.New())

	v1.RegisterRoutes(app,
		handlers.NewBookingHandler(bookingService),
		handlers.NewIPMIHandler(bookingService, controller),
	)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("Shutting down...")
		_ = app.Shutdown()
		// Closing the queue lets the worker drain the remaining actions;
		// the context is only cancelled after the worker has exited.
		queue.Close()
	}()

	addr := ":" + config.GetEnv("PORT", v1.DefaultPort)
	if err := app.Listen(addr); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
	wg.Wait()
}

// engineSink forwards drained actions to the execution engine intake. The
// coordinator only records what must happen; convergence is the engine's
// job. Until the engine exposes a network intake this logs the handoff.
func engineSink(_ context.Context, action dispatch.Action) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return err
	}
	logger.InfoWithFields("Action forwarded to execution engine", map[string]interface{}{
		"action":  action.Type,
		"payload": string(payload),
	})
	return nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
