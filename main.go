package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lizet96/agenda-backend/config"
	"github.com/lizet96/agenda-backend/database"
	"github.com/lizet96/agenda-backend/handlers"
	"github.com/lizet96/agenda-backend/logging"
	"github.com/lizet96/agenda-backend/metrics"
	"github.com/lizet96/agenda-backend/repository"
	"github.com/lizet96/agenda-backend/routes"
	"github.com/lizet96/agenda-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuración inválida: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Almacenamiento
	var store repository.Store
	switch cfg.Storage {
	case config.StorageMemory:
		mem := repository.NewMemoryStore()
		database.SeedMemory(mem)
		store = mem
		logger.Warn("usando almacenamiento en memoria; los datos se pierden al reiniciar")
	default:
		if cfg.AutoMigrate {
			if err := database.Migrate(cfg.DatabaseURL); err != nil {
				logger.Error("migraciones fallidas", "error", err.Error())
				os.Exit(1)
			}
			logger.Info("migraciones aplicadas")
		}
		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			logger.Error("no se pudo conectar a la base de datos", "error", err.Error())
			os.Exit(1)
		}
		defer func() {
			pool.Close()
			logger.Info("pool de conexiones cerrado")
		}()
		store = repository.NewPostgresStore(pool)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	opts := []services.Option{services.WithLogger(logger), services.WithMetrics(m)}
	agendas := services.NewAgendaService(store, opts...)
	citas := services.NewCitaService(store, opts...)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(logger),
		BodyLimit:    cfg.BodyLimit,
		AppName:      "Agenda API v1.0.0",
	})

	routes.SetupRoutes(app, routes.Deps{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Agendas:  agendas,
		Citas:    citas,
		Gatherer: registry,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("error al detener el servidor", "error", err.Error())
		}
	}()

	logger.Info("servidor iniciado",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage", cfg.Storage,
		"auth", cfg.AuthEnabled(),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("servidor detenido", "error", err.Error())
	}
}
