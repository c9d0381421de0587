package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lizet96/agenda-backend/config"
	"github.com/lizet96/agenda-backend/handlers"
	"github.com/lizet96/agenda-backend/logging"
	"github.com/lizet96/agenda-backend/middleware"
	"github.com/lizet96/agenda-backend/repository"
	"github.com/lizet96/agenda-backend/services"
)

// Deps agrupa lo que necesitan las rutas
type Deps struct {
	Config   *config.Config
	Logger   *logging.Logger
	Store    repository.Store
	Agendas  *services.AgendaService
	Citas    *services.CitaService
	Gatherer prometheus.Gatherer
}

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(app *fiber.App, d Deps) {
	cfg := d.Config

	// Middleware global
	app.Use(middleware.RequestLogger(d.Logger))
	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization," + middleware.HeaderRequestID,
	}))
	app.Use(middleware.CreateRateLimiter(middleware.RateLimitConfig{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		Skip: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Estado del sistema
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("health check fallido", "error", err.Error())
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "unavailable",
				"storage": cfg.Storage,
			})
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"storage": cfg.Storage,
		})
	})

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Las mutaciones requieren token solo si JWT_SECRET está configurado
	agendaWrite := []fiber.Handler{}
	citaWrite := []fiber.Handler{}
	if cfg.AuthEnabled() {
		jwt := middleware.JWTMiddleware(cfg.JWTSecret)
		agendaWrite = append(agendaWrite, jwt, middleware.RequireRole(middleware.RoleAdmin, middleware.RoleEspecialista))
		citaWrite = append(citaWrite, jwt)
	}
	with := func(chain []fiber.Handler, h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, chain...), h)
	}

	// --- RUTAS DE AGENDA ---
	agendas := handlers.NewAgendaHandler(d.Agendas)
	app.Get("/especialista/:cedula/agenda", agendas.ObtenerAgendas)
	app.Post("/especialista/:cedula/agenda", with(agendaWrite, agendas.CrearAgenda)...)
	app.Delete("/agenda/dia/:diaAgendaId", with(agendaWrite, agendas.EliminarDiaAgenda)...)
	app.Delete("/agenda/turno/:turnoId", with(agendaWrite, agendas.EliminarTurno)...)
	app.Delete("/agenda/:agendaId", with(agendaWrite, agendas.EliminarAgenda)...)

	// --- RUTAS DE CITAS ---
	citas := handlers.NewCitaHandler(d.Citas)
	app.Get("/cita", citas.ObtenerCitas)
	app.Get("/cita/cliente/:cedula", citas.ObtenerCitasPorCliente)
	app.Get("/cita/:id", citas.ObtenerCitaPorID)
	app.Post("/cita", with(citaWrite, citas.CrearCita)...)
	app.Patch("/cita/:id", with(citaWrite, citas.ActualizarCitaParcial)...)
	app.Put("/cita/:id", with(citaWrite, citas.ActualizarCita)...)
	app.Delete("/cita/:id", with(citaWrite, citas.EliminarCita)...)

	app.Use(handlers.NotFound)
}
