package middleware

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lizet96/agenda-backend/logging"
)

const (
	HeaderRequestID = "X-Request-ID"
	maxLoggedBody   = 1000
)

// RequestLogger registra una entrada estructurada por petición.
// Los errores del handler se resuelven aquí con el ErrorHandler de la app
// para que el status registrado sea el que recibe el cliente.
func RequestLogger(logger *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)
		c.Locals("request_id", requestID)

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		attrs := []any{
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", clientIP(c),
		}
		if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
			attrs = append(attrs, "user_agent", ua)
		}
		if q := string(c.Request().URI().QueryString()); q != "" {
			attrs = append(attrs, "query", q)
		}
		if userID, ok := c.Locals("user_id").(int); ok {
			attrs = append(attrs, "user_id", userID, "user_type", c.Locals("user_type"))
		}
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
			if body := c.Body(); len(body) > 0 {
				attrs = append(attrs, "body", filterSensitiveData(string(body)))
			}
		}

		logger.Log(c.UserContext(), determineLogLevel(status), "http request", attrs...)
		return nil
	}
}

func clientIP(c *fiber.Ctx) string {
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.IP()
}

// filterSensitiveData oculta campos sensibles y trunca cuerpos largos
func filterSensitiveData(body string) string {
	sensitiveFields := []string{"password", "secret", "token", "authorization"}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return truncate(body)
	}
	for _, field := range sensitiveFields {
		if _, exists := data[field]; exists {
			data[field] = "[FILTERED]"
		}
	}
	filtered, _ := json.Marshal(data)
	return truncate(string(filtered))
}

func truncate(s string) string {
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "...[truncated]"
	}
	return s
}

// determineLogLevel determina el nivel de log basado en el status code
func determineLogLevel(statusCode int) slog.Level {
	switch {
	case statusCode >= 500:
		return slog.LevelError
	case statusCode >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
