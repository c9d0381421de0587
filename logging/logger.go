package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger envuelve slog.Logger con la configuración de la aplicación
type Logger struct {
	*slog.Logger
}

// New crea un logger JSON con el nivel indicado
func New(level string) *Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter crea un logger que escribe en w
func NewWithWriter(w io.Writer, level string) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, opts))}
}

// Default retorna un logger con nivel info
func Default() *Logger {
	return New("info")
}

// Discard retorna un logger que no escribe nada (útil en pruebas)
func Discard() *Logger {
	return NewWithWriter(io.Discard, "error")
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
