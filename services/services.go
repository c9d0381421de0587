package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lizet96/agenda-backend/logging"
	"github.com/lizet96/agenda-backend/metrics"
	"github.com/lizet96/agenda-backend/models"
	"github.com/lizet96/agenda-backend/repository"
)

// Option configura dependencias opcionales de los servicios
type Option func(*deps)

type deps struct {
	logger   *logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	validate *validator.Validate
}

func WithLogger(l *logging.Logger) Option {
	return func(d *deps) { d.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) { d.metrics = m }
}

// WithClock reemplaza time.Now (para pruebas)
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

func newDeps(opts []Option) deps {
	d := deps{
		logger:   logging.Default(),
		now:      time.Now,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(&d)
	}
	if d.logger == nil {
		d.logger = logging.Default()
	}
	return d
}

// falloError aborta una transacción con una respuesta de catálogo
type falloError struct {
	respuesta models.Respuesta
}

func (e *falloError) Error() string {
	return string(e.respuesta.Condicion)
}

func abort(c models.Condicion) error {
	return &falloError{respuesta: models.Fallo(c)}
}

// runTx ejecuta fn en una transacción y traduce su resultado a una respuesta.
// Una violación de unicidad sobre cita se informa como TURNO_ASIGNADO.
func runTx(ctx context.Context, store repository.Store, fn func(q repository.Queries) error) (models.Respuesta, error) {
	err := store.WithTx(ctx, fn)
	var f *falloError
	switch {
	case err == nil:
		return models.Exito(), nil
	case errors.As(err, &f):
		return f.respuesta, nil
	case errors.Is(err, repository.ErrConflict):
		return models.Fallo(models.TurnoAsignado), nil
	default:
		return models.Respuesta{}, err
	}
}
