package repository

import (
	"context"
	"errors"

	"github.com/lizet96/agenda-backend/models"
)

var (
	// ErrNotFound se retorna cuando la fila buscada no existe
	ErrNotFound = errors.New("repository: not found")

	// ErrConflict se retorna cuando una restricción única impide la escritura
	ErrConflict = errors.New("repository: conflict")
)

// ReferenciaRepository consulta entidades de otros subsistemas (solo lectura)
type ReferenciaRepository interface {
	EspecialistaExists(ctx context.Context, cedula string) (bool, error)
	ClienteExists(ctx context.Context, cedula string) (bool, error)
	ServicioExists(ctx context.Context, id int) (bool, error)
}

// AgendaRepository acceso a la tabla agenda
type AgendaRepository interface {
	FindAgendasByEspecialista(ctx context.Context, cedula string) ([]models.Agenda, error)
	FindAgenda(ctx context.Context, id int) (*models.Agenda, error)
	FindOrCreateAgenda(ctx context.Context, cedula string, mes, anio int) (*models.Agenda, error)
	DeleteAgenda(ctx context.Context, id int) error
}

// DiaAgendaRepository acceso a la tabla dia_agenda
type DiaAgendaRepository interface {
	FindDiasByAgenda(ctx context.Context, agendaID int) ([]models.DiaAgenda, error)
	FindDiaAgenda(ctx context.Context, id int) (*models.DiaAgenda, error)
	FindOrCreateDiaAgenda(ctx context.Context, agendaID, dia int) (*models.DiaAgenda, error)
	DeleteDiaAgenda(ctx context.Context, id int) error
}

// TurnoRepository acceso a la tabla turno
type TurnoRepository interface {
	FindTurnosByDia(ctx context.Context, diaAgendaID int) ([]models.Turno, error)
	FindTurno(ctx context.Context, id int) (*models.Turno, error)
	// FindTurnoForUpdate bloquea la fila hasta el fin de la transacción
	FindTurnoForUpdate(ctx context.Context, id int) (*models.Turno, error)
	FindOrCreateTurno(ctx context.Context, diaAgendaID int, horaInicio string, duracion int) (*models.Turno, error)
	SetTurnoEstado(ctx context.Context, id int, estado bool) error
	DeleteTurno(ctx context.Context, id int) error
}

// CitaRepository acceso a la tabla cita
type CitaRepository interface {
	FindCitas(ctx context.Context) ([]models.Cita, error)
	FindCita(ctx context.Context, id int) (*models.Cita, error)
	// FindCitaForUpdate bloquea la fila hasta el fin de la transacción
	FindCitaForUpdate(ctx context.Context, id int) (*models.Cita, error)
	FindCitasByCliente(ctx context.Context, cedula string) ([]models.Cita, error)
	FindCitaByClienteTurno(ctx context.Context, cedula string, turnoID int) (*models.Cita, error)
	FindCitaByTurno(ctx context.Context, turnoID int) (*models.Cita, error)
	CreateCita(ctx context.Context, cita *models.Cita) error
	UpdateCita(ctx context.Context, cita *models.Cita) error
	DeleteCita(ctx context.Context, id int) error
}

// Queries agrupa todas las operaciones disponibles dentro o fuera de una transacción
type Queries interface {
	ReferenciaRepository
	AgendaRepository
	DiaAgendaRepository
	TurnoRepository
	CitaRepository
}

// Store es el punto de entrada del almacenamiento
type Store interface {
	Queries
	// WithTx ejecuta fn en una transacción; si fn retorna error no se persiste nada
	WithTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
}
