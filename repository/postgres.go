package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lizet96/agenda-backend/models"
)

const uniqueViolation = "23505"

// DBTX es lo común entre *pgxpool.Pool y pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool es un DBTX capaz de abrir transacciones
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// PostgresStore guarda agendas y citas en PostgreSQL
type PostgresStore struct {
	*pgQueries
	pool Pool
}

// NewPostgresStore crea el store sobre un pool de pgx
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("repository: pgx pool required")
	}
	return newPostgresStoreWithPool(pool)
}

func newPostgresStoreWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pgQueries: &pgQueries{db: pool}, pool: pool}
}

// WithTx abre una transacción, ejecuta fn y confirma solo si fn no falla
func (s *PostgresStore) WithTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgQueries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: commit tx: %w", translate(err))
	}
	return nil
}

// Ping verifica la conexión
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type pgQueries struct {
	db DBTX
}

// translate convierte errores de pgx en los errores del paquete
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// collectOne ejecuta query y escanea exactamente una fila; cero filas es ErrNotFound
func collectOne[T any](ctx context.Context, db DBTX, scan pgx.RowToFunc[T], query string, args ...any) (*T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: query: %w", err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: scan: %w", err)
	}
	return &v, nil
}

func (q *pgQueries) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := q.db.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: exists: %w", err)
	}
	return exists, nil
}

func (q *pgQueries) deleteByID(ctx context.Context, table string, id int) error {
	tag, err := q.db.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("repository: delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *pgQueries) EspecialistaExists(ctx context.Context, cedula string) (bool, error) {
	return q.exists(ctx, "SELECT EXISTS(SELECT 1 FROM especialista WHERE cedula = $1)", cedula)
}

func (q *pgQueries) ClienteExists(ctx context.Context, cedula string) (bool, error) {
	return q.exists(ctx, "SELECT EXISTS(SELECT 1 FROM cliente WHERE cedula = $1)", cedula)
}

func (q *pgQueries) ServicioExists(ctx context.Context, id int) (bool, error) {
	return q.exists(ctx, "SELECT EXISTS(SELECT 1 FROM servicio WHERE id = $1)", id)
}

// --- agenda ---

func scanAgenda(row pgx.CollectableRow) (models.Agenda, error) {
	var a models.Agenda
	err := row.Scan(&a.ID, &a.Mes, &a.Anio, &a.EspecialistaCedula)
	return a, err
}

func (q *pgQueries) FindAgendasByEspecialista(ctx context.Context, cedula string) ([]models.Agenda, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, mes, anio, especialista_cedula FROM agenda
		 WHERE especialista_cedula = $1 ORDER BY anio, mes, id`, cedula)
	if err != nil {
		return nil, fmt.Errorf("repository: list agendas: %w", err)
	}
	agendas, err := pgx.CollectRows(rows, scanAgenda)
	if err != nil {
		return nil, fmt.Errorf("repository: scan agendas: %w", err)
	}
	return agendas, nil
}

func (q *pgQueries) FindAgenda(ctx context.Context, id int) (*models.Agenda, error) {
	return collectOne(ctx, q.db, scanAgenda, `SELECT id, mes, anio, especialista_cedula FROM agenda WHERE id = $1`, id)
}

func (q *pgQueries) FindOrCreateAgenda(ctx context.Context, cedula string, mes, anio int) (*models.Agenda, error) {
	var a models.Agenda
	err := q.db.QueryRow(ctx,
		`INSERT INTO agenda (mes, anio, especialista_cedula) VALUES ($1, $2, $3)
		 ON CONFLICT (especialista_cedula, mes, anio) DO UPDATE SET mes = EXCLUDED.mes
		 RETURNING id, mes, anio, especialista_cedula`,
		mes, anio, cedula).Scan(&a.ID, &a.Mes, &a.Anio, &a.EspecialistaCedula)
	if err != nil {
		return nil, fmt.Errorf("repository: upsert agenda: %w", translate(err))
	}
	return &a, nil
}

func (q *pgQueries) DeleteAgenda(ctx context.Context, id int) error {
	return q.deleteByID(ctx, "agenda", id)
}

// --- dia_agenda ---

func scanDiaAgenda(row pgx.CollectableRow) (models.DiaAgenda, error) {
	var d models.DiaAgenda
	err := row.Scan(&d.ID, &d.Dia, &d.AgendaID)
	return d, err
}

func (q *pgQueries) FindDiasByAgenda(ctx context.Context, agendaID int) ([]models.DiaAgenda, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, dia, agenda_id FROM dia_agenda WHERE agenda_id = $1 ORDER BY dia`, agendaID)
	if err != nil {
		return nil, fmt.Errorf("repository: list dias: %w", err)
	}
	dias, err := pgx.CollectRows(rows, scanDiaAgenda)
	if err != nil {
		return nil, fmt.Errorf("repository: scan dias: %w", err)
	}
	return dias, nil
}

func (q *pgQueries) FindDiaAgenda(ctx context.Context, id int) (*models.DiaAgenda, error) {
	return collectOne(ctx, q.db, scanDiaAgenda, `SELECT id, dia, agenda_id FROM dia_agenda WHERE id = $1`, id)
}

func (q *pgQueries) FindOrCreateDiaAgenda(ctx context.Context, agendaID, dia int) (*models.DiaAgenda, error) {
	var d models.DiaAgenda
	err := q.db.QueryRow(ctx,
		`INSERT INTO dia_agenda (dia, agenda_id) VALUES ($1, $2)
		 ON CONFLICT (agenda_id, dia) DO UPDATE SET dia = EXCLUDED.dia
		 RETURNING id, dia, agenda_id`,
		dia, agendaID).Scan(&d.ID, &d.Dia, &d.AgendaID)
	if err != nil {
		return nil, fmt.Errorf("repository: upsert dia_agenda: %w", translate(err))
	}
	return &d, nil
}

func (q *pgQueries) DeleteDiaAgenda(ctx context.Context, id int) error {
	return q.deleteByID(ctx, "dia_agenda", id)
}

// --- turno ---

const turnoColumns = "id, hora_inicio, duracion, dia_agenda_id, estado"

func scanTurno(row pgx.CollectableRow) (models.Turno, error) {
	var t models.Turno
	err := row.Scan(&t.ID, &t.HoraInicio, &t.Duracion, &t.DiaAgendaID, &t.Estado)
	return t, err
}

func (q *pgQueries) FindTurnosByDia(ctx context.Context, diaAgendaID int) ([]models.Turno, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+turnoColumns+` FROM turno WHERE dia_agenda_id = $1 ORDER BY hora_inicio`, diaAgendaID)
	if err != nil {
		return nil, fmt.Errorf("repository: list turnos: %w", err)
	}
	turnos, err := pgx.CollectRows(rows, scanTurno)
	if err != nil {
		return nil, fmt.Errorf("repository: scan turnos: %w", err)
	}
	return turnos, nil
}

func (q *pgQueries) FindTurno(ctx context.Context, id int) (*models.Turno, error) {
	return collectOne(ctx, q.db, scanTurno, `SELECT `+turnoColumns+` FROM turno WHERE id = $1`, id)
}

func (q *pgQueries) FindTurnoForUpdate(ctx context.Context, id int) (*models.Turno, error) {
	return collectOne(ctx, q.db, scanTurno, `SELECT `+turnoColumns+` FROM turno WHERE id = $1 FOR UPDATE`, id)
}

// FindOrCreateTurno no modifica la duración de un turno existente
func (q *pgQueries) FindOrCreateTurno(ctx context.Context, diaAgendaID int, horaInicio string, duracion int) (*models.Turno, error) {
	var t models.Turno
	err := q.db.QueryRow(ctx,
		`INSERT INTO turno (hora_inicio, duracion, dia_agenda_id) VALUES ($1, $2, $3)
		 ON CONFLICT (dia_agenda_id, hora_inicio) DO UPDATE SET hora_inicio = EXCLUDED.hora_inicio
		 RETURNING `+turnoColumns,
		horaInicio, duracion, diaAgendaID).Scan(&t.ID, &t.HoraInicio, &t.Duracion, &t.DiaAgendaID, &t.Estado)
	if err != nil {
		return nil, fmt.Errorf("repository: upsert turno: %w", translate(err))
	}
	return &t, nil
}

func (q *pgQueries) SetTurnoEstado(ctx context.Context, id int, estado bool) error {
	tag, err := q.db.Exec(ctx, `UPDATE turno SET estado = $1 WHERE id = $2`, estado, id)
	if err != nil {
		return fmt.Errorf("repository: update turno estado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *pgQueries) DeleteTurno(ctx context.Context, id int) error {
	return q.deleteByID(ctx, "turno", id)
}

// --- cita ---

const citaColumns = "id, cliente_cedula, turno_id, servicio_id, fecha"

func scanCita(row pgx.CollectableRow) (models.Cita, error) {
	var c models.Cita
	err := row.Scan(&c.ID, &c.ClienteCedula, &c.TurnoID, &c.ServicioID, &c.Fecha)
	return c, err
}

func (q *pgQueries) listCitas(ctx context.Context, query string, args ...any) ([]models.Cita, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: list citas: %w", err)
	}
	citas, err := pgx.CollectRows(rows, scanCita)
	if err != nil {
		return nil, fmt.Errorf("repository: scan citas: %w", err)
	}
	return citas, nil
}

func (q *pgQueries) FindCitas(ctx context.Context) ([]models.Cita, error) {
	return q.listCitas(ctx, `SELECT `+citaColumns+` FROM cita ORDER BY id`)
}

func (q *pgQueries) FindCita(ctx context.Context, id int) (*models.Cita, error) {
	return collectOne(ctx, q.db, scanCita, `SELECT `+citaColumns+` FROM cita WHERE id = $1`, id)
}

func (q *pgQueries) FindCitaForUpdate(ctx context.Context, id int) (*models.Cita, error) {
	return collectOne(ctx, q.db, scanCita, `SELECT `+citaColumns+` FROM cita WHERE id = $1 FOR UPDATE`, id)
}

func (q *pgQueries) FindCitasByCliente(ctx context.Context, cedula string) ([]models.Cita, error) {
	return q.listCitas(ctx, `SELECT `+citaColumns+` FROM cita WHERE cliente_cedula = $1 ORDER BY id`, cedula)
}

func (q *pgQueries) FindCitaByClienteTurno(ctx context.Context, cedula string, turnoID int) (*models.Cita, error) {
	return collectOne(ctx, q.db, scanCita, `SELECT `+citaColumns+` FROM cita WHERE cliente_cedula = $1 AND turno_id = $2`, cedula, turnoID)
}

func (q *pgQueries) FindCitaByTurno(ctx context.Context, turnoID int) (*models.Cita, error) {
	return collectOne(ctx, q.db, scanCita, `SELECT `+citaColumns+` FROM cita WHERE turno_id = $1`, turnoID)
}

func (q *pgQueries) CreateCita(ctx context.Context, cita *models.Cita) error {
	err := q.db.QueryRow(ctx,
		`INSERT INTO cita (cliente_cedula, turno_id, servicio_id, fecha)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		cita.ClienteCedula, cita.TurnoID, cita.ServicioID, cita.Fecha).Scan(&cita.ID)
	if err != nil {
		return fmt.Errorf("repository: insert cita: %w", translate(err))
	}
	return nil
}

func (q *pgQueries) UpdateCita(ctx context.Context, cita *models.Cita) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE cita SET cliente_cedula = $1, turno_id = $2, servicio_id = $3 WHERE id = $4`,
		cita.ClienteCedula, cita.TurnoID, cita.ServicioID, cita.ID)
	if err != nil {
		return fmt.Errorf("repository: update cita: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *pgQueries) DeleteCita(ctx context.Context, id int) error {
	return q.deleteByID(ctx, "cita", id)
}
