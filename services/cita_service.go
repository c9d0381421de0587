package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lizet96/agenda-backend/models"
	"github.com/lizet96/agenda-backend/repository"
)

// CitaService administra las citas y mantiene el estado de ocupación de los turnos
type CitaService struct {
	deps
	store repository.Store
}

func NewCitaService(store repository.Store, opts ...Option) *CitaService {
	if store == nil {
		panic("services: store required")
	}
	return &CitaService{deps: newDeps(opts), store: store}
}

func (s *CitaService) ListAll(ctx context.Context) ([]models.Cita, models.Respuesta, error) {
	citas, err := s.store.FindCitas(ctx)
	if err != nil {
		return nil, models.Respuesta{}, err
	}
	if len(citas) == 0 {
		return nil, models.Fallo(models.NoCitas), nil
	}
	return citas, models.Exito(), nil
}

func (s *CitaService) Get(ctx context.Context, id int) (*models.Cita, models.Respuesta, error) {
	cita, err := s.store.FindCita(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.Fallo(models.CitaNotFound), nil
	}
	if err != nil {
		return nil, models.Respuesta{}, err
	}
	return cita, models.Exito(), nil
}

func (s *CitaService) ListByCliente(ctx context.Context, cedula string) ([]models.Cita, models.Respuesta, error) {
	citas, err := s.store.FindCitasByCliente(ctx, cedula)
	if err != nil {
		return nil, models.Respuesta{}, err
	}
	if len(citas) == 0 {
		return nil, models.Fallo(models.NoCitas), nil
	}
	return citas, models.Exito(), nil
}

// Create reserva el turno para el cliente. La verificación del estado del
// turno y su marcado como ocupado ocurren con la fila bloqueada.
func (s *CitaService) Create(ctx context.Context, data models.CitaData) (models.Respuesta, error) {
	if err := s.validate.Struct(data); err != nil {
		return s.observe("create", models.Fallo(models.FaltanDatos)), nil
	}
	cedula := *data.ClienteCedula

	var cita models.Cita
	resp, err := runTx(ctx, s.store, func(q repository.Queries) error {
		if err := requireCliente(ctx, q, cedula); err != nil {
			return err
		}
		turno, err := lockTurno(ctx, q, data.TurnoID)
		if err != nil {
			return err
		}
		if err := requireServicio(ctx, q, data.ServicioID); err != nil {
			return err
		}

		_, err = q.FindCitaByClienteTurno(ctx, cedula, turno.ID)
		switch {
		case err == nil:
			return abort(models.CitaAlreadyExists)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		if turno.Estado {
			return abort(models.TurnoAsignado)
		}

		cita = models.Cita{
			ClienteCedula: cedula,
			TurnoID:       turno.ID,
			ServicioID:    data.ServicioID,
			Fecha:         s.now(),
		}
		if err := q.CreateCita(ctx, &cita); err != nil {
			return err
		}
		return q.SetTurnoEstado(ctx, turno.ID, true)
	})
	if err != nil {
		return models.Respuesta{}, fmt.Errorf("services: create cita: %w", err)
	}

	if resp.OK() {
		s.logger.Info("cita creada",
			"cita_id", cita.ID,
			"cliente", cita.ClienteCedula,
			"turno_id", cita.TurnoID,
			"servicio_id", cita.ServicioID,
		)
	}
	return s.observe("create", resp), nil
}

// Delete elimina la cita y libera su turno
func (s *CitaService) Delete(ctx context.Context, id int) (models.Respuesta, error) {
	resp, err := runTx(ctx, s.store, func(q repository.Queries) error {
		cita, err := lockCita(ctx, q, id)
		if err != nil {
			return err
		}
		if err := q.SetTurnoEstado(ctx, cita.TurnoID, false); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := q.DeleteCita(ctx, cita.ID); errors.Is(err, repository.ErrNotFound) {
			return abort(models.CitaNotFound)
		} else if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return models.Respuesta{}, fmt.Errorf("services: delete cita: %w", err)
	}
	if resp.OK() {
		s.logger.Info("cita eliminada", "cita_id", id)
	}
	return s.observe("delete", resp), nil
}

// PartialUpdate aplica solo los campos presentes en data (cédula no nula, ids distintos de cero).
// Si algún campo falla no se persiste ningún cambio.
func (s *CitaService) PartialUpdate(ctx context.Context, id int, data models.CitaData) (models.Respuesta, error) {
	resp, err := runTx(ctx, s.store, func(q repository.Queries) error {
		cita, err := lockCita(ctx, q, id)
		if err != nil {
			return err
		}

		if data.ClienteCedula != nil {
			if err := requireCliente(ctx, q, *data.ClienteCedula); err != nil {
				return err
			}
			cita.ClienteCedula = *data.ClienteCedula
		}

		if data.TurnoID != 0 && data.TurnoID != cita.TurnoID {
			nuevo, anterior, err := lockTurnos(ctx, q, data.TurnoID, cita.TurnoID)
			if err != nil {
				return err
			}
			if err := swapTurno(ctx, q, nuevo, anterior); err != nil {
				return err
			}
			cita.TurnoID = nuevo.ID
		}

		if data.ServicioID != 0 {
			if err := requireServicio(ctx, q, data.ServicioID); err != nil {
				return err
			}
			cita.ServicioID = data.ServicioID
		}

		return updateCita(ctx, q, cita)
	})
	if err != nil {
		return models.Respuesta{}, fmt.Errorf("services: patch cita: %w", err)
	}
	if resp.OK() {
		s.logger.Info("cita actualizada", "cita_id", id, "parcial", true)
	}
	return s.observe("patch", resp), nil
}

// FullUpdate reemplaza cliente, servicio y turno de la cita
func (s *CitaService) FullUpdate(ctx context.Context, id int, data models.CitaData) (models.Respuesta, error) {
	if err := s.validate.Struct(data); err != nil {
		return s.observe("update", models.Fallo(models.FaltanDatos)), nil
	}

	resp, err := runTx(ctx, s.store, func(q repository.Queries) error {
		cita, err := lockCita(ctx, q, id)
		if err != nil {
			return err
		}
		if err := requireCliente(ctx, q, *data.ClienteCedula); err != nil {
			return err
		}
		if err := requireServicio(ctx, q, data.ServicioID); err != nil {
			return err
		}

		if data.TurnoID == cita.TurnoID {
			if _, err := lockTurno(ctx, q, data.TurnoID); err != nil {
				return err
			}
		} else {
			nuevo, anterior, err := lockTurnos(ctx, q, data.TurnoID, cita.TurnoID)
			if err != nil {
				return err
			}
			if err := swapTurno(ctx, q, nuevo, anterior); err != nil {
				return err
			}
			otra, err := q.FindCitaByTurno(ctx, nuevo.ID)
			switch {
			case err == nil && otra.ID != cita.ID:
				return abort(models.TurnoAsignado)
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return err
			}
		}

		cita.ClienteCedula = *data.ClienteCedula
		cita.ServicioID = data.ServicioID
		cita.TurnoID = data.TurnoID
		return updateCita(ctx, q, cita)
	})
	if err != nil {
		return models.Respuesta{}, fmt.Errorf("services: update cita: %w", err)
	}
	if resp.OK() {
		s.logger.Info("cita actualizada", "cita_id", id, "parcial", false)
	}
	return s.observe("update", resp), nil
}

// swapTurno ocupa nuevo y libera anterior (puede ser nil). Si nuevo ya está
// ocupado no modifica nada y aborta con TURNO_ASIGNADO. Ambos turnos deben
// estar bloqueados por lockTurnos.
func swapTurno(ctx context.Context, q repository.Queries, nuevo, anterior *models.Turno) error {
	if nuevo.Estado {
		return abort(models.TurnoAsignado)
	}
	if err := q.SetTurnoEstado(ctx, nuevo.ID, true); err != nil {
		return err
	}
	if anterior == nil {
		return nil
	}
	if err := q.SetTurnoEstado(ctx, anterior.ID, false); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// lockCita bloquea la cita antes que sus turnos; todas las mutaciones siguen ese orden
func lockCita(ctx context.Context, q repository.Queries, id int) (*models.Cita, error) {
	cita, err := q.FindCitaForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, abort(models.CitaNotFound)
	}
	return cita, err
}

// lockTurnos bloquea el turno nuevo y el anterior en orden ascendente de id.
// Un turno anterior inexistente se retorna como nil.
func lockTurnos(ctx context.Context, q repository.Queries, nuevoID, anteriorID int) (*models.Turno, *models.Turno, error) {
	var nuevo, anterior *models.Turno
	ids := []int{nuevoID, anteriorID}
	if anteriorID < nuevoID {
		ids[0], ids[1] = anteriorID, nuevoID
	}
	for _, id := range ids {
		turno, err := q.FindTurnoForUpdate(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound) && id == nuevoID:
			return nil, nil, abort(models.TurnoNotFound)
		case errors.Is(err, repository.ErrNotFound):
			continue
		case err != nil:
			return nil, nil, err
		}
		if id == nuevoID {
			nuevo = turno
		} else {
			anterior = turno
		}
	}
	return nuevo, anterior, nil
}

func updateCita(ctx context.Context, q repository.Queries, cita *models.Cita) error {
	err := q.UpdateCita(ctx, cita)
	if errors.Is(err, repository.ErrNotFound) {
		return abort(models.CitaNotFound)
	}
	return err
}

func lockTurno(ctx context.Context, q repository.Queries, id int) (*models.Turno, error) {
	turno, err := q.FindTurnoForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, abort(models.TurnoNotFound)
	}
	return turno, err
}

func requireCliente(ctx context.Context, q repository.Queries, cedula string) error {
	ok, err := q.ClienteExists(ctx, cedula)
	if err != nil {
		return err
	}
	if !ok {
		return abort(models.CustomerNotFound)
	}
	return nil
}

func requireServicio(ctx context.Context, q repository.Queries, id int) error {
	ok, err := q.ServicioExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return abort(models.ServiceNotFound)
	}
	return nil
}

func (s *CitaService) observe(op string, r models.Respuesta) models.Respuesta {
	s.metrics.ObserveCita(op, r.Condicion)
	return r
}
