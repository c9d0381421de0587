package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lizet96/agenda-backend/models"
	"github.com/lizet96/agenda-backend/repository"
)

// AgendaService administra la jerarquía agenda → día → turno de un especialista
type AgendaService struct {
	deps
	store repository.Store
}

func NewAgendaService(store repository.Store, opts ...Option) *AgendaService {
	if store == nil {
		panic("services: store required")
	}
	return &AgendaService{deps: newDeps(opts), store: store}
}

// ListUpcoming retorna las agendas vigentes del especialista con sus días y turnos.
//
// Una agenda es vigente si anio >= año actual y mes >= mes actual; de cada una
// se incluyen los días con dia >= día del mes actual. El filtro compara cada
// campo por separado, no la fecha completa.
func (s *AgendaService) ListUpcoming(ctx context.Context, cedula string) ([]models.AgendaData, models.Respuesta, error) {
	agendas, err := s.store.FindAgendasByEspecialista(ctx, cedula)
	if err != nil {
		return nil, models.Respuesta{}, err
	}
	if len(agendas) == 0 {
		return nil, models.Fallo(models.NoAgendas), nil
	}

	now := s.now()
	anioActual, mesActual, diaActual := now.Year(), int(now.Month()), now.Day()

	out := []models.AgendaData{}
	for _, agenda := range agendas {
		if agenda.Anio < anioActual || agenda.Mes < mesActual {
			continue
		}
		data := models.NewAgendaData(agenda)

		dias, err := s.store.FindDiasByAgenda(ctx, agenda.ID)
		if err != nil {
			return nil, models.Respuesta{}, err
		}
		for _, dia := range dias {
			if dia.Dia < diaActual {
				continue
			}
			diaData := models.NewDiaAgendaData(dia)

			turnos, err := s.store.FindTurnosByDia(ctx, dia.ID)
			if err != nil {
				return nil, models.Respuesta{}, err
			}
			for _, turno := range turnos {
				diaData.TurnoList = append(diaData.TurnoList, models.NewTurnoData(turno))
			}
			data.DiaAgendaList = append(data.DiaAgendaList, diaData)
		}
		out = append(out, data)
	}
	return out, models.Exito(), nil
}

// CreateOrExtend crea (o completa) la agenda del especialista para mes/anio con
// los turnos codificados en req.Turnos. Repetir la operación no duplica filas.
func (s *AgendaService) CreateOrExtend(ctx context.Context, req models.AgendaRequest) (models.Respuesta, error) {
	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn("agenda rechazada", "especialista", req.Cedula, "error", err.Error())
		return s.observe("create", models.Fallo(models.TurnoInvalido)), nil
	}

	codigos := make([]models.CodigoTurno, 0, len(req.Turnos))
	for _, raw := range req.Turnos {
		codigo, err := models.ParseCodigoTurno(raw)
		if err != nil {
			s.logger.Warn("agenda rechazada", "especialista", req.Cedula, "error", err.Error())
			return s.observe("create", models.Fallo(models.TurnoInvalido)), nil
		}
		codigos = append(codigos, codigo)
	}

	existe, err := s.store.EspecialistaExists(ctx, req.Cedula)
	if err != nil {
		return models.Respuesta{}, err
	}
	if !existe {
		return s.observe("create", models.Fallo(models.EspecialistaNotFound)), nil
	}

	var agendaID int
	resp, err := runTx(ctx, s.store, func(q repository.Queries) error {
		agenda, err := q.FindOrCreateAgenda(ctx, req.Cedula, req.Mes, req.Anio)
		if err != nil {
			return err
		}
		agendaID = agenda.ID

		for _, codigo := range codigos {
			dia, err := q.FindOrCreateDiaAgenda(ctx, agenda.ID, codigo.Dia)
			if err != nil {
				return err
			}
			if _, err := q.FindOrCreateTurno(ctx, dia.ID, codigo.HoraInicio, codigo.Duracion); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Respuesta{}, fmt.Errorf("services: create agenda: %w", err)
	}

	if resp.OK() {
		s.logger.Info("agenda extendida",
			"especialista", req.Cedula,
			"agenda_id", agendaID,
			"mes", req.Mes,
			"anio", req.Anio,
			"turnos", len(codigos),
		)
	}
	return s.observe("create", resp), nil
}

func (s *AgendaService) DeleteAgenda(ctx context.Context, id int) (models.Respuesta, error) {
	return s.delete(ctx, "delete_agenda", id, models.AgendaNotFound,
		func(ctx context.Context, id int) error {
			_, err := s.store.FindAgenda(ctx, id)
			return err
		},
		s.store.DeleteAgenda,
	)
}

func (s *AgendaService) DeleteDia(ctx context.Context, id int) (models.Respuesta, error) {
	return s.delete(ctx, "delete_dia", id, models.DiaAgendaNotFound,
		func(ctx context.Context, id int) error {
			_, err := s.store.FindDiaAgenda(ctx, id)
			return err
		},
		s.store.DeleteDiaAgenda,
	)
}

func (s *AgendaService) DeleteTurno(ctx context.Context, id int) (models.Respuesta, error) {
	return s.delete(ctx, "delete_turno", id, models.TurnoNotFound,
		func(ctx context.Context, id int) error {
			_, err := s.store.FindTurno(ctx, id)
			return err
		},
		s.store.DeleteTurno,
	)
}

// delete verifica la existencia antes de borrar; los descendientes los elimina el almacenamiento
func (s *AgendaService) delete(ctx context.Context, op string, id int, notFound models.Condicion,
	find func(context.Context, int) error, del func(context.Context, int) error) (models.Respuesta, error) {
	err := find(ctx, id)
	if err == nil {
		err = del(ctx, id)
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.observe(op, models.Fallo(notFound)), nil
	case err != nil:
		return models.Respuesta{}, fmt.Errorf("services: %s: %w", op, err)
	}
	s.logger.Info("registro de agenda eliminado", "operation", op, "id", id)
	return s.observe(op, models.Exito()), nil
}

func (s *AgendaService) observe(op string, r models.Respuesta) models.Respuesta {
	s.metrics.ObserveAgenda(op, r.Condicion)
	return r
}
