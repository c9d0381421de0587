package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/agenda-backend/models"
	"github.com/lizet96/agenda-backend/services"
)

// AgendaHandler expone la agenda de los especialistas
type AgendaHandler struct {
	agendas *services.AgendaService
}

func NewAgendaHandler(agendas *services.AgendaService) *AgendaHandler {
	return &AgendaHandler{agendas: agendas}
}

// ObtenerAgendas lista las agendas vigentes con sus días y turnos
func (h *AgendaHandler) ObtenerAgendas(c *fiber.Ctx) error {
	data, resp, err := h.agendas.ListUpcoming(c.UserContext(), c.Params("cedula"))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return responder(c, resp)
	}
	return c.JSON(data)
}

// CrearAgenda crea o extiende la agenda de mes/anio con los turnos codificados.
// Los códigos se aceptan repetidos (turnos=a&turnos=b), separados por coma o como turnos[].
func (h *AgendaHandler) CrearAgenda(c *fiber.Ctx) error {
	req := models.AgendaRequest{
		Cedula: c.Params("cedula"),
		Anio:   c.QueryInt("anio"),
		Mes:    c.QueryInt("mes"),
		Turnos: codigosTurno(c),
	}

	resp, err := h.agendas.CreateOrExtend(c.UserContext(), req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return responder(c, resp)
	}
	// 200 sin cuerpo
	c.Status(fiber.StatusOK)
	return nil
}

func codigosTurno(c *fiber.Ctx) []string {
	args := c.Context().QueryArgs()
	var codigos []string
	for _, key := range []string{"turnos", "turnos[]"} {
		for _, raw := range args.PeekMulti(key) {
			for _, codigo := range strings.Split(string(raw), ",") {
				if codigo = strings.TrimSpace(codigo); codigo != "" {
					codigos = append(codigos, codigo)
				}
			}
		}
	}
	return codigos
}

func (h *AgendaHandler) EliminarAgenda(c *fiber.Ctx) error {
	id, ok := paramID(c, "agendaId")
	if !ok {
		return fallo(c, models.DatosInvalidos)
	}
	resp, err := h.agendas.DeleteAgenda(c.UserContext(), id)
	if err != nil {
		return err
	}
	return responder(c, resp)
}

func (h *AgendaHandler) EliminarDiaAgenda(c *fiber.Ctx) error {
	id, ok := paramID(c, "diaAgendaId")
	if !ok {
		return fallo(c, models.DatosInvalidos)
	}
	resp, err := h.agendas.DeleteDia(c.UserContext(), id)
	if err != nil {
		return err
	}
	return responder(c, resp)
}

func (h *AgendaHandler) EliminarTurno(c *fiber.Ctx) error {
	id, ok := paramID(c, "turnoId")
	if !ok {
		return fallo(c, models.DatosInvalidos)
	}
	resp, err := h.agendas.DeleteTurno(c.UserContext(), id)
	if err != nil {
		return err
	}
	return responder(c, resp)
}
