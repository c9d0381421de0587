package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/agenda-backend/models"
	"github.com/lizet96/agenda-backend/services"
)

// CitaHandler expone las citas de los clientes
type CitaHandler struct {
	citas *services.CitaService
}

func NewCitaHandler(citas *services.CitaService) *CitaHandler {
	return &CitaHandler{citas: citas}
}

func (h *CitaHandler) ObtenerCitas(c *fiber.Ctx) error {
	citas, resp, err := h.citas.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	if !resp.OK() {
		return responder(c, resp)
	}
	return c.JSON(citas)
}

func (h *CitaHandler) ObtenerCitaPorID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fallo(c, models.DatosInvalidos)
	}
	cita, resp, err := h.citas.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return responder(c, resp)
	}
	return c.JSON(cita)
}

func (h *CitaHandler) ObtenerCitasPorCliente(c *fiber.Ctx) error {
	citas, resp, err := h.citas.ListByCliente(c.UserContext(), c.Params("cedula"))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return responder(c, resp)
	}
	return c.JSON(citas)
}

// CrearCita reserva un turno para un cliente
func (h *CitaHandler) CrearCita(c *fiber.Ctx) error {
	var data models.CitaData
	if err := c.BodyParser(&data); err != nil {
		return fallo(c, models.DatosInvalidos)
	}
	resp, err := h.citas.Create(c.UserContext(), data)
	if err != nil {
		return err
	}
	return responder(c, resp)
}

// ActualizarCitaParcial modifica solo los campos enviados
func (h *CitaHandler) ActualizarCitaParcial(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fallo(c, models.DatosInvalidos)
	}
	var data models.CitaData
	if err := c.BodyParser(&data); err != nil {
		return fallo(c, models.DatosInvalidos)
	}
	resp, err := h.citas.PartialUpdate(c.UserContext(), id, data)
	if err != nil {
		return err
	}
	return responder(c, resp)
}

func (h *CitaHandler) ActualizarCita(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fallo(c, models.DatosInvalidos)
	}
	var data models.CitaData
	if err := c.BodyParser(&data); err != nil {
		return fallo(c, models.DatosInvalidos)
	}
	resp, err := h.citas.FullUpdate(c.UserContext(), id, data)
	if err != nil {
		return err
	}
	return responder(c, resp)
}

// EliminarCita borra la cita y libera su turno
func (h *CitaHandler) EliminarCita(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fallo(c, models.DatosInvalidos)
	}
	resp, err := h.citas.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return responder(c, resp)
}
