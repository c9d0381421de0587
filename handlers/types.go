package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/agenda-backend/logging"
	"github.com/lizet96/agenda-backend/models"
)

// responder escribe el sobre {status, message, code} con el status HTTP de su catálogo
func responder(c *fiber.Ctx, r models.Respuesta) error {
	return c.Status(r.HTTPStatus).JSON(r)
}

func fallo(c *fiber.Ctx, cond models.Condicion) error {
	return responder(c, models.Fallo(cond))
}

// paramID lee un id numérico de la ruta
func paramID(c *fiber.Ctx, name string) (int, bool) {
	id, err := c.ParamsInt(name)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ErrorHandler traduce los errores no controlados al sobre de respuesta
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			r := models.Fallo(condicionPorStatus(fe.Code))
			return c.Status(fe.Code).JSON(r)
		}

		logger.Error("error no controlado",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("request_id"),
			"error", err.Error(),
		)
		return fallo(c, models.ErrorInterno)
	}
}

// NotFound responde RUTA_NO_ENCONTRADA; se registra después de todas las rutas
func NotFound(c *fiber.Ctx) error {
	return fallo(c, models.RutaNoEncontrada)
}

func condicionPorStatus(code int) models.Condicion {
	switch code {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity, fiber.StatusUnsupportedMediaType:
		return models.DatosInvalidos
	case fiber.StatusUnauthorized:
		return models.NoAutorizado
	case fiber.StatusForbidden:
		return models.AccesoDenegado
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return models.RutaNoEncontrada
	case fiber.StatusTooManyRequests:
		return models.DemasiadasPeticiones
	default:
		return models.ErrorInterno
	}
}
