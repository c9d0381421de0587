package models

import (
	"time"
)

// Cita representa la tabla cita: un cliente reservando un turno para un servicio
type Cita struct {
	ID            int       `json:"id" db:"id"`
	ClienteCedula string    `json:"clienteCedula" db:"cliente_cedula"`
	TurnoID       int       `json:"turnoId" db:"turno_id"`
	ServicioID    int       `json:"servicioId" db:"servicio_id"`
	Fecha         time.Time `json:"fecha" db:"fecha"`
}

// CitaData es el cuerpo de POST, PUT y PATCH /cita.
// En PATCH los campos ausentes (nil o cero) no se modifican.
type CitaData struct {
	ClienteCedula *string `json:"clienteCedula" validate:"required"`
	TurnoID       int     `json:"turnoId" validate:"required"`
	ServicioID    int     `json:"servicioId" validate:"required"`
}

// Cliente es de solo lectura para este servicio
type Cliente struct {
	Cedula string `json:"cedula" db:"cedula"`
	Nombre string `json:"nombre" db:"nombre"`
}

// Servicio es de solo lectura para este servicio
type Servicio struct {
	ID     int    `json:"id" db:"id"`
	Nombre string `json:"nombre" db:"nombre"`
}

// Especialista es de solo lectura para este servicio
type Especialista struct {
	Cedula string `json:"cedula" db:"cedula"`
	Nombre string `json:"nombre" db:"nombre"`
}
