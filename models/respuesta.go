package models

import "net/http"

// Valores del campo status del sobre de respuesta
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Condición identifica una entrada del catálogo de respuestas
type Condicion string

const (
	Success              Condicion = "SUCCESS"
	NoAgendas            Condicion = "NO_AGENDAS"
	AgendaNotFound       Condicion = "AGENDA_NOT_FOUND"
	DiaAgendaNotFound    Condicion = "DIA_AGENDA_NOT_FOUND"
	TurnoNotFound        Condicion = "TURNO_NOT_FOUND"
	TurnoAlreadyExists   Condicion = "TURNO_ALREADY_EXISTS"
	TurnoInvalido        Condicion = "TURNO_INVALIDO"
	EspecialistaNotFound Condicion = "ESPECIALISTA_NOT_FOUND"
	NoCitas              Condicion = "NO_CITAS"
	CitaNotFound         Condicion = "CITA_NOT_FOUND"
	CitaAlreadyExists    Condicion = "CITA_ALREADY_EXISTS"
	TurnoAsignado        Condicion = "TURNO_ASIGNADO"
	CustomerNotFound     Condicion = "CUSTOMER_NOT_FOUND"
	ServiceNotFound      Condicion = "SERVICE_NOT_FOUND"
	FaltanDatos          Condicion = "FALTAN_DATOS"
	DatosInvalidos       Condicion = "DATOS_INVALIDOS"
	NoAutorizado         Condicion = "NO_AUTORIZADO"
	AccesoDenegado       Condicion = "ACCESO_DENEGADO"
	RutaNoEncontrada     Condicion = "RUTA_NO_ENCONTRADA"
	DemasiadasPeticiones Condicion = "DEMASIADAS_PETICIONES"
	ErrorInterno         Condicion = "ERROR_INTERNO"
)

// Respuesta es el sobre {status, message, code} de las respuestas sin datos
type Respuesta struct {
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Code       int       `json:"code"`
	Condicion  Condicion `json:"-"`
	HTTPStatus int       `json:"-"`
}

// OK indica si la respuesta corresponde a una operación exitosa
func (r Respuesta) OK() bool {
	return r.Status == StatusSuccess
}

type entradaCatalogo struct {
	code       int
	message    string
	httpStatus int
}

var catalogo = map[Condicion]entradaCatalogo{
	Success:              {100, "Operación realizada con éxito", http.StatusOK},
	NoAgendas:            {201, "El especialista no tiene agendas registradas", http.StatusOK},
	AgendaNotFound:       {202, "La agenda no existe", http.StatusNotFound},
	DiaAgendaNotFound:    {203, "El día de agenda no existe", http.StatusNotFound},
	TurnoNotFound:        {204, "El turno no existe", http.StatusNotFound},
	TurnoAlreadyExists:   {205, "El turno ya existe", http.StatusConflict},
	TurnoInvalido:        {206, "Los datos del horario son inválidos", http.StatusBadRequest},
	EspecialistaNotFound: {207, "El especialista no existe", http.StatusNotFound},
	NoCitas:              {301, "No hay citas registradas", http.StatusOK},
	CitaNotFound:         {302, "La cita no existe", http.StatusNotFound},
	CitaAlreadyExists:    {303, "La cita ya existe", http.StatusConflict},
	TurnoAsignado:        {304, "El turno ya se encuentra asignado", http.StatusConflict},
	CustomerNotFound:     {305, "El cliente no existe", http.StatusNotFound},
	ServiceNotFound:      {306, "El servicio no existe", http.StatusNotFound},
	FaltanDatos:          {307, "Faltan datos obligatorios", http.StatusBadRequest},
	DatosInvalidos:       {400, "El cuerpo de la petición es inválido", http.StatusBadRequest},
	NoAutorizado:         {401, "Token de autorización inválido o ausente", http.StatusUnauthorized},
	AccesoDenegado:       {403, "Acceso denegado: permisos insuficientes", http.StatusForbidden},
	RutaNoEncontrada:     {404, "La ruta solicitada no existe", http.StatusNotFound},
	DemasiadasPeticiones: {429, "Demasiadas peticiones, intenta más tarde", http.StatusTooManyRequests},
	ErrorInterno:         {500, "Error interno del servidor", http.StatusInternalServerError},
}

// NuevaRespuesta construye la respuesta de catálogo para la condición dada.
// Una condición desconocida se reporta como ERROR_INTERNO.
func NuevaRespuesta(c Condicion) Respuesta {
	e, ok := catalogo[c]
	if !ok {
		c = ErrorInterno
		e = catalogo[ErrorInterno]
	}
	status := StatusFailed
	if c == Success {
		status = StatusSuccess
	}
	return Respuesta{
		Status:     status,
		Message:    e.message,
		Code:       e.code,
		Condicion:  c,
		HTTPStatus: e.httpStatus,
	}
}

// Exito es un atajo para NuevaRespuesta(Success)
func Exito() Respuesta {
	return NuevaRespuesta(Success)
}

// Fallo es un atajo para NuevaRespuesta con una condición de error
func Fallo(c Condicion) Respuesta {
	return NuevaRespuesta(c)
}

// Condiciones lista las condiciones registradas en el catálogo
func Condiciones() []Condicion {
	out := make([]Condicion, 0, len(catalogo))
	for c := range catalogo {
		out = append(out, c)
	}
	return out
}
