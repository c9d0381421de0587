package models

// Agenda representa la tabla agenda: el mes de trabajo de un especialista
type Agenda struct {
	ID                 int    `json:"id" db:"id"`
	Mes                int    `json:"mes" db:"mes"`
	Anio               int    `json:"anio" db:"anio"`
	EspecialistaCedula string `json:"especialistaCedula" db:"especialista_cedula"`
}

// DiaAgenda representa la tabla dia_agenda
type DiaAgenda struct {
	ID       int `json:"id" db:"id"`
	Dia      int `json:"dia" db:"dia"`
	AgendaID int `json:"agendaId" db:"agenda_id"`
}

// Turno representa la tabla turno. Estado es true mientras una cita lo ocupa.
type Turno struct {
	ID          int    `json:"id" db:"id"`
	HoraInicio  string `json:"horaInicio" db:"hora_inicio"`
	Duracion    int    `json:"duracion" db:"duracion"`
	DiaAgendaID int    `json:"diaAgendaId" db:"dia_agenda_id"`
	Estado      bool   `json:"estado" db:"estado"`
}

// AgendaRequest son los parámetros de POST /especialista/:cedula/agenda
type AgendaRequest struct {
	Cedula string   `validate:"required"`
	Anio   int      `validate:"required,gte=1"`
	Mes    int      `validate:"required,min=1,max=12"`
	Turnos []string `validate:"required,min=1,dive,len=8,numeric"`
}

// AgendaData es la forma de salida de una agenda con sus días
type AgendaData struct {
	ID            int             `json:"id"`
	Mes           int             `json:"mes"`
	Anio          int             `json:"anio"`
	DiaAgendaList []DiaAgendaData `json:"diaAgendaList"`
}

// DiaAgendaData es la forma de salida de un día con sus turnos
type DiaAgendaData struct {
	ID        int         `json:"id"`
	Dia       int         `json:"dia"`
	TurnoList []TurnoData `json:"turnoList"`
}

// TurnoData es la forma de salida de un turno
type TurnoData struct {
	ID         int    `json:"id"`
	HoraInicio string `json:"horaInicio"`
	Duracion   int    `json:"duracion"`
	Estado     bool   `json:"estado"`
}

func NewAgendaData(a Agenda) AgendaData {
	return AgendaData{
		ID:            a.ID,
		Mes:           a.Mes,
		Anio:          a.Anio,
		DiaAgendaList: []DiaAgendaData{},
	}
}

func NewDiaAgendaData(d DiaAgenda) DiaAgendaData {
	return DiaAgendaData{
		ID:        d.ID,
		Dia:       d.Dia,
		TurnoList: []TurnoData{},
	}
}

func NewTurnoData(t Turno) TurnoData {
	return TurnoData{
		ID:         t.ID,
		HoraInicio: t.HoraInicio,
		Duracion:   t.Duracion,
		Estado:     t.Estado,
	}
}
