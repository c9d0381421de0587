package models

import (
	"fmt"
	"strconv"
)

// CodigoTurno es un turno codificado como "DDHHMMDU": día (2), hora de inicio HHMM (4) y duración en minutos (2)
type CodigoTurno struct {
	Dia        int
	HoraInicio string
	Duracion   int
}

// ParseCodigoTurno decodifica y valida un código de turno de 8 dígitos
func ParseCodigoTurno(codigo string) (CodigoTurno, error) {
	if len(codigo) != 8 {
		return CodigoTurno{}, fmt.Errorf("código de turno %q: se esperaban 8 dígitos", codigo)
	}
	for _, r := range codigo {
		if r < '0' || r > '9' {
			return CodigoTurno{}, fmt.Errorf("código de turno %q: solo se permiten dígitos", codigo)
		}
	}

	dia, _ := strconv.Atoi(codigo[0:2])
	hora, _ := strconv.Atoi(codigo[2:4])
	minuto, _ := strconv.Atoi(codigo[4:6])
	duracion, _ := strconv.Atoi(codigo[6:8])

	switch {
	case dia < 1 || dia > 31:
		return CodigoTurno{}, fmt.Errorf("código de turno %q: día %d fuera de rango", codigo, dia)
	case hora > 23 || minuto > 59:
		return CodigoTurno{}, fmt.Errorf("código de turno %q: hora %s inválida", codigo, codigo[2:6])
	case duracion == 0:
		return CodigoTurno{}, fmt.Errorf("código de turno %q: la duración debe ser mayor a cero", codigo)
	}

	return CodigoTurno{
		Dia:        dia,
		HoraInicio: codigo[2:6],
		Duracion:   duracion,
	}, nil
}
