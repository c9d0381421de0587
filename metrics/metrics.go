package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lizet96/agenda-backend/models"
)

// Metrics expone contadores de resultados de las operaciones de agenda y citas
type Metrics struct {
	agendaOps *prometheus.CounterVec
	citaOps   *prometheus.CounterVec
}

// New registra los contadores en reg (o en el registro por defecto si es nil)
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		agendaOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "agendas",
			Name:      "operations_total",
			Help:      "Operaciones sobre agendas, días y turnos por resultado",
		}, []string{"operation", "result"}),
		citaOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "citas",
			Name:      "operations_total",
			Help:      "Operaciones sobre citas por resultado",
		}, []string{"operation", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.agendaOps, m.citaOps)
	return m
}

func (m *Metrics) ObserveAgenda(operation string, result models.Condicion) {
	if m == nil {
		return
	}
	m.agendaOps.WithLabelValues(operation, string(result)).Inc()
}

func (m *Metrics) ObserveCita(operation string, result models.Condicion) {
	if m == nil {
		return
	}
	m.citaOps.WithLabelValues(operation, string(result)).Inc()
}
