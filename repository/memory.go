package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lizet96/agenda-backend/models"
)

// MemoryStore implementa Store en memoria. Replica las restricciones únicas
// y los borrados en cascada del esquema de PostgreSQL.
type MemoryStore struct {
	*memQueries
	mu sync.Mutex
}

type memData struct {
	especialistas map[string]models.Especialista
	clientes      map[string]models.Cliente
	servicios     map[int]models.Servicio
	agendas       map[int]models.Agenda
	dias          map[int]models.DiaAgenda
	turnos        map[int]models.Turno
	citas         map[int]models.Cita
	seq           int
}

// NewMemoryStore crea un store vacío
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.memQueries = &memQueries{d: newMemData(), mu: &s.mu}
	return s
}

func newMemData() *memData {
	return &memData{
		especialistas: map[string]models.Especialista{},
		clientes:      map[string]models.Cliente{},
		servicios:     map[int]models.Servicio{},
		agendas:       map[int]models.Agenda{},
		dias:          map[int]models.DiaAgenda{},
		turnos:        map[int]models.Turno{},
		citas:         map[int]models.Cita{},
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.especialistas {
		c.especialistas[k] = v
	}
	for k, v := range d.clientes {
		c.clientes[k] = v
	}
	for k, v := range d.servicios {
		c.servicios[k] = v
	}
	for k, v := range d.agendas {
		c.agendas[k] = v
	}
	for k, v := range d.dias {
		c.dias[k] = v
	}
	for k, v := range d.turnos {
		c.turnos[k] = v
	}
	for k, v := range d.citas {
		c.citas[k] = v
	}
	c.seq = d.seq
	return c
}

func (d *memData) nextID() int {
	d.seq++
	return d.seq
}

// Seed registra especialistas, clientes y servicios de referencia
func (s *MemoryStore) Seed(especialistas []models.Especialista, clientes []models.Cliente, servicios []models.Servicio) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range especialistas {
		s.d.especialistas[e.Cedula] = e
	}
	for _, c := range clientes {
		s.d.clientes[c.Cedula] = c
	}
	for _, sv := range servicios {
		s.d.servicios[sv.ID] = sv
		if sv.ID > s.d.seq {
			s.d.seq = sv.ID
		}
	}
}

// WithTx trabaja sobre una copia de los datos y la publica solo si fn no falla.
// Las transacciones se serializan.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(q Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(&memQueries{d: snapshot}); err != nil {
		return err
	}
	s.d = snapshot
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// memQueries opera sobre d; mu es nil dentro de una transacción porque WithTx ya tiene el lock
type memQueries struct {
	d  *memData
	mu *sync.Mutex
}

func (q *memQueries) lock() func() {
	if q.mu == nil {
		return func() {}
	}
	q.mu.Lock()
	return q.mu.Unlock
}

func (q *memQueries) EspecialistaExists(ctx context.Context, cedula string) (bool, error) {
	defer q.lock()()
	_, ok := q.d.especialistas[cedula]
	return ok, nil
}

func (q *memQueries) ClienteExists(ctx context.Context, cedula string) (bool, error) {
	defer q.lock()()
	_, ok := q.d.clientes[cedula]
	return ok, nil
}

func (q *memQueries) ServicioExists(ctx context.Context, id int) (bool, error) {
	defer q.lock()()
	_, ok := q.d.servicios[id]
	return ok, nil
}

// --- agenda ---

func (q *memQueries) FindAgendasByEspecialista(ctx context.Context, cedula string) ([]models.Agenda, error) {
	defer q.lock()()
	out := []models.Agenda{}
	for _, a := range q.d.agendas {
		if a.EspecialistaCedula == cedula {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Anio != out[j].Anio {
			return out[i].Anio < out[j].Anio
		}
		if out[i].Mes != out[j].Mes {
			return out[i].Mes < out[j].Mes
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (q *memQueries) FindAgenda(ctx context.Context, id int) (*models.Agenda, error) {
	defer q.lock()()
	a, ok := q.d.agendas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (q *memQueries) FindOrCreateAgenda(ctx context.Context, cedula string, mes, anio int) (*models.Agenda, error) {
	defer q.lock()()
	for _, a := range q.d.agendas {
		if a.EspecialistaCedula == cedula && a.Mes == mes && a.Anio == anio {
			return &a, nil
		}
	}
	if _, ok := q.d.especialistas[cedula]; !ok {
		return nil, fmt.Errorf("repository: upsert agenda: especialista %q does not exist", cedula)
	}
	a := models.Agenda{ID: q.d.nextID(), Mes: mes, Anio: anio, EspecialistaCedula: cedula}
	q.d.agendas[a.ID] = a
	return &a, nil
}

func (q *memQueries) DeleteAgenda(ctx context.Context, id int) error {
	defer q.lock()()
	if _, ok := q.d.agendas[id]; !ok {
		return ErrNotFound
	}
	delete(q.d.agendas, id)
	for diaID, d := range q.d.dias {
		if d.AgendaID == id {
			q.d.deleteDia(diaID)
		}
	}
	return nil
}

// --- dia_agenda ---

func (q *memQueries) FindDiasByAgenda(ctx context.Context, agendaID int) ([]models.DiaAgenda, error) {
	defer q.lock()()
	out := []models.DiaAgenda{}
	for _, d := range q.d.dias {
		if d.AgendaID == agendaID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dia < out[j].Dia })
	return out, nil
}

func (q *memQueries) FindDiaAgenda(ctx context.Context, id int) (*models.DiaAgenda, error) {
	defer q.lock()()
	d, ok := q.d.dias[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (q *memQueries) FindOrCreateDiaAgenda(ctx context.Context, agendaID, dia int) (*models.DiaAgenda, error) {
	defer q.lock()()
	for _, d := range q.d.dias {
		if d.AgendaID == agendaID && d.Dia == dia {
			return &d, nil
		}
	}
	if _, ok := q.d.agendas[agendaID]; !ok {
		return nil, fmt.Errorf("repository: upsert dia_agenda: agenda %d does not exist", agendaID)
	}
	d := models.DiaAgenda{ID: q.d.nextID(), Dia: dia, AgendaID: agendaID}
	q.d.dias[d.ID] = d
	return &d, nil
}

func (q *memQueries) DeleteDiaAgenda(ctx context.Context, id int) error {
	defer q.lock()()
	if _, ok := q.d.dias[id]; !ok {
		return ErrNotFound
	}
	q.d.deleteDia(id)
	return nil
}

func (d *memData) deleteDia(id int) {
	delete(d.dias, id)
	for turnoID, t := range d.turnos {
		if t.DiaAgendaID == id {
			d.deleteTurno(turnoID)
		}
	}
}

// --- turno ---

func (q *memQueries) FindTurnosByDia(ctx context.Context, diaAgendaID int) ([]models.Turno, error) {
	defer q.lock()()
	out := []models.Turno{}
	for _, t := range q.d.turnos {
		if t.DiaAgendaID == diaAgendaID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HoraInicio < out[j].HoraInicio })
	return out, nil
}

func (q *memQueries) FindTurno(ctx context.Context, id int) (*models.Turno, error) {
	defer q.lock()()
	t, ok := q.d.turnos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (q *memQueries) FindTurnoForUpdate(ctx context.Context, id int) (*models.Turno, error) {
	return q.FindTurno(ctx, id)
}

func (q *memQueries) FindOrCreateTurno(ctx context.Context, diaAgendaID int, horaInicio string, duracion int) (*models.Turno, error) {
	defer q.lock()()
	for _, t := range q.d.turnos {
		if t.DiaAgendaID == diaAgendaID && t.HoraInicio == horaInicio {
			return &t, nil
		}
	}
	if _, ok := q.d.dias[diaAgendaID]; !ok {
		return nil, fmt.Errorf("repository: upsert turno: dia_agenda %d does not exist", diaAgendaID)
	}
	t := models.Turno{ID: q.d.nextID(), HoraInicio: horaInicio, Duracion: duracion, DiaAgendaID: diaAgendaID}
	q.d.turnos[t.ID] = t
	return &t, nil
}

func (q *memQueries) SetTurnoEstado(ctx context.Context, id int, estado bool) error {
	defer q.lock()()
	t, ok := q.d.turnos[id]
	if !ok {
		return ErrNotFound
	}
	t.Estado = estado
	q.d.turnos[id] = t
	return nil
}

func (q *memQueries) DeleteTurno(ctx context.Context, id int) error {
	defer q.lock()()
	if _, ok := q.d.turnos[id]; !ok {
		return ErrNotFound
	}
	q.d.deleteTurno(id)
	return nil
}

func (d *memData) deleteTurno(id int) {
	delete(d.turnos, id)
	for citaID, c := range d.citas {
		if c.TurnoID == id {
			delete(d.citas, citaID)
		}
	}
}

// --- cita ---

func (q *memQueries) filterCitas(keep func(models.Cita) bool) []models.Cita {
	out := []models.Cita{}
	for _, c := range q.d.citas {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (q *memQueries) FindCitas(ctx context.Context) ([]models.Cita, error) {
	defer q.lock()()
	return q.filterCitas(func(models.Cita) bool { return true }), nil
}

func (q *memQueries) FindCita(ctx context.Context, id int) (*models.Cita, error) {
	defer q.lock()()
	c, ok := q.d.citas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// FindCitaForUpdate equivale a FindCita: WithTx ya serializa las transacciones
func (q *memQueries) FindCitaForUpdate(ctx context.Context, id int) (*models.Cita, error) {
	return q.FindCita(ctx, id)
}

func (q *memQueries) FindCitasByCliente(ctx context.Context, cedula string) ([]models.Cita, error) {
	defer q.lock()()
	return q.filterCitas(func(c models.Cita) bool { return c.ClienteCedula == cedula }), nil
}

func (q *memQueries) FindCitaByClienteTurno(ctx context.Context, cedula string, turnoID int) (*models.Cita, error) {
	defer q.lock()()
	found := q.filterCitas(func(c models.Cita) bool { return c.ClienteCedula == cedula && c.TurnoID == turnoID })
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (q *memQueries) FindCitaByTurno(ctx context.Context, turnoID int) (*models.Cita, error) {
	defer q.lock()()
	found := q.filterCitas(func(c models.Cita) bool { return c.TurnoID == turnoID })
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

// checkCita replica las FK y las restricciones únicas de la tabla cita
func (q *memQueries) checkCita(cita *models.Cita) error {
	if _, ok := q.d.turnos[cita.TurnoID]; !ok {
		return fmt.Errorf("repository: cita: turno %d does not exist", cita.TurnoID)
	}
	for _, c := range q.d.citas {
		if c.ID != cita.ID && c.TurnoID == cita.TurnoID {
			return fmt.Errorf("%w: cita_turno_id_key", ErrConflict)
		}
	}
	return nil
}

func (q *memQueries) CreateCita(ctx context.Context, cita *models.Cita) error {
	defer q.lock()()
	if err := q.checkCita(cita); err != nil {
		return err
	}
	cita.ID = q.d.nextID()
	q.d.citas[cita.ID] = *cita
	return nil
}

func (q *memQueries) UpdateCita(ctx context.Context, cita *models.Cita) error {
	defer q.lock()()
	if _, ok := q.d.citas[cita.ID]; !ok {
		return ErrNotFound
	}
	if err := q.checkCita(cita); err != nil {
		return err
	}
	q.d.citas[cita.ID] = *cita
	return nil
}

func (q *memQueries) DeleteCita(ctx context.Context, id int) error {
	defer q.lock()()
	if _, ok := q.d.citas[id]; !ok {
		return ErrNotFound
	}
	delete(q.d.citas, id)
	return nil
}
