package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizet96/agenda-backend/logging"
	"github.com/lizet96/agenda-backend/models"
	"github.com/lizet96/agenda-backend/repository"
)

var junio10 = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *repository.MemoryStore
	agendas *AgendaService
	citas   *CitaService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	store.Seed(
		[]models.Especialista{{Cedula: "123", Nombre: "Ana"}},
		[]models.Cliente{{Cedula: "C1", Nombre: "Luis"}, {Cedula: "C2", Nombre: "Marta"}, {Cedula: "C3", Nombre: "Rosa"}},
		[]models.Servicio{{ID: 1, Nombre: "Consulta"}, {ID: 2, Nombre: "Control"}},
	)
	opts := []Option{WithLogger(logging.Discard()), WithClock(func() time.Time { return junio10 })}
	return &fixture{
		store:   store,
		agendas: NewAgendaService(store, opts...),
		citas:   NewCitaService(store, opts...),
	}
}

// turnoID busca el id del turno (dia, hora) de la agenda 6/2025 del especialista 123
func (f *fixture) turnoID(t *testing.T, dia int, hora string) int {
	t.Helper()
	ctx := context.Background()
	agendas, err := f.store.FindAgendasByEspecialista(ctx, "123")
	require.NoError(t, err)
	for _, a := range agendas {
		dias, _ := f.store.FindDiasByAgenda(ctx, a.ID)
		for _, d := range dias {
			if d.Dia != dia {
				continue
			}
			turnos, _ := f.store.FindTurnosByDia(ctx, d.ID)
			for _, tr := range turnos {
				if tr.HoraInicio == hora {
					return tr.ID
				}
			}
		}
	}
	t.Fatalf("turno %02d %s not found", dia, hora)
	return 0
}

func (f *fixture) estado(t *testing.T, turnoID int) bool {
	t.Helper()
	tr, err := f.store.FindTurno(context.Background(), turnoID)
	require.NoError(t, err)
	return tr.Estado
}

func (f *fixture) schedule(t *testing.T, codes ...string) {
	t.Helper()
	resp, err := f.agendas.CreateOrExtend(context.Background(), models.AgendaRequest{
		Cedula: "123", Mes: 6, Anio: 2025, Turnos: codes,
	})
	require.NoError(t, err)
	require.True(t, resp.OK(), "schedule failed: %+v", resp)
}

func ptr(s string) *string { return &s }

func countRows(t *testing.T, s *repository.MemoryStore) (agendas, dias, turnos int) {
	t.Helper()
	ctx := context.Background()
	as, err := s.FindAgendasByEspecialista(ctx, "123")
	require.NoError(t, err)
	for _, a := range as {
		ds, _ := s.FindDiasByAgenda(ctx, a.ID)
		dias += len(ds)
		for _, d := range ds {
			ts, _ := s.FindTurnosByDia(ctx, d.ID)
			turnos += len(ts)
		}
	}
	return len(as), dias, turnos
}

// --- agendas ---

func TestListUpcomingWithoutAgendas(t *testing.T) {
	f := newFixture(t)

	data, resp, err := f.agendas.ListUpcoming(context.Background(), "123")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, models.NoAgendas, resp.Condicion)
	assert.False(t, resp.OK())
}

func TestCreateOrExtendIsIdempotent(t *testing.T) {
	f := newFixture(t)
	codes := []string{"01083030", "01090030", "15083030"}

	f.schedule(t, codes...)
	f.schedule(t, codes...)

	agendas, dias, turnos := countRows(t, f.store)
	assert.Equal(t, 1, agendas)
	assert.Equal(t, 2, dias)
	assert.Equal(t, 3, turnos)
}

func TestCreateOrExtendDecodesSlotCode(t *testing.T) {
	f := newFixture(t)
	f.schedule(t, "01083030")

	tr, err := f.store.FindTurno(context.Background(), f.turnoID(t, 1, "0830"))
	require.NoError(t, err)
	assert.Equal(t, 30, tr.Duracion)
	assert.False(t, tr.Estado)
}

func TestCreateOrExtendRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.AgendaRequest
		want models.Condicion
	}{
		{"bad month", models.AgendaRequest{Cedula: "123", Mes: 13, Anio: 2025, Turnos: []string{"01083030"}}, models.TurnoInvalido},
		{"no codes", models.AgendaRequest{Cedula: "123", Mes: 6, Anio: 2025}, models.TurnoInvalido},
		{"short code", models.AgendaRequest{Cedula: "123", Mes: 6, Anio: 2025, Turnos: []string{"010830"}}, models.TurnoInvalido},
		{"bad hour", models.AgendaRequest{Cedula: "123", Mes: 6, Anio: 2025, Turnos: []string{"01253030"}}, models.TurnoInvalido},
		{"unknown especialista", models.AgendaRequest{Cedula: "999", Mes: 6, Anio: 2025, Turnos: []string{"01083030"}}, models.EspecialistaNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := f.agendas.CreateOrExtend(ctx, tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Condicion)
		})
	}

	agendas, _, _ := countRows(t, f.store)
	assert.Zero(t, agendas)
}

func TestListUpcomingAppliesMonthAndDayFilterLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	create := func(mes, anio int, codes ...string) {
		resp, err := f.agendas.CreateOrExtend(ctx, models.AgendaRequest{Cedula: "123", Mes: mes, Anio: anio, Turnos: codes})
		require.NoError(t, err)
		require.True(t, resp.OK())
	}
	create(5, 2025, "20083030")
	create(6, 2025, "05083030", "10090030", "20083030", "20093030")
	// el día 1 queda fuera: se compara con el día actual
	create(7, 2025, "01083030", "15083030")
	// mes 1 < 6: fuera aunque el año sea posterior
	create(1, 2026, "01083030")

	data, resp, err := f.agendas.ListUpcoming(ctx, "123")
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Len(t, data, 2)

	junio := data[0]
	assert.Equal(t, 6, junio.Mes)
	require.Len(t, junio.DiaAgendaList, 2)
	assert.Equal(t, 10, junio.DiaAgendaList[0].Dia)
	assert.Equal(t, 20, junio.DiaAgendaList[1].Dia)
	require.Len(t, junio.DiaAgendaList[1].TurnoList, 2)
	assert.Equal(t, "0830", junio.DiaAgendaList[1].TurnoList[0].HoraInicio)

	julio := data[1]
	assert.Equal(t, 7, julio.Mes)
	require.Len(t, julio.DiaAgendaList, 1)
	assert.Equal(t, 15, julio.DiaAgendaList[0].Dia)
}

func TestListUpcomingReturnsEmptyListWhenAllPast(t *testing.T) {
	f := newFixture(t)
	resp, err := f.agendas.CreateOrExtend(context.Background(), models.AgendaRequest{
		Cedula: "123", Mes: 1, Anio: 2025, Turnos: []string{"01083030"},
	})
	require.NoError(t, err)
	require.True(t, resp.OK())

	data, resp, err := f.agendas.ListUpcoming(context.Background(), "123")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestDeleteMissingAgendaHierarchy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.agendas.DeleteAgenda(ctx, 404)
	require.NoError(t, err)
	assert.Equal(t, models.AgendaNotFound, resp.Condicion)

	resp, err = f.agendas.DeleteDia(ctx, 404)
	require.NoError(t, err)
	assert.Equal(t, models.DiaAgendaNotFound, resp.Condicion)

	resp, err = f.agendas.DeleteTurno(ctx, 404)
	require.NoError(t, err)
	assert.Equal(t, models.TurnoNotFound, resp.Condicion)
}

func TestDeleteAgendaHierarchy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "10083030", "10090030", "11083030")

	resp, err := f.agendas.DeleteTurno(ctx, f.turnoID(t, 10, "0900"))
	require.NoError(t, err)
	assert.True(t, resp.OK())
	_, _, turnos := countRows(t, f.store)
	assert.Equal(t, 2, turnos)

	agendas, _ := f.store.FindAgendasByEspecialista(ctx, "123")
	dias, _ := f.store.FindDiasByAgenda(ctx, agendas[0].ID)
	resp, err = f.agendas.DeleteDia(ctx, dias[0].ID)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	_, diasLeft, turnos := countRows(t, f.store)
	assert.Equal(t, 1, diasLeft)
	assert.Equal(t, 1, turnos)

	resp, err = f.agendas.DeleteAgenda(ctx, agendas[0].ID)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	n, _, _ := countRows(t, f.store)
	assert.Zero(t, n)
}

// --- citas ---

func TestCreateCitaMissingData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for name, data := range map[string]models.CitaData{
		"no cliente":  {TurnoID: 1, ServicioID: 1},
		"no turno":    {ClienteCedula: ptr("C1"), ServicioID: 1},
		"no servicio": {ClienteCedula: ptr("C1"), TurnoID: 1},
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := f.citas.Create(ctx, data)
			require.NoError(t, err)
			assert.Equal(t, models.FaltanDatos, resp.Condicion)
		})
	}
}

func TestCreateCitaUnresolvedReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030")
	turno := f.turnoID(t, 1, "0830")

	resp, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("nadie"), TurnoID: 9999, ServicioID: 9999})
	require.NoError(t, err)
	assert.Equal(t, models.CustomerNotFound, resp.Condicion)

	resp, err = f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: 9999, ServicioID: 9999})
	require.NoError(t, err)
	assert.Equal(t, models.TurnoNotFound, resp.Condicion)

	resp, err = f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: turno, ServicioID: 9999})
	require.NoError(t, err)
	assert.Equal(t, models.ServiceNotFound, resp.Condicion)

	assert.False(t, f.estado(t, turno))
}

func TestBookingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030")
	turno := f.turnoID(t, 1, "0830")

	resp, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: turno, ServicioID: 1})
	require.NoError(t, err)
	require.True(t, resp.OK())
	assert.True(t, f.estado(t, turno))

	citas, resp, err := f.citas.ListByCliente(ctx, "C1")
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Len(t, citas, 1)
	assert.Equal(t, junio10, citas[0].Fecha)

	resp, err = f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C2"), TurnoID: turno, ServicioID: 1})
	require.NoError(t, err)
	assert.Equal(t, models.TurnoAsignado, resp.Condicion)

	resp, err = f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: turno, ServicioID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.CitaAlreadyExists, resp.Condicion)

	all, _, err := f.citas.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.True(t, f.estado(t, turno))
}

func TestListCitasEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, resp, err := f.citas.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.NoCitas, resp.Condicion)

	_, resp, err = f.citas.ListByCliente(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, models.NoCitas, resp.Condicion)

	_, resp, err = f.citas.Get(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, models.CitaNotFound, resp.Condicion)
}

func TestDeleteCitaFreesTurno(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030")
	turno := f.turnoID(t, 1, "0830")

	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: turno, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)
	require.Len(t, citas, 1)

	resp, err := f.citas.Delete(ctx, citas[0].ID)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.False(t, f.estado(t, turno))

	resp, err = f.citas.Delete(ctx, citas[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.CitaNotFound, resp.Condicion)
}

func TestFullUpdateMovesBetweenTurnos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030", "01090030", "01093030")
	a := f.turnoID(t, 1, "0830")
	b := f.turnoID(t, 1, "0900")
	c := f.turnoID(t, 1, "0930")

	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a, ServicioID: 1})
	require.NoError(t, err)
	_, err = f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C2"), TurnoID: c, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)
	require.Len(t, citas, 2)
	primera, segunda := citas[0], citas[1]

	resp, err := f.citas.FullUpdate(ctx, primera.ID, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: b, ServicioID: 2})
	require.NoError(t, err)
	require.True(t, resp.OK())
	assert.False(t, f.estado(t, a))
	assert.True(t, f.estado(t, b))

	moved, _, _ := f.citas.Get(ctx, primera.ID)
	assert.Equal(t, b, moved.TurnoID)
	assert.Equal(t, 2, moved.ServicioID)

	resp, err = f.citas.FullUpdate(ctx, segunda.ID, models.CitaData{ClienteCedula: ptr("C2"), TurnoID: b, ServicioID: 1})
	require.NoError(t, err)
	assert.Equal(t, models.TurnoAsignado, resp.Condicion)
	assert.True(t, f.estado(t, b))
	assert.True(t, f.estado(t, c))
}

func TestFullUpdateKeepsSameTurno(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030")
	a := f.turnoID(t, 1, "0830")

	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)

	resp, err := f.citas.FullUpdate(ctx, citas[0].ID, models.CitaData{ClienteCedula: ptr("C3"), TurnoID: a, ServicioID: 2})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.True(t, f.estado(t, a))

	got, _, _ := f.citas.Get(ctx, citas[0].ID)
	assert.Equal(t, "C3", got.ClienteCedula)
}

func TestFullUpdateValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030")
	a := f.turnoID(t, 1, "0830")
	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)
	id := citas[0].ID

	cases := []struct {
		name string
		id   int
		data models.CitaData
		want models.Condicion
	}{
		{"faltan datos", id, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a}, models.FaltanDatos},
		{"cita", 9999, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a, ServicioID: 1}, models.CitaNotFound},
		{"cliente", id, models.CitaData{ClienteCedula: ptr("nadie"), TurnoID: 9999, ServicioID: 9999}, models.CustomerNotFound},
		{"servicio", id, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: 9999, ServicioID: 9999}, models.ServiceNotFound},
		{"turno", id, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: 9999, ServicioID: 1}, models.TurnoNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := f.citas.FullUpdate(ctx, tc.id, tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Condicion)
		})
	}
}

func TestPartialUpdateAppliesPresentFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030", "01090030")
	a := f.turnoID(t, 1, "0830")
	b := f.turnoID(t, 1, "0900")

	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)
	id := citas[0].ID

	resp, err := f.citas.PartialUpdate(ctx, id, models.CitaData{ClienteCedula: ptr("C2")})
	require.NoError(t, err)
	require.True(t, resp.OK())
	got, _, _ := f.citas.Get(ctx, id)
	assert.Equal(t, "C2", got.ClienteCedula)
	assert.Equal(t, a, got.TurnoID)
	assert.Equal(t, 1, got.ServicioID)

	resp, err = f.citas.PartialUpdate(ctx, id, models.CitaData{TurnoID: b})
	require.NoError(t, err)
	require.True(t, resp.OK())
	assert.False(t, f.estado(t, a))
	assert.True(t, f.estado(t, b))
}

func TestPartialUpdateFailureRollsBackSwap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030", "01090030")
	a := f.turnoID(t, 1, "0830")
	b := f.turnoID(t, 1, "0900")

	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)
	id := citas[0].ID

	resp, err := f.citas.PartialUpdate(ctx, id, models.CitaData{TurnoID: b, ServicioID: 9999})
	require.NoError(t, err)
	assert.Equal(t, models.ServiceNotFound, resp.Condicion)

	assert.True(t, f.estado(t, a))
	assert.False(t, f.estado(t, b))
	got, _, _ := f.citas.Get(ctx, id)
	assert.Equal(t, a, got.TurnoID)
}

func TestPartialUpdateConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030", "01090030")
	a := f.turnoID(t, 1, "0830")
	b := f.turnoID(t, 1, "0900")

	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a, ServicioID: 1})
	require.NoError(t, err)
	_, err = f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C2"), TurnoID: b, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)

	resp, err := f.citas.PartialUpdate(ctx, citas[0].ID, models.CitaData{TurnoID: b})
	require.NoError(t, err)
	assert.Equal(t, models.TurnoAsignado, resp.Condicion)

	resp, err = f.citas.PartialUpdate(ctx, citas[0].ID, models.CitaData{TurnoID: 9999})
	require.NoError(t, err)
	assert.Equal(t, models.TurnoNotFound, resp.Condicion)

	resp, err = f.citas.PartialUpdate(ctx, citas[0].ID, models.CitaData{ClienteCedula: ptr("nadie")})
	require.NoError(t, err)
	assert.Equal(t, models.CustomerNotFound, resp.Condicion)

	resp, err = f.citas.PartialUpdate(ctx, 9999, models.CitaData{ServicioID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.CitaNotFound, resp.Condicion)
}

type conflictStore struct {
	repository.Store
}

func (conflictStore) WithTx(ctx context.Context, fn func(q repository.Queries) error) error {
	return fmt.Errorf("repository: insert cita: %w", repository.ErrConflict)
}

func TestStorageConflictReportedAsTurnoAsignado(t *testing.T) {
	f := newFixture(t)
	f.schedule(t, "01083030")
	turno := f.turnoID(t, 1, "0830")

	svc := NewCitaService(conflictStore{Store: f.store}, WithLogger(logging.Discard()))
	resp, err := svc.Create(context.Background(), models.CitaData{ClienteCedula: ptr("C1"), TurnoID: turno, ServicioID: 1})
	require.NoError(t, err)
	assert.Equal(t, models.TurnoAsignado, resp.Condicion)
}

// lockLog registra el orden de los bloqueos de fila tomados dentro de WithTx
type lockLog struct {
	*repository.MemoryStore
	locks []string
}

func (s *lockLog) WithTx(ctx context.Context, fn func(q repository.Queries) error) error {
	return s.MemoryStore.WithTx(ctx, func(q repository.Queries) error {
		return fn(lockQueries{Queries: q, rec: s})
	})
}

type lockQueries struct {
	repository.Queries
	rec *lockLog
}

func (q lockQueries) FindCitaForUpdate(ctx context.Context, id int) (*models.Cita, error) {
	q.rec.locks = append(q.rec.locks, fmt.Sprintf("cita:%d", id))
	return q.Queries.FindCitaForUpdate(ctx, id)
}

func (q lockQueries) FindTurnoForUpdate(ctx context.Context, id int) (*models.Turno, error) {
	q.rec.locks = append(q.rec.locks, fmt.Sprintf("turno:%d", id))
	return q.Queries.FindTurnoForUpdate(ctx, id)
}

func TestMoveLocksCitaThenTurnosInAscendingOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030", "01090030")
	lo, hi := f.turnoID(t, 1, "0830"), f.turnoID(t, 1, "0900")
	if hi < lo {
		lo, hi = hi, lo
	}

	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: hi, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)
	id := citas[0].ID

	rec := &lockLog{MemoryStore: f.store}
	svc := NewCitaService(rec, WithLogger(logging.Discard()))

	resp, err := svc.PartialUpdate(ctx, id, models.CitaData{TurnoID: lo})
	require.NoError(t, err)
	require.True(t, resp.OK())
	want := []string{fmt.Sprintf("cita:%d", id), fmt.Sprintf("turno:%d", lo), fmt.Sprintf("turno:%d", hi)}
	assert.Equal(t, want, rec.locks)

	rec.locks = nil
	resp, err = svc.FullUpdate(ctx, id, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: hi, ServicioID: 1})
	require.NoError(t, err)
	require.True(t, resp.OK())
	assert.Equal(t, want, rec.locks)

	rec.locks = nil
	resp, err = svc.Delete(ctx, id)
	require.NoError(t, err)
	require.True(t, resp.OK())
	assert.Equal(t, []string{fmt.Sprintf("cita:%d", id)}, rec.locks)
}

// vanishingStore simula una cita borrada por otra transacción entre la lectura y la escritura
type vanishingStore struct {
	*repository.MemoryStore
}

func (s vanishingStore) WithTx(ctx context.Context, fn func(q repository.Queries) error) error {
	return s.MemoryStore.WithTx(ctx, func(q repository.Queries) error {
		return fn(vanishingQueries{Queries: q})
	})
}

type vanishingQueries struct {
	repository.Queries
}

func (vanishingQueries) UpdateCita(ctx context.Context, cita *models.Cita) error {
	return repository.ErrNotFound
}

func (vanishingQueries) DeleteCita(ctx context.Context, id int) error {
	return repository.ErrNotFound
}

func TestCitaGoneDuringWriteReportsCitaNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030", "01090030")
	a := f.turnoID(t, 1, "0830")
	b := f.turnoID(t, 1, "0900")

	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)
	id := citas[0].ID

	svc := NewCitaService(vanishingStore{MemoryStore: f.store}, WithLogger(logging.Discard()))

	resp, err := svc.PartialUpdate(ctx, id, models.CitaData{TurnoID: b})
	require.NoError(t, err)
	assert.Equal(t, models.CitaNotFound, resp.Condicion)

	resp, err = svc.FullUpdate(ctx, id, models.CitaData{ClienteCedula: ptr("C2"), TurnoID: b, ServicioID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.CitaNotFound, resp.Condicion)

	resp, err = svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.CitaNotFound, resp.Condicion)

	// nada se persiste
	assert.True(t, f.estado(t, a))
	assert.False(t, f.estado(t, b))
	got, _, _ := f.citas.Get(ctx, id)
	assert.Equal(t, a, got.TurnoID)
}

// --- concurrencia ---

func TestConcurrentCreateBooksTurnoOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030")
	turno := f.turnoID(t, 1, "0830")

	const n = 8
	clientes := make([]models.Cliente, n)
	for i := range clientes {
		clientes[i] = models.Cliente{Cedula: fmt.Sprintf("K%d", i)}
	}
	f.store.Seed(nil, clientes, nil)

	results := make([]models.Respuesta, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr(clientes[i].Cedula), TurnoID: turno, ServicioID: 1})
			assert.NoError(t, err)
			results[i] = resp
		}(i)
	}
	wg.Wait()

	exitos := 0
	for _, r := range results {
		if r.OK() {
			exitos++
			continue
		}
		assert.Equal(t, models.TurnoAsignado, r.Condicion)
	}
	assert.Equal(t, 1, exitos)

	all, _, err := f.citas.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.True(t, f.estado(t, turno))
}

func TestConcurrentMovesOfSameCitaKeepTurnosConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.schedule(t, "01083030", "01090030", "01093030")
	a := f.turnoID(t, 1, "0830")
	b := f.turnoID(t, 1, "0900")
	c := f.turnoID(t, 1, "0930")

	_, err := f.citas.Create(ctx, models.CitaData{ClienteCedula: ptr("C1"), TurnoID: a, ServicioID: 1})
	require.NoError(t, err)
	citas, _, _ := f.citas.ListAll(ctx)
	id := citas[0].ID

	var wg sync.WaitGroup
	for _, destino := range []int{b, c} {
		wg.Add(1)
		go func(destino int) {
			defer wg.Done()
			resp, err := f.citas.PartialUpdate(ctx, id, models.CitaData{TurnoID: destino})
			assert.NoError(t, err)
			assert.True(t, resp.OK(), "move to %d: %+v", destino, resp)
		}(destino)
	}
	wg.Wait()

	got, _, err := f.citas.Get(ctx, id)
	require.NoError(t, err)
	require.Contains(t, []int{b, c}, got.TurnoID)

	// un turno está ocupado si y solo si una cita lo referencia
	for _, turno := range []int{a, b, c} {
		assert.Equal(t, turno == got.TurnoID, f.estado(t, turno), "turno %d", turno)
	}
}
