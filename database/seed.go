package database

import (
	"github.com/lizet96/agenda-backend/models"
	"github.com/lizet96/agenda-backend/repository"
)

// Datos de demostración para STORAGE=memory. Especialistas, clientes y
// servicios pertenecen a otros sistemas; aquí solo se leen.
var (
	DemoEspecialistas = []models.Especialista{
		{Cedula: "123", Nombre: "Dra. Andrea Pérez"},
		{Cedula: "456", Nombre: "Dr. Carlos Ramírez"},
	}
	DemoClientes = []models.Cliente{
		{Cedula: "C1", Nombre: "Luis Gómez"},
		{Cedula: "C2", Nombre: "Marta Díaz"},
		{Cedula: "C3", Nombre: "Rosa Herrera"},
	}
	DemoServicios = []models.Servicio{
		{ID: 1, Nombre: "Consulta general"},
		{ID: 2, Nombre: "Control"},
		{ID: 3, Nombre: "Terapia"},
	}
)

// SeedMemory carga los catálogos de demostración en el almacenamiento en memoria
func SeedMemory(store *repository.MemoryStore) {
	store.Seed(DemoEspecialistas, DemoClientes, DemoServicios)
}
