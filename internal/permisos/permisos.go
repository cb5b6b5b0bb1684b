// Package permisos resuelve el conjunto de capacidades de un colaborador a
// partir de su cargo. La tabla de decisión es cerrada y pequeña: una función
// pura de búsqueda, no una jerarquía.
package permisos

import "strings"

// Permisos es el conjunto fijo de capacidades de una sesión.
type Permisos struct {
	AccesoAvisos        bool `json:"acceso_avisos"`
	AccesoOT            bool `json:"acceso_ot"`
	AccesoEquipos       bool `json:"acceso_equipos"`
	AccesoColaboradores bool `json:"acceso_colaboradores"`
	AccesoReportes      bool `json:"acceso_reportes"`
	AccesoBasesDatos    bool `json:"acceso_bases_datos"`

	PuedeCrear            bool `json:"puede_crear"`
	PuedeEditar           bool `json:"puede_editar"`
	PuedeEliminar         bool `json:"puede_eliminar"`
	PuedeDescargarExcel   bool `json:"puede_descargar_excel"`
	PuedeVerColaboradores bool `json:"puede_ver_colaboradores"`
	PuedeEditarEquipos    bool `json:"puede_editar_equipos"`
	PuedeEliminarEquipos  bool `json:"puede_eliminar_equipos"`
}

// grupo asocia palabras clave de cargos con su conjunto de permisos.
// El orden importa: gana el primer grupo cuya palabra aparezca en el cargo.
type grupo struct {
	palabras []string
	permisos Permisos
}

var grupos = []grupo{
	{
		// Dirección: acceso y control total.
		palabras: []string{"GERENTE", "JEFE DE MANTENIMIENTO", "COORDINADOR"},
		permisos: Permisos{
			AccesoAvisos: true, AccesoOT: true, AccesoEquipos: true,
			AccesoColaboradores: true, AccesoReportes: true, AccesoBasesDatos: true,
			PuedeCrear: true, PuedeEditar: true, PuedeEliminar: true,
			PuedeDescargarExcel: true, PuedeVerColaboradores: true,
			PuedeEditarEquipos: true, PuedeEliminarEquipos: true,
		},
	},
	{
		// Planner: todo menos eliminar colaboradores.
		palabras: []string{"PLANNER DE MANTTO"},
		permisos: Permisos{
			AccesoAvisos: true, AccesoOT: true, AccesoEquipos: true,
			AccesoColaboradores: true, AccesoReportes: true, AccesoBasesDatos: true,
			PuedeCrear: true, PuedeEditar: true,
			PuedeDescargarExcel: true, PuedeVerColaboradores: true,
			PuedeEditarEquipos: true, PuedeEliminarEquipos: true,
		},
	},
	{
		// Técnicos: solo consulta de equipos y reportes.
		palabras: []string{
			"TECNICO MECANICO", "TECNICO ELECTRICO", "SOLDADOR",
			"OPERADOR DE VAHOS", "CALDERISTA", "AUXILIAR",
		},
		permisos: Permisos{
			AccesoEquipos: true, AccesoReportes: true,
		},
	},
	{
		// Supervisores: gestionan avisos pero no OT ni descargas.
		palabras: []string{"SUPERVISOR MECANICO", "SUPERVISOR ELECTRICO"},
		permisos: Permisos{
			AccesoAvisos: true, AccesoEquipos: true,
			AccesoColaboradores: true, AccesoReportes: true, AccesoBasesDatos: true,
			PuedeCrear: true, PuedeEditar: true,
			PuedeVerColaboradores: true, PuedeEditarEquipos: true,
		},
	},
	{
		palabras: []string{"ASISTENTE MANTENIMIENTO", "PRACTICANTE MANTENIMIENTO"},
		permisos: Permisos{
			AccesoAvisos: true, AccesoEquipos: true,
			AccesoColaboradores: true, AccesoReportes: true, AccesoBasesDatos: true,
			PuedeCrear: true, PuedeEditar: true,
			PuedeDescargarExcel: true, PuedeVerColaboradores: true,
			PuedeEditarEquipos: true,
		},
	},
	{
		palabras: []string{"INGENIERO CIVIL"},
		permisos: Permisos{
			AccesoAvisos: true, AccesoOT: true, AccesoEquipos: true,
			AccesoReportes: true, AccesoBasesDatos: true,
			PuedeCrear: true, PuedeEditar: true,
			PuedeDescargarExcel: true, PuedeEditarEquipos: true,
		},
	},
}

// PorCargo resuelve los permisos de un cargo en texto libre. La búsqueda es
// por subcadena sin distinguir mayúsculas; un cargo sin coincidencias queda
// sin ningún permiso.
func PorCargo(cargo string) Permisos {
	mayus := strings.ToUpper(cargo)
	for _, g := range grupos {
		for _, palabra := range g.palabras {
			if strings.Contains(mayus, palabra) {
				return g.permisos
			}
		}
	}
	return Permisos{}
}
