package ordenes

import (
	"strings"
	"testing"
	"time"

	"mantto/internal/database"
	"mantto/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var gerente = Actor{Codigo: "70697318", Nombre: "Administrador", Cargo: "GERENTE"}

func servicioDePrueba(t *testing.T) *Servicio {
	t.Helper()
	bases, err := database.Abrir("", t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	reloj := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	s := Nuevo(bases, zap.NewNop())
	s.Ahora = func() time.Time { return reloj }
	return s
}

func avisoDePrueba() DatosAviso {
	return DatosAviso{
		Area:                "Planta A",
		Equipo:              "Caldera 2",
		CodigoEquipo:        "EQ-001",
		DescripcionProblema: "fuga de vapor en la válvula principal",
		TipoMantenimiento:   "CORRECTIVO",
		HayRiesgo:           "SI",
	}
}

func planificacionDePrueba() Planificacion {
	return Planificacion{
		Prioridad:            "ALTA",
		Responsable:          "J. Quispe",
		Clasificacion:        "MECANICA",
		Sistema:              "VAPOR",
		AlimentadorProveedor: "INTERNO",
		FechaEstimadaInicio:  "2026-03-11",
		DuracionEstimada:     "02:30:00",
		Componentes:          "válvula, empaquetadura",
		DescripcionTrabajo:   "cambiar válvula y empaquetadura",
		CantidadMecanicos:    2,
	}
}

func TestCrearAvisoGeneraCodigosCorrelativos(t *testing.T) {
	s := servicioDePrueba(t)

	a1, err := s.CrearAviso(gerente, avisoDePrueba())
	require.NoError(t, err)
	assert.Equal(t, "CODP-00000001", a1.CodigoPadre)
	assert.Equal(t, "AM-00000001", a1.CodigoMantto)
	assert.Equal(t, models.EstadoIngresado, a1.Estado)
	assert.Equal(t, "2026-03-10", a1.IngresadoEl)
	assert.Equal(t, 0, a1.Antiguedad)

	a2, err := s.CrearAviso(gerente, avisoDePrueba())
	require.NoError(t, err)
	assert.Equal(t, "CODP-00000002", a2.CodigoPadre)
	assert.Equal(t, "AM-00000002", a2.CodigoMantto)
}

func TestCrearAvisoSinDatosObligatorios(t *testing.T) {
	s := servicioDePrueba(t)

	_, err := s.CrearAviso(gerente, DatosAviso{Area: "Planta A"})
	require.Error(t, err)
	assert.Equal(t, ClaseValidacion, ClaseDe(err))
}

func TestCicloCompletoAvisoHastaCulminacion(t *testing.T) {
	s := servicioDePrueba(t)

	aviso, err := s.CrearAviso(gerente, avisoDePrueba())
	require.NoError(t, err)

	ot, err := s.Promover(gerente, aviso.CodigoMantto, planificacionDePrueba())
	require.NoError(t, err)
	assert.Equal(t, "OT-0000001", ot.CodigoOTBase)
	assert.Equal(t, models.EstadoProgramado, ot.Estado)
	assert.Equal(t, aviso.CodigoPadre, ot.CodigoPadre)

	var avisoProgramado models.Aviso
	require.NoError(t, s.Bases.Avisos.First(&avisoProgramado, "codigo_mantto = ?", aviso.CodigoMantto).Error)
	assert.Equal(t, models.EstadoProgramado, avisoProgramado.Estado)
	assert.Equal(t, "OT-0000001", avisoProgramado.CodigoOTBase)

	// Primer inicio: fila de sufijo nueva y OT en PENDIENTE.
	res, err := s.Iniciar(gerente, ot.CodigoOTBase, SesionTrabajo{
		Responsables:       "cuadrilla 1",
		DescripcionTrabajo: "desmontaje de la válvula",
	})
	require.NoError(t, err)
	assert.False(t, res.Continuacion)
	assert.Equal(t, "OT-0000001-01", res.CodigoOTSufijo)
	assert.Equal(t, models.EstadoPendiente, res.Estado)

	// Dos continuaciones: acumulan sobre la OT sin sufijos nuevos.
	for _, trabajo := range []string{"limpieza del asiento", "montaje de la válvula nueva"} {
		res, err = s.Iniciar(gerente, ot.CodigoOTBase, SesionTrabajo{
			Responsables:       "cuadrilla 1",
			DescripcionTrabajo: trabajo,
		})
		require.NoError(t, err)
		assert.True(t, res.Continuacion)
		assert.Empty(t, res.CodigoOTSufijo)
	}

	culminada, err := s.Culminar(gerente, ot.CodigoOTBase, Culminacion{
		Responsables:        "cuadrilla 1",
		DescripcionFinal:    "prueba hidrostática conforme",
		ObservacionesCierre: "sin fugas",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EstadoCulminado, culminada.Estado)

	// La descripción acumulada conserva los cuatro bloques en orden.
	bloques := strings.Split(culminada.DescripcionTrabajoRealizado, "\n\n")
	require.Len(t, bloques, 4)
	assert.True(t, strings.HasPrefix(bloques[0], "--- INICIO: 2026-03-10 08:30 ---\n"))
	assert.True(t, strings.HasPrefix(bloques[1], "--- CONTINUACIÓN: "))
	assert.True(t, strings.HasPrefix(bloques[2], "--- CONTINUACIÓN: "))
	assert.True(t, strings.HasPrefix(bloques[3], "--- CULMINACIÓN: "))
	assert.True(t, strings.HasSuffix(bloques[3], "prueba hidrostática conforme"))

	// El aviso de origen recibe el cierre sin acumulación.
	var avisoFinal models.Aviso
	require.NoError(t, s.Bases.Avisos.First(&avisoFinal, "codigo_mantto = ?", aviso.CodigoMantto).Error)
	assert.Equal(t, models.EstadoCulminado, avisoFinal.Estado)
	assert.Equal(t, "prueba hidrostática conforme", avisoFinal.DescripcionTrabajoRealizado)

	// Log de sufijos: una fila del inicio más la de culminación.
	var sufijos []models.OrdenSufijo
	require.NoError(t, s.Bases.Sufijos.Where("codigo_ot_base = ?", ot.CodigoOTBase).Order("id asc").Find(&sufijos).Error)
	require.Len(t, sufijos, 2)
	assert.Equal(t, "OT-0000001-01", sufijos[0].CodigoOTSufijo)
	assert.Equal(t, "OT-0000001-CULM", sufijos[1].CodigoOTSufijo)
	assert.Equal(t, models.EstadoCulminado, sufijos[1].Estado)
}

func TestIniciarConservaFechaYHoraDeInicio(t *testing.T) {
	s := servicioDePrueba(t)

	ot, err := s.CrearDirecta(gerente, DatosDirecta{
		Planificacion: planificacionDePrueba(),
		Area:          "Planta A",
		Equipo:        "Molino 1",
	})
	require.NoError(t, err)

	_, err = s.Iniciar(gerente, ot.CodigoOTBase, SesionTrabajo{
		FechaMantenimiento: "2026-03-10",
		HoraInicio:         "07:00:00",
		Responsables:       "cuadrilla 2",
		DescripcionTrabajo: "inspección inicial",
	})
	require.NoError(t, err)

	// La continuación trae otra fecha y hora, pero las de inicio ya quedaron.
	_, err = s.Iniciar(gerente, ot.CodigoOTBase, SesionTrabajo{
		FechaMantenimiento: "2026-03-12",
		HoraInicio:         "14:00:00",
		Responsables:       "cuadrilla 2",
		DescripcionTrabajo: "ajuste de rodamientos",
	})
	require.NoError(t, err)

	var orden models.OrdenTrabajo
	require.NoError(t, s.Bases.Unicas.First(&orden, "codigo_ot_base = ?", ot.CodigoOTBase).Error)
	assert.Equal(t, "2026-03-10", orden.FechaInicioMantenimiento)
	assert.Equal(t, "07:00:00", orden.HoraInicioMantenimiento)
}

func TestPromoverDosVecesFallaLaSegunda(t *testing.T) {
	s := servicioDePrueba(t)

	aviso, err := s.CrearAviso(gerente, avisoDePrueba())
	require.NoError(t, err)

	_, err = s.Promover(gerente, aviso.CodigoMantto, planificacionDePrueba())
	require.NoError(t, err)

	_, err = s.Promover(gerente, aviso.CodigoMantto, planificacionDePrueba())
	require.Error(t, err)
	assert.Equal(t, ClaseConflicto, ClaseDe(err))
}

func TestPromoverValidaDuracion(t *testing.T) {
	s := servicioDePrueba(t)

	aviso, err := s.CrearAviso(gerente, avisoDePrueba())
	require.NoError(t, err)

	p := planificacionDePrueba()
	p.DuracionEstimada = "2h30m"
	_, err = s.Promover(gerente, aviso.CodigoMantto, p)
	require.Error(t, err)
	assert.Equal(t, ClaseValidacion, ClaseDe(err))
}

func TestCrearDirectaUsaFamiliaDeCodigosPropia(t *testing.T) {
	s := servicioDePrueba(t)

	ot, err := s.CrearDirecta(gerente, DatosDirecta{
		Planificacion: planificacionDePrueba(),
		Area:          "Planta B",
		Equipo:        "Compresor 3",
	})
	require.NoError(t, err)
	assert.Equal(t, "CODP-OT-00000001", ot.CodigoPadre)
	assert.Equal(t, "OT-0000001", ot.CodigoOTBase)
	assert.Equal(t, models.EstadoProgramado, ot.Estado)
	assert.Empty(t, ot.CodigoMantto)
}

func TestAsociarAvisosSoloCompatiblesEIngresados(t *testing.T) {
	s := servicioDePrueba(t)

	ot, err := s.CrearDirecta(gerente, DatosDirecta{
		Planificacion: planificacionDePrueba(),
		Area:          "Planta A",
		Equipo:        "Caldera 2",
	})
	require.NoError(t, err)

	a1, err := s.CrearAviso(gerente, avisoDePrueba())
	require.NoError(t, err)
	a2, err := s.CrearAviso(gerente, avisoDePrueba())
	require.NoError(t, err)

	otraArea := avisoDePrueba()
	otraArea.Area = "Planta B"
	a3, err := s.CrearAviso(gerente, otraArea)
	require.NoError(t, err)

	asociados, err := s.AsociarAvisos(gerente, ot.CodigoOTBase,
		[]string{a1.CodigoMantto, a2.CodigoMantto, a3.CodigoMantto})
	require.NoError(t, err)
	assert.Equal(t, 2, asociados)

	var avisoAjeno models.Aviso
	require.NoError(t, s.Bases.Avisos.First(&avisoAjeno, "codigo_mantto = ?", a3.CodigoMantto).Error)
	assert.Equal(t, models.EstadoIngresado, avisoAjeno.Estado)

	// Reintentar sobre avisos ya reclamados no asocia ninguno.
	asociados, err = s.AsociarAvisos(gerente, ot.CodigoOTBase, []string{a1.CodigoMantto})
	require.NoError(t, err)
	assert.Equal(t, 0, asociados)
}

func TestAnularSoloOTNoTerminal(t *testing.T) {
	s := servicioDePrueba(t)

	aviso, err := s.CrearAviso(gerente, avisoDePrueba())
	require.NoError(t, err)
	ot, err := s.Promover(gerente, aviso.CodigoMantto, planificacionDePrueba())
	require.NoError(t, err)

	require.NoError(t, s.Anular(gerente, ot.CodigoOTBase, "programación duplicada"))

	var orden models.OrdenTrabajo
	require.NoError(t, s.Bases.Unicas.First(&orden, "codigo_ot_base = ?", ot.CodigoOTBase).Error)
	assert.Equal(t, models.EstadoAnulado, orden.Estado)

	var avisoAnulado models.Aviso
	require.NoError(t, s.Bases.Avisos.First(&avisoAnulado, "codigo_mantto = ?", aviso.CodigoMantto).Error)
	assert.Equal(t, models.EstadoAnulado, avisoAnulado.Estado)

	err = s.Anular(gerente, ot.CodigoOTBase, "de nuevo")
	require.Error(t, err)
	assert.Equal(t, ClaseConflicto, ClaseDe(err))
}

func TestCerrarExigeCulminado(t *testing.T) {
	s := servicioDePrueba(t)

	ot, err := s.CrearDirecta(gerente, DatosDirecta{
		Planificacion: planificacionDePrueba(),
		Area:          "Planta A",
		Equipo:        "Caldera 2",
	})
	require.NoError(t, err)

	err = s.Cerrar(gerente, ot.CodigoOTBase)
	require.Error(t, err)
	assert.Equal(t, ClaseConflicto, ClaseDe(err))

	_, err = s.Iniciar(gerente, ot.CodigoOTBase, SesionTrabajo{
		Responsables:       "cuadrilla 1",
		DescripcionTrabajo: "revisión general",
	})
	require.NoError(t, err)
	_, err = s.Culminar(gerente, ot.CodigoOTBase, Culminacion{
		Responsables:     "cuadrilla 1",
		DescripcionFinal: "equipo operativo",
	})
	require.NoError(t, err)

	require.NoError(t, s.Cerrar(gerente, ot.CodigoOTBase))

	var orden models.OrdenTrabajo
	require.NoError(t, s.Bases.Unicas.First(&orden, "codigo_ot_base = ?", ot.CodigoOTBase).Error)
	assert.Equal(t, models.EstadoCerrado, orden.Estado)
}

func TestIniciarAcumulaObservacionesSoloConTexto(t *testing.T) {
	s := servicioDePrueba(t)

	ot, err := s.CrearDirecta(gerente, DatosDirecta{
		Planificacion: planificacionDePrueba(),
		Area:          "Planta A",
		Equipo:        "Caldera 2",
	})
	require.NoError(t, err)

	_, err = s.Iniciar(gerente, ot.CodigoOTBase, SesionTrabajo{
		Responsables:       "cuadrilla 1",
		DescripcionTrabajo: "desmontaje",
		Observaciones:      "falta repuesto en almacén",
	})
	require.NoError(t, err)

	var orden models.OrdenTrabajo
	require.NoError(t, s.Bases.Unicas.First(&orden, "codigo_ot_base = ?", ot.CodigoOTBase).Error)
	assert.Equal(t, "falta repuesto en almacén", orden.ObservacionesCierre)

	// Una continuación sin observaciones no toca el campo.
	_, err = s.Iniciar(gerente, ot.CodigoOTBase, SesionTrabajo{
		Responsables:       "cuadrilla 1",
		DescripcionTrabajo: "limpieza",
	})
	require.NoError(t, err)
	require.NoError(t, s.Bases.Unicas.First(&orden, "codigo_ot_base = ?", ot.CodigoOTBase).Error)
	assert.Equal(t, "falta repuesto en almacén", orden.ObservacionesCierre)

	// Con texto nuevo, se acumula bajo su marca de continuación.
	_, err = s.Iniciar(gerente, ot.CodigoOTBase, SesionTrabajo{
		Responsables:       "cuadrilla 1",
		DescripcionTrabajo: "montaje",
		Observaciones:      "repuesto recibido",
	})
	require.NoError(t, err)
	require.NoError(t, s.Bases.Unicas.First(&orden, "codigo_ot_base = ?", ot.CodigoOTBase).Error)
	assert.Equal(t,
		"falta repuesto en almacén\n\n--- CONTINUACIÓN: 2026-03-10 08:30 ---\nrepuesto recibido",
		orden.ObservacionesCierre)
}

func TestCerrarPropagaElFalloDelAviso(t *testing.T) {
	s := servicioDePrueba(t)

	aviso, err := s.CrearAviso(gerente, avisoDePrueba())
	require.NoError(t, err)
	ot, err := s.Promover(gerente, aviso.CodigoMantto, planificacionDePrueba())
	require.NoError(t, err)
	_, err = s.Iniciar(gerente, ot.CodigoOTBase, SesionTrabajo{
		Responsables:       "cuadrilla 1",
		DescripcionTrabajo: "revisión",
	})
	require.NoError(t, err)
	_, err = s.Culminar(gerente, ot.CodigoOTBase, Culminacion{
		Responsables:     "cuadrilla 1",
		DescripcionFinal: "conforme",
	})
	require.NoError(t, err)

	// Con el almacén de avisos caído, el cierre reporta el fallo en vez de
	// responder éxito con el aviso a medio cerrar.
	require.NoError(t, s.Bases.Avisos.Exec("DROP TABLE avisos").Error)

	err = s.Cerrar(gerente, ot.CodigoOTBase)
	require.Error(t, err)
	assert.Equal(t, ClaseAlmacen, ClaseDe(err))

	// La OT sí quedó CERRADO: estado parcial documentado, se repara a mano.
	var orden models.OrdenTrabajo
	require.NoError(t, s.Bases.Unicas.First(&orden, "codigo_ot_base = ?", ot.CodigoOTBase).Error)
	assert.Equal(t, models.EstadoCerrado, orden.Estado)
}

func TestValidarDuracion(t *testing.T) {
	assert.True(t, ValidarDuracion("02:30:00"))
	assert.True(t, ValidarDuracion("00:00:00"))
	assert.False(t, ValidarDuracion("2:30:00"))
	assert.False(t, ValidarDuracion("02:30"))
	assert.False(t, ValidarDuracion("dos horas"))
}
