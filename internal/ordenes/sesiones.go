package ordenes

import (
	"errors"
	"fmt"
	"time"

	"mantto/internal/codigos"
	"mantto/internal/models"

	"gorm.io/gorm"
)

// Marcadores de sección de los campos acumulativos. Cada bloque nuevo se
// antepone con su marca de tiempo; lo anterior nunca se altera.
const (
	marcaInicio       = "--- INICIO: %s ---\n"
	marcaContinuacion = "--- CONTINUACIÓN: %s ---\n"
	marcaCulminacion  = "--- CULMINACIÓN: %s ---\n"
)

func acumular(previo, marca, nuevo string) string {
	if previo == "" {
		return marca + nuevo
	}
	return previo + "\n\n" + marca + nuevo
}

// SesionTrabajo son los datos de un inicio o continuación de mantenimiento.
type SesionTrabajo struct {
	FechaMantenimiento       string // YYYY-MM-DD; vacío usa hoy
	HoraInicio               string // HH:MM:SS; vacío usa ahora
	HoraFinalizacionEstimada string
	Responsables             string
	DescripcionTrabajo       string // bloque nuevo, se acumula
	Observaciones            string // opcional, se acumula solo si no está vacío
	ParoLinea                string // "SI" / "NO"
}

// ResultadoSesion describe lo que produjo un inicio/continuación.
type ResultadoSesion struct {
	CodigoOTBase   string `json:"codigo_ot_base"`
	CodigoOTSufijo string `json:"codigo_ot_sufijo,omitempty"`
	Continuacion   bool   `json:"continuacion"`
	Estado         string `json:"estado"`
}

// Iniciar arranca o continúa el mantenimiento de una OT en PROGRAMADO o
// PENDIENTE. El primer inicio inserta una fila de sufijo y fija la fecha y
// hora de inicio si aún no estaban; una continuación solo acumula sobre la
// OT, sin fila de sufijo nueva.
func (s *Servicio) Iniciar(actor Actor, codigoOTBase string, ses SesionTrabajo) (*ResultadoSesion, error) {
	if ses.Responsables == "" || ses.DescripcionTrabajo == "" {
		return nil, errValidacion("responsables y descripción del trabajo son obligatorios")
	}

	var orden models.OrdenTrabajo
	err := s.Bases.Unicas.Where("codigo_ot_base = ?", codigoOTBase).First(&orden).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNoEncontrado("no existe la OT %s", codigoOTBase)
	}
	if err != nil {
		return nil, errAlmacen(err, "leer OT %s", codigoOTBase)
	}
	if orden.Estado != models.EstadoProgramado && orden.Estado != models.EstadoPendiente {
		return nil, errConflicto("la OT %s está en estado %s y no admite trabajo", codigoOTBase, orden.Estado)
	}

	continuacion := orden.Estado == models.EstadoPendiente
	ahora := s.ahora()
	marca := ahora.Format("2006-01-02 15:04")

	if ses.FechaMantenimiento == "" {
		ses.FechaMantenimiento = ahora.Format("2006-01-02")
	}
	if ses.HoraInicio == "" {
		ses.HoraInicio = ahora.Format("15:04:05")
	}
	if ses.HoraFinalizacionEstimada == "" {
		ses.HoraFinalizacionEstimada = ahora.Add(2 * time.Hour).Format("15:04:05")
	}
	if ses.ParoLinea == "" {
		ses.ParoLinea = "NO"
	}

	var descripcion string
	if orden.DescripcionTrabajoRealizado == "" {
		descripcion = acumular("", marcaConFecha(marcaInicio, marca), ses.DescripcionTrabajo)
	} else {
		descripcion = acumular(orden.DescripcionTrabajoRealizado, marcaConFecha(marcaContinuacion, marca), ses.DescripcionTrabajo)
	}

	observaciones := orden.ObservacionesCierre
	if ses.Observaciones != "" {
		if observaciones == "" {
			observaciones = ses.Observaciones
		} else {
			observaciones = acumular(observaciones, marcaConFecha(marcaContinuacion, marca), ses.Observaciones)
		}
	}

	// La fecha y hora de inicio se fijan una sola vez: si ya estaban, se
	// conservan aunque esta sesión sea posterior.
	res := s.Bases.Unicas.Model(&models.OrdenTrabajo{}).
		Where("codigo_ot_base = ?", codigoOTBase).
		Updates(map[string]any{
			"estado": models.EstadoPendiente,
			"fecha_inicio_mantenimiento": gorm.Expr(
				"CASE WHEN fecha_inicio_mantenimiento IS NULL OR fecha_inicio_mantenimiento = '' THEN ? ELSE fecha_inicio_mantenimiento END",
				ses.FechaMantenimiento),
			"hora_inicio_mantenimiento": gorm.Expr(
				"CASE WHEN hora_inicio_mantenimiento IS NULL OR hora_inicio_mantenimiento = '' THEN ? ELSE hora_inicio_mantenimiento END",
				ses.HoraInicio),
			"hora_finalizacion_mantenimiento": ses.HoraFinalizacionEstimada,
			"responsables_comienzo":           ses.Responsables,
			"descripcion_trabajo_realizado":   descripcion,
			"observaciones_cierre":            observaciones,
			"paro_linea":                      ses.ParoLinea,
		})
	if res.Error != nil {
		return nil, errAlmacen(res.Error, "actualizar OT %s", codigoOTBase)
	}

	resultado := &ResultadoSesion{
		CodigoOTBase: codigoOTBase,
		Continuacion: continuacion,
		Estado:       models.EstadoPendiente,
	}

	if !continuacion {
		codigoSufijo, err := codigos.SiguienteSufijo(s.Bases.Sufijos, codigoOTBase)
		if err != nil {
			return nil, errAlmacen(err, "generar sufijo de %s", codigoOTBase)
		}
		sufijo := models.OrdenSufijo{
			CodigoPadre:                   orden.CodigoPadre,
			CodigoOTBase:                  codigoOTBase,
			CodigoOTSufijo:                codigoSufijo,
			Estado:                        models.EstadoPendiente,
			Area:                          orden.Area,
			Equipo:                        orden.Equipo,
			CodigoEquipo:                  orden.CodigoEquipo,
			ResponsablesComienzo:          ses.Responsables,
			FechaInicioMantenimiento:      ses.FechaMantenimiento,
			HoraInicioMantenimiento:       ses.HoraInicio,
			HoraFinalizacionMantenimiento: ses.HoraFinalizacionEstimada,
			DescripcionTrabajoRealizado:   descripcion,
			ObservacionesCierre:           observaciones,
			ParoLinea:                     ses.ParoLinea,
		}
		if err := s.Bases.Sufijos.Create(&sufijo).Error; err != nil {
			// La OT ya quedó PENDIENTE: escritura parcial documentada.
			return nil, errAlmacen(err, "insertar sufijo %s", codigoSufijo)
		}
		resultado.CodigoOTSufijo = codigoSufijo
	}

	accion := "iniciar"
	if continuacion {
		accion = "continuar"
	}
	s.Bases.RegistrarAuditoria(actor.Codigo, "ot", codigoOTBase, accion, resultado.CodigoOTSufijo)
	s.Bases.Sincronizar("ot_unicas", "ot_sufijos")
	return resultado, nil
}

// Culminacion son los datos de cierre de una OT.
type Culminacion struct {
	FechaFinalizacion   string // YYYY-MM-DD; vacío usa hoy
	HoraFinal           string // HH:MM:SS; vacío usa ahora
	HoraInicioReal      string // vacío rederiva de la OT o usa ahora
	Responsables        string
	DescripcionFinal    string // último bloque acumulado
	ObservacionesCierre string // sobreescribe, no acumula
	Comentario          string
	ImagenNombre        string
	ImagenDatos         []byte
}

// Culminar finaliza una OT en PROGRAMADO o PENDIENTE: actualiza la OT,
// propaga el cierre al aviso de origen (emparejado por código padre) e
// inserta la fila de sufijo -CULM. Los tres commits son independientes y
// en ese orden; si uno posterior falla no se revierte lo anterior.
func (s *Servicio) Culminar(actor Actor, codigoOTBase string, c Culminacion) (*models.OrdenTrabajo, error) {
	if c.Responsables == "" || c.DescripcionFinal == "" {
		return nil, errValidacion("responsables y descripción final son obligatorios")
	}

	var orden models.OrdenTrabajo
	err := s.Bases.Unicas.Where("codigo_ot_base = ?", codigoOTBase).First(&orden).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNoEncontrado("no existe la OT %s", codigoOTBase)
	}
	if err != nil {
		return nil, errAlmacen(err, "leer OT %s", codigoOTBase)
	}
	if orden.Estado != models.EstadoProgramado && orden.Estado != models.EstadoPendiente {
		return nil, errConflicto("la OT %s está en estado %s y no se puede culminar", codigoOTBase, orden.Estado)
	}

	ahora := s.ahora()
	marca := ahora.Format("2006-01-02 15:04")
	if c.FechaFinalizacion == "" {
		c.FechaFinalizacion = ahora.Format("2006-01-02")
	}
	if c.HoraFinal == "" {
		c.HoraFinal = ahora.Format("15:04:05")
	}
	if c.HoraInicioReal == "" {
		if orden.HoraInicioMantenimiento != "" {
			c.HoraInicioReal = orden.HoraInicioMantenimiento
		} else {
			c.HoraInicioReal = ahora.Format("15:04:05")
		}
	}

	descripcionAcumulada := acumular(orden.DescripcionTrabajoRealizado,
		marcaConFecha(marcaCulminacion, marca), c.DescripcionFinal)

	// Commit 1: la OT pasa a CULMINADO.
	err = s.Bases.Unicas.Model(&models.OrdenTrabajo{}).
		Where("codigo_ot_base = ?", codigoOTBase).
		Updates(map[string]any{
			"estado":                        models.EstadoCulminado,
			"fecha_finalizacion":            c.FechaFinalizacion,
			"hora_final":                    c.HoraFinal,
			"responsables_finalizacion":     c.Responsables,
			"descripcion_trabajo_realizado": descripcionAcumulada,
			"imagen_final_nombre":           c.ImagenNombre,
			"imagen_final_datos":            c.ImagenDatos,
			"observaciones_cierre":          c.ObservacionesCierre,
			"comentario":                    c.Comentario,
		}).Error
	if err != nil {
		return nil, errAlmacen(err, "culminar OT %s", codigoOTBase)
	}

	// Commit 2: el aviso de origen recibe el mismo estado terminal. En el
	// aviso la descripción final no se acumula.
	err = s.Bases.Avisos.Model(&models.Aviso{}).
		Where("codigo_padre = ?", orden.CodigoPadre).
		Updates(map[string]any{
			"estado":                        models.EstadoCulminado,
			"fecha_finalizacion":            c.FechaFinalizacion,
			"hora_final":                    c.HoraFinal,
			"responsables_finalizacion":     c.Responsables,
			"descripcion_trabajo_realizado": c.DescripcionFinal,
			"imagen_final_nombre":           c.ImagenNombre,
			"imagen_final_datos":            c.ImagenDatos,
			"observaciones_cierre":          c.ObservacionesCierre,
			"comentario":                    c.Comentario,
		}).Error
	if err != nil {
		return nil, errAlmacen(err, "propagar cierre al aviso de %s", codigoOTBase)
	}

	// Commit 3: fila inmutable de culminación en el log de sufijos.
	sufijo := models.OrdenSufijo{
		CodigoPadre:                 orden.CodigoPadre,
		CodigoMantto:                orden.CodigoMantto,
		CodigoOTBase:                codigoOTBase,
		CodigoOTSufijo:              codigos.SufijoCulminacion(codigoOTBase),
		Estado:                      models.EstadoCulminado,
		Area:                        orden.Area,
		Equipo:                      orden.Equipo,
		CodigoEquipo:                orden.CodigoEquipo,
		FechaInicioMantenimiento:    c.FechaFinalizacion,
		HoraInicioMantenimiento:     c.HoraInicioReal,
		FechaFinalizacion:           c.FechaFinalizacion,
		HoraFinal:                   c.HoraFinal,
		ResponsablesFinalizacion:    c.Responsables,
		DescripcionTrabajoRealizado: c.DescripcionFinal,
		ObservacionesCierre:         c.ObservacionesCierre,
		Comentario:                  c.Comentario,
		ImagenFinalNombre:           c.ImagenNombre,
		ImagenFinalDatos:            c.ImagenDatos,
		ParoLinea:                   orden.ParoLinea,
	}
	if err := s.Bases.Sufijos.Create(&sufijo).Error; err != nil {
		return nil, errAlmacen(err, "insertar sufijo de culminación de %s", codigoOTBase)
	}

	s.Bases.RegistrarAuditoria(actor.Codigo, "ot", codigoOTBase, "culminar", sufijo.CodigoOTSufijo)
	s.Bases.Sincronizar("ot_unicas", "avisos", "ot_sufijos")

	orden.Estado = models.EstadoCulminado
	orden.DescripcionTrabajoRealizado = descripcionAcumulada
	return &orden, nil
}

// Anular cancela administrativamente una OT no terminal y su aviso de
// origen. Es la única vía hacia ANULADO.
func (s *Servicio) Anular(actor Actor, codigoOTBase, motivo string) error {
	var orden models.OrdenTrabajo
	err := s.Bases.Unicas.Where("codigo_ot_base = ?", codigoOTBase).First(&orden).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errNoEncontrado("no existe la OT %s", codigoOTBase)
	}
	if err != nil {
		return errAlmacen(err, "leer OT %s", codigoOTBase)
	}
	if models.EstadoTerminal(orden.Estado) {
		return errConflicto("la OT %s ya está en estado terminal %s", codigoOTBase, orden.Estado)
	}

	err = s.Bases.Unicas.Model(&models.OrdenTrabajo{}).
		Where("codigo_ot_base = ?", codigoOTBase).
		Updates(map[string]any{
			"estado":     models.EstadoAnulado,
			"comentario": motivo,
		}).Error
	if err != nil {
		return errAlmacen(err, "anular OT %s", codigoOTBase)
	}

	// El aviso vinculado solo se anula si tampoco llegó a estado terminal.
	err = s.Bases.Avisos.Model(&models.Aviso{}).
		Where("codigo_padre = ? AND estado IN ?", orden.CodigoPadre,
			[]string{models.EstadoIngresado, models.EstadoProgramado}).
		Update("estado", models.EstadoAnulado).Error
	if err != nil {
		return errAlmacen(err, "anular aviso de %s", codigoOTBase)
	}

	s.Bases.RegistrarAuditoria(actor.Codigo, "ot", codigoOTBase, "anular", motivo)
	s.Bases.Sincronizar("ot_unicas", "avisos")
	return nil
}

// Cerrar archiva una OT ya CULMINADO.
func (s *Servicio) Cerrar(actor Actor, codigoOTBase string) error {
	res := s.Bases.Unicas.Model(&models.OrdenTrabajo{}).
		Where("codigo_ot_base = ? AND estado = ?", codigoOTBase, models.EstadoCulminado).
		Update("estado", models.EstadoCerrado)
	if res.Error != nil {
		return errAlmacen(res.Error, "cerrar OT %s", codigoOTBase)
	}
	if res.RowsAffected == 0 {
		return errConflicto("la OT %s no está en estado CULMINADO", codigoOTBase)
	}

	// La OT ya quedó CERRADO: si esto falla el aviso retiene CULMINADO,
	// estado parcial aceptado, se repara a mano.
	err := s.Bases.Avisos.Model(&models.Aviso{}).
		Where("codigo_ot_base = ? AND estado = ?", codigoOTBase, models.EstadoCulminado).
		Update("estado", models.EstadoCerrado).Error
	if err != nil {
		return errAlmacen(err, "propagar cierre al aviso de %s", codigoOTBase)
	}

	s.Bases.RegistrarAuditoria(actor.Codigo, "ot", codigoOTBase, "cerrar", "")
	s.Bases.Sincronizar("ot_unicas", "avisos")
	return nil
}

func marcaConFecha(plantilla, marca string) string {
	return fmt.Sprintf(plantilla, marca)
}
