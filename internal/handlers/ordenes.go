package handlers

import (
	"io"
	"net/http"
	"strconv"

	"mantto/internal/middleware"
	"mantto/internal/models"
	"mantto/internal/ordenes"

	"github.com/gin-gonic/gin"
)

// ListarOT devuelve las órdenes de trabajo con filtros opcionales.
func (a *API) ListarOT(c *gin.Context) {
	q := a.Bases.Unicas.Model(&models.OrdenTrabajo{}).Order("ot_base_creado_en desc")
	if estado := c.Query("estado"); estado != "" {
		q = q.Where("estado = ?", estado)
	}
	if area := c.Query("area"); area != "" {
		q = q.Where("area = ?", area)
	}
	if prioridad := c.Query("prioridad"); prioridad != "" {
		q = q.Where("prioridad = ?", prioridad)
	}

	var ots []models.OrdenTrabajo
	if err := q.Find(&ots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron cargar las OT"})
		return
	}
	c.JSON(http.StatusOK, ots)
}

// ObtenerOT busca una OT por su código base.
func (a *API) ObtenerOT(c *gin.Context) {
	var ot models.OrdenTrabajo
	err := a.Bases.Unicas.First(&ot, "codigo_ot_base = ?", c.Param("codigo")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "OT no encontrada"})
		return
	}
	c.JSON(http.StatusOK, ot)
}

// ListarSufijos devuelve el historial de sesiones de una OT base.
func (a *API) ListarSufijos(c *gin.Context) {
	var sufijos []models.OrdenSufijo
	err := a.Bases.Sufijos.
		Where("codigo_ot_base = ?", c.Param("codigo")).
		Order("ot_sufijo_creado_en asc").
		Find(&sufijos).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo cargar el historial"})
		return
	}
	c.JSON(http.StatusOK, sufijos)
}

// ReporteOT arma la vista de reporte para un estado dado: las OT en ese
// estado junto con sus avisos vinculados.
func (a *API) ReporteOT(estado string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ots []models.OrdenTrabajo
		err := a.Bases.Unicas.
			Where("estado = ?", estado).
			Order("ot_base_creado_en desc").
			Find(&ots).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo armar el reporte"})
			return
		}

		var avisos []models.Aviso
		err = a.Bases.Avisos.Where("estado = ?", estado).Find(&avisos).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo armar el reporte"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"estado": estado,
			"ot":     ots,
			"avisos": avisos,
		})
	}
}

func planificacionDeForm(c *gin.Context) ordenes.Planificacion {
	entero := func(clave string) int {
		n, _ := strconv.Atoi(c.PostForm(clave))
		return n
	}
	return ordenes.Planificacion{
		Prioridad:            c.PostForm("prioridad"),
		Responsable:          c.PostForm("responsable"),
		Clasificacion:        c.PostForm("clasificacion"),
		Sistema:              c.PostForm("sistema"),
		AlimentadorProveedor: c.PostForm("alimentador_proveedor"),
		FechaEstimadaInicio:  c.PostForm("fecha_estimada_inicio"),
		DuracionEstimada:     c.PostForm("duracion_estimada"),
		Componentes:          c.PostForm("componentes"),
		DescripcionTrabajo:   c.PostForm("descripcion_trabajo"),
		Materiales:           c.PostForm("materiales"),
		CantidadMecanicos:    entero("cantidad_mecanicos"),
		CantidadElectricos:   entero("cantidad_electricos"),
		CantidadSoldadores:   entero("cantidad_soldadores"),
		CantidadOpVahos:      entero("cantidad_op_vahos"),
		CantidadCalderistas:  entero("cantidad_calderistas"),
	}
}

// PromoverAviso crea una OT a partir de un aviso INGRESADO.
func (a *API) PromoverAviso(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	codigoMantto := c.PostForm("codigo_mantto")
	if codigoMantto == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "falta el código del aviso"})
		return
	}

	ot, err := a.Ordenes.Promover(actorDeSesion(actor), codigoMantto, planificacionDeForm(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ot)
}

// CrearOTDirecta crea una OT sin aviso de origen.
func (a *API) CrearOTDirecta(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)

	datos := ordenes.DatosDirecta{
		Planificacion:       planificacionDeForm(c),
		Area:                c.PostForm("area"),
		Equipo:              c.PostForm("equipo"),
		CodigoEquipo:        c.PostForm("codigo_equipo"),
		DescripcionProblema: c.PostForm("descripcion_problema"),
		TipoMantenimiento:   c.PostForm("tipo_mantenimiento"),
	}

	ot, err := a.Ordenes.CrearDirecta(actorDeSesion(actor), datos)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ot)
}

// AsociarAvisos adjunta avisos compatibles en lote a una OT programada.
func (a *API) AsociarAvisos(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	codigoOTBase := c.PostForm("codigo_ot_base")
	codigosMantto := c.PostFormArray("codigos_mantto")

	asociados, err := a.Ordenes.AsociarAvisos(actorDeSesion(actor), codigoOTBase, codigosMantto)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"codigo_ot_base": codigoOTBase,
		"solicitados":    len(codigosMantto),
		"asociados":      asociados,
	})
}

// IniciarMantenimiento inicia o continúa el trabajo de una OT.
func (a *API) IniciarMantenimiento(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)

	ses := ordenes.SesionTrabajo{
		FechaMantenimiento:       c.PostForm("fecha_mantenimiento"),
		HoraInicio:               c.PostForm("hora_inicio"),
		HoraFinalizacionEstimada: c.PostForm("hora_finalizacion"),
		Responsables:             c.PostForm("responsables"),
		DescripcionTrabajo:       c.PostForm("descripcion_trabajo"),
		Observaciones:            c.PostForm("observaciones"),
		ParoLinea:                c.PostForm("paro_linea"),
	}

	resultado, err := a.Ordenes.Iniciar(actorDeSesion(actor), c.Param("codigo"), ses)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resultado)
}

// CulminarOT finaliza una OT y propaga el cierre al aviso de origen.
func (a *API) CulminarOT(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)

	culm := ordenes.Culminacion{
		FechaFinalizacion:   c.PostForm("fecha_finalizacion"),
		HoraFinal:           c.PostForm("hora_final"),
		HoraInicioReal:      c.PostForm("hora_inicio_real"),
		Responsables:        c.PostForm("responsables"),
		DescripcionFinal:    c.PostForm("descripcion_final"),
		ObservacionesCierre: c.PostForm("observaciones_cierre"),
		Comentario:          c.PostForm("comentario"),
	}

	if archivo, err := c.FormFile("imagen_final"); err == nil {
		f, err := archivo.Open()
		if err == nil {
			contenido, err := io.ReadAll(f)
			f.Close()
			if err == nil {
				culm.ImagenNombre = archivo.Filename
				culm.ImagenDatos = contenido
			}
		}
	}

	ot, err := a.Ordenes.Culminar(actorDeSesion(actor), c.Param("codigo"), culm)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ot)
}

// AnularOT es la anulación administrativa de una OT no terminal.
func (a *API) AnularOT(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	if err := a.Ordenes.Anular(actorDeSesion(actor), c.Param("codigo"), c.PostForm("motivo")); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "OT anulada"})
}

// CerrarOT archiva una OT culminada.
func (a *API) CerrarOT(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	if err := a.Ordenes.Cerrar(actorDeSesion(actor), c.Param("codigo")); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "OT cerrada"})
}
