package handlers

import (
	"io"
	"net/http"
	"time"

	"mantto/internal/middleware"
	"mantto/internal/models"
	"mantto/internal/ordenes"

	"github.com/gin-gonic/gin"
)

// ListarAvisos devuelve los avisos con filtros opcionales por estado, área
// y equipo. La antigüedad se recalcula al momento de listar.
func (a *API) ListarAvisos(c *gin.Context) {
	q := a.Bases.Avisos.Model(&models.Aviso{}).Order("creado_en desc")
	if estado := c.Query("estado"); estado != "" {
		q = q.Where("estado = ?", estado)
	}
	if area := c.Query("area"); area != "" {
		q = q.Where("area = ?", area)
	}
	if equipo := c.Query("equipo"); equipo != "" {
		q = q.Where("equipo = ?", equipo)
	}

	var avisos []models.Aviso
	if err := q.Find(&avisos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron cargar los avisos"})
		return
	}
	hoy := time.Now()
	for i := range avisos {
		avisos[i].Antiguedad = models.CalcularAntiguedad(avisos[i].IngresadoEl, hoy)
	}
	c.JSON(http.StatusOK, avisos)
}

// CrearAviso registra un aviso nuevo; acepta una imagen opcional adjunta.
func (a *API) CrearAviso(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)

	datos := ordenes.DatosAviso{
		Area:                c.PostForm("area"),
		Equipo:              c.PostForm("equipo"),
		CodigoEquipo:        c.PostForm("codigo_equipo"),
		DescripcionProblema: c.PostForm("descripcion_problema"),
		TipoMantenimiento:   c.PostForm("tipo_mantenimiento"),
		TipoPreventivo:      c.PostForm("tipo_preventivo"),
		HayRiesgo:           c.PostForm("hay_riesgo"),
		IngresadoPor:        c.PostForm("ingresado_por"),
		IngresadoEl:         c.PostForm("ingresado_el"),
	}

	if archivo, err := c.FormFile("imagen"); err == nil {
		f, err := archivo.Open()
		if err == nil {
			contenido, err := io.ReadAll(f)
			f.Close()
			if err == nil {
				datos.ImagenNombre = archivo.Filename
				datos.ImagenDatos = contenido
			}
		}
	}

	aviso, err := a.Ordenes.CrearAviso(actorDeSesion(actor), datos)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, aviso)
}

// ObtenerAviso busca un aviso por su código de mantenimiento.
func (a *API) ObtenerAviso(c *gin.Context) {
	var aviso models.Aviso
	err := a.Bases.Avisos.First(&aviso, "codigo_mantto = ?", c.Param("codigo")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "aviso no encontrado"})
		return
	}
	c.JSON(http.StatusOK, aviso)
}

// EliminarAviso es el borrado administrativo; el ciclo de vida nunca borra.
func (a *API) EliminarAviso(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	codigo := c.Param("codigo")

	res := a.Bases.Avisos.Where("codigo_mantto = ?", codigo).Delete(&models.Aviso{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo eliminar el aviso"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "aviso no encontrado"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "aviso", codigo, "eliminar", "")
	a.Bases.Sincronizar("avisos")
	c.JSON(http.StatusOK, gin.H{"mensaje": "aviso eliminado"})
}

func actorDeSesion(actor middleware.Actor) ordenes.Actor {
	return ordenes.Actor{Codigo: actor.Codigo, Nombre: actor.Nombre, Cargo: actor.Cargo}
}
