package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"mantto/internal/middleware"
	"mantto/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListarEquipos devuelve el inventario, con filtro opcional por área.
func (a *API) ListarEquipos(c *gin.Context) {
	q := a.Bases.Equipos.Model(&models.Equipo{}).Order("codigo_equipo asc")
	if area := c.Query("area"); area != "" {
		q = q.Where("area = ?", area)
	}

	var equipos []models.Equipo
	if err := q.Find(&equipos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo cargar el inventario"})
		return
	}
	c.JSON(http.StatusOK, equipos)
}

// CrearEquipo da de alta un equipo en el inventario.
func (a *API) CrearEquipo(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)

	equipo := models.Equipo{
		CodigoEquipo:             c.PostForm("codigo_equipo"),
		Equipo:                   c.PostForm("equipo"),
		Area:                     c.PostForm("area"),
		DescripcionFuncionalidad: c.PostForm("descripcion_funcionalidad"),
	}
	if equipo.CodigoEquipo == "" || equipo.Equipo == "" || equipo.Area == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "código, equipo y área son obligatorios"})
		return
	}

	if archivo, datos, ok := archivoDeForm(c, "especificaciones"); ok {
		equipo.EspecificacionesTecnicaNombre = archivo.Filename
		equipo.EspecificacionesTecnicaDatos = datos
	}

	if err := a.Bases.Equipos.Create(&equipo).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "ya existe un equipo con ese código"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo registrar el equipo"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "equipo", equipo.CodigoEquipo, "crear", equipo.Equipo)
	a.Bases.Sincronizar("equipos")
	c.JSON(http.StatusCreated, equipo)
}

// ObtenerEquipo busca un equipo por código e incluye la lista de informes
// sin su contenido binario.
func (a *API) ObtenerEquipo(c *gin.Context) {
	equipo, ok := a.buscarEquipo(c)
	if !ok {
		return
	}

	informes := make([]gin.H, 0)
	for _, inf := range equipo.Informes() {
		informes = append(informes, gin.H{"nombre": inf.Nombre, "tipo": inf.Tipo, "fecha": inf.Fecha})
	}
	c.JSON(http.StatusOK, gin.H{"equipo": equipo, "informes": informes})
}

// ActualizarEquipo modifica los campos descriptivos de un equipo.
func (a *API) ActualizarEquipo(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	equipo, ok := a.buscarEquipo(c)
	if !ok {
		return
	}

	cambios := map[string]any{}
	for clave, columna := range map[string]string{
		"equipo":                    "equipo",
		"area":                      "area",
		"descripcion_funcionalidad": "descripcion_funcionalidad",
	} {
		if valor, existe := c.GetPostForm(clave); existe {
			cambios[columna] = valor
		}
	}
	if len(cambios) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nada que actualizar"})
		return
	}

	if err := a.Bases.Equipos.Model(equipo).Updates(cambios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo actualizar el equipo"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "equipo", equipo.CodigoEquipo, "actualizar", "")
	a.Bases.Sincronizar("equipos")
	c.JSON(http.StatusOK, equipo)
}

// EliminarEquipo borra un equipo del inventario.
func (a *API) EliminarEquipo(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	equipo, ok := a.buscarEquipo(c)
	if !ok {
		return
	}

	if err := a.Bases.Equipos.Delete(equipo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo eliminar el equipo"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "equipo", equipo.CodigoEquipo, "eliminar", equipo.Equipo)
	a.Bases.Sincronizar("equipos")
	c.JSON(http.StatusOK, gin.H{"mensaje": "equipo eliminado"})
}

// SubirInforme adjunta un informe técnico al equipo. El nombre del archivo
// debe ser único dentro del registro.
func (a *API) SubirInforme(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	equipo, ok := a.buscarEquipo(c)
	if !ok {
		return
	}

	archivo, datos, ok := archivoDeForm(c, "informe")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "falta el archivo del informe"})
		return
	}
	nombre := archivo.Filename

	tipo := archivo.Header.Get("Content-Type")
	if err := equipo.AgregarInforme(nombre, tipo, datos, time.Now()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err := a.Bases.Equipos.Model(equipo).Update("informes_json", equipo.InformesJSON).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo guardar el informe"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "equipo", equipo.CodigoEquipo, "subir_informe", nombre)
	a.Bases.Sincronizar("equipos")
	c.JSON(http.StatusCreated, gin.H{"nombre": nombre})
}

// DescargarInforme devuelve el contenido binario de un informe.
func (a *API) DescargarInforme(c *gin.Context) {
	equipo, ok := a.buscarEquipo(c)
	if !ok {
		return
	}

	informe, existe := equipo.BuscarInforme(c.Param("nombre"))
	if !existe {
		c.JSON(http.StatusNotFound, gin.H{"error": "informe no encontrado"})
		return
	}
	datos, err := informe.Datos()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "informe corrupto"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+informe.Nombre)
	tipo := informe.Tipo
	if tipo == "" {
		tipo = "application/octet-stream"
	}
	c.Data(http.StatusOK, tipo, datos)
}

// EliminarInforme quita un informe del equipo.
func (a *API) EliminarInforme(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	equipo, ok := a.buscarEquipo(c)
	if !ok {
		return
	}

	nombre := c.Param("nombre")
	eliminado, err := equipo.EliminarInforme(nombre)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo actualizar la lista de informes"})
		return
	}
	if !eliminado {
		c.JSON(http.StatusNotFound, gin.H{"error": "informe no encontrado"})
		return
	}
	if err := a.Bases.Equipos.Model(equipo).Update("informes_json", equipo.InformesJSON).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo guardar la lista de informes"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "equipo", equipo.CodigoEquipo, "eliminar_informe", nombre)
	a.Bases.Sincronizar("equipos")
	c.JSON(http.StatusOK, gin.H{"mensaje": "informe eliminado"})
}

// SubirEspecificaciones reemplaza la ficha técnica del equipo.
func (a *API) SubirEspecificaciones(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	equipo, ok := a.buscarEquipo(c)
	if !ok {
		return
	}

	archivo, datos, leido := archivoDeForm(c, "especificaciones")
	if !leido {
		c.JSON(http.StatusBadRequest, gin.H{"error": "falta el archivo de especificaciones"})
		return
	}
	nombre := archivo.Filename

	err := a.Bases.Equipos.Model(equipo).Updates(map[string]any{
		"especificaciones_tecnica_nombre": nombre,
		"especificaciones_tecnica_datos":  datos,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo guardar la ficha técnica"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "equipo", equipo.CodigoEquipo, "subir_especificaciones", nombre)
	a.Bases.Sincronizar("equipos")
	c.JSON(http.StatusCreated, gin.H{"nombre": nombre})
}

// DescargarEspecificaciones devuelve la ficha técnica del equipo.
func (a *API) DescargarEspecificaciones(c *gin.Context) {
	equipo, ok := a.buscarEquipo(c)
	if !ok {
		return
	}
	if len(equipo.EspecificacionesTecnicaDatos) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "el equipo no tiene ficha técnica"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+equipo.EspecificacionesTecnicaNombre)
	c.Data(http.StatusOK, "application/octet-stream", equipo.EspecificacionesTecnicaDatos)
}

// EliminarEspecificaciones borra la ficha técnica del equipo.
func (a *API) EliminarEspecificaciones(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	equipo, ok := a.buscarEquipo(c)
	if !ok {
		return
	}

	err := a.Bases.Equipos.Model(equipo).Updates(map[string]any{
		"especificaciones_tecnica_nombre": "",
		"especificaciones_tecnica_datos":  []byte(nil),
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo eliminar la ficha técnica"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "equipo", equipo.CodigoEquipo, "eliminar_especificaciones", "")
	a.Bases.Sincronizar("equipos")
	c.JSON(http.StatusOK, gin.H{"mensaje": "ficha técnica eliminada"})
}

func (a *API) buscarEquipo(c *gin.Context) (*models.Equipo, bool) {
	var equipo models.Equipo
	err := a.Bases.Equipos.First(&equipo, "codigo_equipo = ?", c.Param("codigo")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "equipo no encontrado"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo leer el equipo"})
		return nil, false
	}
	return &equipo, true
}

// archivoDeForm lee un archivo multipart opcional una sola vez y devuelve
// su cabecera y contenido.
func archivoDeForm(c *gin.Context, campo string) (*multipart.FileHeader, []byte, bool) {
	archivo, err := c.FormFile(campo)
	if err != nil {
		return nil, nil, false
	}
	f, err := archivo.Open()
	if err != nil {
		return nil, nil, false
	}
	defer f.Close()
	datos, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, false
	}
	return archivo, datos, true
}
