package handlers

import (
	"net/http"
	"time"

	"mantto/internal/espejo"
	"mantto/internal/exportar"
	"mantto/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExportarExcel genera y descarga el libro Excel con todas las tablas.
func (a *API) ExportarExcel(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	ahora := time.Now()

	contenido, err := exportar.Workbook(a.Bases, ahora)
	if err != nil {
		a.Log.Error("exportación a Excel falló", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo generar el archivo Excel"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "sistema", "", "exportar_excel", "")
	c.Header("Content-Disposition", "attachment; filename="+exportar.NombreArchivo(ahora))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contenido)
}

// CrearRespaldo comprime los archivos de datos en un zip dentro del
// directorio de respaldos.
func (a *API) CrearRespaldo(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)

	rutas := a.Bases.Rutas()
	if len(rutas) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "el respaldo local solo aplica a almacenamiento en archivos"})
		return
	}

	ruta, err := exportar.RespaldoLocal(a.DirRespaldos, rutas, time.Now())
	if err != nil {
		a.Log.Error("respaldo local falló", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo crear el respaldo"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "sistema", "", "respaldo_local", ruta)
	c.JSON(http.StatusCreated, gin.H{"archivo": ruta})
}

// VerTabla expone el contenido crudo de una tabla como filas de texto,
// la primera fila son los encabezados. Las contraseñas nunca salen.
func (a *API) VerTabla(c *gin.Context) {
	tabla := c.Param("tabla")
	db, ok := a.Bases.PorTabla(tabla)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tabla desconocida"})
		return
	}

	valores, err := espejo.Volcar(db, tabla)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo leer la tabla"})
		return
	}
	if tabla == "colaboradores" {
		valores = exportar.QuitarColumna(valores, "contrasena_hash")
	}
	c.JSON(http.StatusOK, gin.H{"tabla": tabla, "filas": valores})
}
