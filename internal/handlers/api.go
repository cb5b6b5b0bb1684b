package handlers

import (
	"net/http"

	"mantto/internal/database"
	"mantto/internal/ordenes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// API agrupa las dependencias de los handlers. Todo llega por inyección;
// no hay estado global de proceso.
type API struct {
	Bases        *database.Bases
	Ordenes      *ordenes.Servicio
	Log          *zap.Logger
	DirRespaldos string
}

// responderError traduce la taxonomía de errores del núcleo a estados HTTP.
func responderError(c *gin.Context, err error) {
	estado := http.StatusInternalServerError
	switch ordenes.ClaseDe(err) {
	case ordenes.ClaseValidacion:
		estado = http.StatusBadRequest
	case ordenes.ClaseDuplicado, ordenes.ClaseConflicto:
		estado = http.StatusConflict
	case ordenes.ClaseNoEncontrado:
		estado = http.StatusNotFound
	}
	c.JSON(estado, gin.H{"error": err.Error()})
}
