package middleware

import (
	"net/http"

	"mantto/internal/permisos"

	"github.com/gin-gonic/gin"
)

// RequerirAuth corta las peticiones sin sesión autenticada.
func RequerirAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ActorDe(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sesión requerida"})
			return
		}
		c.Next()
	}
}

// RequerirPermiso exige una capacidad concreta del actor, por ejemplo
// acceso a OT o permiso de eliminación.
func RequerirPermiso(tiene func(permisos.Permisos) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorDe(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sesión requerida"})
			return
		}
		if !tiene(actor.Permisos) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "acceso denegado"})
			return
		}
		c.Next()
	}
}
