package middleware

import (
	"mantto/internal/database"
	"mantto/internal/models"
	"mantto/internal/permisos"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const ClaveActor = "Actor"

// Actor es el colaborador autenticado de la petición en curso, con sus
// permisos ya resueltos. Se inyecta por petición: no hay estado de sesión
// ambiente fuera de la cookie.
type Actor struct {
	Codigo   string            `json:"codigo_id"`
	Nombre   string            `json:"nombre"`
	Cargo    string            `json:"cargo"`
	Permisos permisos.Permisos `json:"permisos"`
}

// InyectarActor carga el colaborador de la sesión y deja el Actor en el
// contexto de la petición.
func InyectarActor(b *database.Bases) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		codigo, ok := sess.Get("codigo_id").(string)
		if ok && codigo != "" {
			var col models.Colaborador
			if err := b.Colaboradores.First(&col, "codigo_id = ?", codigo).Error; err == nil {
				c.Set(ClaveActor, Actor{
					Codigo:   col.CodigoID,
					Nombre:   col.NombreColaborador,
					Cargo:    col.Cargo,
					Permisos: permisos.PorCargo(col.Cargo),
				})
			}
		}
		c.Next()
	}
}

// ActorDe devuelve el actor inyectado, si la sesión está autenticada.
func ActorDe(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(ClaveActor)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}
