package handlers

import (
	"net/http"
	"strings"

	"mantto/internal/middleware"
	"mantto/internal/models"
	"mantto/internal/permisos"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginForm struct {
	CodigoID   string `form:"codigo_id" json:"codigo_id"`
	Contrasena string `form:"contrasena" json:"contrasena"`
}

// Login valida las credenciales del colaborador y abre la sesión.
func (a *API) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos incorrectos"})
		return
	}
	form.CodigoID = strings.TrimSpace(form.CodigoID)

	var col models.Colaborador
	if err := a.Bases.Colaboradores.First(&col, "codigo_id = ?", form.CodigoID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "credenciales inválidas"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(col.ContrasenaHash), []byte(form.Contrasena)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "credenciales inválidas"})
		return
	}

	sess := sessions.Default(c)
	sess.Set("codigo_id", col.CodigoID)
	_ = sess.Save()

	c.JSON(http.StatusOK, gin.H{
		"codigo_id": col.CodigoID,
		"nombre":    col.NombreColaborador,
		"cargo":     col.Cargo,
		"permisos":  permisos.PorCargo(col.Cargo),
	})
}

func (a *API) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"mensaje": "sesión cerrada"})
}

// Sesion devuelve el actor autenticado y sus permisos.
func (a *API) Sesion(c *gin.Context) {
	actor, ok := middleware.ActorDe(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión requerida"})
		return
	}
	c.JSON(http.StatusOK, actor)
}
