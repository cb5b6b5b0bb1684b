package handlers

import (
	"errors"
	"net/http"

	"mantto/internal/database"
	"mantto/internal/middleware"
	"mantto/internal/models"
	"mantto/internal/permisos"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ListarColaboradores devuelve las cuentas registradas, sin hashes.
func (a *API) ListarColaboradores(c *gin.Context) {
	var colaboradores []models.Colaborador
	err := a.Bases.Colaboradores.Order("nombre_colaborador asc").Find(&colaboradores).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron cargar los colaboradores"})
		return
	}
	c.JSON(http.StatusOK, colaboradores)
}

// CrearColaborador da de alta una cuenta nueva. El código debe ser único y
// la contraseña tener al menos seis caracteres.
func (a *API) CrearColaborador(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)

	codigo := c.PostForm("codigo_id")
	nombre := c.PostForm("nombre_colaborador")
	personal := c.PostForm("personal")
	cargo := c.PostForm("cargo")
	contrasena := c.PostForm("contrasena")

	if codigo == "" || nombre == "" || personal == "" || cargo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "código, nombre, personal y cargo son obligatorios"})
		return
	}
	if len(contrasena) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "la contraseña debe tener al menos 6 caracteres"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(contrasena), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo procesar la contraseña"})
		return
	}

	colaborador := models.Colaborador{
		CodigoID:          codigo,
		NombreColaborador: nombre,
		Personal:          personal,
		Cargo:             cargo,
		ContrasenaHash:    string(hash),
	}
	if err := a.Bases.Colaboradores.Create(&colaborador).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "ya existe un colaborador con ese código"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo registrar el colaborador"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "colaborador", codigo, "crear", cargo)
	a.Bases.Sincronizar("colaboradores")
	c.JSON(http.StatusCreated, colaborador)
}

// ObtenerColaborador devuelve una cuenta junto con los permisos que su
// cargo resuelve.
func (a *API) ObtenerColaborador(c *gin.Context) {
	colaborador, ok := a.buscarColaborador(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"colaborador": colaborador,
		"permisos":    permisos.PorCargo(colaborador.Cargo),
	})
}

// ActualizarColaborador modifica nombre, personal, cargo o contraseña.
func (a *API) ActualizarColaborador(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	colaborador, ok := a.buscarColaborador(c)
	if !ok {
		return
	}

	cambios := map[string]any{}
	for clave, columna := range map[string]string{
		"nombre_colaborador": "nombre_colaborador",
		"personal":           "personal",
		"cargo":              "cargo",
	} {
		if valor, existe := c.GetPostForm(clave); existe && valor != "" {
			cambios[columna] = valor
		}
	}
	if contrasena, existe := c.GetPostForm("contrasena"); existe {
		if len(contrasena) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "la contraseña debe tener al menos 6 caracteres"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(contrasena), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo procesar la contraseña"})
			return
		}
		cambios["contrasena_hash"] = string(hash)
	}
	if len(cambios) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nada que actualizar"})
		return
	}

	if err := a.Bases.Colaboradores.Model(colaborador).Updates(cambios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo actualizar el colaborador"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "colaborador", colaborador.CodigoID, "actualizar", "")
	a.Bases.Sincronizar("colaboradores")
	c.JSON(http.StatusOK, colaborador)
}

// EliminarColaborador borra una cuenta. La cuenta semilla del administrador
// y la propia cuenta del actor no se pueden eliminar.
func (a *API) EliminarColaborador(c *gin.Context) {
	actor, _ := middleware.ActorDe(c)
	colaborador, ok := a.buscarColaborador(c)
	if !ok {
		return
	}

	if colaborador.CodigoID == database.CodigoAdmin {
		c.JSON(http.StatusConflict, gin.H{"error": "la cuenta del administrador no se puede eliminar"})
		return
	}
	if colaborador.CodigoID == actor.Codigo {
		c.JSON(http.StatusConflict, gin.H{"error": "no puede eliminar su propia cuenta"})
		return
	}

	if err := a.Bases.Colaboradores.Delete(colaborador).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo eliminar el colaborador"})
		return
	}

	a.Bases.RegistrarAuditoria(actor.Codigo, "colaborador", colaborador.CodigoID, "eliminar", colaborador.Cargo)
	a.Bases.Sincronizar("colaboradores")
	c.JSON(http.StatusOK, gin.H{"mensaje": "colaborador eliminado"})
}

func (a *API) buscarColaborador(c *gin.Context) (*models.Colaborador, bool) {
	var colaborador models.Colaborador
	err := a.Bases.Colaboradores.First(&colaborador, "codigo_id = ?", c.Param("codigo")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "colaborador no encontrado"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo leer el colaborador"})
		return nil, false
	}
	return &colaborador, true
}
