package server

import (
	"net/http"

	"mantto/internal/config"
	"mantto/internal/handlers"
	"mantto/internal/middleware"
	"mantto/internal/models"
	"mantto/internal/permisos"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// NewRouter arma el router HTTP: sesión por cookie, actor inyectado por
// petición y cada grupo de rutas detrás de la capacidad que lo habilita.
func NewRouter(api *handlers.API, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("mantto_session", store))
	r.Use(middleware.InyectarActor(api.Bases))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"estado": "ok"})
	})
	r.POST("/login", api.Login)
	r.GET("/logout", api.Logout)

	auth := r.Group("/api", middleware.RequerirAuth())
	auth.GET("/sesion", api.Sesion)

	avisos := auth.Group("/avisos", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.AccesoAvisos }))
	{
		avisos.GET("", api.ListarAvisos)
		avisos.GET("/:codigo", api.ObtenerAviso)
		avisos.POST("", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeCrear }), api.CrearAviso)
		avisos.DELETE("/:codigo", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeEliminar }), api.EliminarAviso)
	}

	ot := auth.Group("/ot", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.AccesoOT }))
	{
		ot.GET("", api.ListarOT)
		ot.GET("/:codigo", api.ObtenerOT)
		ot.GET("/:codigo/sufijos", api.ListarSufijos)

		editar := middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeEditar })
		ot.POST("/promover", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeCrear }), api.PromoverAviso)
		ot.POST("/directa", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeCrear }), api.CrearOTDirecta)
		ot.POST("/asociar", editar, api.AsociarAvisos)
		ot.POST("/:codigo/iniciar", editar, api.IniciarMantenimiento)
		ot.POST("/:codigo/culminar", editar, api.CulminarOT)
		ot.POST("/:codigo/cerrar", editar, api.CerrarOT)
		ot.POST("/:codigo/anular", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeEliminar }), api.AnularOT)
	}

	equipos := auth.Group("/equipos", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.AccesoEquipos }))
	{
		equipos.GET("", api.ListarEquipos)
		equipos.GET("/:codigo", api.ObtenerEquipo)
		equipos.GET("/:codigo/informes/:nombre", api.DescargarInforme)
		equipos.GET("/:codigo/especificaciones", api.DescargarEspecificaciones)

		editarEq := middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeEditarEquipos })
		equipos.POST("", editarEq, api.CrearEquipo)
		equipos.PUT("/:codigo", editarEq, api.ActualizarEquipo)
		equipos.POST("/:codigo/informes", editarEq, api.SubirInforme)
		equipos.POST("/:codigo/especificaciones", editarEq, api.SubirEspecificaciones)

		eliminarEq := middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeEliminarEquipos })
		equipos.DELETE("/:codigo", eliminarEq, api.EliminarEquipo)
		equipos.DELETE("/:codigo/informes/:nombre", eliminarEq, api.EliminarInforme)
		equipos.DELETE("/:codigo/especificaciones", eliminarEq, api.EliminarEspecificaciones)
	}

	colaboradores := auth.Group("/colaboradores", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.AccesoColaboradores }))
	{
		colaboradores.GET("", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeVerColaboradores }), api.ListarColaboradores)
		colaboradores.GET("/:codigo", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeVerColaboradores }), api.ObtenerColaborador)
		colaboradores.POST("", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeCrear }), api.CrearColaborador)
		colaboradores.PUT("/:codigo", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeEditar }), api.ActualizarColaborador)
		colaboradores.DELETE("/:codigo", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeEliminar }), api.EliminarColaborador)
	}

	reportes := auth.Group("/reportes", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.AccesoReportes }))
	{
		reportes.GET("/pendientes", api.ReporteOT(models.EstadoPendiente))
		reportes.GET("/culminadas", api.ReporteOT(models.EstadoCulminado))
	}

	auth.GET("/exportar/excel", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.PuedeDescargarExcel }), api.ExportarExcel)
	auth.POST("/respaldos", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.AccesoBasesDatos }), api.CrearRespaldo)
	auth.GET("/tablas/:tabla", middleware.RequerirPermiso(func(p permisos.Permisos) bool { return p.AccesoBasesDatos }), api.VerTabla)

	return r
}
