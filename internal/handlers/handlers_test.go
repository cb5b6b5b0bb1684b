package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"mantto/internal/config"
	"mantto/internal/database"
	"mantto/internal/handlers"
	"mantto/internal/models"
	"mantto/internal/ordenes"
	"mantto/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func routerDePrueba(t *testing.T) (*gin.Engine, *database.Bases) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bases, err := database.Abrir("", t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	bases.CrearAdminPorDefecto("Secreta123")

	api := &handlers.API{
		Bases:        bases,
		Ordenes:      ordenes.Nuevo(bases, zap.NewNop()),
		Log:          zap.NewNop(),
		DirRespaldos: t.TempDir(),
	}
	return server.NewRouter(api, &config.Config{SessionSecret: "secreto-de-prueba"}), bases
}

func crearCuenta(t *testing.T, b *database.Bases, codigo, cargo, contrasena string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(contrasena), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, b.Colaboradores.Create(&models.Colaborador{
		CodigoID:          codigo,
		NombreColaborador: "Cuenta de Prueba",
		Personal:          "INTERNO",
		Cargo:             cargo,
		ContrasenaHash:    string(hash),
	}).Error)
}

// abrirSesion hace login y devuelve las cookies de la sesión abierta.
func abrirSesion(t *testing.T, r *gin.Engine, codigo, contrasena string) []*http.Cookie {
	t.Helper()
	form := url.Values{"codigo_id": {codigo}, "contrasena": {contrasena}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func pedir(r *gin.Engine, metodo, ruta string, cookies []*http.Cookie, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(metodo, ruta, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(metodo, ruta, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginConCredencialesInvalidas(t *testing.T) {
	r, _ := routerDePrueba(t)

	form := url.Values{"codigo_id": {database.CodigoAdmin}, "contrasena": {"equivocada"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRutasProtegidasSinSesion(t *testing.T) {
	r, _ := routerDePrueba(t)

	w := pedir(r, http.MethodGet, "/api/avisos", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFlujoAvisoPorHTTP(t *testing.T) {
	r, _ := routerDePrueba(t)
	cookies := abrirSesion(t, r, database.CodigoAdmin, "Secreta123")

	w := pedir(r, http.MethodPost, "/api/avisos", cookies, url.Values{
		"area":                 {"Planta A"},
		"equipo":               {"Caldera 2"},
		"codigo_equipo":        {"EQ-001"},
		"descripcion_problema": {"fuga de vapor"},
		"tipo_mantenimiento":   {"CORRECTIVO"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "AM-00000001")

	w = pedir(r, http.MethodGet, "/api/avisos?estado=INGRESADO", cookies, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CODP-00000001")

	w = pedir(r, http.MethodGet, "/api/avisos/AM-00000001", cookies, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = pedir(r, http.MethodGet, "/api/avisos/AM-99999999", cookies, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPromoverYTrabajarOTPorHTTP(t *testing.T) {
	r, _ := routerDePrueba(t)
	cookies := abrirSesion(t, r, database.CodigoAdmin, "Secreta123")

	w := pedir(r, http.MethodPost, "/api/avisos", cookies, url.Values{
		"area":                 {"Planta A"},
		"equipo":               {"Caldera 2"},
		"descripcion_problema": {"fuga de vapor"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	planificacion := url.Values{
		"codigo_mantto":         {"AM-00000001"},
		"prioridad":             {"ALTA"},
		"responsable":           {"J. Quispe"},
		"clasificacion":         {"MECANICA"},
		"sistema":               {"VAPOR"},
		"alimentador_proveedor": {"INTERNO"},
		"fecha_estimada_inicio": {"2026-03-11"},
		"duracion_estimada":     {"02:30:00"},
		"componentes":           {"válvula"},
		"descripcion_trabajo":   {"cambiar válvula"},
	}
	w = pedir(r, http.MethodPost, "/api/ot/promover", cookies, planificacion)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "OT-0000001")

	// Promover el mismo aviso otra vez choca con el resguardo de estado.
	w = pedir(r, http.MethodPost, "/api/ot/promover", cookies, planificacion)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = pedir(r, http.MethodPost, "/api/ot/OT-0000001/iniciar", cookies, url.Values{
		"responsables":        {"cuadrilla 1"},
		"descripcion_trabajo": {"desmontaje"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "OT-0000001-01")

	w = pedir(r, http.MethodPost, "/api/ot/OT-0000001/culminar", cookies, url.Values{
		"responsables":      {"cuadrilla 1"},
		"descripcion_final": {"trabajo conforme"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), models.EstadoCulminado)

	w = pedir(r, http.MethodGet, "/api/ot/OT-0000001/sufijos", cookies, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OT-0000001-CULM")
}

func TestPermisosPorCargoEnRutas(t *testing.T) {
	r, bases := routerDePrueba(t)
	crearCuenta(t, bases, "11112222", "TECNICO MECANICO", "Tecnica1")
	cookies := abrirSesion(t, r, "11112222", "Tecnica1")

	// El técnico consulta equipos pero no OT ni exportaciones.
	w := pedir(r, http.MethodGet, "/api/equipos", cookies, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = pedir(r, http.MethodGet, "/api/ot", cookies, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = pedir(r, http.MethodGet, "/api/reportes/pendientes", cookies, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = pedir(r, http.MethodGet, "/api/exportar/excel", cookies, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = pedir(r, http.MethodPost, "/api/equipos", cookies, url.Values{
		"codigo_equipo": {"EQ-009"},
		"equipo":        {"Molino"},
		"area":          {"Planta A"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubirYDescargarInforme(t *testing.T) {
	r, _ := routerDePrueba(t)
	cookies := abrirSesion(t, r, database.CodigoAdmin, "Secreta123")

	w := pedir(r, http.MethodPost, "/api/equipos", cookies, url.Values{
		"codigo_equipo": {"EQ-001"},
		"equipo":        {"Caldera 2"},
		"area":          {"Planta A"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	contenido := []byte("%PDF-1.4 informe de prueba")
	var cuerpo bytes.Buffer
	mw := multipart.NewWriter(&cuerpo)
	parte, err := mw.CreateFormFile("informe", "manual.pdf")
	require.NoError(t, err)
	_, err = parte.Write(contenido)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/equipos/EQ-001/informes", &cuerpo)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "manual.pdf")

	// El contenido descargado es byte a byte el que se subió.
	w = pedir(r, http.MethodGet, "/api/equipos/EQ-001/informes/manual.pdf", cookies, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contenido, w.Body.Bytes())

	// Subir otro archivo con el mismo nombre choca con la unicidad.
	var repetido bytes.Buffer
	mw = multipart.NewWriter(&repetido)
	parte, err = mw.CreateFormFile("informe", "manual.pdf")
	require.NoError(t, err)
	_, err = parte.Write([]byte("otro contenido"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/equipos/EQ-001/informes", &repetido)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCuentaDelAdministradorNoSeElimina(t *testing.T) {
	r, _ := routerDePrueba(t)
	cookies := abrirSesion(t, r, database.CodigoAdmin, "Secreta123")

	w := pedir(r, http.MethodDelete, "/api/colaboradores/"+database.CodigoAdmin, cookies, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVerTablaOcultaElHash(t *testing.T) {
	r, _ := routerDePrueba(t)
	cookies := abrirSesion(t, r, database.CodigoAdmin, "Secreta123")

	w := pedir(r, http.MethodGet, "/api/tablas/colaboradores", cookies, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "contrasena_hash")

	w = pedir(r, http.MethodGet, "/api/tablas/inexistente", cookies, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
