package exportar

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mantto/internal/database"
	"mantto/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func basesDePrueba(t *testing.T) *database.Bases {
	t.Helper()
	b, err := database.Abrir("", t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return b
}

func TestWorkbookHojasYResumen(t *testing.T) {
	b := basesDePrueba(t)
	require.NoError(t, b.Avisos.Create(&models.Aviso{
		CodigoPadre:  "CODP-00000001",
		CodigoMantto: "AM-00000001",
		Estado:       models.EstadoIngresado,
		Area:         "Planta A",
		Equipo:       "Caldera 2",
	}).Error)
	require.NoError(t, b.Colaboradores.Create(&models.Colaborador{
		CodigoID:          "12345678",
		NombreColaborador: "M. Torres",
		Personal:          "INTERNO",
		Cargo:             "PLANNER DE MANTTO",
		ContrasenaHash:    "$2a$10$secreto",
	}).Error)

	ahora := time.Date(2026, 3, 10, 16, 45, 0, 0, time.UTC)
	contenido, err := Workbook(b, ahora)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(contenido))
	require.NoError(t, err)
	defer f.Close()

	nombres := f.GetSheetList()
	for _, esperada := range []string{"Avisos", "OT_Unicas", "OT_Sufijos", "Equipos", "Colaboradores", "Resumen"} {
		assert.Contains(t, nombres, esperada)
	}
	assert.NotContains(t, nombres, "Sheet1")

	// El hash de contraseña no aparece en ninguna celda exportada.
	filas, err := f.GetRows("Colaboradores")
	require.NoError(t, err)
	require.NotEmpty(t, filas)
	assert.NotContains(t, filas[0], "contrasena_hash")
	for _, fila := range filas[1:] {
		assert.NotContains(t, fila, "$2a$10$secreto")
	}

	resumen, err := f.GetRows("Resumen")
	require.NoError(t, err)
	require.Len(t, resumen, 6)
	assert.Equal(t, []string{"Base de Datos", "Total Registros", "Fecha Exportación"}, resumen[0])
	assert.Equal(t, "Avisos", resumen[1][0])
	assert.Equal(t, "1", resumen[1][1])
	assert.Equal(t, "2026-03-10 16:45", resumen[1][2])
}

func TestNombreArchivo(t *testing.T) {
	ahora := time.Date(2026, 3, 10, 16, 45, 0, 0, time.UTC)
	assert.Equal(t, "backup_completo_sistema_20260310_1645.xlsx", NombreArchivo(ahora))
}

func TestRespaldoLocalComprimeLosArchivos(t *testing.T) {
	b := basesDePrueba(t)
	rutas := b.Rutas()
	require.NotEmpty(t, rutas)

	dir := t.TempDir()
	ahora := time.Date(2026, 3, 10, 16, 45, 30, 0, time.UTC)
	destino, err := RespaldoLocal(dir, rutas, ahora)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup_20260310_164530.zip"), destino)

	zr, err := zip.OpenReader(destino)
	require.NoError(t, err)
	defer zr.Close()

	nombres := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		nombres = append(nombres, f.Name)
	}
	for _, ruta := range rutas {
		assert.Contains(t, nombres, filepath.Base(ruta))
	}
}

func TestRespaldoLocalSinRutas(t *testing.T) {
	_, err := RespaldoLocal(t.TempDir(), nil, time.Now())
	require.Error(t, err)
}

func TestRespaldoLocalOmiteArchivosFaltantes(t *testing.T) {
	dir := t.TempDir()
	existente := filepath.Join(dir, "avisos.db")
	require.NoError(t, os.WriteFile(existente, []byte("datos"), 0o644))

	destino, err := RespaldoLocal(dir, []string{existente, filepath.Join(dir, "no-existe.db")}, time.Now())
	require.NoError(t, err)

	zr, err := zip.OpenReader(destino)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)
	assert.Equal(t, "avisos.db", zr.File[0].Name)
}
