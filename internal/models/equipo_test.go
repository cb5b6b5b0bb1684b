package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInformeRoundTripConservaLosBytes(t *testing.T) {
	contenido := []byte{0x00, 0x01, 0xFF, 0xFE, 0x7F, 0x80}
	fecha := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	e := &Equipo{CodigoEquipo: "EQ-001"}
	require.NoError(t, e.AgregarInforme("manual.pdf", "application/pdf", contenido, fecha))

	informe, ok := e.BuscarInforme("manual.pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", informe.Tipo)
	assert.Equal(t, "2026-03-10 14:30:00", informe.Fecha)

	recuperado, err := informe.Datos()
	require.NoError(t, err)
	assert.Equal(t, contenido, recuperado)
}

func TestAgregarInformeRechazaNombreRepetido(t *testing.T) {
	e := &Equipo{}
	require.NoError(t, e.AgregarInforme("plano.dwg", "application/dwg", []byte("v1"), time.Now()))

	err := e.AgregarInforme("plano.dwg", "application/dwg", []byte("v2"), time.Now())
	require.Error(t, err)
	assert.Len(t, e.Informes(), 1)
}

func TestEliminarInforme(t *testing.T) {
	e := &Equipo{}
	require.NoError(t, e.AgregarInforme("a.pdf", "application/pdf", []byte("a"), time.Now()))
	require.NoError(t, e.AgregarInforme("b.pdf", "application/pdf", []byte("b"), time.Now()))

	eliminado, err := e.EliminarInforme("a.pdf")
	require.NoError(t, err)
	assert.True(t, eliminado)
	assert.Len(t, e.Informes(), 1)

	eliminado, err = e.EliminarInforme("no-existe.pdf")
	require.NoError(t, err)
	assert.False(t, eliminado)
}

func TestInformesConJSONCorrupto(t *testing.T) {
	e := &Equipo{InformesJSON: "{no es json"}
	assert.Nil(t, e.Informes())
}

func TestCalcularAntiguedad(t *testing.T) {
	hoy := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, CalcularAntiguedad("", hoy))
	assert.Equal(t, 0, CalcularAntiguedad("no-es-fecha", hoy))
	assert.Equal(t, 0, CalcularAntiguedad("2026-03-10", hoy))
	assert.Equal(t, 5, CalcularAntiguedad("2026-03-05", hoy))
	// Un ingreso con fecha futura no cuenta antigüedad negativa.
	assert.Equal(t, 0, CalcularAntiguedad("2026-03-20", hoy))
}

func TestEstadoTerminal(t *testing.T) {
	assert.True(t, EstadoTerminal(EstadoCulminado))
	assert.True(t, EstadoTerminal(EstadoCerrado))
	assert.True(t, EstadoTerminal(EstadoAnulado))
	assert.False(t, EstadoTerminal(EstadoIngresado))
	assert.False(t, EstadoTerminal(EstadoProgramado))
	assert.False(t, EstadoTerminal(EstadoPendiente))
}
