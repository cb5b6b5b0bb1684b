// Package codigos genera los códigos correlativos legibles del sistema:
// códigos padre, avisos de mantenimiento, OT base y sufijos de sesión.
//
// La generación no es atómica: dos llamadas concurrentes pueden producir el
// mismo código. La unicidad se garantiza recién al insertar, con el índice
// único de cada tabla.
package codigos

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Formatos de cada familia de códigos.
const (
	FormatoPadre        = "CODP-%08d"
	FormatoMantto       = "AM-%08d"
	FormatoOTBase       = "OT-%07d"
	FormatoPadreDirecta = "CODP-OT-%08d"
	FormatoSufijo       = "%s-%02d"
)

// SiguientePadre genera el próximo código padre (CODP-00000001) leyendo el
// último aviso insertado.
func SiguientePadre(db *gorm.DB) (string, error) {
	return siguiente(db, "avisos", "codigo_padre", "", FormatoPadre)
}

// SiguienteMantto genera el próximo código de aviso (AM-00000001).
func SiguienteMantto(db *gorm.DB) (string, error) {
	return siguiente(db, "avisos", "codigo_mantto", "", FormatoMantto)
}

// SiguienteOTBase genera el próximo código OT base (OT-0000001).
func SiguienteOTBase(db *gorm.DB) (string, error) {
	return siguiente(db, "ot_unicas", "codigo_ot_base", "", FormatoOTBase)
}

// SiguientePadreDirecta genera el próximo código padre de una OT creada sin
// aviso (CODP-OT-00000001). Solo considera filas de esa familia.
func SiguientePadreDirecta(db *gorm.DB) (string, error) {
	return siguiente(db, "ot_unicas", "codigo_padre", "CODP-OT-%", FormatoPadreDirecta)
}

// SiguienteSufijo genera el código de sesión para una OT base, numerado por
// la cantidad de sufijos ya registrados para esa base.
func SiguienteSufijo(db *gorm.DB, codigoOTBase string) (string, error) {
	var total int64
	err := db.Table("ot_sufijos").
		Where("codigo_ot_base = ?", codigoOTBase).
		Count(&total).Error
	if err != nil {
		return "", fmt.Errorf("contar sufijos de %s: %w", codigoOTBase, err)
	}
	return fmt.Sprintf(FormatoSufijo, codigoOTBase, total+1), nil
}

// SufijoCulminacion devuelve el código sintético de cierre de una OT base.
func SufijoCulminacion(codigoOTBase string) string {
	return codigoOTBase + "-CULM"
}

func siguiente(db *gorm.DB, tabla, columna, patron, formato string) (string, error) {
	q := db.Table(tabla).Select(columna).Order("id desc").Limit(1)
	if patron != "" {
		q = q.Where(columna+" LIKE ?", patron)
	}

	var ultimo sql.NullString
	err := q.Row().Scan(&ultimo)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("leer último %s de %s: %w", columna, tabla, err)
	}

	// Sin fila previa o código ilegible: el contador arranca en 1.
	numero := 1
	if ultimo.Valid && ultimo.String != "" {
		if n, ok := segmentoNumerico(ultimo.String); ok {
			numero = n + 1
		}
	}
	return fmt.Sprintf(formato, numero), nil
}

// segmentoNumerico extrae el tramo numérico final de un código prefijo-número.
func segmentoNumerico(codigo string) (int, bool) {
	i := strings.LastIndex(codigo, "-")
	if i < 0 || i == len(codigo)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(codigo[i+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
