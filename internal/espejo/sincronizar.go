package espejo

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Columnas que guardan binarios: se decodifican de base64 al restaurar.
var columnasBinarias = map[string]bool{
	"imagen_datos":                   true,
	"imagen_final_datos":             true,
	"especificaciones_tecnica_datos": true,
}

// Columnas enteras de los almacenes. Solo estas se convierten a número al
// restaurar; un código como "70697318" debe volver como texto.
var columnasEnteras = map[string]bool{
	"id":                   true,
	"antiguedad":           true,
	"cantidad_mecanicos":   true,
	"cantidad_electricos":  true,
	"cantidad_soldadores":  true,
	"cantidad_op_vahos":    true,
	"cantidad_calderistas": true,
}

// Volcar serializa el contenido completo de una tabla como matriz de celdas
// con los encabezados en la primera fila.
func Volcar(db *gorm.DB, tabla string) ([][]string, error) {
	var filas []map[string]any
	if err := db.Table(tabla).Order("id").Find(&filas).Error; err != nil {
		// Tablas con clave primaria de texto no tienen columna id.
		if err2 := db.Table(tabla).Find(&filas).Error; err2 != nil {
			return nil, fmt.Errorf("volcar %s: %w", tabla, err2)
		}
	}
	if len(filas) == 0 {
		return nil, nil
	}

	encabezados := make([]string, 0, len(filas[0]))
	for col := range filas[0] {
		encabezados = append(encabezados, col)
	}
	sort.Strings(encabezados)

	valores := make([][]string, 0, len(filas)+1)
	valores = append(valores, encabezados)
	for _, fila := range filas {
		celdas := make([]string, len(encabezados))
		for i, col := range encabezados {
			celdas[i] = codificarCelda(fila[col])
		}
		valores = append(valores, celdas)
	}
	return valores, nil
}

// Respaldar publica una tabla en el espejo después de un commit local.
// Cualquier fallo se registra como advertencia y se descarta.
func Respaldar(db *gorm.DB, tabla string, e Espejo, log *zap.Logger) {
	valores, err := Volcar(db, tabla)
	if err != nil {
		RegistrarFallo(log, tabla, err)
		return
	}
	if valores == nil {
		return
	}
	RegistrarFallo(log, tabla, e.Publicar(tabla, valores))
}

// Restaurar reemplaza por completo el contenido local de una tabla con lo
// que haya en el espejo. Un espejo inalcanzable o vacío conserva lo local
// sin tratarlo como error.
func Restaurar(db *gorm.DB, tabla string, e Espejo, log *zap.Logger) {
	valores, err := e.Extraer(tabla)
	if err != nil {
		RegistrarFallo(log, tabla, err)
		return
	}
	if len(valores) < 2 {
		return
	}

	encabezados := valores[0]
	filas := make([]map[string]any, 0, len(valores)-1)
	for _, celdas := range valores[1:] {
		fila := make(map[string]any, len(encabezados))
		for i, col := range encabezados {
			if i >= len(celdas) {
				break
			}
			fila[col] = decodificarCelda(col, celdas[i])
		}
		filas = append(filas, fila)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + tabla).Error; err != nil {
			return err
		}
		return tx.Table(tabla).CreateInBatches(filas, 100).Error
	})
	if err != nil {
		RegistrarFallo(log, tabla, fmt.Errorf("restaurar %s: %w", tabla, err))
		return
	}
	if log != nil {
		log.Info("tabla restaurada desde el espejo",
			zap.String("tabla", tabla), zap.Int("filas", len(filas)))
	}
}

func decodificarCelda(columna, celda string) any {
	if celda == "" {
		return nil
	}
	if columnasBinarias[columna] {
		if b, err := base64.StdEncoding.DecodeString(celda); err == nil {
			return b
		}
		return celda
	}
	if columnasEnteras[columna] {
		if n, err := strconv.ParseInt(celda, 10, 64); err == nil {
			return n
		}
	}
	return celda
}
