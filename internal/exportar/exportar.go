// Package exportar produce el volcado masivo de los almacenes: un libro
// Excel con una hoja por tabla más un resumen, y el respaldo comprimido de
// los archivos locales.
package exportar

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"mantto/internal/database"
	"mantto/internal/espejo"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type hoja struct {
	nombre string
	tabla  string
}

var hojas = []hoja{
	{"Avisos", "avisos"},
	{"OT_Unicas", "ot_unicas"},
	{"OT_Sufijos", "ot_sufijos"},
	{"Equipos", "equipos"},
	{"Colaboradores", "colaboradores"},
}

// Workbook genera el libro de exportación completo. Los colaboradores se
// exportan sin el hash de contraseña.
func Workbook(b *database.Bases, ahora time.Time) ([]byte, error) {
	f := excelize.NewFile()

	estiloEncabezado, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("crear estilo: %w", err)
	}

	porTabla := map[string]*gorm.DB{
		"avisos":        b.Avisos,
		"ot_unicas":     b.Unicas,
		"ot_sufijos":    b.Sufijos,
		"equipos":       b.Equipos,
		"colaboradores": b.Colaboradores,
	}

	totales := make([]int, len(hojas))
	for i, h := range hojas {
		if _, err := f.NewSheet(h.nombre); err != nil {
			f.Close()
			return nil, fmt.Errorf("crear hoja %s: %w", h.nombre, err)
		}

		valores, err := espejo.Volcar(porTabla[h.tabla], h.tabla)
		if err != nil {
			f.Close()
			return nil, err
		}
		if h.tabla == "colaboradores" {
			valores = QuitarColumna(valores, "contrasena_hash")
		}
		if err := escribirHoja(f, h.nombre, valores, estiloEncabezado); err != nil {
			f.Close()
			return nil, err
		}
		if len(valores) > 0 {
			totales[i] = len(valores) - 1
		}
	}

	if err := escribirResumen(f, estiloEncabezado, totales, ahora); err != nil {
		f.Close()
		return nil, err
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("serializar libro: %w", err)
	}
	f.Close()
	return buf.Bytes(), nil
}

func escribirHoja(f *excelize.File, nombre string, valores [][]string, estilo int) error {
	for filaIdx, fila := range valores {
		for colIdx, celda := range fila {
			ref, err := excelize.CoordinatesToCellName(colIdx+1, filaIdx+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(nombre, ref, celda); err != nil {
				return err
			}
			if filaIdx == 0 {
				if err := f.SetCellStyle(nombre, ref, ref, estilo); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func escribirResumen(f *excelize.File, estilo int, totales []int, ahora time.Time) error {
	const nombre = "Resumen"
	if _, err := f.NewSheet(nombre); err != nil {
		return err
	}
	valores := [][]string{{"Base de Datos", "Total Registros", "Fecha Exportación"}}
	marca := ahora.Format("2006-01-02 15:04")
	for i, h := range hojas {
		valores = append(valores, []string{h.nombre, fmt.Sprint(totales[i]), marca})
	}
	return escribirHoja(f, nombre, valores, estilo)
}

// QuitarColumna devuelve la matriz sin la columna indicada; la primera fila
// son los encabezados.
func QuitarColumna(valores [][]string, columna string) [][]string {
	if len(valores) == 0 {
		return valores
	}
	idx := -1
	for i, encabezado := range valores[0] {
		if encabezado == columna {
			idx = i
			break
		}
	}
	if idx < 0 {
		return valores
	}
	filtradas := make([][]string, len(valores))
	for i, fila := range valores {
		if idx < len(fila) {
			fila = append(append([]string{}, fila[:idx]...), fila[idx+1:]...)
		}
		filtradas[i] = fila
	}
	return filtradas
}

// NombreArchivo devuelve el nombre sugerido para la descarga del libro.
func NombreArchivo(ahora time.Time) string {
	return "backup_completo_sistema_" + ahora.Format("20060102_1504") + ".xlsx"
}

// RespaldoLocal comprime los archivos de datos locales en un zip con marca
// de tiempo dentro de dir y devuelve la ruta creada.
func RespaldoLocal(dir string, rutas []string, ahora time.Time) (string, error) {
	if len(rutas) == 0 {
		return "", fmt.Errorf("no hay archivos locales para respaldar")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("crear %s: %w", dir, err)
	}

	destino := filepath.Join(dir, "backup_"+ahora.Format("20060102_150405")+".zip")
	archivo, err := os.Create(destino)
	if err != nil {
		return "", fmt.Errorf("crear %s: %w", destino, err)
	}
	defer archivo.Close()

	zw := zip.NewWriter(archivo)
	for _, ruta := range rutas {
		origen, err := os.Open(ruta)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			zw.Close()
			return "", fmt.Errorf("abrir %s: %w", ruta, err)
		}
		w, err := zw.Create(filepath.Base(ruta))
		if err == nil {
			_, err = io.Copy(w, origen)
		}
		origen.Close()
		if err != nil {
			zw.Close()
			return "", fmt.Errorf("comprimir %s: %w", ruta, err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("cerrar %s: %w", destino, err)
	}
	return destino, nil
}
