package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Equipo es una entrada del inventario de activos físicos. Los informes
// técnicos se guardan embebidos como lista JSON dentro del registro.
type Equipo struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CodigoEquipo string `gorm:"uniqueIndex;size:64" json:"codigo_equipo"`
	Equipo       string `gorm:"size:255" json:"equipo"`
	Area         string `gorm:"size:100" json:"area"`

	DescripcionFuncionalidad string `gorm:"type:text" json:"descripcion_funcionalidad"`

	EspecificacionesTecnicaNombre string `gorm:"size:255" json:"especificaciones_tecnica_nombre,omitempty"`
	EspecificacionesTecnicaDatos  []byte `gorm:"type:blob" json:"-"`

	InformesJSON string `gorm:"column:informes_json;type:text;default:'[]'" json:"-"`

	CreadoEn      time.Time `gorm:"autoCreateTime" json:"creado_en"`
	ActualizadoEn time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`
}

func (Equipo) TableName() string { return "equipos" }

// Informe es un informe técnico adjunto a un equipo. El contenido viaja en
// base64 para sobrevivir la frontera con el espejo tabular.
type Informe struct {
	Nombre      string `json:"nombre"`
	Tipo        string `json:"tipo"`
	DatosBase64 string `json:"datos_base64"`
	Fecha       string `json:"fecha"`
}

// Datos decodifica el contenido binario del informe.
func (i Informe) Datos() ([]byte, error) {
	return base64.StdEncoding.DecodeString(i.DatosBase64)
}

// Informes devuelve la lista de informes del equipo. Un JSON corrupto se
// trata como lista vacía.
func (e *Equipo) Informes() []Informe {
	if e.InformesJSON == "" {
		return nil
	}
	var informes []Informe
	if err := json.Unmarshal([]byte(e.InformesJSON), &informes); err != nil {
		return nil
	}
	return informes
}

// AgregarInforme añade un informe al equipo. El nombre debe ser único
// dentro del registro.
func (e *Equipo) AgregarInforme(nombre, tipo string, datos []byte, fecha time.Time) error {
	for _, inf := range e.Informes() {
		if inf.Nombre == nombre {
			return fmt.Errorf("ya existe un informe con el nombre %q", nombre)
		}
	}
	informes := append(e.Informes(), Informe{
		Nombre:      nombre,
		Tipo:        tipo,
		DatosBase64: base64.StdEncoding.EncodeToString(datos),
		Fecha:       fecha.Format("2006-01-02 15:04:05"),
	})
	return e.guardarInformes(informes)
}

// EliminarInforme quita el informe con el nombre dado; devuelve false si no
// existía.
func (e *Equipo) EliminarInforme(nombre string) (bool, error) {
	informes := e.Informes()
	filtrados := informes[:0]
	for _, inf := range informes {
		if inf.Nombre != nombre {
			filtrados = append(filtrados, inf)
		}
	}
	if len(filtrados) == len(informes) {
		return false, nil
	}
	return true, e.guardarInformes(filtrados)
}

// BuscarInforme devuelve el informe con el nombre dado, si existe.
func (e *Equipo) BuscarInforme(nombre string) (Informe, bool) {
	for _, inf := range e.Informes() {
		if inf.Nombre == nombre {
			return inf, true
		}
	}
	return Informe{}, false
}

func (e *Equipo) guardarInformes(informes []Informe) error {
	if informes == nil {
		informes = []Informe{}
	}
	b, err := json.Marshal(informes)
	if err != nil {
		return err
	}
	e.InformesJSON = string(b)
	return nil
}
