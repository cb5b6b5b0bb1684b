package models

import "time"

// Aviso es un reporte de problema sobre un equipo, previo a la programación
// de una orden de trabajo.
type Aviso struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CodigoPadre  string `gorm:"uniqueIndex;size:32" json:"codigo_padre"`
	CodigoMantto string `gorm:"uniqueIndex;size:32" json:"codigo_mantto"`
	// Se llena al promover el aviso a OT.
	CodigoOTBase string `gorm:"column:codigo_ot_base;size:32;index" json:"codigo_ot_base"`

	Estado     string `gorm:"size:20;not null;default:INGRESADO" json:"estado"`
	Antiguedad int    `json:"antiguedad"` // días desde el ingreso

	Area         string `gorm:"size:100" json:"area"`
	Equipo       string `gorm:"size:255" json:"equipo"`
	CodigoEquipo string `gorm:"size:64" json:"codigo_equipo"`

	DescripcionProblema string `gorm:"type:text" json:"descripcion_problema"`
	TipoMantenimiento   string `gorm:"size:50" json:"tipo_mantenimiento"`
	TipoPreventivo      string `gorm:"size:50" json:"tipo_preventivo"`
	HayRiesgo           string `gorm:"size:10" json:"hay_riesgo"`

	IngresadoPor string `gorm:"size:100" json:"ingresado_por"`
	IngresadoEl  string `gorm:"size:10" json:"ingresado_el"` // YYYY-MM-DD

	ImagenNombre string `gorm:"size:255" json:"imagen_nombre,omitempty"`
	ImagenDatos  []byte `gorm:"type:blob" json:"-"`

	// Campos de planificación copiados al promover.
	Prioridad            string `gorm:"size:20" json:"prioridad"`
	Componentes          string `gorm:"type:text" json:"componentes"`
	DescripcionTrabajo   string `gorm:"type:text" json:"descripcion_trabajo"`
	Responsable          string `gorm:"size:100" json:"responsable"`
	Clasificacion        string `gorm:"size:50" json:"clasificacion"`
	Sistema              string `gorm:"size:50" json:"sistema"`
	Materiales           string `gorm:"type:text" json:"materiales"`
	AlimentadorProveedor string `gorm:"size:50" json:"alimentador_proveedor"`
	FechaEstimadaInicio  string `gorm:"size:10" json:"fecha_estimada_inicio"`
	DuracionEstimada     string `gorm:"size:8" json:"duracion_estimada"`

	// Campos de finalización propagados al culminar la OT vinculada.
	FechaFinalizacion           string `gorm:"size:10" json:"fecha_finalizacion"`
	HoraFinal                   string `gorm:"size:8" json:"hora_final"`
	ResponsablesFinalizacion    string `gorm:"type:text" json:"responsables_finalizacion"`
	DescripcionTrabajoRealizado string `gorm:"type:text" json:"descripcion_trabajo_realizado"`
	ObservacionesCierre         string `gorm:"type:text" json:"observaciones_cierre"`
	Comentario                  string `gorm:"type:text" json:"comentario"`
	ImagenFinalNombre           string `gorm:"size:255" json:"imagen_final_nombre,omitempty"`
	ImagenFinalDatos            []byte `gorm:"type:blob" json:"-"`

	CreadoEn      time.Time `gorm:"autoCreateTime" json:"creado_en"`
	ActualizadoEn time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`
}

func (Aviso) TableName() string { return "avisos" }

// CalcularAntiguedad devuelve los días transcurridos desde una fecha
// YYYY-MM-DD; fechas vacías o malformadas cuentan como 0.
func CalcularAntiguedad(fecha string, hoy time.Time) int {
	if fecha == "" {
		return 0
	}
	t, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return 0
	}
	dias := int(hoy.Sub(t).Hours() / 24)
	if dias < 0 {
		return 0
	}
	return dias
}
