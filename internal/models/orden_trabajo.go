package models

import "time"

// OrdenTrabajo es el registro canónico de un trabajo de mantenimiento,
// una fila por código OT base durante toda su vida.
type OrdenTrabajo struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CodigoPadre  string `gorm:"size:32;index" json:"codigo_padre"`
	CodigoMantto string `gorm:"size:32;index" json:"codigo_mantto"` // vacío en OT directas
	CodigoOTBase string `gorm:"column:codigo_ot_base;uniqueIndex;size:32" json:"codigo_ot_base"`

	Estado     string `gorm:"size:20;not null;default:PROGRAMADO" json:"estado"`
	Antiguedad int    `json:"antiguedad"`

	Prioridad    string `gorm:"size:20" json:"prioridad"`
	Area         string `gorm:"size:100" json:"area"`
	Equipo       string `gorm:"size:255" json:"equipo"`
	CodigoEquipo string `gorm:"size:64" json:"codigo_equipo"`

	Componentes         string `gorm:"type:text" json:"componentes"`
	DescripcionProblema string `gorm:"type:text" json:"descripcion_problema"`
	TipoMantenimiento   string `gorm:"size:50" json:"tipo_mantenimiento"`

	// Personal requerido.
	CantidadMecanicos   int `json:"cantidad_mecanicos"`
	CantidadElectricos  int `json:"cantidad_electricos"`
	CantidadSoldadores  int `json:"cantidad_soldadores"`
	CantidadOpVahos     int `json:"cantidad_op_vahos"`
	CantidadCalderistas int `json:"cantidad_calderistas"`

	DescripcionTrabajo   string `gorm:"type:text" json:"descripcion_trabajo"`
	Responsable          string `gorm:"size:100" json:"responsable"`
	Clasificacion        string `gorm:"size:50" json:"clasificacion"`
	Sistema              string `gorm:"size:50" json:"sistema"`
	Materiales           string `gorm:"type:text" json:"materiales"`
	AlimentadorProveedor string `gorm:"size:50" json:"alimentador_proveedor"`
	FechaEstimadaInicio  string `gorm:"size:10" json:"fecha_estimada_inicio"`
	DuracionEstimada     string `gorm:"size:8" json:"duracion_estimada"` // hh:mm:ss

	// Ejecución. Fecha y hora de inicio se fijan una sola vez (COALESCE);
	// los campos de descripción y observaciones son acumulativos.
	FechaInicioMantenimiento      string `gorm:"size:10" json:"fecha_inicio_mantenimiento"`
	HoraInicioMantenimiento       string `gorm:"size:8" json:"hora_inicio_mantenimiento"`
	HoraFinalizacionMantenimiento string `gorm:"size:8" json:"hora_finalizacion_mantenimiento"`
	ResponsablesComienzo          string `gorm:"type:text" json:"responsables_comienzo"`
	DescripcionTrabajoRealizado   string `gorm:"type:text" json:"descripcion_trabajo_realizado"`
	ObservacionesCierre           string `gorm:"type:text" json:"observaciones_cierre"`
	ParoLinea                     string `gorm:"size:10;default:NO" json:"paro_linea"`

	// Finalización.
	FechaFinalizacion        string `gorm:"size:10" json:"fecha_finalizacion"`
	HoraFinal                string `gorm:"size:8" json:"hora_final"`
	ResponsablesFinalizacion string `gorm:"type:text" json:"responsables_finalizacion"`
	Comentario               string `gorm:"type:text" json:"comentario"`
	ImagenFinalNombre        string `gorm:"size:255" json:"imagen_final_nombre,omitempty"`
	ImagenFinalDatos         []byte `gorm:"type:blob" json:"-"`

	OTBaseCreadoEn time.Time `gorm:"column:ot_base_creado_en;autoCreateTime" json:"ot_base_creado_en"`
	CreadoEn       time.Time `gorm:"autoCreateTime" json:"creado_en"`
	ActualizadoEn  time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`
}

func (OrdenTrabajo) TableName() string { return "ot_unicas" }
