package models

import "time"

// OrdenSufijo es el registro inmutable de una sesión de trabajo contra un
// código OT base: una fila por inicio y una por culminación. Nunca se
// actualiza después de insertada.
type OrdenSufijo struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	CodigoPadre    string `gorm:"size:32;index" json:"codigo_padre"`
	CodigoMantto   string `gorm:"size:32" json:"codigo_mantto"`
	CodigoOTBase   string `gorm:"column:codigo_ot_base;size:32;index" json:"codigo_ot_base"`
	CodigoOTSufijo string `gorm:"column:codigo_ot_sufijo;size:40" json:"codigo_ot_sufijo"`

	Estado       string `gorm:"size:20;not null;default:PENDIENTE" json:"estado"`
	Area         string `gorm:"size:100" json:"area"`
	Equipo       string `gorm:"size:255" json:"equipo"`
	CodigoEquipo string `gorm:"size:64" json:"codigo_equipo"`

	ResponsablesComienzo          string `gorm:"type:text" json:"responsables_comienzo"`
	FechaInicioMantenimiento      string `gorm:"size:10" json:"fecha_inicio_mantenimiento"`
	HoraInicioMantenimiento       string `gorm:"size:8" json:"hora_inicio_mantenimiento"`
	HoraFinalizacionMantenimiento string `gorm:"size:8" json:"hora_finalizacion_mantenimiento"`

	FechaFinalizacion        string `gorm:"size:10" json:"fecha_finalizacion"`
	HoraFinal                string `gorm:"size:8" json:"hora_final"`
	ResponsablesFinalizacion string `gorm:"type:text" json:"responsables_finalizacion"`

	DescripcionTrabajoRealizado string `gorm:"type:text" json:"descripcion_trabajo_realizado"`
	ObservacionesCierre         string `gorm:"type:text" json:"observaciones_cierre"`
	Comentario                  string `gorm:"type:text" json:"comentario"`
	ParoLinea                   string `gorm:"size:10;default:NO" json:"paro_linea"`

	ImagenFinalNombre string `gorm:"size:255" json:"imagen_final_nombre,omitempty"`
	ImagenFinalDatos  []byte `gorm:"type:blob" json:"-"`

	OTSufijoCreadoEn time.Time `gorm:"column:ot_sufijo_creado_en;autoCreateTime" json:"ot_sufijo_creado_en"`
}

func (OrdenSufijo) TableName() string { return "ot_sufijos" }
