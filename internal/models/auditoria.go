package models

import "time"

type Auditoria struct {
	ID       uint `gorm:"primaryKey"`
	CreadoEn time.Time

	Actor   string `gorm:"size:32"`          // codigo_id del colaborador
	Entidad string `gorm:"size:50;not null"` // "aviso", "ot", "equipo", "colaborador"
	Codigo  string `gorm:"size:40"`
	Accion  string `gorm:"size:50;not null"` // "crear", "promover", "culminar", etc.
	Detalle string `gorm:"type:text"`
}

func (Auditoria) TableName() string { return "auditoria" }
