package models

import "time"

// Colaborador es una cuenta de acceso al sistema. La contraseña se guarda
// siempre como hash bcrypt, nunca en claro.
type Colaborador struct {
	CodigoID          string `gorm:"primaryKey;size:32" json:"codigo_id"`
	NombreColaborador string `gorm:"size:255;not null" json:"nombre_colaborador"`
	Personal          string `gorm:"size:50;not null" json:"personal"` // INTERNO / TERCERO
	Cargo             string `gorm:"size:100;not null" json:"cargo"`
	ContrasenaHash    string `gorm:"column:contrasena_hash;not null" json:"-"`

	CreadoEn      time.Time `gorm:"autoCreateTime" json:"creado_en"`
	ActualizadoEn time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`
}

func (Colaborador) TableName() string { return "colaboradores" }
