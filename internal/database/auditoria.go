package database

import "mantto/internal/models"

// RegistrarAuditoria deja una entrada en el historial administrativo. Un
// fallo de auditoría nunca interrumpe la operación que la originó.
func (b *Bases) RegistrarAuditoria(actor, entidad, codigo, accion, detalle string) {
	if b == nil || b.Colaboradores == nil {
		return
	}
	registro := models.Auditoria{
		Actor:   actor,
		Entidad: entidad,
		Codigo:  codigo,
		Accion:  accion,
		Detalle: detalle,
	}
	_ = b.Colaboradores.Create(&registro).Error
}
