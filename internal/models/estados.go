package models

// Estados del ciclo de vida de avisos y órdenes de trabajo.
const (
	EstadoIngresado  = "INGRESADO"
	EstadoProgramado = "PROGRAMADO"
	EstadoPendiente  = "PENDIENTE"
	EstadoCulminado  = "CULMINADO"
	EstadoCerrado    = "CERRADO"
	EstadoAnulado    = "ANULADO"
)

// EstadoTerminal indica si un estado no admite más transiciones de trabajo.
func EstadoTerminal(estado string) bool {
	switch estado {
	case EstadoCulminado, EstadoCerrado, EstadoAnulado:
		return true
	}
	return false
}
