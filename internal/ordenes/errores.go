package ordenes

import (
	"errors"
	"fmt"
)

// Clase clasifica los fallos de las operaciones del ciclo de vida. Cada
// operación devuelve un valor o un error de una de estas clases; la capa
// HTTP decide cómo presentarlo.
type Clase int

const (
	ClaseValidacion   Clase = iota + 1 // campo faltante o malformado, nada se escribió
	ClaseDuplicado                     // choque de código único al insertar, reintentar
	ClaseNoEncontrado                  // no hay fila sobre la cual operar
	ClaseConflicto                     // el estado actual no admite la transición
	ClaseAlmacen                       // fallo de almacenamiento, posible escritura parcial
)

type Error struct {
	Clase   Clase
	Mensaje string
	Causa   error
}

func (e *Error) Error() string {
	if e.Causa != nil {
		return fmt.Sprintf("%s: %v", e.Mensaje, e.Causa)
	}
	return e.Mensaje
}

func (e *Error) Unwrap() error { return e.Causa }

// ClaseDe devuelve la clase de un error de este paquete, o 0 si no lo es.
func ClaseDe(err error) Clase {
	var e *Error
	if errors.As(err, &e) {
		return e.Clase
	}
	return 0
}

func errValidacion(formato string, args ...any) *Error {
	return &Error{Clase: ClaseValidacion, Mensaje: fmt.Sprintf(formato, args...)}
}

func errDuplicado(codigo string, causa error) *Error {
	return &Error{
		Clase:   ClaseDuplicado,
		Mensaje: fmt.Sprintf("el código %s ya existe, vuelva a intentar", codigo),
		Causa:   causa,
	}
}

func errNoEncontrado(formato string, args ...any) *Error {
	return &Error{Clase: ClaseNoEncontrado, Mensaje: fmt.Sprintf(formato, args...)}
}

func errConflicto(formato string, args ...any) *Error {
	return &Error{Clase: ClaseConflicto, Mensaje: fmt.Sprintf(formato, args...)}
}

func errAlmacen(causa error, formato string, args ...any) *Error {
	return &Error{Clase: ClaseAlmacen, Mensaje: fmt.Sprintf(formato, args...), Causa: causa}
}
