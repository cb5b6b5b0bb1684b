// Package espejo replica cada tabla local hacia un servicio tabular externo
// (una planilla en la nube detrás de un puente HTTP) y la recupera al
// arrancar. El espejo es siempre de mejor esfuerzo: la copia local manda y
// un espejo caído nunca bloquea ni revierte una operación.
package espejo

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Espejo es el contrato mínimo de lectura/escritura contra el servicio
// tabular. Extraer devuelve nil sin error cuando la hoja no existe o está
// vacía.
type Espejo interface {
	Extraer(tabla string) ([][]string, error)
	Publicar(tabla string, valores [][]string) error
}

// Hoja devuelve el nombre de la hoja remota para una tabla local.
func Hoja(tabla string) string {
	return "Sistema_Mantenimiento_" + tabla
}

// Remoto habla con el puente HTTP del espejo.
type Remoto struct {
	cliente *resty.Client
}

type cuerpoHoja struct {
	Valores [][]string `json:"valores"`
}

func NuevoRemoto(baseURL, token string) *Remoto {
	cliente := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		cliente.SetAuthToken(token)
	}
	return &Remoto{cliente: cliente}
}

func (r *Remoto) Extraer(tabla string) ([][]string, error) {
	var cuerpo cuerpoHoja
	resp, err := r.cliente.R().
		SetResult(&cuerpo).
		Get("/hojas/" + Hoja(tabla))
	if err != nil {
		return nil, fmt.Errorf("extraer %s: %w", tabla, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		// La hoja todavía no existe: se creará al publicar.
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("extraer %s: estado %d", tabla, resp.StatusCode())
	}
	return cuerpo.Valores, nil
}

func (r *Remoto) Publicar(tabla string, valores [][]string) error {
	resp, err := r.cliente.R().
		SetBody(cuerpoHoja{Valores: valores}).
		Put("/hojas/" + Hoja(tabla))
	if err != nil {
		return fmt.Errorf("publicar %s: %w", tabla, err)
	}
	if resp.IsError() {
		return fmt.Errorf("publicar %s: estado %d", tabla, resp.StatusCode())
	}
	return nil
}

// Desactivado es el espejo nulo que se usa cuando no hay puente configurado.
type Desactivado struct{}

func (Desactivado) Extraer(string) ([][]string, error) { return nil, nil }
func (Desactivado) Publicar(string, [][]string) error  { return nil }

var _ Espejo = (*Remoto)(nil)
var _ Espejo = Desactivado{}

// RegistrarFallo deja constancia de un fallo de espejo sin propagarlo.
func RegistrarFallo(log *zap.Logger, tabla string, err error) {
	if err != nil && log != nil {
		log.Warn("fallo de espejo", zap.String("tabla", tabla), zap.Error(err))
	}
}

// codificarCelda serializa un valor de columna para la frontera tabular.
// El contenido binario viaja en base64.
func codificarCelda(v any) string {
	switch valor := v.(type) {
	case nil:
		return ""
	case []byte:
		return base64.StdEncoding.EncodeToString(valor)
	case time.Time:
		return valor.Format("2006-01-02 15:04:05")
	case string:
		return valor
	default:
		return fmt.Sprint(valor)
	}
}
