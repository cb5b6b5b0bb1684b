package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Nuevo crea el logger de la aplicación.
// nivel: "debug", "info", "warn", "error" (por defecto "info")
// formato: "json" o "console" (por defecto "json")
func Nuevo(nivel, formato string) (*zap.Logger, error) {
	var zapNivel zapcore.Level
	switch nivel {
	case "debug":
		zapNivel = zapcore.DebugLevel
	case "warn":
		zapNivel = zapcore.WarnLevel
	case "error":
		zapNivel = zapcore.ErrorLevel
	default:
		zapNivel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if formato == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}
	cfg.Level = zap.NewAtomicLevelAt(zapNivel)

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("servicio", "mantto")), nil
}
