package main

import (
	"fmt"
	"log"

	"mantto/internal/config"
	"mantto/internal/database"
	"mantto/internal/espejo"
	"mantto/internal/handlers"
	"mantto/internal/logger"
	"mantto/internal/ordenes"
	"mantto/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.Nuevo(cfg.NivelLog, cfg.FormatoLog)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	bases, err := database.Abrir(cfg.DBDSN, cfg.DirDatos, zl)
	if err != nil {
		zl.Fatal("no se pudieron abrir los almacenes", zap.Error(err))
	}

	if cfg.Espejo.URL != "" {
		bases.Espejo = espejo.NuevoRemoto(cfg.Espejo.URL, cfg.Espejo.Token)
		zl.Info("espejo remoto habilitado", zap.String("url", cfg.Espejo.URL))
		bases.RestaurarDesdeEspejo()
	}

	bases.CrearAdminPorDefecto(cfg.AdminPassword)

	api := &handlers.API{
		Bases:        bases,
		Ordenes:      ordenes.Nuevo(bases, zl),
		Log:          zl,
		DirRespaldos: cfg.DirRespaldos,
	}

	r := server.NewRouter(api, cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	zl.Info("servidor iniciado", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zl.Fatal("error del servidor", zap.Error(err))
	}
}
