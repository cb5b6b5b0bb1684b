package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EspejoConfig apunta al puente HTTP del espejo tabular externo. Con URL
// vacía el espejo queda desactivado.
type EspejoConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type Config struct {
	// DSN de postgres; vacío usa los archivos sqlite locales en DirDatos.
	DBDSN    string `yaml:"db_dsn"`
	DirDatos string `yaml:"dir_datos"`

	ServerPort    string `yaml:"server_port"`
	SessionSecret string `yaml:"-"`

	AdminPassword string `yaml:"-"`

	NivelLog   string `yaml:"nivel_log"`
	FormatoLog string `yaml:"formato_log"`

	DirRespaldos string `yaml:"dir_respaldos"`

	Espejo EspejoConfig `yaml:"espejo"`
}

// Load arma la configuración desde el entorno (.env incluido) y, si existe,
// el archivo YAML señalado por CONFIG_FILE. El entorno manda sobre el YAML.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	if ruta := os.Getenv("CONFIG_FILE"); ruta != "" {
		b, err := os.ReadFile(ruta)
		if err != nil {
			log.Fatalf("no se pudo leer %s: %v", ruta, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			log.Fatalf("config inválida en %s: %v", ruta, err)
		}
	}

	aplicarEntorno(cfg)

	if cfg.DirDatos == "" {
		cfg.DirDatos = "datos"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DirRespaldos == "" {
		cfg.DirRespaldos = "respaldos"
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET no está definido")
	}

	return cfg
}

func aplicarEntorno(cfg *Config) {
	valores := map[string]*string{
		"DB_DSN":         &cfg.DBDSN,
		"DIR_DATOS":      &cfg.DirDatos,
		"SERVER_PORT":    &cfg.ServerPort,
		"SESSION_SECRET": &cfg.SessionSecret,
		"ADMIN_PASSWORD": &cfg.AdminPassword,
		"NIVEL_LOG":      &cfg.NivelLog,
		"FORMATO_LOG":    &cfg.FormatoLog,
		"DIR_RESPALDOS":  &cfg.DirRespaldos,
		"ESPEJO_URL":     &cfg.Espejo.URL,
		"ESPEJO_TOKEN":   &cfg.Espejo.Token,
	}
	for clave, destino := range valores {
		if v := os.Getenv(clave); v != "" {
			*destino = v
		}
	}
}
