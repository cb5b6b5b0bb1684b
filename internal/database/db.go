package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mantto/internal/espejo"
	"mantto/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Código del administrador semilla. Se crea una única vez, cuando la tabla
// de colaboradores está vacía.
const CodigoAdmin = "70697318"

// Nombres de los archivos sqlite locales, uno por almacén.
var archivos = map[string]string{
	"avisos":        "avisos.db",
	"ot_unicas":     "ot_unicas.db",
	"ot_sufijos":    "ot_sufijos.db",
	"equipos":       "equipos.db",
	"colaboradores": "colaboradores.db",
}

// Bases agrupa los cinco almacenes del sistema. Cada uno es una unidad de
// almacenamiento independiente: no hay claves foráneas entre ellos y la
// consistencia cruzada la mantiene la lógica de aplicación.
type Bases struct {
	Avisos        *gorm.DB
	Unicas        *gorm.DB
	Sufijos       *gorm.DB
	Equipos       *gorm.DB
	Colaboradores *gorm.DB

	Espejo espejo.Espejo
	Log    *zap.Logger

	rutas []string
}

// Abrir conecta los almacenes. Con DSN de postgres todos comparten una
// conexión; sin DSN cada uno vive en su archivo sqlite bajo dirDatos.
func Abrir(dsn, dirDatos string, log *zap.Logger) (*Bases, error) {
	b := &Bases{Espejo: espejo.Desactivado{}, Log: log}

	if dsn != "" {
		db, err := abrirPostgres(dsn, log)
		if err != nil {
			return nil, err
		}
		b.Avisos, b.Unicas, b.Sufijos, b.Equipos, b.Colaboradores = db, db, db, db, db
	} else {
		if err := os.MkdirAll(dirDatos, 0o755); err != nil {
			return nil, fmt.Errorf("crear %s: %w", dirDatos, err)
		}
		abrir := func(nombre string) (*gorm.DB, error) {
			ruta := filepath.Join(dirDatos, archivos[nombre])
			db, err := gorm.Open(sqlite.Open(ruta), &gorm.Config{TranslateError: true})
			if err != nil {
				return nil, fmt.Errorf("abrir %s: %w", ruta, err)
			}
			b.rutas = append(b.rutas, ruta)
			return db, nil
		}
		var err error
		if b.Avisos, err = abrir("avisos"); err != nil {
			return nil, err
		}
		if b.Unicas, err = abrir("ot_unicas"); err != nil {
			return nil, err
		}
		if b.Sufijos, err = abrir("ot_sufijos"); err != nil {
			return nil, err
		}
		if b.Equipos, err = abrir("equipos"); err != nil {
			return nil, err
		}
		if b.Colaboradores, err = abrir("colaboradores"); err != nil {
			return nil, err
		}
	}

	if err := b.migrar(); err != nil {
		return nil, err
	}
	return b, nil
}

func abrirPostgres(dsn string, log *zap.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	const maxIntentos = 10
	for i := 1; i <= maxIntentos; i++ {
		log.Info("conectando a la base de datos",
			zap.Int("intento", i), zap.Int("max", maxIntentos))
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			return db, nil
		}
		log.Warn("fallo de conexión", zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("conectar a postgres tras %d intentos: %w", maxIntentos, err)
}

func (b *Bases) migrar() error {
	pasos := []struct {
		db      *gorm.DB
		modelos []any
	}{
		{b.Avisos, []any{&models.Aviso{}}},
		{b.Unicas, []any{&models.OrdenTrabajo{}}},
		{b.Sufijos, []any{&models.OrdenSufijo{}}},
		{b.Equipos, []any{&models.Equipo{}}},
		{b.Colaboradores, []any{&models.Colaborador{}, &models.Auditoria{}}},
	}
	for _, paso := range pasos {
		if err := paso.db.AutoMigrate(paso.modelos...); err != nil {
			return fmt.Errorf("migrar: %w", err)
		}
	}
	return nil
}

// Rutas devuelve los archivos sqlite locales (vacío con postgres).
func (b *Bases) Rutas() []string { return b.rutas }

// CrearAdminPorDefecto siembra el administrador inicial solo si el almacén
// de colaboradores está vacío.
func (b *Bases) CrearAdminPorDefecto(contrasena string) {
	var total int64
	if err := b.Colaboradores.Model(&models.Colaborador{}).Count(&total).Error; err != nil {
		b.Log.Error("no se pudo verificar colaboradores", zap.Error(err))
		return
	}
	if total > 0 {
		return
	}

	if contrasena == "" {
		contrasena = "Cambiar123!"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(contrasena), bcrypt.DefaultCost)
	if err != nil {
		b.Log.Error("no se pudo hashear la contraseña del admin", zap.Error(err))
		return
	}

	admin := models.Colaborador{
		CodigoID:          CodigoAdmin,
		NombreColaborador: "Administrador",
		Personal:          "INTERNO",
		Cargo:             "GERENTE",
		ContrasenaHash:    string(hash),
	}
	if err := b.Colaboradores.Create(&admin).Error; err != nil {
		b.Log.Error("no se pudo crear el admin por defecto", zap.Error(err))
		return
	}
	b.Log.Info("administrador por defecto creado", zap.String("codigo_id", CodigoAdmin))
}

// RestaurarDesdeEspejo sobreescribe cada almacén con el contenido del
// espejo al arrancar. Un espejo vacío o caído conserva lo local.
func (b *Bases) RestaurarDesdeEspejo() {
	for tabla, db := range b.porTabla() {
		espejo.Restaurar(db, tabla, b.Espejo, b.Log)
	}
}

// Sincronizar publica las tablas indicadas en el espejo, de mejor esfuerzo.
func (b *Bases) Sincronizar(tablas ...string) {
	porTabla := b.porTabla()
	for _, tabla := range tablas {
		if db, ok := porTabla[tabla]; ok {
			espejo.Respaldar(db, tabla, b.Espejo, b.Log)
		}
	}
}

// PorTabla devuelve la conexión que guarda la tabla indicada.
func (b *Bases) PorTabla(tabla string) (*gorm.DB, bool) {
	db, ok := b.porTabla()[tabla]
	return db, ok
}

func (b *Bases) porTabla() map[string]*gorm.DB {
	return map[string]*gorm.DB{
		"avisos":        b.Avisos,
		"ot_unicas":     b.Unicas,
		"ot_sufijos":    b.Sufijos,
		"equipos":       b.Equipos,
		"colaboradores": b.Colaboradores,
	}
}
