// Package ordenes implementa el ciclo de vida aviso → orden de trabajo →
// sesiones de mantenimiento → culminación, junto con la sincronización en
// cascada de las tres tablas involucradas.
//
// Las escrituras multi-tabla se confirman en secuencia fija y sin
// transacción cruzada: un fallo intermedio deja un estado parcial
// documentado que se repara reintentando el paso de cierre o por edición
// administrativa.
package ordenes

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"mantto/internal/codigos"
	"mantto/internal/database"
	"mantto/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var reDuracion = regexp.MustCompile(`^[0-9]{2}:[0-9]{2}:[0-9]{2}$`)

// ValidarDuracion verifica el formato hh:mm:ss de una duración estimada.
func ValidarDuracion(duracion string) bool {
	return reDuracion.MatchString(duracion)
}

// Actor identifica al colaborador que ejecuta una operación. Viaja como
// argumento explícito: el núcleo no lee estado de sesión ambiente.
type Actor struct {
	Codigo string
	Nombre string
	Cargo  string
}

type Servicio struct {
	Bases *database.Bases
	Log   *zap.Logger

	// Ahora permite fijar el reloj en pruebas; nil usa time.Now.
	Ahora func() time.Time
}

func Nuevo(b *database.Bases, log *zap.Logger) *Servicio {
	return &Servicio{Bases: b, Log: log}
}

func (s *Servicio) ahora() time.Time {
	if s.Ahora != nil {
		return s.Ahora()
	}
	return time.Now()
}

// ---------------------------------------------------------------- avisos

type DatosAviso struct {
	Area                string
	Equipo              string
	CodigoEquipo        string
	DescripcionProblema string
	TipoMantenimiento   string
	TipoPreventivo      string
	HayRiesgo           string
	IngresadoPor        string
	IngresadoEl         string // YYYY-MM-DD; vacío usa la fecha actual
	ImagenNombre        string
	ImagenDatos         []byte
}

// CrearAviso registra un nuevo aviso en estado INGRESADO con códigos padre
// y de mantenimiento recién generados.
func (s *Servicio) CrearAviso(actor Actor, d DatosAviso) (*models.Aviso, error) {
	if d.Area == "" || d.Equipo == "" || d.DescripcionProblema == "" {
		return nil, errValidacion("área, equipo y descripción del problema son obligatorios")
	}
	if d.IngresadoPor == "" {
		d.IngresadoPor = actor.Nombre
	}
	if d.IngresadoEl == "" {
		d.IngresadoEl = s.ahora().Format("2006-01-02")
	}

	codigoPadre, err := codigos.SiguientePadre(s.Bases.Avisos)
	if err != nil {
		return nil, errAlmacen(err, "generar código padre")
	}
	codigoMantto, err := codigos.SiguienteMantto(s.Bases.Avisos)
	if err != nil {
		return nil, errAlmacen(err, "generar código de aviso")
	}

	aviso := models.Aviso{
		CodigoPadre:         codigoPadre,
		CodigoMantto:        codigoMantto,
		Estado:              models.EstadoIngresado,
		Antiguedad:          models.CalcularAntiguedad(d.IngresadoEl, s.ahora()),
		Area:                d.Area,
		Equipo:              d.Equipo,
		CodigoEquipo:        d.CodigoEquipo,
		DescripcionProblema: d.DescripcionProblema,
		TipoMantenimiento:   d.TipoMantenimiento,
		TipoPreventivo:      d.TipoPreventivo,
		HayRiesgo:           d.HayRiesgo,
		IngresadoPor:        d.IngresadoPor,
		IngresadoEl:         d.IngresadoEl,
		ImagenNombre:        d.ImagenNombre,
		ImagenDatos:         d.ImagenDatos,
	}
	if err := s.Bases.Avisos.Create(&aviso).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicado(codigoMantto, err)
		}
		return nil, errAlmacen(err, "insertar aviso")
	}

	s.Bases.RegistrarAuditoria(actor.Codigo, "aviso", codigoMantto, "crear", d.Equipo+" / "+d.Area)
	s.Bases.Sincronizar("avisos")
	return &aviso, nil
}

// ------------------------------------------------------------ promoción

// Planificacion reúne los campos obligatorios para programar una OT.
type Planificacion struct {
	Prioridad            string
	Responsable          string
	Clasificacion        string
	Sistema              string
	AlimentadorProveedor string
	FechaEstimadaInicio  string // YYYY-MM-DD
	DuracionEstimada     string // hh:mm:ss
	Componentes          string
	DescripcionTrabajo   string
	Materiales           string

	CantidadMecanicos   int
	CantidadElectricos  int
	CantidadSoldadores  int
	CantidadOpVahos     int
	CantidadCalderistas int
}

func (p Planificacion) validar() error {
	obligatorios := []struct {
		campo string
		valor string
	}{
		{"prioridad", p.Prioridad},
		{"responsable", p.Responsable},
		{"clasificación", p.Clasificacion},
		{"sistema", p.Sistema},
		{"alimentador/proveedor", p.AlimentadorProveedor},
		{"fecha estimada de inicio", p.FechaEstimadaInicio},
		{"duración estimada", p.DuracionEstimada},
		{"componentes", p.Componentes},
		{"descripción de trabajo", p.DescripcionTrabajo},
	}
	for _, o := range obligatorios {
		if o.valor == "" {
			return errValidacion("falta el campo obligatorio %s", o.campo)
		}
	}
	if !ValidarDuracion(p.DuracionEstimada) {
		return errValidacion("formato de duración inválido %q, use hh:mm:ss", p.DuracionEstimada)
	}
	return nil
}

// Promover transforma un aviso INGRESADO en una OT PROGRAMADO nueva. El
// aviso y la OT se confirman por separado; la actualización del aviso está
// resguardada por su estado, por lo que promover dos veces el mismo aviso
// falla la segunda vez.
func (s *Servicio) Promover(actor Actor, codigoMantto string, p Planificacion) (*models.OrdenTrabajo, error) {
	if err := p.validar(); err != nil {
		return nil, err
	}

	var aviso models.Aviso
	err := s.Bases.Avisos.Where("codigo_mantto = ?", codigoMantto).First(&aviso).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNoEncontrado("no existe el aviso %s", codigoMantto)
	}
	if err != nil {
		return nil, errAlmacen(err, "leer aviso %s", codigoMantto)
	}
	if aviso.Estado != models.EstadoIngresado {
		return nil, errConflicto("el aviso %s está en estado %s, no INGRESADO", codigoMantto, aviso.Estado)
	}

	codigoOTBase, err := codigos.SiguienteOTBase(s.Bases.Unicas)
	if err != nil {
		return nil, errAlmacen(err, "generar código OT")
	}

	// Primer commit: el aviso pasa a PROGRAMADO con la referencia a la OT.
	// El WHERE sobre el estado descarta avisos ya reclamados por otra sesión.
	res := s.Bases.Avisos.Model(&models.Aviso{}).
		Where("codigo_mantto = ? AND estado = ?", codigoMantto, models.EstadoIngresado).
		Updates(map[string]any{
			"estado":                models.EstadoProgramado,
			"codigo_ot_base":        codigoOTBase,
			"prioridad":             p.Prioridad,
			"componentes":           p.Componentes,
			"descripcion_trabajo":   p.DescripcionTrabajo,
			"responsable":           p.Responsable,
			"clasificacion":         p.Clasificacion,
			"sistema":               p.Sistema,
			"materiales":            p.Materiales,
			"alimentador_proveedor": p.AlimentadorProveedor,
			"fecha_estimada_inicio": p.FechaEstimadaInicio,
			"duracion_estimada":     p.DuracionEstimada,
		})
	if res.Error != nil {
		return nil, errAlmacen(res.Error, "actualizar aviso %s", codigoMantto)
	}
	if res.RowsAffected == 0 {
		return nil, errConflicto("el aviso %s ya fue promovido", codigoMantto)
	}

	orden := models.OrdenTrabajo{
		CodigoPadre:          aviso.CodigoPadre,
		CodigoMantto:         aviso.CodigoMantto,
		CodigoOTBase:         codigoOTBase,
		Estado:               models.EstadoProgramado,
		Antiguedad:           0,
		Prioridad:            p.Prioridad,
		Area:                 aviso.Area,
		Equipo:               aviso.Equipo,
		CodigoEquipo:         aviso.CodigoEquipo,
		Componentes:          p.Componentes,
		DescripcionProblema:  aviso.DescripcionProblema,
		TipoMantenimiento:    aviso.TipoMantenimiento,
		CantidadMecanicos:    p.CantidadMecanicos,
		CantidadElectricos:   p.CantidadElectricos,
		CantidadSoldadores:   p.CantidadSoldadores,
		CantidadOpVahos:      p.CantidadOpVahos,
		CantidadCalderistas:  p.CantidadCalderistas,
		DescripcionTrabajo:   p.DescripcionTrabajo,
		Responsable:          p.Responsable,
		Clasificacion:        p.Clasificacion,
		Sistema:              p.Sistema,
		Materiales:           p.Materiales,
		AlimentadorProveedor: p.AlimentadorProveedor,
		FechaEstimadaInicio:  p.FechaEstimadaInicio,
		DuracionEstimada:     p.DuracionEstimada,
	}
	// Segundo commit, independiente del primero. Si falla acá queda un
	// aviso PROGRAMADO sin OT: estado parcial aceptado, se repara a mano.
	if err := s.Bases.Unicas.Create(&orden).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicado(codigoOTBase, err)
		}
		return nil, errAlmacen(err, "insertar OT %s", codigoOTBase)
	}

	s.Bases.RegistrarAuditoria(actor.Codigo, "ot", codigoOTBase, "promover", "desde aviso "+codigoMantto)
	s.Bases.Sincronizar("avisos", "ot_unicas")
	return &orden, nil
}

// DatosDirecta crea una OT sin aviso de origen.
type DatosDirecta struct {
	Planificacion

	Area                string
	Equipo              string
	CodigoEquipo        string
	DescripcionProblema string // opcional en OT directas
	TipoMantenimiento   string
}

// CrearDirecta registra una OT PROGRAMADO sin pasar por un aviso,
// generando código padre propio de la familia CODP-OT.
func (s *Servicio) CrearDirecta(actor Actor, d DatosDirecta) (*models.OrdenTrabajo, error) {
	if d.Area == "" || d.Equipo == "" {
		return nil, errValidacion("área y equipo son obligatorios")
	}
	if err := d.Planificacion.validar(); err != nil {
		return nil, err
	}

	codigoPadre, err := codigos.SiguientePadreDirecta(s.Bases.Unicas)
	if err != nil {
		return nil, errAlmacen(err, "generar código padre directo")
	}
	codigoOTBase, err := codigos.SiguienteOTBase(s.Bases.Unicas)
	if err != nil {
		return nil, errAlmacen(err, "generar código OT")
	}

	orden := models.OrdenTrabajo{
		CodigoPadre:          codigoPadre,
		CodigoOTBase:         codigoOTBase,
		Estado:               models.EstadoProgramado,
		Prioridad:            d.Prioridad,
		Area:                 d.Area,
		Equipo:               d.Equipo,
		CodigoEquipo:         d.CodigoEquipo,
		Componentes:          d.Componentes,
		DescripcionProblema:  d.DescripcionProblema,
		TipoMantenimiento:    d.TipoMantenimiento,
		CantidadMecanicos:    d.CantidadMecanicos,
		CantidadElectricos:   d.CantidadElectricos,
		CantidadSoldadores:   d.CantidadSoldadores,
		CantidadOpVahos:      d.CantidadOpVahos,
		CantidadCalderistas:  d.CantidadCalderistas,
		DescripcionTrabajo:   d.DescripcionTrabajo,
		Responsable:          d.Responsable,
		Clasificacion:        d.Clasificacion,
		Sistema:              d.Sistema,
		Materiales:           d.Materiales,
		AlimentadorProveedor: d.AlimentadorProveedor,
		FechaEstimadaInicio:  d.FechaEstimadaInicio,
		DuracionEstimada:     d.DuracionEstimada,
	}
	if err := s.Bases.Unicas.Create(&orden).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicado(codigoOTBase, err)
		}
		return nil, errAlmacen(err, "insertar OT %s", codigoOTBase)
	}

	s.Bases.RegistrarAuditoria(actor.Codigo, "ot", codigoOTBase, "crear_directa", d.Equipo+" / "+d.Area)
	s.Bases.Sincronizar("ot_unicas")
	return &orden, nil
}

// AsociarAvisos adjunta en lote avisos INGRESADO compatibles (misma área y
// equipo) a una OT ya PROGRAMADO. Devuelve cuántos quedaron asociados; un
// aviso ya reclamado por otra sesión se omite sin error.
func (s *Servicio) AsociarAvisos(actor Actor, codigoOTBase string, codigosMantto []string) (int, error) {
	if len(codigosMantto) == 0 {
		return 0, errValidacion("seleccione al menos un aviso para asociar")
	}

	var orden models.OrdenTrabajo
	err := s.Bases.Unicas.Where("codigo_ot_base = ?", codigoOTBase).First(&orden).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, errNoEncontrado("no existe la OT %s", codigoOTBase)
	}
	if err != nil {
		return 0, errAlmacen(err, "leer OT %s", codigoOTBase)
	}
	if orden.Estado != models.EstadoProgramado {
		return 0, errConflicto("la OT %s está en estado %s, no PROGRAMADO", codigoOTBase, orden.Estado)
	}

	asociados := 0
	for _, codigoMantto := range codigosMantto {
		res := s.Bases.Avisos.Model(&models.Aviso{}).
			Where("codigo_mantto = ? AND estado = ? AND area = ? AND equipo = ?",
				codigoMantto, models.EstadoIngresado, orden.Area, orden.Equipo).
			Updates(map[string]any{
				"estado":         models.EstadoProgramado,
				"codigo_ot_base": codigoOTBase,
			})
		if res.Error != nil {
			return asociados, errAlmacen(res.Error, "asociar aviso %s", codigoMantto)
		}
		if res.RowsAffected > 0 {
			asociados++
		}
	}

	s.Bases.RegistrarAuditoria(actor.Codigo, "ot", codigoOTBase, "asociar_avisos",
		fmt.Sprintf("%d avisos asociados", asociados))
	s.Bases.Sincronizar("avisos")
	return asociados, nil
}
