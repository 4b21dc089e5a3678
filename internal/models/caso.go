package models

import "time"

// Auditoria holds the creator/updater columns shared by case records.
type Auditoria struct {
	CreatedBy *uint     `json:"created_by,omitempty" gorm:"column:created_by"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedBy *uint     `json:"updated_by,omitempty" gorm:"column:updated_by"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// Caso is one recorded theft incident with its location, time and linked records.
type Caso struct {
	ID            uint      `json:"id" gorm:"primaryKey;column:id"`
	CodigoCaso    string    `json:"codigo_caso" gorm:"column:codigo_caso;size:64;uniqueIndex;not null"`
	Fecha         time.Time `json:"fecha" gorm:"column:fecha;index;not null"`
	Comuna        string    `json:"comuna" gorm:"column:comuna;size:255;index"`
	Barrio        string    `json:"barrio" gorm:"column:barrio;size:255;index"`
	Direccion     string    `json:"direccion" gorm:"column:direccion;size:512"`
	Latitud       *float64  `json:"latitud" gorm:"column:latitud"`
	Longitud      *float64  `json:"longitud" gorm:"column:longitud"`
	Observaciones string    `json:"observaciones,omitempty" gorm:"column:observaciones;type:text"`
	Auditoria

	Victimas                 []Victima                `json:"victimas,omitempty" gorm:"foreignKey:CasoID;constraint:OnDelete:CASCADE"`
	VehiculosImplicados      []VehiculoImplicado      `json:"vehiculos_implicados,omitempty" gorm:"foreignKey:CasoID;constraint:OnDelete:CASCADE"`
	CamarasSeguridad         []CamaraSeguridad        `json:"camaras_seguridad,omitempty" gorm:"foreignKey:CasoID;constraint:OnDelete:CASCADE"`
	PersonasIndividualizadas []PersonaIndividualizada `json:"personas_individualizadas,omitempty" gorm:"-"`
}

func (Caso) TableName() string {
	return "casos"
}

// Victima is a person affected within a Caso.
type Victima struct {
	ID                uint   `json:"id" gorm:"primaryKey;column:id"`
	CasoID            uint   `json:"id_caso" gorm:"column:id_caso;index;not null"`
	NombresApellidos  string `json:"nombres_apellidos" gorm:"column:nombres_apellidos;size:255" validate:"required"`
	TelefonoMovil     string `json:"telefono_movil" gorm:"column:telefono_movil;size:64"`
	Nacionalidad      string `json:"nacionalidad" gorm:"column:nacionalidad;size:128"`
	ElementosHurtados string `json:"elementos_hurtados" gorm:"column:elementos_hurtados;type:text"`
	VehiculoHurtado   bool   `json:"vehiculo_hurtado" gorm:"column:vehiculo_hurtado;not null;default:false"`
	Auditoria

	Vehiculos []VehiculoHurtado `json:"vehiculos,omitempty" gorm:"foreignKey:VictimaID;constraint:OnDelete:CASCADE" validate:"dive"`
}

func (Victima) TableName() string {
	return "victimas"
}

// VehiculoHurtado is a vehicle stolen from a Victima.
type VehiculoHurtado struct {
	ID            uint   `json:"id" gorm:"primaryKey;column:id"`
	VictimaID     uint   `json:"id_victima" gorm:"column:id_victima;index;not null"`
	ClaseVehiculo string `json:"clase_vehiculo" gorm:"column:clase_vehiculo;size:128"`
	Placa         string `json:"placa" gorm:"column:placa;size:32;index" validate:"required"`
	TipoServicio  string `json:"tipo_servicio" gorm:"column:tipo_servicio;size:64"`
	Marca         string `json:"marca" gorm:"column:marca;size:128"`
	Auditoria
}

func (VehiculoHurtado) TableName() string {
	return "vehiculos_hurtados"
}

// VehiculoImplicado is a vehicle connected to the incident, independent of
// any victim.
type VehiculoImplicado struct {
	ID                          uint           `json:"id" gorm:"primaryKey;column:id"`
	CasoID                      uint           `json:"id_caso" gorm:"column:id_caso;index;not null"`
	Placa                       string         `json:"placa" gorm:"column:placa;size:32;index" validate:"required"`
	ClaseServicio               string         `json:"clase_servicio" gorm:"column:clase_servicio;size:64"`
	ClaseVehiculo               string         `json:"clase_vehiculo" gorm:"column:clase_vehiculo;size:128"`
	OrganismoTransito           string         `json:"organismo_transito" gorm:"column:organismo_transito;size:255"`
	MarcaColor                  string         `json:"marca_color" gorm:"column:marca_color;size:255"`
	CapacidadPasajeros          EnteroFlexible `json:"capacidad_pasajeros" gorm:"column:capacidad_pasajeros"`
	Carroceria                  string         `json:"carroceria" gorm:"column:carroceria;size:128"`
	TipoNumeroIdentificacion    string         `json:"tipo_numero_identificacion" gorm:"column:tipo_numero_identificacion;size:128"`
	NombresApellidosPropietario string         `json:"nombres_apellidos_propietario" gorm:"column:nombres_apellidos_propietario;size:255"`
	DireccionPropietario        string         `json:"direccion_propietario" gorm:"column:direccion_propietario;size:512"`
	TelefonoPropietario         string         `json:"telefono_propietario" gorm:"column:telefono_propietario;size:64"`
	CelularPropietario          string         `json:"celular_propietario" gorm:"column:celular_propietario;size:64"`
	Auditoria
}

func (VehiculoImplicado) TableName() string {
	return "vehiculos_implicados"
}

// CamaraSeguridad is a piece of security-camera evidence attached to a Caso.
// Fotografia holds the image as base64 text.
type CamaraSeguridad struct {
	ID                    uint   `json:"id" gorm:"primaryKey;column:id"`
	CasoID                uint   `json:"id_caso" gorm:"column:id_caso;index;not null"`
	DireccionNumeroCamara string `json:"direccion_numero_camara" gorm:"column:direccion_numero_camara;size:512"`
	HoraVideoInicio       string `json:"hora_video_inicio" gorm:"column:hora_video_inicio;size:16"`
	HoraVideoFinal        string `json:"hora_video_final" gorm:"column:hora_video_final;size:16"`
	Fotografia            string `json:"fotografia,omitempty" gorm:"column:fotografia;type:text"`
	ObservacionGeneral    string `json:"observacion_general" gorm:"column:observacion_general;type:text"`
	ObservacionDetallada  string `json:"observacion_detallada" gorm:"column:observacion_detallada;type:text"`
	Auditoria
}

func (CamaraSeguridad) TableName() string {
	return "camaras_seguridad"
}
