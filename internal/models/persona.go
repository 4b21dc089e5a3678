package models

import "time"

// PersonaIndividualizada is a person of interest recorded independently of
// any case and linkable to many cases.
type PersonaIndividualizada struct {
	ID               uint   `json:"id" gorm:"primaryKey;column:id"`
	NombresApellidos string `json:"nombres_apellidos" gorm:"column:nombres_apellidos;size:255;index" validate:"required"`
	Cedula           string `json:"cedula" gorm:"column:cedula;size:64;uniqueIndex;not null" validate:"required"`
	TelefonoMovil    string `json:"telefono_movil" gorm:"column:telefono_movil;size:64"`
	Direccion        string `json:"direccion" gorm:"column:direccion;size:512"`
	Fotografia       string `json:"fotografia,omitempty" gorm:"column:fotografia;type:text"`
	Auditoria
}

func (PersonaIndividualizada) TableName() string {
	return "personas_individualizadas"
}

// CasoPersonaIndividualizada is the join row between a case and an
// identified individual.
type CasoPersonaIndividualizada struct {
	CasoID                   uint      `json:"id_caso" gorm:"column:id_caso;primaryKey;autoIncrement:false"`
	PersonaIndividualizadaID uint      `json:"id_persona_individualizada" gorm:"column:id_persona_individualizada;primaryKey;autoIncrement:false"`
	CreatedBy                *uint     `json:"created_by,omitempty" gorm:"column:created_by"`
	CreatedAt                time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`

	Caso                   *Caso                   `json:"-" gorm:"foreignKey:CasoID;constraint:OnDelete:CASCADE"`
	PersonaIndividualizada *PersonaIndividualizada `json:"-" gorm:"foreignKey:PersonaIndividualizadaID;constraint:OnDelete:CASCADE"`
}

func (CasoPersonaIndividualizada) TableName() string {
	return "casos_personas_individualizadas"
}

// AsociacionRequest is the body of POST /casos/:id/personas_individualizadas.
type AsociacionRequest struct {
	PersonaIndividualizadaID uint `json:"id_persona_individualizada" validate:"required"`
}
