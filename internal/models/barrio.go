package models

// Comuna is a first-level administrative subdivision of the city.
type Comuna struct {
	ID      uint     `gorm:"column:id;primaryKey" json:"id"`
	Nombre  string   `gorm:"column:nombre;size:255;uniqueIndex;not null" json:"nombre"`
	Barrios []Barrio `gorm:"foreignKey:ComunaID;constraint:OnDelete:CASCADE" json:"barrios,omitempty"`
}

func (Comuna) TableName() string {
	return "comunas"
}

// Barrio is a neighbourhood inside a Comuna. Operators may add new ones.
type Barrio struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"id"`
	ComunaID uint   `gorm:"column:id_comuna;not null;uniqueIndex:idx_barrio_comuna_nombre" json:"id_comuna" validate:"required"`
	Nombre   string `gorm:"column:nombre;size:255;not null;uniqueIndex:idx_barrio_comuna_nombre" json:"nombre" validate:"required"`
}

func (Barrio) TableName() string {
	return "barrios"
}

// Nacionalidad is an entry of the flat nationality list.
type Nacionalidad struct {
	ID     uint   `gorm:"column:id;primaryKey" json:"id"`
	Nombre string `gorm:"column:nombre;size:128;uniqueIndex;not null" json:"nombre" validate:"required"`
}

func (Nacionalidad) TableName() string {
	return "nacionalidades"
}
