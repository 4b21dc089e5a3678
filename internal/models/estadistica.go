package models

// FiltrosBusqueda are the optional, combinable case search criteria.
type FiltrosBusqueda struct {
	PlacaHurtado   string `query:"placa_hurtado" json:"placa_hurtado"`
	PlacaImplicado string `query:"placa_implicado" json:"placa_implicado"`
	NombreVictima  string `query:"nombre_victima" json:"nombre_victima"`
	CedulaPersona  string `query:"cedula_persona" json:"cedula_persona"`
	NombrePersona  string `query:"nombre_persona" json:"nombre_persona"`
}

// CasoResultado is one search hit: the case row plus the value of the
// first active criterion that matched.
type CasoResultado struct {
	Caso
	CriterioBusqueda string `json:"criterio_busqueda,omitempty" gorm:"column:criterio_busqueda"`
}

type ConteoHurtos struct {
	HurtosDia          int64 `json:"hurtos_dia"`
	HurtosMesAcumulado int64 `json:"hurtos_mes_acumulado"`
	HurtosAnoAcumulado int64 `json:"hurtos_ano_acumulado"`
}

type ConteoComuna struct {
	Comuna string `json:"comuna" gorm:"column:comuna"`
	Count  int64  `json:"count" gorm:"column:count"`
}

type ConteoBarrio struct {
	Barrio string `json:"barrio" gorm:"column:barrio"`
	Count  int64  `json:"count" gorm:"column:count"`
}

type ConteoMarca struct {
	Marca string `json:"marca" gorm:"column:marca"`
	Count int64  `json:"count" gorm:"column:count"`
}

type TopUbicaciones struct {
	TopComunasDia []ConteoComuna `json:"top_comunas_dia"`
	TopComunasMes []ConteoComuna `json:"top_comunas_mes"`
	TopComunasAno []ConteoComuna `json:"top_comunas_ano"`
	TopBarriosDia []ConteoBarrio `json:"top_barrios_dia"`
	TopBarriosMes []ConteoBarrio `json:"top_barrios_mes"`
	TopBarriosAno []ConteoBarrio `json:"top_barrios_ano"`
}
