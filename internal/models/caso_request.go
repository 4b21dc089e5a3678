package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// layoutsFecha are the accepted formats for "fecha". Values without a zone
// are interpreted in the server location.
var layoutsFecha = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CasoRequest is the JSON body sent by the front-end to create or replace a case.
type CasoRequest struct {
	Fecha               string              `json:"fecha" validate:"required"`
	Comuna              string              `json:"comuna" validate:"required"`
	Barrio              string              `json:"barrio" validate:"required"`
	Direccion           string              `json:"direccion" validate:"required"`
	Latitud             json.RawMessage     `json:"latitud"`
	Longitud            json.RawMessage     `json:"longitud"`
	Observaciones       string              `json:"observaciones"`
	Victimas            []Victima           `json:"victimas" validate:"dive"`
	VehiculosImplicados []VehiculoImplicado `json:"vehiculos_implicados" validate:"dive"`
	CamarasSeguridad    []CamaraSeguridad   `json:"camaras_seguridad" validate:"dive"`
}

// ToCaso converts the request into a Caso. The date is stored in UTC.
func (r *CasoRequest) ToCaso(loc *time.Location) (*Caso, error) {
	fecha, err := ParseFecha(r.Fecha, loc)
	if err != nil {
		return nil, err
	}
	lat, err := ParseDecimalOpcional(r.Latitud)
	if err != nil {
		return nil, fmt.Errorf("latitud: %w", err)
	}
	lng, err := ParseDecimalOpcional(r.Longitud)
	if err != nil {
		return nil, fmt.Errorf("longitud: %w", err)
	}

	return &Caso{
		Fecha:               fecha.UTC(),
		Comuna:              strings.TrimSpace(r.Comuna),
		Barrio:              strings.TrimSpace(r.Barrio),
		Direccion:           strings.TrimSpace(r.Direccion),
		Latitud:             lat,
		Longitud:            lng,
		Observaciones:       r.Observaciones,
		Victimas:            r.Victimas,
		VehiculosImplicados: r.VehiculosImplicados,
		CamarasSeguridad:    r.CamarasSeguridad,
	}, nil
}

// ParseFecha accepts RFC 3339 timestamps and the zone-less layouts produced
// by HTML date inputs, which are read in loc.
func ParseFecha(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("fecha vacía")
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.Truncate(time.Second), nil
	}
	for _, layout := range layoutsFecha {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("formato de fecha inválido %q", v)
}
