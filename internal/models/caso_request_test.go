package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFecha(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-10T14:30", time.Date(2025, 3, 10, 14, 30, 0, 0, bogota)},
		{"2025-03-10T14:30:15", time.Date(2025, 3, 10, 14, 30, 15, 0, bogota)},
		{"2025-03-10 14:30:15", time.Date(2025, 3, 10, 14, 30, 15, 0, bogota)},
		{"2025-03-10", time.Date(2025, 3, 10, 0, 0, 0, 0, bogota)},
		{"2025-03-10T19:30:00Z", time.Date(2025, 3, 10, 19, 30, 0, 0, time.UTC)},
		{" 2025-03-10T14:30:00-05:00 ", time.Date(2025, 3, 10, 19, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFecha(tt.in, bogota)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}

	for _, bad := range []string{"", "ayer", "10/03/2025"} {
		_, err := ParseFecha(bad, bogota)
		assert.Error(t, err, bad)
	}
}

func TestParseDecimalOpcional(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
		err  bool
	}{
		{"", nil, false},
		{"null", nil, false},
		{`""`, nil, false},
		{`"  "`, nil, false},
		{"6.25", ptr(6.25), false},
		{`"-75.5"`, ptr(-75.5), false},
		{`"abc"`, nil, true},
		{"true", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDecimalOpcional(json.RawMessage(tt.raw))
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestEnteroFlexible(t *testing.T) {
	var v struct {
		A EnteroFlexible `json:"a"`
		B EnteroFlexible `json:"b"`
		C EnteroFlexible `json:"c"`
		D EnteroFlexible `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":4,"b":"12","c":"","d":null}`), &v))
	assert.EqualValues(t, 4, v.A)
	assert.EqualValues(t, 12, v.B)
	assert.Zero(t, v.C)
	assert.Zero(t, v.D)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"cinco"}`), &v))
}

func TestCasoRequest_ToCaso(t *testing.T) {
	body := `{
		"fecha": "2025-03-10T09:15",
		"comuna": " Comuna 14 - El Poblado ",
		"barrio": "Manila",
		"direccion": "Calle 10 # 43-20",
		"latitud": "6.2087",
		"longitud": "",
		"victimas": [{"nombres_apellidos": "Ana", "vehiculo_hurtado": true,
			"vehiculos": [{"placa": "ABC123"}]}],
		"vehiculos_implicados": [{"placa": "QWE456", "capacidad_pasajeros": "2"}]
	}`
	var req CasoRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	caso, err := req.ToCaso(time.FixedZone("COT", -5*3600))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 10, 14, 15, 0, 0, time.UTC), caso.Fecha)
	assert.Equal(t, time.UTC, caso.Fecha.Location())
	assert.Equal(t, "Comuna 14 - El Poblado", caso.Comuna)
	require.NotNil(t, caso.Latitud)
	assert.InDelta(t, 6.2087, *caso.Latitud, 1e-9)
	assert.Nil(t, caso.Longitud)
	require.Len(t, caso.Victimas, 1)
	assert.Len(t, caso.Victimas[0].Vehiculos, 1)
	require.Len(t, caso.VehiculosImplicados, 1)
	assert.EqualValues(t, 2, caso.VehiculosImplicados[0].CapacidadPasajeros)
}

func TestCasoRequest_ToCasoRejectsBadCoordinates(t *testing.T) {
	req := CasoRequest{Fecha: "2025-03-10", Latitud: json.RawMessage(`"norte"`)}
	_, err := req.ToCaso(time.UTC)
	assert.ErrorContains(t, err, "latitud")
}
