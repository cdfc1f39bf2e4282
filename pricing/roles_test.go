package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cotizador/models"
)

func TestViewForSections(t *testing.T) {
	tests := []struct {
		role string
		want []string
	}{
		{RoleVendedor, []string{SectionSolicitar, SectionMisSolicitudes}},
		{RoleGerenciaComercial, []string{SectionSolicitar, SectionMisSolicitudes, SectionPendientes, SectionProcesadas}},
		{RoleSubdireccion, []string{SectionSolicitar, SectionMisSolicitudes, SectionPendientes, SectionProcesadas}},
		{RoleDireccion, []string{SectionPendientes, SectionProcesadas}},
		{RoleGerencia, []string{SectionPendientes, SectionProcesadas}},
		{RoleAdmin, []string{SectionPendientes, SectionProcesadas}},
		{"Becario", nil},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			v := ViewFor(tt.role)
			var got []string
			for _, s := range []string{SectionSolicitar, SectionMisSolicitudes, SectionPendientes, SectionProcesadas} {
				if v.Sections[s] {
					got = append(got, s)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestViewForVendedorHidesCosts(t *testing.T) {
	v := ViewFor("")
	assert.Equal(t, RoleVendedor, v.Role)
	assert.False(t, v.ShowCostColumns)
	assert.False(t, v.ShowDownload)
	assert.False(t, v.ShowMetricPanels)
	assert.False(t, v.CanApprove())
	assert.Equal(t, "Mi Lista de Precios", v.PricesTitle)

	admin := ViewFor(RoleAdmin)
	assert.True(t, admin.ShowCostColumns)
	assert.True(t, admin.CanApprove())
	assert.Equal(t, "Listas de Precios", admin.PricesTitle)
	assert.Equal(t, "No hay solicitudes procesadas en el sistema", admin.ProcesadasEmpty)
	assert.Equal(t, "No has procesado solicitudes", ViewFor(RoleGerencia).ProcesadasEmpty)
}

func TestMinimumAndMaximumPrice(t *testing.T) {
	row := models.PriceRow{
		PrecioMaximo:          models.FloatPtr(1200),
		PrecioVendedorMin:     models.FloatPtr(1000),
		PrecioGerenteComMin:   models.FloatPtr(950),
		PrecioSubdireccionMin: models.FloatPtr(900),
		PrecioDireccionMin:    models.FloatPtr(850),
	}

	assert.Equal(t, 1200.0, *MaximumPrice(row))
	assert.Equal(t, 1000.0, *MinimumPrice(RoleVendedor, row))
	assert.Equal(t, 950.0, *MinimumPrice(RoleGerenciaComercial, row))
	assert.Equal(t, 900.0, *MinimumPrice(RoleSubdireccion, row))
	assert.Equal(t, 850.0, *MinimumPrice(RoleDireccion, row))
	assert.Equal(t, 850.0, *MinimumPrice(RoleAdmin, row))

	row.PrecioMaximoLista = models.FloatPtr(1300)
	row.PrecioMinimoLista = models.FloatPtr(1100)
	assert.Equal(t, 1300.0, *MaximumPrice(row))
	assert.Equal(t, 1100.0, *MinimumPrice(RoleDireccion, row))
}
