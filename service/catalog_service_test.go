package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cotizador/models"
)

var longDescripcion = strings.Repeat("á", 60) + " extra"

func catalogProducts() []models.Product {
	return []models.Product{
		{SKU: "A1", Descripcion: "Guante de nitrilo", MonedaBase: "USD", Activo: true},
		{SKU: "a2", Descripcion: longDescripcion, MonedaBase: "MXN"},
		{SKU: "B7", Descripcion: "Cubrebocas tricapa", MonedaBase: ""},
		{SKU: "C3", MonedaBase: " USD "},
	}
}

func loadedCatalog(t *testing.T, role string) (*fixture, *ClientState) {
	t.Helper()
	f := newFixture(t, &fakeAPI{productos: catalogProducts()})
	st := f.loggedIn(t, "c1", role)
	n, err := f.catalog.Load(context.Background(), st)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	return f, st
}

func TestSuggestMatchesSKUPrefixOrDescription(t *testing.T) {
	f, st := loadedCatalog(t, "Admin")

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []models.ProductSuggestion
	}{
		{"sku prefix is case-insensitive", " a2", 0, []models.ProductSuggestion{
			{SKU: "a2", Label: strings.Repeat("á", 60) + "..."},
		}},
		{"description contains the query", "c", 0, []models.ProductSuggestion{
			{SKU: "B7", Label: "Cubrebocas tricapa"},
			{SKU: "C3", Label: "C3"},
		}},
		{"description match", "tricapa", 0, []models.ProductSuggestion{
			{SKU: "B7", Label: "Cubrebocas tricapa"},
		}},
		{"empty prefix lists from the start", "", 2, []models.ProductSuggestion{
			{SKU: "A1", Label: "Guante de nitrilo"},
			{SKU: "a2", Label: strings.Repeat("á", 60) + "..."},
		}},
		{"blank description falls back to sku", "C3", 0, []models.ProductSuggestion{
			{SKU: "C3", Label: "C3"},
		}},
		{"no match", "zz", 0, []models.ProductSuggestion{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.catalog.Suggest(st, tt.prefix, tt.limit)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Suggest(%q) mismatch (-want +got):\n%s", tt.prefix, diff)
			}
		})
	}
}

func TestSuggestionLabelCutsAtSixtyRunes(t *testing.T) {
	exact := strings.Repeat("x", 60)
	assert.Equal(t, exact, suggestionLabel(models.Product{SKU: "X", Descripcion: exact}))
	assert.Equal(t, exact+"...", suggestionLabel(models.Product{SKU: "X", Descripcion: exact + "y"}))
}

func TestDetailsShowMoneda(t *testing.T) {
	f, st := loadedCatalog(t, "Admin")

	details := f.catalog.Details(st, []string{"a1", "A2", "B7", "C3", "A1", "missing"})
	require.Len(t, details, 4)
	assert.Equal(t, "A1", details[0].SKU)
	assert.False(t, details[0].ShowMoneda, "USD is hidden")
	assert.True(t, details[1].ShowMoneda)
	assert.True(t, details[2].ShowMoneda, "blank moneda is shown as a dash")
	assert.False(t, details[3].ShowMoneda, "USD with spaces is hidden")
}

func TestDetailsHideMonedaForVendedor(t *testing.T) {
	f, st := loadedCatalog(t, "Vendedor")

	for _, d := range f.catalog.Details(st, []string{"A2", "B7"}) {
		assert.False(t, d.ShowMoneda, d.SKU)
	}
}

func TestDescribe(t *testing.T) {
	f, st := loadedCatalog(t, "Admin")
	st.Lock()
	defer st.Unlock()

	desc, prov, origen := f.catalog.Describe(st, "a1")
	assert.Equal(t, "Guante de nitrilo", desc)
	assert.Equal(t, "-", prov)
	assert.Equal(t, "-", origen)

	desc, _, _ = f.catalog.Describe(st, "unknown")
	assert.Equal(t, "-", desc)
}
