package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cotizador/models"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestLandedCSVRoleAndEmptyChecks(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	exports := NewExportService(f.store, NewDashboardService(f.api, f.store, false))

	_, err := f.quotes.LoadLanded(ctx, "c1", landedRequest())
	require.NoError(t, err)
	_, err = exports.LandedCSV(ctx, "c1")
	assert.ErrorIs(t, err, ErrExportForbidden)

	f.loggedIn(t, "c2", "Admin")
	_, err = exports.LandedCSV(ctx, "c2")
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestLandedCSV(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	f.loggedIn(t, "c2", "Admin")
	f.api.listas["A1"][0].PrecioDireccionMin = models.FloatPtr(780)
	exports := NewExportService(f.store, NewDashboardService(f.api, f.store, false))

	_, err := f.quotes.LoadLanded(ctx, "c2", landedRequest())
	require.NoError(t, err)
	_, err = f.quotes.UpdateMonto(ctx, "c2", "A1", "850,5")
	require.NoError(t, err)

	file, err := exports.LandedCSV(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "listas_precios_2025-03-14.csv", file.Filename)

	records := readCSV(t, file.Data)
	require.Len(t, records, 4, "header plus every landed row, duplicates included")
	assert.Equal(t, landedHeaders, records[0])
	assert.Equal(t, []string{"A1", "Maritimo", "General", "2"}, records[1][:4])
	assert.Equal(t, "1000", records[1][12])
	assert.Equal(t, "780", records[1][13])
	assert.Equal(t, "850.5", records[1][14])
	assert.Equal(t, "", records[3][14])
}

func TestVendedoresCSV(t *testing.T) {
	discount := 7.25
	api := &fakeAPI{metrics: &models.DashboardMetrics{
		ByVendedor: []models.VendedorSummary{
			{Vendedor: "ana", QuotesCount: 8, ClosedCount: 3, TotalValue: 120000.5, ClosedTotal: 45000, AvgDiscountPercent: &discount, Series: []float64{1, 2.5}},
			{Vendedor: "luis, jr", QuotesCount: 0},
		},
	}}
	f := newFixture(t, api)
	f.loggedIn(t, "c1", "Admin")
	dash := NewDashboardService(api, f.store, false)
	exports := NewExportService(f.store, dash)
	ctx := context.Background()

	_, err := exports.VendedoresCSV(ctx, "c1")
	assert.ErrorIs(t, err, ErrNothingToExport)

	_, err = dash.Load(ctx, "c1", 30, "all", false)
	require.NoError(t, err)
	file, err := exports.VendedoresCSV(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "resumen_vendedores_2025-03-14.csv", file.Filename)

	records := readCSV(t, file.Data)
	require.Len(t, records, 3)
	assert.Equal(t, vendedorHeaders, records[0])
	assert.Equal(t, []string{"ana", "8", "3", "120000.5", "45000", "37.50", "7.25", "", "1;2.5"}, records[1])
	assert.Equal(t, "luis, jr", records[2][0])
	assert.Equal(t, "", records[2][5])
}
