package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cotizador/models"
)

func TestSparklinePoints(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   string
	}{
		{"empty", nil, ""},
		{"rising", []float64{1, 2, 3}, "4,24 60,14 116,4"},
		{"flat", []float64{5, 5}, "4,24 116,24"},
		{"single point", []float64{7}, "4,24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SparklinePoints(tt.series, SparklineWidth, SparklineHeight, SparklinePadding))
		})
	}
}

func TestCloseRate(t *testing.T) {
	rate, ok := CloseRate(models.VendedorSummary{QuotesCount: 8, ClosedCount: 3})
	require.True(t, ok)
	assert.Equal(t, "37.5", rate.String())

	rate, ok = CloseRate(models.VendedorSummary{QuotesCount: 3, ClosedCount: 1})
	require.True(t, ok)
	assert.Equal(t, "33.33", rate.String())

	_, ok = CloseRate(models.VendedorSummary{QuotesCount: 0, ClosedCount: 0})
	assert.False(t, ok)
	_, ok = CloseRate(models.VendedorSummary{QuotesCount: 4, ClosedCount: 0})
	assert.False(t, ok)
}

func TestRankingIsRelativeToLargest(t *testing.T) {
	got := Ranking([]TopEntry{{"A", 130000}, {"B", 94358}, {"C", 0}})
	require.Len(t, got, 3)
	assert.Equal(t, 100.0, got[0].Percent)
	assert.Equal(t, 72.58, got[1].Percent)
	assert.Equal(t, 0.0, got[2].Percent)
	assert.Equal(t, "$94,358.00", got[1].Amount)
}

func TestSalesChartSVG(t *testing.T) {
	svg, err := SalesChartSVG([]models.SalesByDay{{Date: "2025-03-01", Amount: 50}, {Date: "2025-03-02", Amount: 100}}, 640, 220)
	require.NoError(t, err)
	out := string(svg)
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, `width="640"`)
	assert.Contains(t, out, "</svg>")

	svg, err = SalesChartSVG([]models.SalesByDay{{Date: "2025-03-01", Amount: 0}}, 640, 220)
	require.NoError(t, err, "an all-zero period still renders")
	assert.Contains(t, string(svg), "<svg")

	svg, err = SalesChartSVG(nil, 640, 220)
	require.NoError(t, err)
	assert.Empty(t, svg)
}

func TestSampleMetricsIsDeterministic(t *testing.T) {
	a := SampleMetrics(testNow)
	b := SampleMetrics(testNow)
	assert.Equal(t, a, b)
	assert.Len(t, a.SalesByDay, 30)
	assert.Len(t, a.RecentQuotes, 12)
	assert.Equal(t, "DEMO-100", a.RecentQuotes[0].Folio)
	assert.Equal(t, testNow.Format("2006-01-02"), a.SalesByDay[29].Date)
}

func TestDashboardUsesDemoDataWithoutSession(t *testing.T) {
	f := newFixture(t, &fakeAPI{})
	dash := NewDashboardService(f.api, f.store, false)

	view, err := dash.Load(context.Background(), "anon", 0, "", false)
	require.NoError(t, err)
	assert.True(t, view.Demo)
	assert.False(t, view.ShowPanels)
	assert.Equal(t, DefaultPeriodDays, view.PeriodDays)
	assert.Equal(t, "all", view.Vendedor)
	assert.Equal(t, "Top clientes", view.RankingTitle)
	assert.Contains(t, string(view.SalesChart), "<svg")
	assert.False(t, view.NoSales)
	assert.Equal(t, "32%", view.WinRate)
	assert.Zero(t, f.api.count("metrics"))
}

func TestDashboardLoadsBackendMetrics(t *testing.T) {
	discount := 7.25
	api := &fakeAPI{
		vendedores: []models.Vendedor{{ID: 1, Username: "ana", NombreCompleto: "Ana Ruiz"}},
		metrics: &models.DashboardMetrics{
			TotalSalesFormatted: "$165,000",
			SalesByDay:          []models.SalesByDay{{Date: "2025-03-14", Amount: 0}},
			ByVendedor: []models.VendedorSummary{
				{Vendedor: "ana", QuotesCount: 8, ClosedCount: 3, TotalValue: 120000.5, ClosedTotal: 45000, AvgDiscountPercent: &discount, Series: []float64{1, 2, 3}},
				{Vendedor: "luis", QuotesCount: 2, TotalValue: 30000},
			},
		},
	}
	f := newFixture(t, api)
	f.loggedIn(t, "c1", "Admin")
	dash := NewDashboardService(api, f.store, false)
	ctx := context.Background()

	view, err := dash.Load(ctx, "c1", 7, "ana", false)
	require.NoError(t, err)
	assert.False(t, view.Demo)
	assert.True(t, view.ShowPanels)
	assert.True(t, view.NoSales)
	assert.Empty(t, view.SalesChart)
	assert.Equal(t, "$165,000", view.TotalVentas)
	assert.Equal(t, "-", view.AvgValor)
	assert.Equal(t, "-", view.WinRate)
	assert.Equal(t, "Ventas por vendedor", view.RankingTitle)
	assert.Equal(t, 100.0, view.Ranking[0].Percent)
	assert.Equal(t, 66.67, view.Ranking[1].Percent)
	require.Len(t, view.Vendedores, 2)
	assert.Equal(t, "37.5%", view.Vendedores[0].CloseRate)
	assert.Equal(t, "7.25%", view.Vendedores[0].AvgDiscount)
	assert.Equal(t, "-", view.Vendedores[0].AvgMargin)
	assert.Equal(t, "4,24 60,14 116,4", view.Vendedores[0].Sparkline)
	assert.Equal(t, "-", view.Vendedores[1].CloseRate)
	assert.Equal(t, "-", view.Vendedores[1].ClosedTotal)
	require.Len(t, view.Options, 1)

	_, err = dash.Load(ctx, "c1", 30, "all", false)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("vendedores"), "options load once per session")
	assert.Len(t, dash.LatestVendedores(ctx, "c1"), 2)

	view, err = dash.Load(ctx, "c1", 30, "all", true)
	require.NoError(t, err)
	assert.True(t, view.Demo)
	assert.Equal(t, 2, api.count("metrics"))
}

func TestDashboardMetricsError(t *testing.T) {
	api := &fakeAPI{metricsErr: errors.New("timeout")}
	f := newFixture(t, api)
	f.loggedIn(t, "c1", "Admin")

	_, err := NewDashboardService(api, f.store, false).Load(context.Background(), "c1", 30, "", false)
	require.Error(t, err)
	assert.Equal(t, "Error cargando métricas: timeout", err.Error())
}

func TestDashboardDemoMode(t *testing.T) {
	api := &fakeAPI{}
	f := newFixture(t, api)
	f.loggedIn(t, "c1", "Admin")

	view, err := NewDashboardService(api, f.store, true).Load(context.Background(), "c1", 30, "", false)
	require.NoError(t, err)
	assert.True(t, view.Demo)
	assert.Zero(t, api.count("metrics"))
}
