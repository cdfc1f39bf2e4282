package service

import (
	"context"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/pricing"
	"cotizador/utils"
)

// Sparkline geometry, in pixels
const (
	SparklineWidth   = 120
	SparklineHeight  = 28
	SparklinePadding = 4
)

// Sales chart geometry, in pixels
const (
	salesChartWidth  = 640
	salesChartHeight = 220
	salesChartPad    = 24
)

// DefaultPeriodDays is the dashboard period when none is selected
const DefaultPeriodDays = 30

// Share is one entry of a top-N ranking, Percent is relative to the largest
type Share struct {
	Name    string
	Amount  string
	Percent float64
}

// VendedorRow is one formatted row of the vendedor summary
type VendedorRow struct {
	Vendedor    string
	QuotesCount int
	ClosedCount int
	TotalValue  string
	ClosedTotal string
	CloseRate   string
	AvgDiscount string
	AvgMargin   string
	Sparkline   string
}

// DashboardView is the rendered dashboard
type DashboardView struct {
	ShowPanels   bool
	Demo         bool
	PeriodDays   int
	Vendedor     string
	Options      []models.Vendedor
	TotalVentas  string
	AvgValor     string
	WinRate      string
	AvgMargin    string
	SalesChart   template.HTML
	NoSales      bool
	Ranking      []Share
	RankingTitle string
	RecentQuotes []models.RecentQuote
	Vendedores   []VendedorRow
}

// DashboardService fetches and shapes the sales metrics
type DashboardService struct {
	api   PricingAPIInterface
	store *StateStore
	demo  bool
}

// NewDashboardService creates a new DashboardService. With demo set, metrics never hit the backend.
func NewDashboardService(api PricingAPIInterface, store *StateStore, demo bool) *DashboardService {
	return &DashboardService{api: api, store: store, demo: demo}
}

// Load fetches the metrics for periodDays and vendedor ("all" or empty for everyone).
// useDemo forces the sample data.
func (s *DashboardService) Load(ctx context.Context, clientID string, periodDays int, vendedor string, useDemo bool) (*DashboardView, error) {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	if vendedor == "" {
		vendedor = "all"
	}

	st := s.store.Get(ctx, clientID)
	st.Lock()
	cred := st.Credentials()
	role := st.UserRole
	loggedIn := st.LoggedIn()
	initialized := st.DashboardInitialized
	st.Unlock()

	view := &DashboardView{
		ShowPanels: pricing.ViewFor(role).ShowMetricPanels,
		PeriodDays: periodDays,
		Vendedor:   vendedor,
	}

	if loggedIn && !initialized {
		// Populating the selector is best effort
		opts, err := s.api.Vendedores(ctx, cred, "", 200)
		if err != nil {
			zap.S().Warnf("⚠️  Dashboard: vendedores not loaded: %v", err)
		}
		st.Lock()
		st.Vendedores = opts
		st.DashboardInitialized = true
		st.Unlock()
	}
	st.Lock()
	view.Options = st.Vendedores
	st.Unlock()

	var metrics *models.DashboardMetrics
	if useDemo || s.demo || !loggedIn {
		metrics = SampleMetrics(s.store.Now())
		view.Demo = true
	} else {
		m, err := s.api.DashboardMetrics(ctx, cred, periodDays, vendedor)
		if err != nil {
			return nil, fmt.Errorf("Error cargando métricas: %w", err)
		}
		metrics = m
	}

	st.Lock()
	st.latestVendedores = metrics.ByVendedor
	st.Unlock()

	fillDashboard(view, metrics)
	return view, nil
}

// LatestVendedores returns the vendedor summary of the last dashboard load
func (s *DashboardService) LatestVendedores(ctx context.Context, clientID string) []models.VendedorSummary {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()
	return append([]models.VendedorSummary(nil), st.latestVendedores...)
}

func fillDashboard(view *DashboardView, m *models.DashboardMetrics) {
	view.TotalVentas = dashIfBlank(m.TotalSalesFormatted)
	view.AvgValor = dashIfBlank(m.AvgValueFormatted)
	view.WinRate = percentOrDash(m.WinRatePercent)
	view.AvgMargin = percentOrDash(m.AvgMarginPercent)
	view.RecentQuotes = m.RecentQuotes

	view.NoSales = true
	for _, d := range m.SalesByDay {
		if d.Amount != 0 {
			view.NoSales = false
			break
		}
	}
	if !view.NoSales {
		svg, err := SalesChartSVG(m.SalesByDay, salesChartWidth, salesChartHeight)
		if err != nil {
			zap.S().Warnf("⚠️  Dashboard: %v", err)
		}
		view.SalesChart = svg
	}

	if len(m.ByVendedor) > 0 {
		view.RankingTitle = "Ventas por vendedor"
		entries := make([]TopEntry, 0, len(m.ByVendedor))
		for _, v := range m.ByVendedor {
			amount := v.TotalValue
			if v.ClosedTotal > 0 {
				amount = v.ClosedTotal
			}
			entries = append(entries, TopEntry{Name: v.Vendedor, Amount: amount})
		}
		view.Ranking = Ranking(entries)
	} else {
		view.RankingTitle = "Top clientes"
		entries := make([]TopEntry, 0, len(m.TopClients))
		for _, c := range m.TopClients {
			entries = append(entries, TopEntry{Name: c.Name, Amount: c.Amount})
		}
		view.Ranking = Ranking(entries)
	}

	for _, v := range m.ByVendedor {
		view.Vendedores = append(view.Vendedores, VendedorRow{
			Vendedor:    v.Vendedor,
			QuotesCount: v.QuotesCount,
			ClosedCount: v.ClosedCount,
			TotalValue:  currencyOrDash(v.TotalValue),
			ClosedTotal: currencyOrDash(v.ClosedTotal),
			CloseRate:   closeRateLabel(v),
			AvgDiscount: optionalPercent(v.AvgDiscountPercent),
			AvgMargin:   optionalPercent(v.AvgMarginPercent),
			Sparkline:   SparklinePoints(v.Series, SparklineWidth, SparklineHeight, SparklinePadding),
		})
	}
}

// percentOrDash shows a percentage, "-" when missing or zero
func percentOrDash(v *float64) string {
	if v == nil || *v == 0 {
		return "-"
	}
	return formatNumber(*v) + "%"
}

// optionalPercent shows a percentage, "-" only when missing
func optionalPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatNumber(*v) + "%"
}

func currencyOrDash(v float64) string {
	if v == 0 {
		return "-"
	}
	return utils.FormatMXNCents(v)
}

// CloseRate is closed/quotes as a percentage rounded to two decimals; ok is false when either count is zero
func CloseRate(v models.VendedorSummary) (decimal.Decimal, bool) {
	if v.QuotesCount == 0 || v.ClosedCount == 0 {
		return decimal.Zero, false
	}
	rate := decimal.NewFromInt(int64(v.ClosedCount)).
		Div(decimal.NewFromInt(int64(v.QuotesCount))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return rate, true
}

func closeRateLabel(v models.VendedorSummary) string {
	rate, ok := CloseRate(v)
	if !ok {
		return "-"
	}
	return rate.String() + "%"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SparklinePoints returns the SVG polyline points of series inside a w x h box with pad.
// A flat series is drawn along the bottom. An empty series returns "".
func SparklinePoints(series []float64, w, h, pad float64) string {
	if len(series) == 0 {
		return ""
	}
	lo, hi := series[0], series[0]
	for _, v := range series {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	steps := float64(len(series) - 1)
	if steps == 0 {
		steps = 1
	}

	points := make([]string, 0, len(series))
	for i, v := range series {
		x := pad + (float64(i)/steps)*(w-pad*2)
		y := pad + (1-(v-lo)/rng)*(h-pad*2)
		points = append(points, formatNumber(round2(x))+","+formatNumber(round2(y)))
	}
	return strings.Join(points, " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TopEntry is a named amount to rank
type TopEntry struct {
	Name   string
	Amount float64
}

// Ranking converts entries to shares of the largest amount, keeping their order
func Ranking(entries []TopEntry) []Share {
	hi := 0.0
	for _, e := range entries {
		hi = math.Max(hi, e.Amount)
	}
	out := make([]Share, 0, len(entries))
	for _, e := range entries {
		pct := 0.0
		if hi > 0 {
			pct = round2(math.Max(0, e.Amount) / hi * 100)
		}
		out = append(out, Share{Name: e.Name, Amount: utils.FormatMXNCents(e.Amount), Percent: pct})
	}
	return out
}

// SampleMetrics builds deterministic demo metrics for the 30 days up to now
func SampleMetrics(now time.Time) *models.DashboardMetrics {
	days := make([]models.SalesByDay, 0, 30)
	total := 0.0
	for i := 29; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		amount := float64(20000 + (d.YearDay()*7919)%80000)
		total += amount
		days = append(days, models.SalesByDay{Date: d.Format("2006-01-02"), Amount: amount})
	}

	topClients := []models.TopClient{
		{Name: "IMSS CENTRO", Amount: 130000},
		{Name: "PROVECTUS MEDICAL", Amount: 94358},
		{Name: "Cliente Demo A", Amount: 60000},
		{Name: "Cliente Demo B", Amount: 35000},
	}

	recent := make([]models.RecentQuote, 0, 12)
	for i := 0; i < 12; i++ {
		id := int64(100 + i)
		valor := float64(10000 + (i*4567)%40000)
		recent = append(recent, models.RecentQuote{
			ID:             id,
			Folio:          fmt.Sprintf("DEMO-%03d", id),
			Fecha:          now.Add(-time.Duration(i) * time.Hour).Format("02/01/2006, 15:04:05"),
			Cliente:        topClients[i%len(topClients)].Name,
			Vendedor:       "vendedor-demo",
			Valor:          valor,
			ValorFormatted: "$" + utils.FormatMXN(&valor),
			Estado:         "N/A",
		})
	}

	avgDiscount := 8.5
	avgDiscountFmt := "8.50%"
	winRate := 32.0
	avgMargin := 18.0
	avgValue := total / float64(len(recent))
	return &models.DashboardMetrics{
		PeriodDays:                  30,
		TotalSales:                  total,
		TotalSalesFormatted:         "$" + utils.FormatMXN(&total),
		QuoteCount:                  len(recent),
		AvgValueFormatted:           "$" + utils.FormatMXN(&avgValue),
		WinRatePercent:              &winRate,
		AvgMarginPercent:            &avgMargin,
		AvgDiscountPercent:          &avgDiscount,
		AvgDiscountPercentFormatted: &avgDiscountFmt,
		SalesByDay:                  days,
		TopClients:                  topClients,
		RecentQuotes:                recent,
	}
}
