package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/pricing"
)

var (
	ErrExportForbidden = errors.New("La descarga de listas no está disponible para tu rol")
	ErrNothingToExport = errors.New("No hay datos para exportar.")
)

var landedHeaders = []string{
	"sku", "transporte", "categoria", "cantidad",
	"costo_base_mxn", "flete_pct", "seguro_pct", "arancel_pct", "dta_pct", "honorarios_aduanales_pct",
	"landed_cost_mxn", "precio_base_mxn", "precio_maximo", "precio_minimo", "monto_propuesto",
}

var vendedorHeaders = []string{
	"vendedor", "quotes_count", "closed_count", "total_value", "closed_total",
	"close_rate_pct", "avg_discount_percent", "avg_margin_percent", "series",
}

// CSVFile is a generated download
type CSVFile struct {
	Data     []byte
	Filename string
}

// ExportService writes CSV downloads of the price query and the vendedor summary
type ExportService struct {
	store     *StateStore
	dashboard *DashboardService
}

// NewExportService creates a new ExportService
func NewExportService(store *StateStore, dashboard *DashboardService) *ExportService {
	return &ExportService{store: store, dashboard: dashboard}
}

// LandedCSV exports every row of the last price query
func (s *ExportService) LandedCSV(ctx context.Context, clientID string) (*CSVFile, error) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	role := st.UserRole
	rows := append([]models.PriceRow(nil), st.LandedData...)
	montos := make(map[string]string, len(st.Rows))
	for _, r := range st.Rows {
		montos[r.SKU] = r.MontoPropuesto
	}
	st.Unlock()

	if !pricing.ViewFor(role).ShowDownload {
		return nil, ErrExportForbidden
	}
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, landedHeaders)
	for _, r := range rows {
		monto := r.MontoPropuesto
		if monto == "" {
			monto = montos[r.SKU]
		}
		records = append(records, []string{
			r.SKU,
			r.Transporte,
			r.Categoria,
			strconv.Itoa(r.Cantidad),
			csvFloat(r.CostoBaseMXN),
			csvFloat(r.FletePct),
			csvFloat(r.SeguroPct),
			csvFloat(r.ArancelPct),
			csvFloat(r.DtaPct),
			csvFloat(r.HonorariosAduanalesPct),
			csvFloat(r.LandedCostMXN),
			csvFloat(r.PrecioBaseMXN),
			csvFloat(pricing.MaximumPrice(r)),
			csvFloat(pricing.MinimumPrice(role, r)),
			monto,
		})
	}

	data, err := writeCSV(records)
	if err != nil {
		return nil, err
	}
	zap.S().Infof("📤 LandedCSV: %d rows exported for %s", len(rows), clientID)
	return &CSVFile{Data: data, Filename: datedFilename("listas_precios", s.store.Now())}, nil
}

// VendedoresCSV exports the vendedor summary of the last dashboard load
func (s *ExportService) VendedoresCSV(ctx context.Context, clientID string) (*CSVFile, error) {
	rows := s.dashboard.LatestVendedores(ctx, clientID)
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, vendedorHeaders)
	for _, v := range rows {
		rate := ""
		if r, ok := CloseRate(v); ok {
			rate = r.StringFixed(2)
		}
		series := make([]string, 0, len(v.Series))
		for _, p := range v.Series {
			series = append(series, formatNumber(p))
		}
		records = append(records, []string{
			v.Vendedor,
			strconv.Itoa(v.QuotesCount),
			strconv.Itoa(v.ClosedCount),
			formatNumber(v.TotalValue),
			formatNumber(v.ClosedTotal),
			rate,
			csvFloat(v.AvgDiscountPercent),
			csvFloat(v.AvgMarginPercent),
			strings.Join(series, ";"),
		})
	}

	data, err := writeCSV(records)
	if err != nil {
		return nil, err
	}
	return &CSVFile{Data: data, Filename: datedFilename("resumen_vendedores", s.store.Now())}, nil
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("No se pudo generar el CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNumber(*v)
}

func datedFilename(prefix string, t time.Time) string {
	return prefix + "_" + t.UTC().Format("2006-01-02") + ".csv"
}
