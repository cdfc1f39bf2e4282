package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cotizador/models"
	"cotizador/pricing"
	"cotizador/utils"
)

// MaxVisibleRows caps the price table
const MaxVisibleRows = 100

// Messages shown in the price table instead of rows
const (
	MsgNoQueries = "Ingrese al menos un SKU para consultar"
	MsgNoResults = "No se encontraron resultados"
)

var (
	// ErrClienteRequired is returned when a query is attempted without a customer
	ErrClienteRequired = errors.New("Ingrese el nombre del Cliente antes de consultar SKUs.")
	// ErrClienteRequiredToAdd is returned when a SKU row is added without a customer
	ErrClienteRequiredToAdd = errors.New("Ingrese el nombre del Cliente antes de agregar SKUs.")
	// ErrRowNotFound is returned when an edit targets a SKU that is not in the quote
	ErrRowNotFound = errors.New("El SKU no está en la cotización actual")
)

// RowView is a price row formatted for the table
type RowView struct {
	SKU        string
	Cantidad   int
	Transporte string
	Categoria  string

	CostoBase  string
	Flete      string
	Seguro     string
	Arancel    string
	Dta        string
	Honorarios string
	Landed     string
	PrecioBase string

	PrecioMax      string
	Monto          string
	PrecioMin      string
	MaxTotal       string
	IVA            string
	Descuento      string
	TotalNegociado string
	MinTotal       string
	Warning        string
}

// LandedResult is the rendered outcome of a price query
type LandedResult struct {
	Rows       []RowView
	Message    string
	Details    []models.ProductDetail
	View       pricing.RoleView
	PDFBlocked bool
}

// QuoteService handles the price query and the edits of the current quote
type QuoteService struct {
	api       PricingAPIInterface
	store     *StateStore
	catalog   *CatalogService
	debouncer *utils.Debouncer
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(api PricingAPIInterface, store *StateStore, catalog *CatalogService, debouncer *utils.Debouncer) *QuoteService {
	return &QuoteService{
		api:       api,
		store:     store,
		catalog:   catalog,
		debouncer: debouncer,
	}
}

func debounceKey(clientID, sku string) string {
	return clientID + "|" + sku
}

// normalizeQueries drops rows without SKU and fills the defaults
func normalizeQueries(queries []models.SkuQuery) []models.SkuQuery {
	out := make([]models.SkuQuery, 0, len(queries))
	for _, q := range queries {
		q.SKU = strings.TrimSpace(q.SKU)
		if q.SKU == "" {
			continue
		}
		if q.Cantidad < 1 {
			q.Cantidad = 1
		}
		if q.Transporte == "" {
			q.Transporte = models.TransporteMaritimo
		}
		out = append(out, q)
	}
	return out
}

// LoadLanded queries one price list per SKU row concurrently and rebuilds the quote rows
func (s *QuoteService) LoadLanded(ctx context.Context, clientID string, req models.LandedRequest) (*LandedResult, error) {
	st := s.store.Get(ctx, clientID)
	cliente := strings.TrimSpace(req.Cliente)
	if cliente == "" {
		return nil, ErrClienteRequired
	}

	queries := normalizeQueries(req.Queries)

	st.Lock()
	st.Cliente = cliente
	if len(req.Queries) > 0 {
		st.Queries = req.Queries
	}
	cred := st.Credentials()
	role := st.UserRole
	st.Unlock()

	result := &LandedResult{View: pricing.ViewFor(role)}
	if len(queries) == 0 {
		result.Message = MsgNoQueries
		return result, nil
	}

	zap.S().Infof("📥 LoadLanded: client=%s queries=%d", clientID, len(queries))

	results := make([][]models.PriceRow, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			rows, err := s.api.Listas(gctx, cred, q.SKU, q.Transporte)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		st.Lock()
		st.Status = err.Error()
		st.Unlock()
		return nil, err
	}

	var all []models.PriceRow
	for i, rows := range results {
		for _, row := range rows {
			row.Cantidad = queries[i].Cantidad
			all = append(all, row)
		}
	}

	st.Lock()
	defer st.Unlock()

	all = restorePrevious(all, st.Rows)
	st.LandedData = all

	if len(all) == 0 {
		st.Rows = nil
		st.Warnings = make(map[string]string)
		st.PDFBlocked = false
		st.PendingAuth = nil
		result.Message = MsgNoResults
		return result, nil
	}

	st.Rows = dedupeLowestMin(all)
	s.pruneWarnings(st)

	visible := st.Rows
	if len(visible) > MaxVisibleRows {
		visible = visible[:MaxVisibleRows]
	}
	for _, row := range visible {
		result.Rows = append(result.Rows, BuildRowView(st.UserRole, row, st.Warnings[row.SKU]))
	}

	skus := make([]string, 0, len(queries))
	for _, q := range queries {
		skus = append(skus, q.SKU)
	}
	result.Details = productDetails(st, skus)
	result.PDFBlocked = st.PDFBlocked

	zap.S().Infof("✅ LoadLanded: client=%s rows=%d shown=%d", clientID, len(all), len(result.Rows))
	return result, nil
}

// restorePrevious carries the typed proposed price and transport of each SKU over from prev
func restorePrevious(rows, prev []models.PriceRow) []models.PriceRow {
	for i := range rows {
		for _, p := range prev {
			if p.SKU != rows[i].SKU {
				continue
			}
			if p.MontoPropuesto != "" {
				rows[i].MontoPropuesto = p.MontoPropuesto
			}
			if p.Transporte != "" {
				rows[i].Transporte = p.Transporte
			}
			break
		}
	}
	return rows
}

// dedupeLowestMin keeps one row per (sku, categoria): the one with the lowest precio_vendedor_min.
// A missing minimum never wins over an existing row. First-seen order is kept.
func dedupeLowestMin(rows []models.PriceRow) []models.PriceRow {
	index := make(map[string]int)
	out := make([]models.PriceRow, 0, len(rows))
	for _, row := range rows {
		key := row.SKU + "|" + row.Categoria
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, row)
			continue
		}
		cur := out[i].PrecioVendedorMin
		if row.PrecioVendedorMin != nil && cur != nil && *row.PrecioVendedorMin < *cur {
			out[i] = row
		}
	}
	return out
}

// pruneWarnings drops warnings of SKUs that left the quote. Caller holds the lock.
func (s *QuoteService) pruneWarnings(st *ClientState) {
	for sku := range st.Warnings {
		if st.findRow(sku) < 0 {
			delete(st.Warnings, sku)
		}
	}
	if st.PendingAuth != nil && st.findRow(st.PendingAuth.SKU) < 0 {
		st.PendingAuth = nil
	}
	st.PDFBlocked = len(st.Warnings) > 0
}

// BuildRowView formats a price row for role
func BuildRowView(role string, row models.PriceRow, warning string) RowView {
	maxPrice := pricing.MaximumPrice(row)
	minPrice := pricing.MinimumPrice(role, row)
	maxDec := decimal.NewFromFloat(models.Float(maxPrice))
	minDec := decimal.NewFromFloat(models.Float(minPrice))
	qty := decimal.NewFromInt(int64(row.Cantidad))

	v := RowView{
		SKU:        row.SKU,
		Cantidad:   row.Cantidad,
		Transporte: row.Transporte,
		Categoria:  row.Categoria,
		CostoBase:  utils.FormatMXN(row.CostoBaseMXN),
		Flete:      utils.FormatPercentage(row.FletePct),
		Seguro:     utils.FormatPercentage(row.SeguroPct),
		Arancel:    utils.FormatPercentage(row.ArancelPct),
		Dta:        utils.FormatPercentage(row.DtaPct),
		Honorarios: utils.FormatPercentage(row.HonorariosAduanalesPct),
		Landed:     utils.FormatMXN(row.LandedCostMXN),
		PrecioBase: utils.FormatMXN(row.PrecioBaseMXN),
		PrecioMax:  utils.FormatMXN(maxPrice),
		Monto:      row.MontoPropuesto,
		PrecioMin:  utils.FormatMXN(minPrice),
		MaxTotal:   utils.FormatMXNDecimal(maxDec.Mul(qty)),
		MinTotal:   utils.FormatMXNDecimal(minDec.Mul(qty)),
		IVA:        "0",
		Descuento:  "-",
		Warning:    warning,
	}

	if monto, ok := utils.ParseMonto(row.MontoPropuesto); ok {
		lt := pricing.ComputeLine(maxDec, monto, row.Cantidad)
		v.TotalNegociado = utils.FormatMXNDecimal(lt.TotalNegociado)
		v.IVA = utils.FormatMXNDecimal(lt.IVA)
		if lt.HasDescuento {
			v.Descuento = utils.FormatPercent(lt.Descuento)
		}
	}
	return v
}

// rowUpdate recomputes the editable cells of row. Caller holds the lock.
func rowUpdate(st *ClientState, row models.PriceRow, pending bool) *models.RowUpdate {
	monto, _ := utils.ParseMonto(row.MontoPropuesto)
	maxDec := decimal.NewFromFloat(row.MaxPrice())
	lt := pricing.ComputeLine(maxDec, monto, row.Cantidad)

	upd := &models.RowUpdate{
		SKU:            row.SKU,
		TotalNegociado: utils.FormatMXNDecimal(lt.TotalNegociado),
		IVA:            utils.FormatMXNDecimal(lt.IVA),
		Descuento:      "-",
		Warning:        st.Warnings[row.SKU],
		PDFBlocked:     st.PDFBlocked,
		CheckPending:   pending,
	}
	if lt.HasDescuento {
		upd.Descuento = utils.FormatPercent(lt.Descuento)
	}
	return upd
}

// UpdateMonto stores the typed proposed price of sku and schedules a discount check
func (s *QuoteService) UpdateMonto(ctx context.Context, clientID, sku, raw string) (*models.RowUpdate, error) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	i := st.findRow(sku)
	if i < 0 {
		st.Unlock()
		return nil, ErrRowNotFound
	}
	st.Rows[i].MontoPropuesto = utils.NormalizeMonto(raw)
	upd := rowUpdate(st, st.Rows[i], true)
	st.Unlock()

	s.scheduleCheck(ctx, clientID, sku)
	return upd, nil
}

// UpdateCantidad stores the quantity of sku and schedules a discount check
func (s *QuoteService) UpdateCantidad(ctx context.Context, clientID, sku, raw string) (*models.RowUpdate, error) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	i := st.findRow(sku)
	if i < 0 {
		st.Unlock()
		return nil, ErrRowNotFound
	}
	qty := utils.ParseCantidad(raw)
	st.Rows[i].Cantidad = qty
	for j := range st.Queries {
		if strings.TrimSpace(st.Queries[j].SKU) == sku {
			st.Queries[j].Cantidad = qty
		}
	}
	upd := rowUpdate(st, st.Rows[i], true)
	st.Unlock()

	s.scheduleCheck(ctx, clientID, sku)
	return upd, nil
}

func (s *QuoteService) scheduleCheck(ctx context.Context, clientID, sku string) {
	checkCtx := context.WithoutCancel(ctx)
	s.debouncer.Trigger(debounceKey(clientID, sku), func() {
		s.CheckDiscount(checkCtx, clientID, sku, false)
	})
}

// Blur cancels the pending check of sku and runs it right away
func (s *QuoteService) Blur(ctx context.Context, clientID, sku string) (*models.RowUpdate, error) {
	s.debouncer.Cancel(debounceKey(clientID, sku))

	if _, err := s.CheckDiscount(ctx, clientID, sku, true); err != nil {
		return nil, err
	}

	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()
	i := st.findRow(sku)
	if i < 0 {
		return nil, ErrRowNotFound
	}
	return rowUpdate(st, st.Rows[i], false), nil
}

// CheckDiscount compares the discount of sku against the role ceiling and updates the
// warnings, the PDF block and the pending authorization context.
// Unforced checks are skipped while fewer than three digits have been typed.
func (s *QuoteService) CheckDiscount(ctx context.Context, clientID, sku string, force bool) (pricing.CheckResult, error) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()

	i := st.findRow(sku)
	if i < 0 {
		return pricing.CheckResult{}, ErrRowNotFound
	}
	row := st.Rows[i]

	if !force && utils.DigitCount(row.MontoPropuesto) < 3 {
		return pricing.CheckResult{Role: pricing.EffectiveRole(st.UserRole)}, nil
	}

	monto, _ := utils.ParseMonto(row.MontoPropuesto)
	res := pricing.CheckDiscount(st.UserRole, decimal.NewFromFloat(row.MaxPrice()), monto)

	if res.Blocked {
		st.Warnings[sku] = res.Warning()
		st.PDFBlocked = true
		st.PendingAuth = &PendingAuth{
			SKU:     sku,
			Row:     row,
			Percent: res.Percent,
			Allowed: res.Allowed,
			Role:    res.Role,
		}
		st.Toast = res.Toast()
		zap.S().Infof("⚠️  Discount blocked: client=%s sku=%s pct=%s allowed=%s role=%s",
			clientID, sku, res.Percent.StringFixed(2), res.Allowed.String(), res.Role)
		return res, nil
	}

	delete(st.Warnings, sku)
	if len(st.Warnings) == 0 {
		st.PDFBlocked = false
		if st.PendingAuth != nil && st.PendingAuth.SKU == sku {
			st.PendingAuth = nil
		}
	}
	return res, nil
}

// Current renders the quote rows already on the page, nil when there are none
func (s *QuoteService) Current(ctx context.Context, clientID string) *LandedResult {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()
	if len(st.Rows) == 0 {
		return nil
	}

	res := &LandedResult{View: pricing.ViewFor(st.UserRole), PDFBlocked: st.PDFBlocked}
	var skus []string
	seen := make(map[string]bool)
	for i, row := range st.Rows {
		if i < MaxVisibleRows {
			res.Rows = append(res.Rows, BuildRowView(st.UserRole, row, st.Warnings[row.SKU]))
		}
		if !seen[row.SKU] {
			seen[row.SKU] = true
			skus = append(skus, row.SKU)
		}
	}
	res.Details = productDetails(st, skus)
	return res
}

// Status returns the warnings of the quote and takes the pending toast
func (s *QuoteService) Status(ctx context.Context, clientID string) models.QuoteStatus {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()

	warnings := make(map[string]string, len(st.Warnings))
	for k, v := range st.Warnings {
		warnings[k] = v
	}
	status := models.QuoteStatus{
		Warnings:   warnings,
		PDFBlocked: st.PDFBlocked,
		Toast:      st.Toast,
	}
	st.Toast = ""
	if st.PendingAuth != nil {
		status.PendingSKU = st.PendingAuth.SKU
	}
	for _, row := range st.Rows {
		if s.debouncer.Pending(debounceKey(clientID, row.SKU)) {
			status.CheckPending = true
			break
		}
	}
	return status
}

// Rows returns the views of the current quote rows
func (s *QuoteService) Rows(ctx context.Context, clientID string) []RowView {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()

	out := make([]RowView, 0, len(st.Rows))
	for i, row := range st.Rows {
		if i >= MaxVisibleRows {
			break
		}
		out = append(out, BuildRowView(st.UserRole, row, st.Warnings[row.SKU]))
	}
	return out
}

// FormRows returns the SKU form rows, always at least one
func (s *QuoteService) FormRows(ctx context.Context, clientID string) (string, []models.SkuQuery) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()
	if len(st.Queries) == 0 {
		st.Queries = []models.SkuQuery{blankQuery()}
	}
	return st.Cliente, append([]models.SkuQuery(nil), st.Queries...)
}

func blankQuery() models.SkuQuery {
	return models.SkuQuery{Cantidad: 1, Transporte: models.TransporteMaritimo}
}

// AddRow appends an empty SKU row. A customer is required first.
func (s *QuoteService) AddRow(ctx context.Context, clientID, cliente string) ([]models.SkuQuery, error) {
	cliente = strings.TrimSpace(cliente)
	if cliente == "" {
		return nil, ErrClienteRequiredToAdd
	}
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()
	st.Cliente = cliente
	st.Queries = append(st.Queries, blankQuery())
	return append([]models.SkuQuery(nil), st.Queries...), nil
}

// RemoveRow removes the SKU row at index. The last row is never removed.
func (s *QuoteService) RemoveRow(ctx context.Context, clientID string, index int) []models.SkuQuery {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()
	if len(st.Queries) > 1 && index >= 0 && index < len(st.Queries) {
		st.Queries = append(st.Queries[:index], st.Queries[index+1:]...)
	}
	return append([]models.SkuQuery(nil), st.Queries...)
}

// ClearRows resets the form to one empty row and empties the price table
func (s *QuoteService) ClearRows(ctx context.Context, clientID string) []models.SkuQuery {
	s.debouncer.CancelPrefix(clientID + "|")

	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()
	st.Queries = []models.SkuQuery{blankQuery()}
	st.Rows = nil
	st.Warnings = make(map[string]string)
	st.PDFBlocked = false
	st.PendingAuth = nil
	return append([]models.SkuQuery(nil), st.Queries...)
}
