package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/pricing"
	"cotizador/utils"
)

const suggestionDescLimit = 60

// CatalogService caches the product catalog per client
type CatalogService struct {
	api PricingAPIInterface
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(api PricingAPIInterface) *CatalogService {
	return &CatalogService{api: api}
}

// Load fetches GET /catalog/productos once and indexes it by SKU
func (s *CatalogService) Load(ctx context.Context, st *ClientState) (int, error) {
	st.Lock()
	cred := st.Credentials()
	clientID := st.ClientID
	st.Unlock()

	products, err := s.api.Productos(ctx, cred)
	if err != nil {
		return 0, err
	}

	st.Lock()
	st.setProductos(products)
	st.Unlock()

	zap.S().Infof("📦 Catalog: loaded %d products for %s", len(products), clientID)
	return len(products), nil
}

// Suggest returns SKU autocomplete options matching prefix (case-insensitive).
// An empty prefix lists the catalog from the start.
func (s *CatalogService) Suggest(st *ClientState, prefix string, limit int) []models.ProductSuggestion {
	st.Lock()
	defer st.Unlock()

	prefix = utils.NormalizeSKU(prefix)
	out := make([]models.ProductSuggestion, 0)
	for _, p := range st.Productos {
		if limit > 0 && len(out) >= limit {
			break
		}
		if prefix != "" && !strings.HasPrefix(utils.NormalizeSKU(p.SKU), prefix) &&
			!strings.Contains(strings.ToUpper(p.Descripcion), prefix) {
			continue
		}
		out = append(out, models.ProductSuggestion{SKU: p.SKU, Label: suggestionLabel(p)})
	}
	return out
}

// suggestionLabel shows the first 60 characters of the description, or the SKU
func suggestionLabel(p models.Product) string {
	if p.Descripcion == "" {
		return p.SKU
	}
	runes := []rune(p.Descripcion)
	if len(runes) > suggestionDescLimit {
		return string(runes[:suggestionDescLimit]) + "..."
	}
	return p.Descripcion
}

// Details returns the product cards for skus, in order and without repeats.
// SKUs missing from the catalog are skipped.
func (s *CatalogService) Details(st *ClientState, skus []string) []models.ProductDetail {
	st.Lock()
	defer st.Unlock()
	return productDetails(st, skus)
}

// productDetails builds the product cards. Caller holds the state lock.
func productDetails(st *ClientState, skus []string) []models.ProductDetail {
	view := pricing.ViewFor(st.UserRole)
	seen := make(map[string]bool, len(skus))
	out := make([]models.ProductDetail, 0, len(skus))
	for _, sku := range skus {
		key := utils.NormalizeSKU(sku)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		p, ok := st.product(key)
		if !ok {
			continue
		}
		out = append(out, models.ProductDetail{
			Product:    p,
			ShowMoneda: view.ShowMonedaBase && strings.TrimSpace(p.MonedaBase) != "USD",
		})
	}
	return out
}

// Describe returns description, proveedor and origen for a SKU, "-" when unknown or blank.
// Caller holds the state lock.
func (s *CatalogService) Describe(st *ClientState, sku string) (descripcion, proveedor, origen string) {
	p, _ := st.product(sku)
	return dashIfBlank(p.Descripcion), dashIfBlank(p.Proveedor), dashIfBlank(p.Origen)
}

func dashIfBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
