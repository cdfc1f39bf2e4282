package models

// Transport modes accepted by the price list endpoint
const (
	TransporteMaritimo = "Maritimo"
	TransporteAereo    = "Aereo"
)

// SkuQuery represents one dynamic form row (SKU, quantity, transport mode)
type SkuQuery struct {
	SKU        string `json:"sku"`
	Cantidad   int    `json:"cantidad"`
	Transporte string `json:"transporte"`
}

// PriceRow represents a price list row for a SKU.
// Optional numbers stay nil when the backend sends null.
type PriceRow struct {
	SKU        string `json:"sku"`
	Transporte string `json:"transporte"`
	Categoria  string `json:"categoria,omitempty"`
	Cantidad   int    `json:"cantidad"` // attached client side from the query row

	LandedCostMXN *float64 `json:"landed_cost_mxn"`
	PrecioBaseMXN *float64 `json:"precio_base_mxn"`

	PrecioMaximo      *float64 `json:"precio_maximo"`
	PrecioMaximoLista *float64 `json:"precio_maximo_lista"`
	PrecioMinimoLista *float64 `json:"precio_minimo_lista"`

	PrecioVendedorMin     *float64 `json:"precio_vendedor_min"`
	PrecioGerenteComMin   *float64 `json:"precio_gerente_com_min"`
	PrecioSubdireccionMin *float64 `json:"precio_subdireccion_min"`
	PrecioDireccionMin    *float64 `json:"precio_direccion_min"`

	MarkupPct              *float64 `json:"markup_pct"`
	CostoBaseMXN           *float64 `json:"costo_base_mxn"`
	FletePct               *float64 `json:"flete_pct"`
	SeguroPct              *float64 `json:"seguro_pct"`
	ArancelPct             *float64 `json:"arancel_pct"`
	DtaPct                 *float64 `json:"dta_pct"`
	HonorariosAduanalesPct *float64 `json:"honorarios_aduanales_pct"`

	LogoPath       string `json:"logo_path,omitempty"`
	MontoPropuesto string `json:"monto_propuesto,omitempty"` // as typed, comma already replaced
}

// MaxPrice returns precio_maximo_lista, falling back to the legacy precio_maximo
func (r PriceRow) MaxPrice() float64 {
	if r.PrecioMaximoLista != nil {
		return *r.PrecioMaximoLista
	}
	return Float(r.PrecioMaximo)
}

// Float dereferences an optional number, nil reads as 0
func Float(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 {
	return &v
}
