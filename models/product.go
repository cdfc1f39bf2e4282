package models

// Product represents a catalog entry from GET /catalog/productos
type Product struct {
	SKU                  string   `json:"sku"`
	Descripcion          string   `json:"descripcion"`
	Proveedor            string   `json:"proveedor"`
	Origen               string   `json:"origen"`
	SegmentoHospitalario string   `json:"segmento_hospitalario,omitempty"`
	Categoria            string   `json:"categoria"`
	Unidad               string   `json:"unidad,omitempty"`
	MonedaBase           string   `json:"moneda_base"`
	CostoBase            *float64 `json:"costo_base,omitempty"`
	Activo               bool     `json:"activo"`
}

// ProductSuggestion is one autocomplete option for the SKU inputs
type ProductSuggestion struct {
	SKU   string `json:"sku"`
	Label string `json:"label"`
}

// ProductDetail is a product card shown under the price table
type ProductDetail struct {
	Product
	ShowMoneda bool `json:"showMoneda"`
}
