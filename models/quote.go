package models

// QuotePDFItem is one line of the quotation PDF payload
type QuotePDFItem struct {
	SKU               string   `json:"sku"`
	Descripcion       string   `json:"descripcion"`
	Cantidad          int      `json:"cantidad"`
	PrecioMaximo      *float64 `json:"precio_maximo"`
	PrecioMaximoLista *float64 `json:"precio_maximo_lista"`
	PrecioVendedorMin *float64 `json:"precio_vendedor_min"`
	PrecioMinimoLista *float64 `json:"precio_minimo_lista"`
	MontoPropuesto    float64  `json:"monto_propuesto"`
	LogoPath          *string  `json:"logo_path"`
	Proveedor         string   `json:"proveedor"`
	Origen            string   `json:"origen"`
}

// QuotePDFRequest is the body of POST /cotizacion/pdf
type QuotePDFRequest struct {
	Cliente string         `json:"cliente"`
	Items   []QuotePDFItem `json:"items"`
}

// LandedRequest is the body of the price query action
type LandedRequest struct {
	Cliente string     `json:"cliente"`
	Queries []SkuQuery `json:"queries"`
}

// RowUpdate carries the recomputed cells of one price row after an edit
type RowUpdate struct {
	SKU            string `json:"sku"`
	TotalNegociado string `json:"totalNegociado"`
	IVA            string `json:"iva"`
	Descuento      string `json:"descuento"`
	Warning        string `json:"warning,omitempty"`
	PDFBlocked     bool   `json:"pdfBlocked"`
	CheckPending   bool   `json:"checkPending"`
}

// QuoteStatus summarizes the advisory discount state of the current quote
type QuoteStatus struct {
	Warnings     map[string]string `json:"warnings"`
	PDFBlocked   bool              `json:"pdfBlocked"`
	CheckPending bool              `json:"checkPending"`
	PendingSKU   string            `json:"pendingSku,omitempty"`
	Toast        string            `json:"toast,omitempty"`
}
