package models

// Cliente represents a customer from GET /api/clientes
type Cliente struct {
	ID       int64  `json:"id"`
	Codigo   string `json:"codigo"`
	Nombre   string `json:"nombre"`
	RFC      string `json:"rfc,omitempty"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Vendedor represents a sales user from GET /api/vendedores
type Vendedor struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Nombre         string `json:"nombre"`
	NombreCompleto string `json:"nombre_completo"`
}

// Cotizacion represents a stored quotation from GET /api/cotizaciones
type Cotizacion struct {
	ID              int64    `json:"id"`
	Cliente         string   `json:"cliente"`
	Vendedor        string   `json:"vendedor"`
	NumeroCliente   string   `json:"numero_cliente"`
	NumeroVendedor  string   `json:"numero_vendedor"`
	FechaCotizacion *APITime `json:"fecha_cotizacion"`
}

// TypeaheadItem is one dropdown entry for the cliente/vendedor inputs
type TypeaheadItem struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
