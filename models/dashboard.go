package models

// SalesByDay is one point of the sales-by-day chart
type SalesByDay struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// TopClient is one slice of the top clients chart
type TopClient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// RecentQuote is one row of the recent quotes table
type RecentQuote struct {
	ID             int64   `json:"id"`
	Folio          string  `json:"folio"`
	Fecha          string  `json:"fecha"`
	Cliente        string  `json:"cliente"`
	Vendedor       string  `json:"vendedor"`
	Valor          float64 `json:"valor"`
	ValorFormatted string  `json:"valor_formatted"`
	Estado         string  `json:"estado"`
}

// VendedorSummary is one row of the per-vendedor summary
type VendedorSummary struct {
	Vendedor           string    `json:"vendedor"`
	QuotesCount        int       `json:"quotes_count"`
	ClosedCount        int       `json:"closed_count"`
	TotalValue         float64   `json:"total_value"`
	ClosedTotal        float64   `json:"closed_total"`
	AvgDiscountPercent *float64  `json:"avg_discount_percent"`
	AvgMarginPercent   *float64  `json:"avg_margin_percent"`
	Series             []float64 `json:"series"`
}

// DashboardMetrics is the body of GET /api/dashboard/metrics
type DashboardMetrics struct {
	PeriodDays                  int               `json:"period_days"`
	TotalSales                  float64           `json:"total_sales"`
	TotalSalesFormatted         string            `json:"total_sales_formatted"`
	QuoteCount                  int               `json:"quote_count"`
	AvgValueFormatted           string            `json:"avg_value_formatted"`
	WinRatePercent              *float64          `json:"win_rate_percent"`
	AvgMarginPercent            *float64          `json:"avg_margin_percent"`
	AvgDiscountPercent          *float64          `json:"avg_discount_percent"`
	AvgDiscountPercentFormatted *string           `json:"avg_discount_percent_formatted"`
	SalesByDay                  []SalesByDay      `json:"sales_by_day"`
	TopClients                  []TopClient       `json:"top_clients"`
	RecentQuotes                []RecentQuote     `json:"recent_quotes"`
	ByVendedor                  []VendedorSummary `json:"by_vendedor"`
}
