package controller

import (
	"html/template"
	"net/http"

	"cotizador/service"
)

// DashboardController serves the sales dashboard
type DashboardController struct {
	dashboard *service.DashboardService
	exports   *service.ExportService
	tmpl      *template.Template
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboard *service.DashboardService, exports *service.ExportService, tmpl *template.Template) *DashboardController {
	return &DashboardController{dashboard: dashboard, exports: exports, tmpl: tmpl}
}

// Dashboard handles GET /dashboard?periodDays=30&vendedor=all[&demo=1]
func (c *DashboardController) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	demo := q.Get("demo") == "1"
	view, err := c.dashboard.Load(
		r.Context(),
		ClientID(r),
		service.ParseLimit(q.Get("periodDays"), service.DefaultPeriodDays),
		q.Get("vendedor"),
		demo,
	)
	if err != nil {
		writeError(w, "Dashboard", err)
		return
	}
	if demo {
		setToast(w, "Datos demo cargados.")
	}
	render(w, c.tmpl, "dashboard", view)
}

// VendedoresCSV handles GET /dashboard/vendedores.csv
func (c *DashboardController) VendedoresCSV(w http.ResponseWriter, r *http.Request) {
	file, err := c.exports.VendedoresCSV(r.Context(), ClientID(r))
	if err != nil {
		writeError(w, "VendedoresCSV", err)
		return
	}
	writeCSV(w, file)
}
