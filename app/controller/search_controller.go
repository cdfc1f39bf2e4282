package controller

import (
	"html/template"
	"net/http"

	"cotizador/service"
)

// SearchController serves the cliente/vendedor typeahead and the quote history
type SearchController struct {
	search   *service.SearchService
	sessions *service.SessionService
	tmpl     *template.Template
}

// NewSearchController creates a new SearchController
func NewSearchController(search *service.SearchService, sessions *service.SessionService, tmpl *template.Template) *SearchController {
	return &SearchController{search: search, sessions: sessions, tmpl: tmpl}
}

// Clientes handles GET /api/clientes?q=
func (c *SearchController) Clientes(w http.ResponseWriter, r *http.Request) {
	c.typeahead(w, r, service.FieldCliente)
}

// Vendedores handles GET /api/vendedores?q=
func (c *SearchController) Vendedores(w http.ResponseWriter, r *http.Request) {
	c.typeahead(w, r, service.FieldVendedor)
}

func (c *SearchController) typeahead(w http.ResponseWriter, r *http.Request, field string) {
	id := ClientID(r)
	cred, err := c.sessions.Credentials(r.Context(), id)
	if err != nil {
		writeError(w, "Typeahead", err)
		return
	}
	writeJSON(w, http.StatusOK, c.search.Typeahead(r.Context(), id, cred, field, r.URL.Query().Get("q")))
}

// Cotizaciones handles GET /api/cotizaciones?q=&limit=
func (c *SearchController) Cotizaciones(w http.ResponseWriter, r *http.Request) {
	cred, err := c.sessions.Credentials(r.Context(), ClientID(r))
	if err != nil {
		writeError(w, "Cotizaciones", err)
		return
	}
	q := r.URL.Query()
	rows, err := c.search.Cotizaciones(r.Context(), cred, q.Get("q"), service.ParseLimit(q.Get("limit"), service.DefaultCotizacionMax))
	if err != nil {
		writeError(w, "Cotizaciones", err)
		return
	}
	render(w, c.tmpl, "cotizaciones", rows)
}
