package controller

import (
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/service"
)

const suggestionLimit = 50

// QuoteController handles the price query, the quote rows and the quotation PDF
type QuoteController struct {
	quotes  *service.QuoteService
	catalog *service.CatalogService
	store   *service.StateStore
	pdfs    *service.PDFService
	exports *service.ExportService
	tmpl    *template.Template
}

// NewQuoteController creates a new QuoteController
func NewQuoteController(
	quotes *service.QuoteService,
	catalog *service.CatalogService,
	store *service.StateStore,
	pdfs *service.PDFService,
	exports *service.ExportService,
	tmpl *template.Template,
) *QuoteController {
	return &QuoteController{
		quotes:  quotes,
		catalog: catalog,
		store:   store,
		pdfs:    pdfs,
		exports: exports,
		tmpl:    tmpl,
	}
}

// parseQueries reads the repeated sku/cantidad/transporte form fields
func parseQueries(r *http.Request) []models.SkuQuery {
	skus := r.Form["sku"]
	cantidades := r.Form["cantidad"]
	transportes := r.Form["transporte"]

	queries := make([]models.SkuQuery, 0, len(skus))
	for i, sku := range skus {
		q := models.SkuQuery{SKU: sku, Cantidad: 1, Transporte: models.TransporteMaritimo}
		if i < len(cantidades) {
			q.Cantidad = service.ParseLimit(cantidades[i], 1)
		}
		if i < len(transportes) && transportes[i] != "" {
			q.Transporte = transportes[i]
		}
		queries = append(queries, q)
	}
	return queries
}

// Consultar handles POST /cotizacion/consultar and renders the price table
func (c *QuoteController) Consultar(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 Consultar: Received %s request to %s", r.Method, r.URL.Path)

	if err := r.ParseForm(); err != nil {
		writeError(w, "Consultar", err)
		return
	}
	req := models.LandedRequest{Cliente: r.FormValue("cliente"), Queries: parseQueries(r)}
	result, err := c.quotes.LoadLanded(r.Context(), ClientID(r), req)
	if err != nil {
		writeError(w, "Consultar", err)
		return
	}
	render(w, c.tmpl, "landed", result)
}

// Monto handles POST /cotizacion/monto (sku, monto)
func (c *QuoteController) Monto(w http.ResponseWriter, r *http.Request) {
	upd, err := c.quotes.UpdateMonto(r.Context(), ClientID(r), r.FormValue("sku"), r.FormValue("monto"))
	if err != nil {
		writeError(w, "Monto", err)
		return
	}
	writeJSON(w, http.StatusOK, upd)
}

// Cantidad handles POST /cotizacion/cantidad (sku, cantidad)
func (c *QuoteController) Cantidad(w http.ResponseWriter, r *http.Request) {
	upd, err := c.quotes.UpdateCantidad(r.Context(), ClientID(r), r.FormValue("sku"), r.FormValue("cantidad"))
	if err != nil {
		writeError(w, "Cantidad", err)
		return
	}
	writeJSON(w, http.StatusOK, upd)
}

// Blur handles POST /cotizacion/blur (sku), checking the discount immediately
func (c *QuoteController) Blur(w http.ResponseWriter, r *http.Request) {
	upd, err := c.quotes.Blur(r.Context(), ClientID(r), r.FormValue("sku"))
	if err != nil {
		writeError(w, "Blur", err)
		return
	}
	writeJSON(w, http.StatusOK, upd)
}

// Estado handles GET /cotizacion/estado
func (c *QuoteController) Estado(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.quotes.Status(r.Context(), ClientID(r)))
}

// Sugerencias handles GET /cotizacion/sugerencias?q=
func (c *QuoteController) Sugerencias(w http.ResponseWriter, r *http.Request) {
	st := c.store.Get(r.Context(), ClientID(r))
	writeJSON(w, http.StatusOK, c.catalog.Suggest(st, r.URL.Query().Get("q"), suggestionLimit))
}

type skuFormData struct {
	Queries []models.SkuQuery
}

// AgregarFila handles POST /cotizacion/filas/agregar (cliente)
func (c *QuoteController) AgregarFila(w http.ResponseWriter, r *http.Request) {
	queries, err := c.quotes.AddRow(r.Context(), ClientID(r), r.FormValue("cliente"))
	if err != nil {
		writeError(w, "AgregarFila", err)
		return
	}
	render(w, c.tmpl, "sku_form", skuFormData{Queries: queries})
}

// QuitarFila handles POST /cotizacion/filas/quitar (index)
func (c *QuoteController) QuitarFila(w http.ResponseWriter, r *http.Request) {
	queries := c.quotes.RemoveRow(r.Context(), ClientID(r), formInt(r, "index", -1))
	render(w, c.tmpl, "sku_form", skuFormData{Queries: queries})
}

// LimpiarFilas handles POST /cotizacion/filas/limpiar
func (c *QuoteController) LimpiarFilas(w http.ResponseWriter, r *http.Request) {
	queries := c.quotes.ClearRows(r.Context(), ClientID(r))
	render(w, c.tmpl, "sku_form", skuFormData{Queries: queries})
}

// PDF handles POST /cotizacion/pdf (cliente) and streams the quotation
func (c *QuoteController) PDF(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 PDF: Received %s request to %s", r.Method, r.URL.Path)

	result, err := c.pdfs.Generate(r.Context(), ClientID(r), r.FormValue("cliente"))
	if err != nil {
		writeError(w, "PDF", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	w.Header().Set("X-PDF-Source", result.Source)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		zap.S().Errorf("❌ PDF: Error writing response: %v", err)
	}
}

// ExportCSV handles GET /cotizacion/export.csv
func (c *QuoteController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	file, err := c.exports.LandedCSV(r.Context(), ClientID(r))
	if err != nil {
		writeError(w, "ExportCSV", err)
		return
	}
	writeCSV(w, file)
}

func writeCSV(w http.ResponseWriter, file *service.CSVFile) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		zap.S().Errorf("❌ CSV: Error writing response: %v", err)
	}
}
