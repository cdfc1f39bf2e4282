package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/utils"
)

// QuotePDFFilename is the download name of the quotation
const QuotePDFFilename = "cotizacion_multiSKU.pdf"

// Validation errors of the quotation PDF
var (
	ErrPDFBlocked         = errors.New("Hay descuentos que requieren autorización. Solicita autorización antes de generar la cotización.")
	ErrClienteRequiredPDF = errors.New("El campo Cliente es obligatorio antes de generar la cotización.")
	ErrNoRows             = errors.New("No hay productos para cotizar.")
	ErrPDFFailed          = errors.New("Error al generar PDF")
)

// Sources of a generated quotation
const (
	PDFSourceBackend = "backend"
	PDFSourceLocal   = "local"
)

// TemplateExecutor renders a named template
type TemplateExecutor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// PDFResult is a generated quotation
type PDFResult struct {
	Data      []byte
	Filename  string
	Source    string
	ArchiveID string
}

// QuoteDocumentItem is one line of the local quotation document
type QuoteDocumentItem struct {
	SKU         string
	Cantidad    int
	Monto       string
	Total       string
	Descripcion string
	Proveedor   string
	Origen      string
}

// QuoteDocument is the data of the local quotation template
type QuoteDocument struct {
	Cliente string
	Fecha   string
	Logo    template.URL
	Items   []QuoteDocumentItem
	Total   string
}

// PDFService builds and renders the quotation PDF
type PDFService struct {
	api      PricingAPIInterface
	store    *StateStore
	catalog  *CatalogService
	tmpl     TemplateExecutor
	renderer PDFRendererInterface
	logos    *LogoLoader
	archiver ArchiverInterface
}

// NewPDFService creates a new PDFService. renderer and archiver may be nil.
func NewPDFService(
	api PricingAPIInterface,
	store *StateStore,
	catalog *CatalogService,
	tmpl TemplateExecutor,
	renderer PDFRendererInterface,
	logos *LogoLoader,
	archiver ArchiverInterface,
) *PDFService {
	return &PDFService{
		api:      api,
		store:    store,
		catalog:  catalog,
		tmpl:     tmpl,
		renderer: renderer,
		logos:    logos,
		archiver: archiver,
	}
}

// BuildRequest packages the current quote rows for POST /cotizacion/pdf.
// A non-empty cliente replaces the stored one.
func (s *PDFService) BuildRequest(ctx context.Context, clientID, cliente string) (models.QuotePDFRequest, Credentials, error) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()

	if st.PDFBlocked {
		return models.QuotePDFRequest{}, Credentials{}, ErrPDFBlocked
	}
	if c := strings.TrimSpace(cliente); c != "" {
		st.Cliente = c
	}
	if st.Cliente == "" {
		return models.QuotePDFRequest{}, Credentials{}, ErrClienteRequiredPDF
	}
	if len(st.Rows) == 0 {
		return models.QuotePDFRequest{}, Credentials{}, ErrNoRows
	}

	req := models.QuotePDFRequest{Cliente: st.Cliente, Items: make([]models.QuotePDFItem, 0, len(st.Rows))}
	for _, row := range st.Rows {
		descripcion, proveedor, origen := s.catalog.Describe(st, row.SKU)

		cantidad := row.Cantidad
		if cantidad < 1 {
			cantidad = 1
		}
		item := models.QuotePDFItem{
			SKU:               row.SKU,
			Descripcion:       descripcion,
			Cantidad:          cantidad,
			PrecioMaximo:      row.PrecioMaximo,
			PrecioMaximoLista: row.PrecioMaximoLista,
			PrecioVendedorMin: row.PrecioVendedorMin,
			PrecioMinimoLista: row.PrecioMinimoLista,
			MontoPropuesto:    proposedOrMinimum(row),
			Proveedor:         proveedor,
			Origen:            origen,
		}
		if item.PrecioMaximoLista == nil {
			item.PrecioMaximoLista = row.PrecioMaximo
		}
		if item.PrecioMinimoLista == nil {
			item.PrecioMinimoLista = row.PrecioVendedorMin
		}
		if row.LogoPath != "" {
			logo := row.LogoPath
			item.LogoPath = &logo
		}
		req.Items = append(req.Items, item)
	}
	return req, st.Credentials(), nil
}

// proposedOrMinimum returns the typed price, else precio_vendedor_min, else precio_minimo_lista, else 0
func proposedOrMinimum(row models.PriceRow) float64 {
	if monto, ok := utils.ParseMonto(row.MontoPropuesto); ok {
		return monto.InexactFloat64()
	}
	if v := models.Float(row.PrecioVendedorMin); v != 0 {
		return v
	}
	return models.Float(row.PrecioMinimoLista)
}

// Generate produces the quotation PDF. The backend renders it when it can; otherwise the
// local template is printed with headless Chrome. The result is archived when configured.
func (s *PDFService) Generate(ctx context.Context, clientID, cliente string) (*PDFResult, error) {
	req, cred, err := s.BuildRequest(ctx, clientID, cliente)
	if err != nil {
		return nil, err
	}

	zap.S().Infof("📥 GeneratePDF: client=%s cliente=%s items=%d", clientID, req.Cliente, len(req.Items))

	result := &PDFResult{Filename: QuotePDFFilename, Source: PDFSourceBackend}
	data, err := s.api.CotizacionPDF(ctx, cred, req)
	if err != nil {
		if !s.canFallback(err) {
			zap.S().Errorf("❌ GeneratePDF: backend failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrPDFFailed, err)
		}
		zap.S().Warnf("⚠️  GeneratePDF: backend failed (%v), rendering locally", err)
		data, err = s.RenderLocal(ctx, req)
		if err != nil {
			zap.S().Errorf("❌ GeneratePDF: local render failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrPDFFailed, err)
		}
		result.Source = PDFSourceLocal
	}
	result.Data = data

	if s.archiver != nil {
		name := ArchiveName(req.Cliente, s.store.Now())
		id, err := s.archiver.Archive(ctx, name, data)
		if err != nil {
			zap.S().Warnf("⚠️  GeneratePDF: archive failed: %v", err)
		} else {
			result.ArchiveID = id
			zap.S().Infof("📁 GeneratePDF: archived %s as %s", name, id)
		}
	}

	zap.S().Infof("✅ GeneratePDF: %d bytes from %s", len(data), result.Source)
	return result, nil
}

// canFallback reports whether a backend failure should be rendered locally.
// Auth and validation errors are surfaced instead.
func (s *PDFService) canFallback(err error) bool {
	if s.renderer == nil || s.tmpl == nil {
		return false
	}
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError ||
			apiErr.StatusCode == http.StatusNotFound ||
			apiErr.StatusCode == http.StatusMethodNotAllowed
	}
	return true
}

// Document builds the data of the local quotation template
func (s *PDFService) Document(ctx context.Context, req models.QuotePDFRequest) QuoteDocument {
	doc := QuoteDocument{
		Cliente: strings.ToUpper(req.Cliente),
		Fecha:   s.store.Now().Format("02/01/2006"),
		Items:   make([]QuoteDocumentItem, 0, len(req.Items)),
	}

	total := decimal.Zero
	for _, item := range req.Items {
		monto := decimal.NewFromFloat(item.MontoPropuesto)
		lineTotal := monto.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		total = total.Add(lineTotal)
		doc.Items = append(doc.Items, QuoteDocumentItem{
			SKU:         item.SKU,
			Cantidad:    item.Cantidad,
			Monto:       utils.FormatMXNCents(item.MontoPropuesto),
			Total:       utils.FormatMXNCents(lineTotal.InexactFloat64()),
			Descripcion: item.Descripcion,
			Proveedor:   item.Proveedor,
			Origen:      item.Origen,
		})
	}
	doc.Total = utils.FormatMXNCents(total.InexactFloat64())

	// Only the first item's logo heads the document
	if len(req.Items) > 0 && req.Items[0].LogoPath != nil && s.logos != nil {
		logo, err := s.logos.DataURI(ctx, *req.Items[0].LogoPath)
		if err != nil {
			zap.S().Warnf("⚠️  Quotation logo skipped: %v", err)
		} else {
			doc.Logo = template.URL(logo)
		}
	}
	return doc
}

// RenderLocal prints the quotation template to PDF
func (s *PDFService) RenderLocal(ctx context.Context, req models.QuotePDFRequest) ([]byte, error) {
	if s.renderer == nil || s.tmpl == nil {
		return nil, fmt.Errorf("local PDF rendering is not configured")
	}
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "quote_pdf.html", s.Document(ctx, req)); err != nil {
		return nil, fmt.Errorf("failed to render quotation template: %w", err)
	}
	return s.renderer.RenderPDF(ctx, buf.String())
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ArchiveName is the Drive file name of a quotation for cliente at t
func ArchiveName(cliente string, t time.Time) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(cliente), "_"), "_")
	if name == "" {
		name = "cliente"
	}
	return fmt.Sprintf("cotizacion_%s_%s.pdf", name, t.Format("20060102-150405"))
}
