package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"cotizador/models"
)

// Typeahead fields
const (
	FieldCliente  = "cliente"
	FieldVendedor = "vendedor"
)

const (
	typeaheadLimit       = 10
	MaxCotizacionRows    = 200
	DefaultCotizacionMax = 20
)

// CotizacionRow is one formatted row of the quote history table
type CotizacionRow struct {
	ID             int64
	Cliente        string
	Vendedor       string
	NumeroCliente  string
	NumeroVendedor string
	Fecha          string
}

// SearchService serves the cliente/vendedor typeahead and the quote history
type SearchService struct {
	api   PricingAPIInterface
	delay time.Duration

	mu  sync.Mutex
	seq map[string]uint64
}

// NewSearchService creates a new SearchService. Typeahead lookups wait delay and are
// dropped when a newer lookup for the same client and field arrives meanwhile.
func NewSearchService(api PricingAPIInterface, delay time.Duration) *SearchService {
	return &SearchService{api: api, delay: delay, seq: make(map[string]uint64)}
}

// settle waits out the debounce window and reports whether this call is still the latest one
func (s *SearchService) settle(ctx context.Context, key string) bool {
	s.mu.Lock()
	s.seq[key]++
	mine := s.seq[key]
	s.mu.Unlock()

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			s.release(key, mine)
			return false
		case <-t.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[key] != mine {
		return false
	}
	delete(s.seq, key)
	return true
}

// release hands the latest slot back to the previous lookup when a canceled call still holds it
func (s *SearchService) release(key string, mine uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[key] != mine {
		return
	}
	if mine <= 1 {
		delete(s.seq, key)
		return
	}
	s.seq[key] = mine - 1
}

// Typeahead returns the dropdown entries for field. Empty queries, superseded
// lookups and backend errors all give an empty list.
func (s *SearchService) Typeahead(ctx context.Context, clientID string, cred Credentials, field, q string) []models.TypeaheadItem {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.TypeaheadItem{}
	}
	if !s.settle(ctx, clientID+"|"+field) {
		return []models.TypeaheadItem{}
	}

	switch field {
	case FieldCliente:
		list, err := s.api.Clientes(ctx, cred, q, typeaheadLimit)
		if err != nil {
			zap.S().Debugf("Typeahead: clientes %q failed: %v", q, err)
			return []models.TypeaheadItem{}
		}
		items := make([]models.TypeaheadItem, 0, len(list))
		for _, c := range list {
			items = append(items, models.TypeaheadItem{ID: c.ID, Label: withCode(c.Nombre, c.Codigo)})
		}
		return items
	case FieldVendedor:
		list, err := s.api.Vendedores(ctx, cred, q, typeaheadLimit)
		if err != nil {
			zap.S().Debugf("Typeahead: vendedores %q failed: %v", q, err)
			return []models.TypeaheadItem{}
		}
		items := make([]models.TypeaheadItem, 0, len(list))
		for _, v := range list {
			items = append(items, models.TypeaheadItem{ID: v.ID, Label: withCode(v.NombreCompleto, v.Username)})
		}
		return items
	}
	return []models.TypeaheadItem{}
}

func withCode(name, code string) string {
	if code == "" {
		return name
	}
	return name + " (" + code + ")"
}

// Cotizaciones searches the quote history. A 404 from the backend means no results.
func (s *SearchService) Cotizaciones(ctx context.Context, cred Credentials, q string, limit int) ([]CotizacionRow, error) {
	if limit <= 0 {
		limit = DefaultCotizacionMax
	}
	list, err := s.api.Cotizaciones(ctx, cred, strings.TrimSpace(q), limit)
	if err != nil {
		var apiErr *models.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return []CotizacionRow{}, nil
		}
		return nil, errors.New("No se pudieron obtener cotizaciones: " + err.Error())
	}

	if len(list) > MaxCotizacionRows {
		list = list[:MaxCotizacionRows]
	}
	rows := make([]CotizacionRow, 0, len(list))
	for _, c := range list {
		rows = append(rows, CotizacionRow{
			ID:             c.ID,
			Cliente:        dashIfBlank(c.Cliente),
			Vendedor:       dashIfBlank(c.Vendedor),
			NumeroCliente:  dashIfBlank(c.NumeroCliente),
			NumeroVendedor: dashIfBlank(c.NumeroVendedor),
			Fecha:          c.FechaCotizacion.DateTimeMX(),
		})
	}
	return rows, nil
}

// ParseLimit reads a limit query value, falling back to def
func ParseLimit(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
