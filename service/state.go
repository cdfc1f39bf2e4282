package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/repository"
	"cotizador/utils"
)

// PendingAuth is the context of the last check that went over the role ceiling
type PendingAuth struct {
	SKU     string
	Row     models.PriceRow
	Percent decimal.Decimal
	Allowed decimal.Decimal
	Role    string
}

// ClientState is the page state of one browser.
// Callers hold the embedded mutex while reading or writing fields.
type ClientState struct {
	sync.Mutex

	ClientID string
	BaseURL  string
	Auth     string
	UserRole string

	Productos    []models.Product
	productIndex map[string]models.Product

	Queries    []models.SkuQuery
	LandedData []models.PriceRow
	Rows       []models.PriceRow
	Cliente    string

	Warnings    map[string]string
	PDFBlocked  bool
	PendingAuth *PendingAuth

	LastActivity         time.Time
	DashboardInitialized bool
	Vendedores           []models.Vendedor
	latestVendedores     []models.VendedorSummary
	Status               string
	Toast                string
	Expired              bool
}

// Credentials returns the backend credentials of the state. Caller holds the lock.
func (s *ClientState) Credentials() Credentials {
	return Credentials{BaseURL: s.BaseURL, Token: s.Auth}
}

// LoggedIn reports whether the state carries a session token. Caller holds the lock.
func (s *ClientState) LoggedIn() bool {
	return s.Auth != ""
}

// findRow returns the index of the quote row for sku, or -1
func (s *ClientState) findRow(sku string) int {
	for i := range s.Rows {
		if s.Rows[i].SKU == sku {
			return i
		}
	}
	return -1
}

// product looks up a catalog product by SKU
func (s *ClientState) product(sku string) (models.Product, bool) {
	p, ok := s.productIndex[utils.NormalizeSKU(sku)]
	return p, ok
}

// setProductos replaces the catalog cache and its index
func (s *ClientState) setProductos(products []models.Product) {
	s.Productos = products
	s.productIndex = make(map[string]models.Product, len(products))
	for _, p := range products {
		s.productIndex[utils.NormalizeSKU(p.SKU)] = p
	}
}

// resetSession clears everything tied to the session, keeping BaseURL
func (s *ClientState) resetSession() {
	s.Auth = ""
	s.UserRole = ""
	s.setProductos(nil)
	s.Queries = []models.SkuQuery{{Cantidad: 1, Transporte: models.TransporteMaritimo}}
	s.LandedData = nil
	s.Rows = nil
	s.Cliente = ""
	s.Warnings = make(map[string]string)
	s.PDFBlocked = false
	s.PendingAuth = nil
	s.DashboardInitialized = false
	s.Vendedores = nil
	s.latestVendedores = nil
	s.Toast = ""
}

// StateStore keeps the page state of every client, hydrated from client storage
type StateStore struct {
	mu             sync.Mutex
	states         map[string]*ClientState
	storage        repository.StorageRepositoryInterface
	defaultBaseURL string
	clock          utils.Clock
}

// NewStateStore creates a new StateStore
func NewStateStore(storage repository.StorageRepositoryInterface, defaultBaseURL string, clock utils.Clock) *StateStore {
	return &StateStore{
		states:         make(map[string]*ClientState),
		storage:        storage,
		defaultBaseURL: defaultBaseURL,
		clock:          clock,
	}
}

// Get returns the state of clientID, creating it from client storage on first use
func (s *StateStore) Get(ctx context.Context, clientID string) *ClientState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[clientID]; ok {
		return st
	}

	st := &ClientState{
		ClientID:     clientID,
		BaseURL:      s.defaultBaseURL,
		LastActivity: s.clock.Now(),
	}
	st.resetSession()

	items, err := s.storage.Items(ctx, clientID)
	if err != nil {
		zap.S().Warnf("⚠️  Could not read client storage for %s: %v", clientID, err)
	}
	if v := items[models.KeyAPIURL]; v != "" {
		st.BaseURL = v
	}
	st.Auth = items[models.KeyAuthToken]
	st.UserRole = items[models.KeyUserRole]
	if st.Auth != "" {
		st.Status = "Sesión guardada (reautenticar si es necesario)."
	}

	s.states[clientID] = st
	return st
}

// Snapshot returns every known state
func (s *StateStore) Snapshot() []*ClientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ClientState, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st)
	}
	return out
}

// Persist writes a client storage key
func (s *StateStore) Persist(ctx context.Context, clientID, key, value string) error {
	return s.storage.SetItem(ctx, clientID, key, value)
}

// Forget removes client storage keys, ignoring keys that are already gone
func (s *StateStore) Forget(ctx context.Context, clientID string, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := s.storage.RemoveItem(ctx, clientID, key); err != nil && !errors.Is(err, repository.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Now returns the store clock time
func (s *StateStore) Now() time.Time {
	return s.clock.Now()
}
