package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cotizador/models"
	"cotizador/repository"
	"cotizador/utils"
)

// fakeAPI is an in-memory pricing backend. Unset funcs return zero values.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	healthErr  error
	loginToken string
	loginErr   error
	user       *models.UserInfo
	meErr      error
	productos  []models.Product

	listas         map[string][]models.PriceRow
	listasErr      error
	solicitud      *models.SolicitudAutorizacion
	lastSolicitud  models.SolicitudAutorizacionCreate
	pendientes     []models.SolicitudAutorizacion
	pdf            []byte
	pdfErr         error
	metrics        *models.DashboardMetrics
	metricsErr     error
	clientes       []models.Cliente
	vendedores     []models.Vendedor
	cotizaciones   []models.Cotizacion
	cotizacionErr  error
	lastAprobarID  int64
	lastRechazarID int64
}

var _ PricingAPIInterface = (*fakeAPI)(nil)

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Health(ctx context.Context, baseURL string) error {
	f.record("health")
	return f.healthErr
}

func (f *fakeAPI) Login(ctx context.Context, baseURL, username, password string) (string, error) {
	f.record("login")
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.loginToken, nil
}

func (f *fakeAPI) Me(ctx context.Context, cred Credentials) (*models.UserInfo, error) {
	f.record("me")
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.user == nil {
		return &models.UserInfo{Rol: "Vendedor"}, nil
	}
	return f.user, nil
}

func (f *fakeAPI) Productos(ctx context.Context, cred Credentials) ([]models.Product, error) {
	f.record("productos")
	return f.productos, nil
}

func (f *fakeAPI) Listas(ctx context.Context, cred Credentials, sku, transporte string) ([]models.PriceRow, error) {
	f.record("listas")
	if f.listasErr != nil {
		return nil, f.listasErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := append([]models.PriceRow(nil), f.listas[sku]...)
	for i := range rows {
		if rows[i].Transporte == "" {
			rows[i].Transporte = transporte
		}
	}
	return rows, nil
}

func (f *fakeAPI) SolicitarAutorizacion(ctx context.Context, cred Credentials, req models.SolicitudAutorizacionCreate) (*models.SolicitudAutorizacion, error) {
	f.record("solicitar")
	f.mu.Lock()
	f.lastSolicitud = req
	f.mu.Unlock()
	if f.solicitud != nil {
		return f.solicitud, nil
	}
	return &models.SolicitudAutorizacion{ID: 1, SKU: req.SKU, Estado: models.EstadoPendiente}, nil
}

func (f *fakeAPI) Pendientes(ctx context.Context, cred Credentials) ([]models.SolicitudAutorizacion, error) {
	f.record("pendientes")
	return f.pendientes, nil
}

func (f *fakeAPI) MisSolicitudes(ctx context.Context, cred Credentials) ([]models.SolicitudAutorizacion, error) {
	f.record("mis-solicitudes")
	return nil, nil
}

func (f *fakeAPI) Procesadas(ctx context.Context, cred Credentials) ([]models.SolicitudAutorizacion, error) {
	f.record("procesadas")
	return nil, nil
}

func (f *fakeAPI) Aprobar(ctx context.Context, cred Credentials, id int64, comentarios string) (*models.SolicitudAutorizacion, error) {
	f.record("aprobar")
	f.lastAprobarID = id
	return &models.SolicitudAutorizacion{ID: id, Estado: models.EstadoAprobada}, nil
}

func (f *fakeAPI) Rechazar(ctx context.Context, cred Credentials, id int64, comentarios string) (*models.SolicitudAutorizacion, error) {
	f.record("rechazar")
	f.lastRechazarID = id
	return &models.SolicitudAutorizacion{ID: id, Estado: models.EstadoRechazada}, nil
}

func (f *fakeAPI) CotizacionPDF(ctx context.Context, cred Credentials, req models.QuotePDFRequest) ([]byte, error) {
	f.record("pdf")
	if f.pdfErr != nil {
		return nil, f.pdfErr
	}
	return f.pdf, nil
}

func (f *fakeAPI) DashboardMetrics(ctx context.Context, cred Credentials, periodDays int, vendedor string) (*models.DashboardMetrics, error) {
	f.record("metrics")
	if f.metricsErr != nil {
		return nil, f.metricsErr
	}
	if f.metrics == nil {
		return &models.DashboardMetrics{PeriodDays: periodDays}, nil
	}
	return f.metrics, nil
}

func (f *fakeAPI) Clientes(ctx context.Context, cred Credentials, q string, limit int) ([]models.Cliente, error) {
	f.record("clientes")
	return f.clientes, nil
}

func (f *fakeAPI) Vendedores(ctx context.Context, cred Credentials, q string, limit int) ([]models.Vendedor, error) {
	f.record("vendedores")
	return f.vendedores, nil
}

func (f *fakeAPI) Cotizaciones(ctx context.Context, cred Credentials, q string, limit int) ([]models.Cotizacion, error) {
	f.record("cotizaciones")
	if f.cotizacionErr != nil {
		return nil, f.cotizacionErr
	}
	return f.cotizaciones, nil
}

var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

type fixture struct {
	api       *fakeAPI
	storage   *repository.MemoryStorageRepository
	clock     *utils.FakeClock
	store     *StateStore
	catalog   *CatalogService
	debouncer *utils.Debouncer
	quotes    *QuoteService
	sessions  *SessionService
}

func newFixture(t *testing.T, api *fakeAPI) *fixture {
	t.Helper()
	storage := repository.NewMemoryStorageRepository()
	clock := utils.NewFakeClock(testNow)
	store := NewStateStore(storage, "http://localhost:8000", clock)
	catalog := NewCatalogService(api)
	debouncer := utils.NewDebouncer(time.Hour)
	t.Cleanup(debouncer.Stop)

	return &fixture{
		api:       api,
		storage:   storage,
		clock:     clock,
		store:     store,
		catalog:   catalog,
		debouncer: debouncer,
		quotes:    NewQuoteService(api, store, catalog, debouncer),
		sessions:  NewSessionService(api, store, catalog, debouncer, 30*time.Minute, time.Minute),
	}
}

// loggedIn seeds a session for clientID with role
func (f *fixture) loggedIn(t *testing.T, clientID, role string) *ClientState {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.storage.SetItem(ctx, clientID, models.KeyAuthToken, "jwt-"+clientID))
	require.NoError(t, f.storage.SetItem(ctx, clientID, models.KeyUserRole, role))
	return f.store.Get(ctx, clientID)
}

func priceRow(sku string, maxLista, vendedorMin float64) models.PriceRow {
	return models.PriceRow{
		SKU:               sku,
		Categoria:         "General",
		PrecioMaximoLista: models.FloatPtr(maxLista),
		PrecioVendedorMin: models.FloatPtr(vendedorMin),
		LandedCostMXN:     models.FloatPtr(vendedorMin * 0.8),
	}
}
