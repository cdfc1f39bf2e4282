package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/pricing"
	"cotizador/utils"
)

// Page cards
const (
	CardLogin          = "login"
	CardCotizacion     = "cotizacion"
	CardProductDetails = "product-details"
	CardCotizaciones   = "cotizaciones"
	CardDashboard      = "dashboard"
)

// ErrMissingCredentials is returned when username or password is empty
var ErrMissingCredentials = errors.New("Ingrese usuario y contraseña")

// ErrNotLoggedIn is returned by operations that need a session
var ErrNotLoggedIn = errors.New("Sesión no iniciada. Inicia sesión para continuar.")

const expiredMessage = "Sesión expirada por inactividad. Por favor, inicia sesión nuevamente."

// PageView is what the page shows for one client
type PageView struct {
	LoggedIn     bool
	BaseURL      string
	Role         string
	Status       string
	Expired      bool
	View         pricing.RoleView
	VisibleCards []string
}

// Shows reports whether card or section is visible
func (p PageView) Shows(card string) bool {
	for _, c := range p.VisibleCards {
		if c == card {
			return true
		}
	}
	return false
}

// SessionService handles login, logout and the inactivity timeout
type SessionService struct {
	api       PricingAPIInterface
	store     *StateStore
	catalog   *CatalogService
	debouncer *utils.Debouncer
	timeout   time.Duration
	interval  time.Duration
}

// NewSessionService creates a new SessionService
func NewSessionService(
	api PricingAPIInterface,
	store *StateStore,
	catalog *CatalogService,
	debouncer *utils.Debouncer,
	timeout time.Duration,
	interval time.Duration,
) *SessionService {
	return &SessionService{
		api:       api,
		store:     store,
		catalog:   catalog,
		debouncer: debouncer,
		timeout:   timeout,
		interval:  interval,
	}
}

// ProbeBackend sets the initial status line from GET /health
func (s *SessionService) ProbeBackend(ctx context.Context, clientID string) string {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	baseURL := st.BaseURL
	loggedIn := st.LoggedIn()
	st.Unlock()

	if loggedIn {
		st.Lock()
		defer st.Unlock()
		return st.Status
	}

	status := "Conectado (autenticar)"
	if err := s.api.Health(ctx, baseURL); err != nil {
		status = "Sin conexión"
	}

	st.Lock()
	if !st.Expired {
		st.Status = status
	}
	status = st.Status
	st.Unlock()
	return status
}

// Login authenticates clientID against apiURL and loads the catalog and role
func (s *SessionService) Login(ctx context.Context, clientID string, req models.LoginRequest) (*models.LoginResponse, error) {
	st := s.store.Get(ctx, clientID)
	baseURL := strings.TrimRight(strings.TrimSpace(req.APIURL), "/")
	username := strings.TrimSpace(req.Username)

	st.Lock()
	if baseURL == "" {
		baseURL = st.BaseURL
	}
	st.BaseURL = baseURL
	st.Expired = false
	st.Status = "Conectando..."
	st.Unlock()

	zap.S().Infof("📥 Login: client=%s user=%s backend=%s", clientID, username, baseURL)

	if err := s.api.Health(ctx, baseURL); err != nil {
		return nil, s.failLogin(ctx, st, ErrBackendUnavailable)
	}

	if username == "" || req.Password == "" {
		st.Lock()
		st.Status = ErrMissingCredentials.Error()
		st.Unlock()
		return nil, ErrMissingCredentials
	}

	token, err := s.api.Login(ctx, baseURL, username, req.Password)
	if err != nil {
		return nil, s.failLogin(ctx, st, err)
	}

	st.Lock()
	st.Auth = token
	st.Unlock()
	if err := s.store.Persist(ctx, clientID, models.KeyAuthToken, token); err != nil {
		zap.S().Warnf("⚠️  Login: could not persist token for %s: %v", clientID, err)
	}

	var warnings []string
	count, err := s.catalog.Load(ctx, st)
	if err != nil {
		zap.S().Warnf("⚠️  Login: catalog not loaded for %s: %v", clientID, err)
		warnings = append(warnings, err.Error())
	}

	st.Lock()
	cred := st.Credentials()
	st.Unlock()
	user, err := s.api.Me(ctx, cred)
	if err != nil {
		return nil, s.failLogin(ctx, st, err)
	}

	if err := s.store.Persist(ctx, clientID, models.KeyUserRole, user.Rol); err != nil {
		zap.S().Warnf("⚠️  Login: could not persist role for %s: %v", clientID, err)
	}
	if err := s.store.Persist(ctx, clientID, models.KeyAPIURL, baseURL); err != nil {
		zap.S().Warnf("⚠️  Login: could not persist api url for %s: %v", clientID, err)
	}

	st.Lock()
	st.UserRole = user.Rol
	st.LastActivity = s.store.Now()
	st.Status = fmt.Sprintf("Conectado. %d productos cargados.", count)
	status := st.Status
	st.Unlock()

	zap.S().Infof("✅ Login: client=%s role=%s products=%d", clientID, user.Rol, count)
	return &models.LoginResponse{
		Role:         user.Rol,
		ProductCount: count,
		Status:       status,
		Warnings:     warnings,
	}, nil
}

// failLogin clears the partial session and records the error as status
func (s *SessionService) failLogin(ctx context.Context, st *ClientState, cause error) error {
	st.Lock()
	st.Auth = ""
	st.UserRole = ""
	st.Status = "Error: " + cause.Error()
	clientID := st.ClientID
	st.Unlock()

	if err := s.store.Forget(ctx, clientID, models.KeyAuthToken, models.KeyUserRole); err != nil {
		zap.S().Warnf("⚠️  Login: could not clear storage for %s: %v", clientID, err)
	}
	zap.S().Warnf("❌ Login failed for %s: %v", clientID, cause)
	return cause
}

// Logout clears the session keys and resets the page to the login card
func (s *SessionService) Logout(ctx context.Context, clientID string) error {
	return s.endSession(ctx, clientID, "Sesión cerrada correctamente.", false)
}

func (s *SessionService) endSession(ctx context.Context, clientID, status string, expired bool) error {
	st := s.store.Get(ctx, clientID)

	s.debouncer.CancelPrefix(clientID + "|")

	st.Lock()
	st.resetSession()
	st.Status = status
	st.Expired = expired
	st.Unlock()

	if err := s.store.Forget(ctx, clientID, models.KeyAuthToken, models.KeyUserRole); err != nil {
		return fmt.Errorf("failed to clear session storage: %w", err)
	}
	zap.S().Infof("👋 Session ended for %s: %s", clientID, status)
	return nil
}

// Touch records activity for clientID
func (s *SessionService) Touch(ctx context.Context, clientID string) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	st.LastActivity = s.store.Now()
	st.Unlock()
}

// ExpireIdle logs out every session idle for longer than the timeout and returns their ids
func (s *SessionService) ExpireIdle(ctx context.Context) []string {
	now := s.store.Now()
	var expired []string
	for _, st := range s.store.Snapshot() {
		st.Lock()
		idle := st.LoggedIn() && now.Sub(st.LastActivity) > s.timeout
		clientID := st.ClientID
		st.Unlock()
		if !idle {
			continue
		}
		if err := s.endSession(ctx, clientID, expiredMessage, true); err != nil {
			zap.S().Errorf("❌ Could not expire session %s: %v", clientID, err)
			continue
		}
		expired = append(expired, clientID)
	}
	return expired
}

// RunWatchdog checks for idle sessions every interval until ctx is done
func (s *SessionService) RunWatchdog(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ids := s.ExpireIdle(ctx); len(ids) > 0 {
				zap.S().Infof("⏱️  Expired %d idle sessions", len(ids))
			}
		}
	}
}

// View returns what the page shows for clientID
func (s *SessionService) View(ctx context.Context, clientID string) PageView {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()

	pv := PageView{
		LoggedIn:     st.LoggedIn(),
		BaseURL:      st.BaseURL,
		Role:         st.UserRole,
		Status:       st.Status,
		Expired:      st.Expired,
		VisibleCards: []string{CardLogin},
	}
	if !pv.LoggedIn {
		return pv
	}

	pv.View = pricing.ViewFor(st.UserRole)
	pv.VisibleCards = append(pv.VisibleCards, CardCotizacion)
	if len(st.Rows) > 0 {
		pv.VisibleCards = append(pv.VisibleCards, CardProductDetails)
	}
	pv.VisibleCards = append(pv.VisibleCards, CardCotizaciones, CardDashboard)
	for _, section := range []string{
		pricing.SectionSolicitar,
		pricing.SectionMisSolicitudes,
		pricing.SectionPendientes,
		pricing.SectionProcesadas,
	} {
		if pv.View.Sections[section] {
			pv.VisibleCards = append(pv.VisibleCards, section)
		}
	}
	return pv
}

// Credentials returns the backend credentials of a logged in client
func (s *SessionService) Credentials(ctx context.Context, clientID string) (Credentials, error) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()
	if !st.LoggedIn() {
		return Credentials{}, ErrNotLoggedIn
	}
	return st.Credentials(), nil
}

// Resume reloads the catalog of a session restored from storage. Failures only warn.
func (s *SessionService) Resume(ctx context.Context, clientID string) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	needed := st.LoggedIn() && len(st.Productos) == 0
	if needed && st.LastActivity.IsZero() {
		st.LastActivity = s.store.Now()
	}
	st.Unlock()
	if !needed {
		return
	}
	if _, err := s.catalog.Load(ctx, st); err != nil {
		zap.S().Warnf("⚠️  Resume: catalog not loaded for %s: %v", clientID, err)
		st.Lock()
		st.Toast = err.Error()
		st.Unlock()
	}
}
