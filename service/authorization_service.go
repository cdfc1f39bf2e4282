package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/pricing"
	"cotizador/utils"
)

// Validation errors of the request form
var (
	ErrSKURequired           = errors.New("El SKU es obligatorio")
	ErrPrecioInvalido        = errors.New("El precio propuesto debe ser mayor a 0")
	ErrJustificacionRequired = errors.New("La justificación es obligatoria")
	ErrForbiddenSection      = errors.New("Tu rol no tiene acceso a esta sección")
	ErrInvalidID             = errors.New("id inválido")
)

// AuthorizationService handles the discount authorization workflow
type AuthorizationService struct {
	api   PricingAPIInterface
	store *StateStore
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(api PricingAPIInterface, store *StateStore) *AuthorizationService {
	return &AuthorizationService{api: api, store: store}
}

// Form returns the request form pre-filled from the last blocked check.
// Without one it falls back to the first row that has a warning.
func (s *AuthorizationService) Form(ctx context.Context, clientID string) models.AuthorizationForm {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()

	form := models.AuthorizationForm{Cliente: st.Cliente, Cantidad: 1}
	if p := st.PendingAuth; p != nil {
		form.SKU = p.SKU
		form.Transporte = p.Row.Transporte
		if p.Row.Cantidad > 0 {
			form.Cantidad = p.Row.Cantidad
		}
		if i := st.findRow(p.SKU); i >= 0 {
			form.Precio = st.Rows[i].MontoPropuesto
		} else {
			form.Precio = p.Row.MontoPropuesto
		}
		return form
	}

	for _, row := range st.Rows {
		if st.Warnings[row.SKU] != "" {
			form.SKU = row.SKU
			form.Precio = row.MontoPropuesto
			form.Transporte = row.Transporte
			break
		}
	}
	return form
}

// FormForSKU returns the request form for a row picked directly in the table
func (s *AuthorizationService) FormForSKU(ctx context.Context, clientID, sku string) models.AuthorizationForm {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()

	form := models.AuthorizationForm{SKU: sku, Cliente: st.Cliente, Cantidad: 1}
	if i := st.findRow(sku); i >= 0 {
		form.Precio = st.Rows[i].MontoPropuesto
		form.Transporte = st.Rows[i].Transporte
		if st.Rows[i].Cantidad > 0 {
			form.Cantidad = st.Rows[i].Cantidad
		}
	}
	return form
}

// Dismiss closes the over-limit notice without requesting authorization
func (s *AuthorizationService) Dismiss(ctx context.Context, clientID string) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	st.PendingAuth = nil
	st.Unlock()
}

// Solicitar validates the form and submits the authorization request
func (s *AuthorizationService) Solicitar(ctx context.Context, clientID string, form models.AuthorizationForm) (*models.SolicitudAutorizacion, error) {
	sku := strings.TrimSpace(form.SKU)
	if sku == "" {
		return nil, ErrSKURequired
	}
	precio, ok := utils.ParseMonto(form.Precio)
	if !ok || !precio.IsPositive() {
		return nil, ErrPrecioInvalido
	}
	justificacion := strings.TrimSpace(form.Justificacion)
	if justificacion == "" {
		return nil, ErrJustificacionRequired
	}

	st := s.store.Get(ctx, clientID)
	st.Lock()
	if !st.LoggedIn() {
		st.Unlock()
		return nil, ErrNotLoggedIn
	}
	cred := st.Credentials()
	transporte := strings.TrimSpace(form.Transporte)
	if transporte == "" {
		if i := st.findRow(sku); i >= 0 {
			transporte = st.Rows[i].Transporte
		}
	}
	st.Unlock()
	if transporte == "" {
		transporte = models.TransporteMaritimo
	}

	req := models.SolicitudAutorizacionCreate{
		SKU:             sku,
		Transporte:      transporte,
		PrecioPropuesto: precio.InexactFloat64(),
		Justificacion:   justificacion,
	}
	if cliente := strings.TrimSpace(form.Cliente); cliente != "" {
		req.Cliente = &cliente
	}
	if form.Cantidad > 0 {
		cantidad := form.Cantidad
		req.Cantidad = &cantidad
	}

	zap.S().Infof("📥 Solicitar: client=%s sku=%s precio=%s", clientID, sku, precio.String())
	out, err := s.api.SolicitarAutorizacion(ctx, cred, req)
	if err != nil {
		return nil, err
	}

	st.Lock()
	st.PendingAuth = nil
	st.Status = fmt.Sprintf("✅ Solicitud enviada. ID: %d", out.ID)
	st.Unlock()

	zap.S().Infof("✅ Solicitud %d created for %s", out.ID, sku)
	return out, nil
}

// credentialsFor checks the role may see section and returns the backend credentials
func (s *AuthorizationService) credentialsFor(ctx context.Context, clientID, section string) (Credentials, error) {
	st := s.store.Get(ctx, clientID)
	st.Lock()
	defer st.Unlock()
	if !st.LoggedIn() {
		return Credentials{}, ErrNotLoggedIn
	}
	if !pricing.ViewFor(st.UserRole).Sections[section] {
		return Credentials{}, ErrForbiddenSection
	}
	return st.Credentials(), nil
}

// Pendientes lists the requests waiting for review
func (s *AuthorizationService) Pendientes(ctx context.Context, clientID string) ([]models.SolicitudAutorizacion, error) {
	cred, err := s.credentialsFor(ctx, clientID, pricing.SectionPendientes)
	if err != nil {
		return nil, err
	}
	return s.api.Pendientes(ctx, cred)
}

// MisSolicitudes lists the requests of the current user
func (s *AuthorizationService) MisSolicitudes(ctx context.Context, clientID string) ([]models.SolicitudAutorizacion, error) {
	cred, err := s.credentialsFor(ctx, clientID, pricing.SectionMisSolicitudes)
	if err != nil {
		return nil, err
	}
	return s.api.MisSolicitudes(ctx, cred)
}

// Procesadas lists the requests already approved or rejected
func (s *AuthorizationService) Procesadas(ctx context.Context, clientID string) ([]models.SolicitudAutorizacion, error) {
	cred, err := s.credentialsFor(ctx, clientID, pricing.SectionProcesadas)
	if err != nil {
		return nil, err
	}
	return s.api.Procesadas(ctx, cred)
}

// Aprobar approves request id. The backend decides whether the user may.
func (s *AuthorizationService) Aprobar(ctx context.Context, clientID string, id int64, comentarios string) (*models.SolicitudAutorizacion, error) {
	cred, err := s.credentialsFor(ctx, clientID, pricing.SectionPendientes)
	if err != nil {
		return nil, err
	}
	zap.S().Infof("📥 Aprobar: client=%s id=%d", clientID, id)
	return s.api.Aprobar(ctx, cred, id, strings.TrimSpace(comentarios))
}

// Rechazar rejects request id. The backend decides whether the user may.
func (s *AuthorizationService) Rechazar(ctx context.Context, clientID string, id int64, comentarios string) (*models.SolicitudAutorizacion, error) {
	cred, err := s.credentialsFor(ctx, clientID, pricing.SectionPendientes)
	if err != nil {
		return nil, err
	}
	zap.S().Infof("📥 Rechazar: client=%s id=%d", clientID, id)
	return s.api.Rechazar(ctx, cred, id, strings.TrimSpace(comentarios))
}

// ParseID parses a request id from a path segment
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}
