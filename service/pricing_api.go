package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cotizador/models"
)

// ErrInvalidCredentials is returned when the backend rejects a login without detail
var ErrInvalidCredentials = errors.New("Credenciales inválidas")

// ErrBackendUnavailable is returned when the health check fails
var ErrBackendUnavailable = errors.New("No se pudo conectar al backend. Verifica la URL y que el backend esté corriendo.")

// PricingAPI calls the pricing backend over REST+JSON
type PricingAPI struct {
	client      *http.Client
	authScheme  string
	pricingPath string
}

// NewPricingAPI creates a new PricingAPI
func NewPricingAPI(timeout time.Duration, authScheme, pricingPath string) *PricingAPI {
	return &PricingAPI{
		client:      &http.Client{Timeout: timeout},
		authScheme:  authScheme,
		pricingPath: pricingPath,
	}
}

// Ensure PricingAPI implements PricingAPIInterface
var _ PricingAPIInterface = (*PricingAPI)(nil)

// authorization builds the Authorization header value for token
func (a *PricingAPI) authorization(token string) string {
	if a.authScheme == models.AuthSchemeBasic {
		return "Basic " + token
	}
	return "Bearer " + token
}

// do sends a request and decodes a JSON response into out (when out is non-nil).
// Non-2xx responses become *models.APIError.
func (a *PricingAPI) do(ctx context.Context, cred Credentials, method, path string, body any, out any) error {
	raw, _, err := a.doRaw(ctx, cred, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("Error de red o respuesta inválida: %w", err)
	}
	return nil
}

func (a *PricingAPI) doRaw(ctx context.Context, cred Credentials, method, path string, body any) ([]byte, http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(cred.BaseURL, "/")+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cred.Token != "" {
		req.Header.Set("Authorization", a.authorization(cred.Token))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		zap.S().Warnf("❌ %s %s: %v", method, path, err)
		return nil, nil, fmt.Errorf("Error de red o respuesta inválida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("Error de red o respuesta inválida: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp, raw)
		zap.S().Warnf("❌ %s %s: %d %s", method, path, apiErr.StatusCode, apiErr.Detail)
		return nil, nil, apiErr
	}
	return raw, resp.Header, nil
}

// decodeAPIError extracts the detail of an error response the way FastAPI shapes it
func decodeAPIError(resp *http.Response, raw []byte) *models.APIError {
	help := resp.Header.Get("X-Help")
	detail := strings.TrimSpace(string(raw))

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var body map[string]json.RawMessage
		if err := json.Unmarshal(raw, &body); err == nil {
			if d, ok := body["detail"]; ok {
				var s string
				if json.Unmarshal(d, &s) == nil {
					detail = s
				} else {
					detail = string(d)
				}
			}
		} else {
			detail = "Error inesperado al procesar la respuesta del servidor."
		}
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	return models.NewAPIError(resp.StatusCode, detail, help)
}

// Health checks GET /health
func (a *PricingAPI) Health(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrBackendUnavailable
	}
	return nil
}

// Login exchanges credentials for a session token.
// Bearer: POST /auth/login (form-urlencoded) returns access_token.
// Basic: the token is base64(username:password), checked later by /auth/me.
func (a *PricingAPI) Login(ctx context.Context, baseURL, username, password string) (string, error) {
	if a.authScheme == models.AuthSchemeBasic {
		return base64.StdEncoding.EncodeToString([]byte(username + ":" + password)), nil
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Error de red o respuesta inválida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("Error de red o respuesta inválida: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(raw, &body) == nil && body.Detail != "" {
			return "", models.NewAPIError(resp.StatusCode, body.Detail, resp.Header.Get("X-Help"))
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return "", models.NewAPIError(resp.StatusCode, http.StatusText(resp.StatusCode), resp.Header.Get("X-Help"))
		}
		return "", ErrInvalidCredentials
	}

	var token models.TokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", fmt.Errorf("Error de red o respuesta inválida: %w", err)
	}
	if token.AccessToken == "" {
		return "", ErrInvalidCredentials
	}
	return token.AccessToken, nil
}

// Me returns the current user
func (a *PricingAPI) Me(ctx context.Context, cred Credentials) (*models.UserInfo, error) {
	var user models.UserInfo
	if err := a.do(ctx, cred, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Productos returns the full product catalog
func (a *PricingAPI) Productos(ctx context.Context, cred Credentials) ([]models.Product, error) {
	var products []models.Product
	if err := a.do(ctx, cred, http.MethodGet, "/catalog/productos", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Listas returns the price list rows for one SKU and transport mode
func (a *PricingAPI) Listas(ctx context.Context, cred Credentials, sku, transporte string) ([]models.PriceRow, error) {
	params := url.Values{}
	params.Set("sku", sku)
	params.Set("transporte", transporte)

	var rows []models.PriceRow
	if err := a.do(ctx, cred, http.MethodGet, a.pricingPath+"?"+params.Encode(), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SolicitarAutorizacion submits an authorization request
func (a *PricingAPI) SolicitarAutorizacion(ctx context.Context, cred Credentials, req models.SolicitudAutorizacionCreate) (*models.SolicitudAutorizacion, error) {
	var out models.SolicitudAutorizacion
	if err := a.do(ctx, cred, http.MethodPost, "/autorizaciones/solicitar", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *PricingAPI) listSolicitudes(ctx context.Context, cred Credentials, path string) ([]models.SolicitudAutorizacion, error) {
	var out []models.SolicitudAutorizacion
	if err := a.do(ctx, cred, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Pendientes returns the requests waiting for the current user's review
func (a *PricingAPI) Pendientes(ctx context.Context, cred Credentials) ([]models.SolicitudAutorizacion, error) {
	return a.listSolicitudes(ctx, cred, "/autorizaciones/pendientes")
}

// MisSolicitudes returns the requests created by the current user
func (a *PricingAPI) MisSolicitudes(ctx context.Context, cred Credentials) ([]models.SolicitudAutorizacion, error) {
	return a.listSolicitudes(ctx, cred, "/autorizaciones/mis-solicitudes")
}

// Procesadas returns the requests already approved or rejected
func (a *PricingAPI) Procesadas(ctx context.Context, cred Credentials) ([]models.SolicitudAutorizacion, error) {
	return a.listSolicitudes(ctx, cred, "/autorizaciones/procesadas")
}

func (a *PricingAPI) respond(ctx context.Context, cred Credentials, id int64, action, comentarios string) (*models.SolicitudAutorizacion, error) {
	body := models.SolicitudRespuesta{}
	if comentarios != "" {
		body.Comentarios = &comentarios
	}
	var out models.SolicitudAutorizacion
	path := "/autorizaciones/" + strconv.FormatInt(id, 10) + "/" + action
	if err := a.do(ctx, cred, http.MethodPut, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Aprobar approves request id
func (a *PricingAPI) Aprobar(ctx context.Context, cred Credentials, id int64, comentarios string) (*models.SolicitudAutorizacion, error) {
	return a.respond(ctx, cred, id, "aprobar", comentarios)
}

// Rechazar rejects request id
func (a *PricingAPI) Rechazar(ctx context.Context, cred Credentials, id int64, comentarios string) (*models.SolicitudAutorizacion, error) {
	return a.respond(ctx, cred, id, "rechazar", comentarios)
}

// CotizacionPDF asks the backend to render the quotation PDF
func (a *PricingAPI) CotizacionPDF(ctx context.Context, cred Credentials, req models.QuotePDFRequest) ([]byte, error) {
	raw, _, err := a.doRaw(ctx, cred, http.MethodPost, "/cotizacion/pdf", req)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// DashboardMetrics returns aggregated sales metrics
func (a *PricingAPI) DashboardMetrics(ctx context.Context, cred Credentials, periodDays int, vendedor string) (*models.DashboardMetrics, error) {
	params := url.Values{}
	params.Set("periodDays", strconv.Itoa(periodDays))
	if vendedor != "" {
		params.Set("vendedor", vendedor)
	}

	var out models.DashboardMetrics
	if err := a.do(ctx, cred, http.MethodGet, "/api/dashboard/metrics?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func searchQuery(q string, limit int) string {
	params := url.Values{}
	if q != "" {
		params.Set("q", q)
	}
	params.Set("limit", strconv.Itoa(limit))
	return params.Encode()
}

// Clientes searches customers
func (a *PricingAPI) Clientes(ctx context.Context, cred Credentials, q string, limit int) ([]models.Cliente, error) {
	var out []models.Cliente
	if err := a.do(ctx, cred, http.MethodGet, "/api/clientes?"+searchQuery(q, limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Vendedores searches sales users
func (a *PricingAPI) Vendedores(ctx context.Context, cred Credentials, q string, limit int) ([]models.Vendedor, error) {
	var out []models.Vendedor
	if err := a.do(ctx, cred, http.MethodGet, "/api/vendedores?"+searchQuery(q, limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cotizaciones searches stored quotations
func (a *PricingAPI) Cotizaciones(ctx context.Context, cred Credentials, q string, limit int) ([]models.Cotizacion, error) {
	var out []models.Cotizacion
	if err := a.do(ctx, cred, http.MethodGet, "/api/cotizaciones?"+searchQuery(q, limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
