package service

import (
	"context"

	"cotizador/models"
)

// Credentials identify the backend and the session token for one client
type Credentials struct {
	BaseURL string
	Token   string
}

// PricingAPIInterface defines the contract for the remote pricing backend
type PricingAPIInterface interface {
	Health(ctx context.Context, baseURL string) error
	Login(ctx context.Context, baseURL, username, password string) (string, error)
	Me(ctx context.Context, cred Credentials) (*models.UserInfo, error)
	Productos(ctx context.Context, cred Credentials) ([]models.Product, error)
	Listas(ctx context.Context, cred Credentials, sku, transporte string) ([]models.PriceRow, error)
	SolicitarAutorizacion(ctx context.Context, cred Credentials, req models.SolicitudAutorizacionCreate) (*models.SolicitudAutorizacion, error)
	Pendientes(ctx context.Context, cred Credentials) ([]models.SolicitudAutorizacion, error)
	MisSolicitudes(ctx context.Context, cred Credentials) ([]models.SolicitudAutorizacion, error)
	Procesadas(ctx context.Context, cred Credentials) ([]models.SolicitudAutorizacion, error)
	Aprobar(ctx context.Context, cred Credentials, id int64, comentarios string) (*models.SolicitudAutorizacion, error)
	Rechazar(ctx context.Context, cred Credentials, id int64, comentarios string) (*models.SolicitudAutorizacion, error)
	CotizacionPDF(ctx context.Context, cred Credentials, req models.QuotePDFRequest) ([]byte, error)
	DashboardMetrics(ctx context.Context, cred Credentials, periodDays int, vendedor string) (*models.DashboardMetrics, error)
	Clientes(ctx context.Context, cred Credentials, q string, limit int) ([]models.Cliente, error)
	Vendedores(ctx context.Context, cred Credentials, q string, limit int) ([]models.Vendedor, error)
	Cotizaciones(ctx context.Context, cred Credentials, q string, limit int) ([]models.Cotizacion, error)
}
