package router

import (
	"net/http"

	"cotizador/app/controller"
	"cotizador/service"
)

type Controllers struct {
	Session       *controller.SessionController
	Quote         *controller.QuoteController
	Authorization *controller.AuthorizationController
	Dashboard     *controller.DashboardController
	Search        *controller.SearchController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every route on a new mux. Routes that need a session go through RequireAuth.
func SetupRoutes(controllers *Controllers, sessions *service.SessionService) http.Handler {
	mux := http.NewServeMux()
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return controller.RequireAuth(sessions, h)
	}

	// Ping endpoint
	mux.HandleFunc("GET /ping", pingHandler)

	// Page and session
	mux.HandleFunc("GET /{$}", controllers.Session.Index)
	mux.HandleFunc("GET /health", controllers.Session.Health)
	mux.HandleFunc("POST /login", controllers.Session.Login)
	mux.HandleFunc("POST /logout", controllers.Session.Logout)

	// Price query and quote rows
	mux.HandleFunc("POST /cotizacion/consultar", auth(controllers.Quote.Consultar))
	mux.HandleFunc("POST /cotizacion/monto", auth(controllers.Quote.Monto))
	mux.HandleFunc("POST /cotizacion/cantidad", auth(controllers.Quote.Cantidad))
	mux.HandleFunc("POST /cotizacion/blur", auth(controllers.Quote.Blur))
	mux.HandleFunc("GET /cotizacion/estado", auth(controllers.Quote.Estado))
	mux.HandleFunc("GET /cotizacion/sugerencias", auth(controllers.Quote.Sugerencias))
	mux.HandleFunc("POST /cotizacion/filas/agregar", auth(controllers.Quote.AgregarFila))
	mux.HandleFunc("POST /cotizacion/filas/quitar", auth(controllers.Quote.QuitarFila))
	mux.HandleFunc("POST /cotizacion/filas/limpiar", auth(controllers.Quote.LimpiarFilas))
	mux.HandleFunc("POST /cotizacion/pdf", auth(controllers.Quote.PDF))
	mux.HandleFunc("GET /cotizacion/export.csv", auth(controllers.Quote.ExportCSV))

	// Authorization requests
	mux.HandleFunc("GET /autorizaciones/formulario", auth(controllers.Authorization.Formulario))
	mux.HandleFunc("POST /autorizaciones/solicitar", auth(controllers.Authorization.Solicitar))
	mux.HandleFunc("POST /autorizaciones/descartar", auth(controllers.Authorization.Descartar))
	mux.HandleFunc("GET /autorizaciones/pendientes", auth(controllers.Authorization.Pendientes))
	mux.HandleFunc("GET /autorizaciones/mis-solicitudes", auth(controllers.Authorization.MisSolicitudes))
	mux.HandleFunc("GET /autorizaciones/procesadas", auth(controllers.Authorization.Procesadas))
	mux.HandleFunc("POST /autorizaciones/{id}/aprobar", auth(controllers.Authorization.Aprobar))
	mux.HandleFunc("POST /autorizaciones/{id}/rechazar", auth(controllers.Authorization.Rechazar))

	// Dashboard
	mux.HandleFunc("GET /dashboard", auth(controllers.Dashboard.Dashboard))
	mux.HandleFunc("GET /dashboard/vendedores.csv", auth(controllers.Dashboard.VendedoresCSV))

	// Typeahead and quote history
	mux.HandleFunc("GET /api/clientes", auth(controllers.Search.Clientes))
	mux.HandleFunc("GET /api/vendedores", auth(controllers.Search.Vendedores))
	mux.HandleFunc("GET /api/cotizaciones", auth(controllers.Search.Cotizaciones))

	return controller.WithClient(mux)
}
