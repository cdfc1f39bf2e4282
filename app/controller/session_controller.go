package controller

import (
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/service"
)

// SessionController serves the page and the login/logout actions
type SessionController struct {
	sessions      *service.SessionService
	quotes        *service.QuoteService
	auths         *service.AuthorizationService
	tmpl          *template.Template
	discountDelay time.Duration
}

// NewSessionController creates a new SessionController
func NewSessionController(
	sessions *service.SessionService,
	quotes *service.QuoteService,
	auths *service.AuthorizationService,
	tmpl *template.Template,
	discountDelay time.Duration,
) *SessionController {
	return &SessionController{
		sessions:      sessions,
		quotes:        quotes,
		auths:         auths,
		tmpl:          tmpl,
		discountDelay: discountDelay,
	}
}

type pageData struct {
	Page            service.PageView
	Cliente         string
	Queries         []models.SkuQuery
	Landed          *service.LandedResult
	PDFBlocked      bool
	Solicitud       models.AuthorizationForm
	DiscountDelayMS int64
}

// Index handles GET /
func (c *SessionController) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := ClientID(r)

	c.sessions.ProbeBackend(ctx, id)
	c.sessions.Resume(ctx, id)
	page := c.sessions.View(ctx, id)

	data := pageData{Page: page, DiscountDelayMS: c.discountDelay.Milliseconds()}
	if page.LoggedIn {
		c.sessions.Touch(ctx, id)
		data.Cliente, data.Queries = c.quotes.FormRows(ctx, id)
		data.Landed = c.quotes.Current(ctx, id)
		if data.Landed != nil {
			data.PDFBlocked = data.Landed.PDFBlocked
		}
		data.Solicitud = c.auths.Form(ctx, id)
		setToast(w, c.quotes.Status(ctx, id).Toast)
	}
	render(w, c.tmpl, "index.html", data)
}

// Login handles POST /login with form fields api_url, username and password
func (c *SessionController) Login(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("📥 Login: Received %s request to %s", r.Method, r.URL.Path)

	if err := r.ParseForm(); err != nil {
		writeError(w, "Login", err)
		return
	}
	req := models.LoginRequest{
		APIURL:   r.FormValue("api_url"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	resp, err := c.sessions.Login(r.Context(), ClientID(r), req)
	if err != nil {
		writeError(w, "Login", err)
		return
	}
	for _, warning := range resp.Warnings {
		setToast(w, warning)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /logout
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.sessions.Logout(r.Context(), ClientID(r)); err != nil {
		writeError(w, "Logout", err)
		return
	}
	setToast(w, "Sesión cerrada correctamente.")
	writeJSON(w, http.StatusOK, map[string]string{"status": "Sesión cerrada correctamente."})
}

// Health handles GET /health, reporting whether the pricing backend answers
func (c *SessionController) Health(w http.ResponseWriter, r *http.Request) {
	status := c.sessions.ProbeBackend(r.Context(), ClientID(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
