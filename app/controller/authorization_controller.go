package controller

import (
	"html/template"
	"net/http"
	"strings"

	"cotizador/models"
	"cotizador/service"
)

// AuthorizationController handles the discount authorization requests
type AuthorizationController struct {
	auths    *service.AuthorizationService
	sessions *service.SessionService
	tmpl     *template.Template
}

// NewAuthorizationController creates a new AuthorizationController
func NewAuthorizationController(auths *service.AuthorizationService, sessions *service.SessionService, tmpl *template.Template) *AuthorizationController {
	return &AuthorizationController{auths: auths, sessions: sessions, tmpl: tmpl}
}

// Formulario handles GET /autorizaciones/formulario[?sku=]
func (c *AuthorizationController) Formulario(w http.ResponseWriter, r *http.Request) {
	id := ClientID(r)
	var form models.AuthorizationForm
	if sku := strings.TrimSpace(r.URL.Query().Get("sku")); sku != "" {
		form = c.auths.FormForSKU(r.Context(), id, sku)
	} else {
		form = c.auths.Form(r.Context(), id)
	}
	setToast(w, "Formulario de solicitud abierto. Completa la justificación y envía.")
	render(w, c.tmpl, "solicitud_form", form)
}

// Solicitar handles POST /autorizaciones/solicitar
// Form fields: sku, precio, cantidad, cliente, transporte, justificacion
func (c *AuthorizationController) Solicitar(w http.ResponseWriter, r *http.Request) {
	form := models.AuthorizationForm{
		SKU:           r.FormValue("sku"),
		Precio:        r.FormValue("precio"),
		Cantidad:      formInt(r, "cantidad", 0),
		Cliente:       r.FormValue("cliente"),
		Transporte:    r.FormValue("transporte"),
		Justificacion: r.FormValue("justificacion"),
	}
	out, err := c.auths.Solicitar(r.Context(), ClientID(r), form)
	if err != nil {
		writeError(w, "Solicitar", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     out.ID,
		"status": c.sessions.View(r.Context(), ClientID(r)).Status,
	})
}

// Descartar handles POST /autorizaciones/descartar
func (c *AuthorizationController) Descartar(w http.ResponseWriter, r *http.Request) {
	c.auths.Dismiss(r.Context(), ClientID(r))
	w.WriteHeader(http.StatusNoContent)
}

// Pendientes handles GET /autorizaciones/pendientes
func (c *AuthorizationController) Pendientes(w http.ResponseWriter, r *http.Request) {
	list, err := c.auths.Pendientes(r.Context(), ClientID(r))
	if err != nil {
		writeError(w, "Pendientes", err)
		return
	}
	render(w, c.tmpl, "pendientes", list)
}

// MisSolicitudes handles GET /autorizaciones/mis-solicitudes
func (c *AuthorizationController) MisSolicitudes(w http.ResponseWriter, r *http.Request) {
	list, err := c.auths.MisSolicitudes(r.Context(), ClientID(r))
	if err != nil {
		writeError(w, "MisSolicitudes", err)
		return
	}
	render(w, c.tmpl, "mis_solicitudes", list)
}

// Procesadas handles GET /autorizaciones/procesadas
func (c *AuthorizationController) Procesadas(w http.ResponseWriter, r *http.Request) {
	list, err := c.auths.Procesadas(r.Context(), ClientID(r))
	if err != nil {
		writeError(w, "Procesadas", err)
		return
	}
	data := struct {
		Items []models.SolicitudAutorizacion
		Empty string
	}{
		Items: list,
		Empty: c.sessions.View(r.Context(), ClientID(r)).View.ProcesadasEmpty,
	}
	render(w, c.tmpl, "procesadas", data)
}

// Aprobar handles POST /autorizaciones/{id}/aprobar (comentarios)
func (c *AuthorizationController) Aprobar(w http.ResponseWriter, r *http.Request) {
	c.review(w, r, true)
}

// Rechazar handles POST /autorizaciones/{id}/rechazar (comentarios)
func (c *AuthorizationController) Rechazar(w http.ResponseWriter, r *http.Request) {
	c.review(w, r, false)
}

func (c *AuthorizationController) review(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := service.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, "Review", err)
		return
	}

	var out *models.SolicitudAutorizacion
	msg := "✅ Solicitud aprobada"
	if approve {
		out, err = c.auths.Aprobar(r.Context(), ClientID(r), id, r.FormValue("comentarios"))
	} else {
		msg = "❌ Solicitud rechazada"
		out, err = c.auths.Rechazar(r.Context(), ClientID(r), id, r.FormValue("comentarios"))
	}
	if err != nil {
		writeError(w, "Review", err)
		return
	}
	setToast(w, msg)
	writeJSON(w, http.StatusOK, out)
}
