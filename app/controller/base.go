package controller

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cotizador/models"
	"cotizador/service"
)

// ClientCookie identifies a browser across requests
const ClientCookie = "cotizador_client"

type ctxKey struct{}

// ClientID returns the browser id stored in the request context, or reads the cookie
func ClientID(r *http.Request) string {
	if id, ok := r.Context().Value(ctxKey{}).(string); ok {
		return id
	}
	if c, err := r.Cookie(ClientCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	return ""
}

// WithClient makes sure the browser carries a client id cookie and puts the id in the context
func WithClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ClientID(r)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequireAuth rejects requests without a session and records activity for the rest
func RequireAuth(sessions *service.SessionService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ClientID(r)
		if _, err := sessions.Credentials(r.Context(), id); err != nil {
			writeError(w, "RequireAuth", err)
			return
		}
		sessions.Touch(r.Context(), id)
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorf("❌ Error encoding response: %v", err)
	}
}

// setToast passes a message to the page toast
func setToast(w http.ResponseWriter, msg string) {
	if msg == "" {
		return
	}
	w.Header().Set("X-Toast", url.PathEscape(msg))
}

// writeError logs err and answers with its status, a toast and {"error": msg}
func writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.S().Errorf("❌ %s: %v", op, err)
	} else {
		zap.S().Warnf("⚠️  %s: %v", op, err)
	}
	setToast(w, err.Error())
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var apiErr *models.APIError
	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbiddenSection), errors.Is(err, service.ErrExportForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrPDFBlocked):
		return http.StatusConflict
	case errors.Is(err, service.ErrRowNotFound), errors.Is(err, service.ErrNothingToExport):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMissingCredentials),
		errors.Is(err, service.ErrClienteRequired),
		errors.Is(err, service.ErrClienteRequiredToAdd),
		errors.Is(err, service.ErrClienteRequiredPDF),
		errors.Is(err, service.ErrNoRows),
		errors.Is(err, service.ErrSKURequired),
		errors.Is(err, service.ErrPrecioInvalido),
		errors.Is(err, service.ErrJustificacionRequired),
		errors.Is(err, service.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}
	return http.StatusBadGateway
}

// render executes a named template, answering 500 when it fails
func render(w http.ResponseWriter, tmpl *template.Template, name string, data any) {
	var buf strings.Builder
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		zap.S().Errorf("❌ Error rendering %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(buf.String())); err != nil {
		zap.S().Errorf("❌ Error writing %s: %v", name, err)
	}
}

func formInt(r *http.Request, key string, def int) int {
	return service.ParseLimit(r.FormValue(key), def)
}
