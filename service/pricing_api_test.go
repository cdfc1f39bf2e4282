package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cotizador/models"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestPricingAPILoginBearer(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("password") != "secreto" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Usuario o contraseña incorrectos"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(models.TokenResponse{AccessToken: "jwt-abc", TokenType: "bearer"})
	})
	api := NewPricingAPI(5*time.Second, models.AuthSchemeBearer, "/pricing/listas")

	token, err := api.Login(context.Background(), srv.URL+"/", "ana", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)

	_, err = api.Login(context.Background(), srv.URL, "ana", "mal")
	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Usuario o contraseña incorrectos", apiErr.Detail)
	assert.Equal(t, "Error 401: Usuario o contraseña incorrectos", err.Error())
}

func TestPricingAPILoginServerError(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Help", "Reintenta en unos minutos")
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	api := NewPricingAPI(5*time.Second, models.AuthSchemeBearer, "/pricing/listas")

	_, err := api.Login(context.Background(), srv.URL, "ana", "x")
	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Reintenta en unos minutos", apiErr.Help)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestPricingAPILoginWithoutDetail(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	api := NewPricingAPI(5*time.Second, models.AuthSchemeBearer, "/pricing/listas")

	_, err := api.Login(context.Background(), srv.URL, "ana", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPricingAPIBasicLoginIsLocal(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("ana:secreto")), r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(models.UserInfo{Username: "ana", Rol: "Admin"})
	})
	api := NewPricingAPI(5*time.Second, models.AuthSchemeBasic, "/pricing/listas")

	token, err := api.Login(context.Background(), srv.URL, "ana", "secreto")
	require.NoError(t, err)
	assert.Zero(t, calls.Load())

	user, err := api.Me(context.Background(), Credentials{BaseURL: srv.URL, Token: token})
	require.NoError(t, err)
	assert.Equal(t, "Admin", user.Rol)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPricingAPIListasSendsBearerAndQuery(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "/pricing/listas", r.URL.Path)
		assert.Equal(t, "A 1", r.URL.Query().Get("sku"))
		assert.Equal(t, models.TransporteAereo, r.URL.Query().Get("transporte"))
		_, _ = w.Write([]byte(`[{"sku":"A 1","transporte":"Aereo","precio_maximo_lista":1000,"precio_minimo_lista":null}]`))
	})
	api := NewPricingAPI(5*time.Second, models.AuthSchemeBearer, "/pricing/listas")

	rows, err := api.Listas(context.Background(), Credentials{BaseURL: srv.URL, Token: "jwt-abc"}, "A 1", models.TransporteAereo)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1000.0, rows[0].MaxPrice())
	assert.Nil(t, rows[0].PrecioMinimoLista)
}

func TestPricingAPIErrorDetail(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		help        string
		want        string
	}{
		{"string detail", "application/json", `{"detail":"SKU no encontrado"}`, "", "Error 404: SKU no encontrado"},
		{"structured detail", "application/json", `{"detail":[{"loc":["sku"]}]}`, "", `Error 404: [{"loc":["sku"]}]`},
		{"broken json", "application/json", `{`, "", "Error 404: Error inesperado al procesar la respuesta del servidor."},
		{"plain text with help", "text/plain", "no existe", "Revisa el SKU", "Error 404: no existe\nSugerencia: Revisa el SKU"},
		{"empty body", "text/plain", "", "", "Error 404: Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				if tt.help != "" {
					w.Header().Set("X-Help", tt.help)
				}
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(tt.body))
			})
			api := NewPricingAPI(5*time.Second, models.AuthSchemeBearer, "/pricing/listas")

			_, err := api.Productos(context.Background(), Credentials{BaseURL: srv.URL, Token: "t"})
			var apiErr *models.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestPricingAPIRespondSendsComentarios(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/autorizaciones/9/aprobar", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "visto bueno", body["comentarios"])
		_, _ = w.Write([]byte(`{"id":9,"estado":"Aprobada","fecha_solicitud":"2025-03-01T09:15:00.123456"}`))
	})
	api := NewPricingAPI(5*time.Second, models.AuthSchemeBearer, "/pricing/listas")

	out, err := api.Aprobar(context.Background(), Credentials{BaseURL: srv.URL, Token: "t"}, 9, "visto bueno")
	require.NoError(t, err)
	assert.Equal(t, models.EstadoAprobada, out.Estado)
	assert.Equal(t, "01/03/2025", out.FechaSolicitud.DateMX())
}

func TestPricingAPIHealth(t *testing.T) {
	var down atomic.Bool
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
	api := NewPricingAPI(5*time.Second, models.AuthSchemeBearer, "/pricing/listas")

	assert.NoError(t, api.Health(context.Background(), srv.URL))
	down.Store(true)
	assert.ErrorIs(t, api.Health(context.Background(), srv.URL), ErrBackendUnavailable)
	assert.ErrorIs(t, api.Health(context.Background(), "http://127.0.0.1:1"), ErrBackendUnavailable)
}
