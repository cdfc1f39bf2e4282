package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cotizador/models"
)

var searchCred = Credentials{BaseURL: "http://localhost:8000", Token: "jwt"}

func TestTypeaheadLabels(t *testing.T) {
	api := &fakeAPI{
		clientes: []models.Cliente{
			{ID: 1, Codigo: "C001", Nombre: "IMSS CENTRO"},
			{ID: 2, Nombre: "Sin código"},
		},
		vendedores: []models.Vendedor{{ID: 5, Username: "ana", NombreCompleto: "Ana Ruiz"}},
	}
	search := NewSearchService(api, 0)
	ctx := context.Background()

	got := search.Typeahead(ctx, "c1", searchCred, FieldCliente, "imss")
	assert.Equal(t, []models.TypeaheadItem{
		{ID: 1, Label: "IMSS CENTRO (C001)"},
		{ID: 2, Label: "Sin código"},
	}, got)

	got = search.Typeahead(ctx, "c1", searchCred, FieldVendedor, "an")
	assert.Equal(t, []models.TypeaheadItem{{ID: 5, Label: "Ana Ruiz (ana)"}}, got)
}

func TestTypeaheadEmptyQuerySkipsBackend(t *testing.T) {
	api := &fakeAPI{}
	search := NewSearchService(api, 0)

	got := search.Typeahead(context.Background(), "c1", searchCred, FieldCliente, "   ")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, api.count("clientes"))

	assert.Empty(t, search.Typeahead(context.Background(), "c1", searchCred, "otro", "x"))
}

func TestTypeaheadDropsSupersededLookup(t *testing.T) {
	api := &fakeAPI{clientes: []models.Cliente{{ID: 1, Nombre: "IMSS"}}}
	search := NewSearchService(api, 50*time.Millisecond)
	ctx := context.Background()

	var wg sync.WaitGroup
	var first, other []models.TypeaheadItem
	wg.Add(2)
	go func() {
		defer wg.Done()
		first = search.Typeahead(ctx, "c1", searchCred, FieldCliente, "im")
	}()
	go func() {
		defer wg.Done()
		other = search.Typeahead(ctx, "c2", searchCred, FieldCliente, "im")
	}()
	time.Sleep(10 * time.Millisecond)

	latest := search.Typeahead(ctx, "c1", searchCred, FieldCliente, "imss")
	wg.Wait()

	assert.Empty(t, first)
	assert.Len(t, latest, 1)
	assert.Len(t, other, 1, "clients debounce separately")
	assert.Equal(t, 2, api.count("clientes"))
}

func TestTypeaheadCanceledContext(t *testing.T) {
	api := &fakeAPI{clientes: []models.Cliente{{ID: 1, Nombre: "IMSS"}}}
	search := NewSearchService(api, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, search.Typeahead(ctx, "c1", searchCred, FieldCliente, "im"))
	assert.Zero(t, api.count("clientes"))
}

func TestTypeaheadCanceledLookupKeepsEarlierOne(t *testing.T) {
	api := &fakeAPI{clientes: []models.Cliente{{ID: 1, Nombre: "IMSS"}}}
	search := NewSearchService(api, 50*time.Millisecond)

	done := make(chan []models.TypeaheadItem, 1)
	go func() {
		done <- search.Typeahead(context.Background(), "c1", searchCred, FieldCliente, "im")
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, search.Typeahead(ctx, "c1", searchCred, FieldCliente, "imss"))

	assert.Len(t, <-done, 1)
	assert.Equal(t, 1, api.count("clientes"))
}

func TestCotizaciones(t *testing.T) {
	fecha := &models.APITime{Time: time.Date(2025, 2, 3, 16, 5, 9, 0, time.UTC)}
	api := &fakeAPI{cotizaciones: []models.Cotizacion{
		{ID: 10, Cliente: "IMSS", Vendedor: "ana", NumeroCliente: "C001", NumeroVendedor: "V01", FechaCotizacion: fecha},
		{ID: 11, Cliente: " "},
	}}
	search := NewSearchService(api, 0)

	rows, err := search.Cotizaciones(context.Background(), searchCred, "imss", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, CotizacionRow{
		ID: 10, Cliente: "IMSS", Vendedor: "ana", NumeroCliente: "C001", NumeroVendedor: "V01",
		Fecha: "03/02/2025, 16:05:09",
	}, rows[0])
	assert.Equal(t, CotizacionRow{
		ID: 11, Cliente: "-", Vendedor: "-", NumeroCliente: "-", NumeroVendedor: "-", Fecha: "-",
	}, rows[1])
}

func TestCotizacionesBackendErrors(t *testing.T) {
	api := &fakeAPI{cotizacionErr: models.NewAPIError(404, "Not Found", "")}
	search := NewSearchService(api, 0)

	rows, err := search.Cotizaciones(context.Background(), searchCred, "", 20)
	require.NoError(t, err)
	assert.Empty(t, rows)

	api.cotizacionErr = errors.New("timeout")
	_, err = search.Cotizaciones(context.Background(), searchCred, "", 20)
	require.Error(t, err)
	assert.Equal(t, "No se pudieron obtener cotizaciones: timeout", err.Error())
}

func TestCotizacionesCapsRows(t *testing.T) {
	list := make([]models.Cotizacion, MaxCotizacionRows+5)
	for i := range list {
		list[i] = models.Cotizacion{ID: int64(i)}
	}
	search := NewSearchService(&fakeAPI{cotizaciones: list}, 0)

	rows, err := search.Cotizaciones(context.Background(), searchCred, "", 500)
	require.NoError(t, err)
	assert.Len(t, rows, MaxCotizacionRows)
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 50, ParseLimit("50", 20))
	assert.Equal(t, 20, ParseLimit("", 20))
	assert.Equal(t, 20, ParseLimit("-1", 20))
	assert.Equal(t, 20, ParseLimit("abc", 20))
}
