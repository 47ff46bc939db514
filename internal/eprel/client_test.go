package eprel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eie-registry/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Product(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("x-api-key"))
		switch r.URL.Path {
		case "/product/123456":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"productGroup":"washingmachines2019","supplierOrTrademark":"Acme","modelIdentifier":"WM 9kg","energyClass":"A","status":"PUBLISHED"}`))
		case "/product/500":
			w.WriteHeader(http.StatusBadGateway)
		case "/product/403":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "key-1", time.Second)

	p, err := c.Product(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", p.RegistrationNumber)
	assert.Equal(t, "Acme", p.Brand)
	assert.Equal(t, "WM 9kg", p.Model)
	assert.Equal(t, "A", p.EnergyClass)
	assert.True(t, p.Published())
	cat, ok := p.Category()
	require.True(t, ok)
	assert.Equal(t, model.CategoryWashingMachines, cat)

	_, err = c.Product(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Product(context.Background(), "500")
	assert.ErrorIs(t, err, ErrUnavailable)

	// a rejected request is not an outage, retrying cannot fix it
	_, err = c.Product(context.Background(), "403")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 20*time.Millisecond).Product(context.Background(), "1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCategoryOf(t *testing.T) {
	cases := map[string]model.Category{
		"washingmachines2019":         model.CategoryWashingMachines,
		"WASHERDRIERS2019":            model.CategoryWasherDriers,
		"dishwashers2019":             model.CategoryDishwashers,
		"tumbledriers":                model.CategoryTumbleDryers,
		"refrigeratingappliances2019": model.CategoryRefrigeratingAppl,
		"rangehoods":                  model.CategoryRangeHoods,
		"ovens":                       model.CategoryOvens,
	}
	for group, want := range cases {
		got, ok := CategoryOf(group)
		assert.True(t, ok, group)
		assert.Equal(t, want, got, group)
	}

	_, ok := CategoryOf("lightsources")
	assert.False(t, ok)
}
