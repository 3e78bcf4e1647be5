package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"trip-planner-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *GeoapifyClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewGeoapifyClient("k", srv.URL)
	require.NoError(t, err)
	c.client.Limiter = nil
	c.client.Backoff = 0
	return c
}

func TestGeoapifyAttractionsQueryAndSimplify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v2/places", r.URL.Path)
		assert.Equal(t, "tourism.attraction", q.Get("categories"))
		assert.Equal(t, "circle:73.8,15.5,10000", q.Get("filter"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.Equal(t, "k", q.Get("apiKey"))

		_, _ = w.Write([]byte(`{"features": [
			{"properties": {"name": "Fort Aguada", "formatted": "Fort Aguada, Candolim", "lat": 15.49, "lon": 73.77, "place_id": "p1", "categories": ["tourism.attraction"]}},
			{"properties": {"formatted": "Unnamed viewpoint"}, "geometry": {"coordinates": [73.81, 15.52]}}
		]}`))
	})

	got, err := c.Attractions(context.Background(), 15.5, 73.8)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.Place{
		ID: "p1", Name: "Fort Aguada", Formatted: "Fort Aguada, Candolim",
		Lat: 15.49, Lon: 73.77, Categories: []string{"tourism.attraction"},
	}, got[0])
	assert.Equal(t, "Unnamed viewpoint", got[1].Name)
	assert.Equal(t, 15.52, got[1].Lat)
	assert.Equal(t, 73.81, got[1].Lon)
}

func TestGeoapifyBeachesFallsBackToNature(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		q := r.URL.Query()
		assert.Equal(t, "circle:73.8,15.5,30000", q.Get("filter"))

		if q.Get("categories") == categoryBeaches {
			_, _ = w.Write([]byte(`{"features": []}`))
			return
		}
		assert.Equal(t, "natural", q.Get("categories"))
		_, _ = w.Write([]byte(`{"features": [{"properties": {"name": "Lake", "lat": 1, "lon": 2}}]}`))
	})

	got, err := c.Beaches(context.Background(), 15.5, 73.8)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lake", got[0].Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGeoapifyBeachesFallsBackOnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("categories") == categoryBeaches {
			http.Error(w, "bad category", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"features": [{"properties": {"name": "Cliff", "lat": 1, "lon": 2}}]}`))
	})

	got, err := c.Beaches(context.Background(), 15.5, 73.8)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cliff", got[0].Name)
}

func TestGeoapifyFoodRadius(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, categoryFood, r.URL.Query().Get("categories"))
		assert.Equal(t, "circle:73.8,15.5,8000", r.URL.Query().Get("filter"))
		_, _ = w.Write([]byte(`{"features": []}`))
	})

	got, err := c.Food(context.Background(), 15.5, 73.8)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewGeoapifyClientRequiresKey(t *testing.T) {
	_, err := NewGeoapifyClient("", "")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
