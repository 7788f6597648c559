package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHaversine(t *testing.T) {
	montreal := Point{Lat: 45.5017, Lng: -73.5673}
	quebec := Point{Lat: 46.8139, Lng: -71.2080}

	assert.InDelta(t, 233, Haversine(montreal, quebec), 3)
	assert.Zero(t, Haversine(montreal, montreal))
}

func TestStatic_Geocode(t *testing.T) {
	s, err := NewStatic()
	require.NoError(t, err)

	loc, err := s.Geocode(context.Background(), "1234 rue Ontario Est, Montreal")
	require.NoError(t, err)
	assert.Equal(t, "Montréal", loc.City)
	assert.InDelta(t, 45.5017, loc.Lat, 0.0001)

	loc, err = s.Geocode(context.Background(), "QUÉBEC")
	require.NoError(t, err)
	assert.Equal(t, "Québec", loc.City)

	_, err = s.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Geocode(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "trois-rivieres", Fold(" Trois-Rivières "))
}

func TestNominatim_Geocode(t *testing.T) {
	var gotUA, gotCountry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		gotCountry = r.URL.Query().Get("countrycodes")
		assert.Equal(t, "/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"45.5236","lon":"-73.5817","display_name":"Plateau-Mont-Royal, Montréal","address":{"city":"Montréal"}}]`))
	}))
	defer srv.Close()

	n := NewNominatim(srv.Client(), srv.URL, "housie-test/1.0")
	loc, err := n.Geocode(context.Background(), "Plateau-Mont-Royal")
	require.NoError(t, err)

	assert.Equal(t, "housie-test/1.0", gotUA)
	assert.Equal(t, "ca", gotCountry)
	assert.InDelta(t, 45.5236, loc.Lat, 0.0001)
	assert.InDelta(t, -73.5817, loc.Lng, 0.0001)
	assert.Equal(t, "Montréal", loc.City)
	assert.Equal(t, "nominatim", loc.Provider)
}

func TestNominatim_EmptyResultIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewNominatim(srv.Client(), srv.URL, "ua").Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNominatim_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewNominatim(srv.Client(), srv.URL, "ua").Geocode(context.Background(), "Laval")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNominatim_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 20 * time.Millisecond}
	_, err := NewNominatim(client, srv.URL, "ua").Geocode(context.Background(), "Laval")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGoogle_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))
		assert.Equal(t, "country:CA", r.URL.Query().Get("components"))
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Gatineau, QC, Canada",
				"address_components": [{"long_name": "Gatineau", "types": ["locality", "political"]}],
				"geometry": {"location": {"lat": 45.4765, "lng": -75.7013}}
			}]
		}`))
	}))
	defer srv.Close()

	loc, err := NewGoogle(srv.Client(), srv.URL, "secret-key").Geocode(context.Background(), "Gatineau")
	require.NoError(t, err)
	assert.Equal(t, "Gatineau", loc.City)
	assert.Equal(t, "google", loc.Provider)
}

func TestGoogle_Statuses(t *testing.T) {
	status := "ZERO_RESULTS"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"` + status + `","results":[]}`))
	}))
	defer srv.Close()

	g := NewGoogle(srv.Client(), srv.URL, "k")
	_, err := g.Geocode(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)

	status = "REQUEST_DENIED"
	_, err = g.Geocode(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNew_SelectsProvider(t *testing.T) {
	g, err := New(Config{Provider: "static"})
	require.NoError(t, err)
	assert.Equal(t, "static", g.Name())

	g, err = New(Config{Provider: "google", APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "google", g.Name())

	_, err = New(Config{Provider: "mapquest"})
	assert.Error(t, err)
}

func TestHandler_Geocode(t *testing.T) {
	s, err := NewStatic()
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), NewHandler(s))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/geocode?q=Laval", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool     `json:"success"`
		Data    Location `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Laval", body.Data.City)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/geocode?q=Atlantis", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/geocode", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
