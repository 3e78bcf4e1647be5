package api

import (
	"net/http"
	"trip-planner-service/internal/api/handlers"
	"trip-planner-service/internal/metrics"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Planner  handlers.TripPlanner
	Trips    ports.TripRepository
	Schedule services.ScheduleOptions
	// Stores are pinged by /health; nil reports liveness only.
	Stores map[string]ports.Pinger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	itineraries := &handlers.ItineraryHandler{Defaults: deps.Schedule}
	trips := &handlers.TripHandler{Planner: deps.Planner, Repo: deps.Trips}
	health := &handlers.HealthHandler{Stores: deps.Stores}

	mux.HandleFunc("/health", health.Check)
	mux.HandleFunc("/itineraries", itineraries.Schedule)
	mux.HandleFunc("/trips", trips.Collection)
	mux.HandleFunc("GET /trips/{id}", trips.Get)
	mux.HandleFunc("GET /trips/{id}/pdf", trips.PDF)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(mux)
}
