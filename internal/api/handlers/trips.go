package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
	"trip-planner-service/internal/adapters/export"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var validTiers = map[string]struct{}{"budget": {}, "mid": {}, "premium": {}}

// TripPlanner runs the full planning pipeline.
type TripPlanner interface {
	Plan(ctx context.Context, req domain.TripRequest) (domain.TripState, error)
}

type TripHandler struct {
	Planner TripPlanner
	Repo    ports.TripRepository
	// Overridable in tests.
	NewID func() string
	Now   func() time.Time
}

// Collection serves GET (list) and POST (create) on /trips.
func (h *TripHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body dto.TripRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req, err := toTripRequest(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.Planner.Plan(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusUnprocessableEntity, "destination could not be resolved")
		return
	case errors.Is(err, domain.ErrConfiguration):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("plan trip failed: destination=%q err=%v", req.Destination, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	plan := domain.TripPlan{ID: h.newID(), CreatedAt: h.now(), State: state}
	if err := h.Repo.Save(r.Context(), plan); err != nil {
		log.Printf("save trip failed: id=%s err=%v", plan.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Location", "/trips/"+plan.ID)
	writeJSON(w, r, http.StatusCreated, dto.NewTripResponse(plan))
}

func toTripRequest(body dto.TripRequest) (domain.TripRequest, error) {
	start, err := parseDate(body.StartDate)
	if err != nil {
		return domain.TripRequest{}, errors.New("start_date must be YYYY-MM-DD")
	}

	req := domain.TripRequest{
		Destination: body.Destination,
		Days:        body.Days,
		Persons:     body.Persons,
		BudgetINR:   body.BudgetINR,
		Tier:        body.Tier,
		StartDate:   start,
	}.Normalize()

	if err := req.Validate(); err != nil {
		return domain.TripRequest{}, err
	}
	if req.Days < 1 || req.Days > 30 {
		return domain.TripRequest{}, errors.New("days must be between 1 and 30")
	}
	if req.Persons < 1 || req.Persons > 20 {
		return domain.TripRequest{}, errors.New("persons must be between 1 and 20")
	}
	if _, ok := validTiers[req.Tier]; !ok {
		return domain.TripRequest{}, errors.New("budget_tier must be one of budget, mid, premium")
	}
	return req, nil
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
			return
		}
		limit = n
	}

	plans, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		log.Printf("list trips failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListTripsResponse{Trips: make([]dto.TripSummaryResponse, 0, len(plans))}
	for _, p := range plans {
		res.Trips = append(res.Trips, dto.NewTripSummary(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewTripResponse(plan))
}

func (h *TripHandler) PDF(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.load(w, r)
	if !ok {
		return
	}

	b, filename, err := export.TripPDF(plan)
	if err != nil {
		log.Printf("render trip pdf failed: id=%s err=%v", plan.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		log.Printf("write pdf failed: id=%s err=%v", plan.ID, err)
	}
}

func (h *TripHandler) load(w http.ResponseWriter, r *http.Request) (domain.TripPlan, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "trip id is required")
		return domain.TripPlan{}, false
	}

	plan, err := h.Repo.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "trip not found")
		return domain.TripPlan{}, false
	}
	if err != nil {
		log.Printf("get trip failed: id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return domain.TripPlan{}, false
	}
	return plan, true
}

func (h *TripHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *TripHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}
