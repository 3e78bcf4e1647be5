package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/metrics"
	"trip-planner-service/internal/services"
)

const maxPoints = 200

// ItineraryHandler exposes the day scheduler over a caller-supplied matrix.
type ItineraryHandler struct {
	Defaults services.ScheduleOptions
}

func (h *ItineraryHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.ItineraryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Points) > maxPoints {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("at most %d points are supported", maxPoints))
		return
	}

	opts, err := req.Options.Apply(h.Defaults)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	points, names := req.SplitPoints()

	it, err := services.ScheduleItinerary(points, req.Matrix.TravelMatrix(names), opts)
	if errors.Is(err, domain.ErrConfiguration) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("schedule itinerary failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	metrics.ItineraryDays.Observe(float64(len(it.Days)))
	for _, d := range it.Days {
		if d.Forced {
			metrics.ForcedDays.Inc()
		}
	}

	writeJSON(w, r, http.StatusOK, dto.NewItineraryResponse(it))
}
