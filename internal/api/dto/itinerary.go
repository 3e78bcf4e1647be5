package dto

import (
	"errors"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/services"
)

type PointRequest struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// MatrixRequest cells may be null to mark an unreachable pair.
type MatrixRequest struct {
	DurationS [][]*float64 `json:"duration_s"`
	DistanceM [][]*float64 `json:"distance_m"`
}

// ScheduleOptionsRequest fields are optional; omitted ones keep the
// server defaults.
type ScheduleOptionsRequest struct {
	StartIndex            *int     `json:"start_index"`
	MaxVisitsPerDay       *int     `json:"max_visits_per_day"`
	DayStartTime          *string  `json:"day_start_time"`
	DwellMinutes          *int     `json:"dwell_minutes"`
	MaxDriveSecondsPerDay *float64 `json:"max_drive_seconds_per_day"`
	// YYYY-MM-DD
	StartDate *string `json:"start_date"`
}

type ItineraryRequest struct {
	Points  []PointRequest          `json:"points"`
	Matrix  MatrixRequest           `json:"matrix"`
	Options *ScheduleOptionsRequest `json:"options"`
}

type VisitResponse struct {
	PlaceIndex         int       `json:"place_index"`
	Name               string    `json:"name"`
	ArrivalTime        time.Time `json:"arrival_time"`
	DepartureTime      time.Time `json:"departure_time"`
	TravelFromIndex    int       `json:"travel_from_index"`
	TravelTimeSeconds  *float64  `json:"travel_time_seconds"`
	TravelTimeReadable string    `json:"travel_time_readable"`
	DistanceMeters     *float64  `json:"distance_meters"`
	Forced             bool      `json:"forced"`
}

type DayResponse struct {
	Day          int             `json:"day"`
	StartTime    time.Time       `json:"start_time"`
	Visits       []VisitResponse `json:"visits"`
	DriveSeconds float64         `json:"drive_seconds"`
	DriveMeters  float64         `json:"drive_meters"`
	Forced       bool            `json:"forced"`
}

type ItineraryResponse struct {
	Days              []DayResponse `json:"days"`
	TotalVisits       int           `json:"total_visits"`
	TotalDriveSeconds float64       `json:"total_drive_seconds"`
	TotalDriveMeters  float64       `json:"total_drive_meters"`
}

func (p PointRequest) Point() domain.Point {
	return domain.Point{Name: p.Name, Lat: p.Lat, Lon: p.Lon}
}

// Apply overlays the fields that were set onto base. A nil receiver returns
// base unchanged.
func (o *ScheduleOptionsRequest) Apply(base services.ScheduleOptions) (services.ScheduleOptions, error) {
	if o == nil {
		return base, nil
	}

	if o.StartIndex != nil {
		base.StartIndex = *o.StartIndex
	}
	if o.MaxVisitsPerDay != nil {
		base.MaxVisitsPerDay = *o.MaxVisitsPerDay
	}
	if o.DayStartTime != nil {
		base.DayStartTime = *o.DayStartTime
	}
	if o.DwellMinutes != nil {
		base.DwellMinutes = *o.DwellMinutes
	}
	if o.MaxDriveSecondsPerDay != nil {
		base.MaxDriveSecondsPerDay = *o.MaxDriveSecondsPerDay
	}
	if o.StartDate != nil && *o.StartDate != "" {
		d, err := time.Parse(time.DateOnly, *o.StartDate)
		if err != nil {
			return base, errors.New("start_date must be YYYY-MM-DD")
		}
		base.StartDate = d
	}

	return base, nil
}

// SplitPoints splits the request points into domain points and matrix names.
func (r ItineraryRequest) SplitPoints() ([]domain.Point, []string) {
	points := make([]domain.Point, 0, len(r.Points))
	names := make([]string, 0, len(r.Points))
	for _, p := range r.Points {
		points = append(points, p.Point())
		names = append(names, p.Name)
	}
	return points, names
}

func (m MatrixRequest) TravelMatrix(names []string) domain.TravelMatrix {
	return domain.TravelMatrix{
		Names:     names,
		DurationS: domain.FromNullable(m.DurationS),
		DistanceM: domain.FromNullable(m.DistanceM),
	}
}

func finiteOrNil(v float64) *float64 {
	if domain.IsUnreachable(v) {
		return nil
	}
	return &v
}

func NewItineraryResponse(it domain.Itinerary) ItineraryResponse {
	res := ItineraryResponse{
		Days:              make([]DayResponse, 0, len(it.Days)),
		TotalVisits:       it.VisitCount(),
		TotalDriveSeconds: it.TotalDriveSeconds(),
		TotalDriveMeters:  it.TotalDriveMeters(),
	}

	for _, d := range it.Days {
		visits := make([]VisitResponse, 0, len(d.Visits))
		for _, v := range d.Visits {
			visits = append(visits, VisitResponse{
				PlaceIndex:         v.PlaceIndex,
				Name:               v.Name,
				ArrivalTime:        v.ArrivalTime,
				DepartureTime:      v.DepartureTime,
				TravelFromIndex:    v.TravelFromIndex,
				TravelTimeSeconds:  finiteOrNil(v.TravelSeconds),
				TravelTimeReadable: v.TravelReadable(),
				DistanceMeters:     finiteOrNil(v.DistanceMeters),
				Forced:             v.Forced,
			})
		}

		res.Days = append(res.Days, DayResponse{
			Day:          d.Number,
			StartTime:    d.StartTime,
			Visits:       visits,
			DriveSeconds: d.DriveSeconds,
			DriveMeters:  d.DriveMeters,
			Forced:       d.Forced,
		})
	}

	return res
}
