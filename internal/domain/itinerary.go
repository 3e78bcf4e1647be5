package domain

import (
	"encoding/json"
	"time"
)

// Represents a single stop within a day.
// Arrival and departure fall on the same calendar day as the Day's StartTime.
// Forced marks a visit that was placed by the forced-progress rule and may
// exceed the day's drive budget.
type Visit struct {
	PlaceIndex      int
	Name            string
	ArrivalTime     time.Time
	DepartureTime   time.Time
	TravelFromIndex int
	TravelSeconds   float64
	DistanceMeters  float64
	Forced          bool
}

func (v Visit) TravelReadable() string { return FormatDuration(v.TravelSeconds) }

func (v Visit) Unreachable() bool { return IsUnreachable(v.TravelSeconds) }

// Represents one scheduled day of a trip.
type Day struct {
	Number       int
	StartTime    time.Time
	Visits       []Visit
	DriveSeconds float64
	DriveMeters  float64
	Forced       bool
}

// Itinerary is the ordered, immutable output of one scheduling call.
type Itinerary struct {
	Days []Day
}

func (it Itinerary) VisitCount() int {
	n := 0
	for _, d := range it.Days {
		n += len(d.Visits)
	}
	return n
}

func (it Itinerary) TotalDriveSeconds() float64 {
	total := 0.0
	for _, d := range it.Days {
		total += d.DriveSeconds
	}
	return total
}

func (it Itinerary) TotalDriveMeters() float64 {
	total := 0.0
	for _, d := range it.Days {
		total += d.DriveMeters
	}
	return total
}

type visitJSON struct {
	PlaceIndex      int       `json:"place_index"`
	Name            string    `json:"name"`
	ArrivalTime     time.Time `json:"arrival_time"`
	DepartureTime   time.Time `json:"departure_time"`
	TravelFromIndex int       `json:"travel_from_index"`
	TravelSeconds   *float64  `json:"travel_time_seconds"`
	TravelReadable  string    `json:"travel_time_readable"`
	DistanceMeters  *float64  `json:"distance_meters"`
	Forced          bool      `json:"forced,omitempty"`
}

// JSON has no infinity; unreachable legs are encoded as null.
func (v Visit) MarshalJSON() ([]byte, error) {
	return json.Marshal(visitJSON{
		PlaceIndex:      v.PlaceIndex,
		Name:            v.Name,
		ArrivalTime:     v.ArrivalTime,
		DepartureTime:   v.DepartureTime,
		TravelFromIndex: v.TravelFromIndex,
		TravelSeconds:   finiteOrNil(v.TravelSeconds),
		TravelReadable:  v.TravelReadable(),
		DistanceMeters:  finiteOrNil(v.DistanceMeters),
		Forced:          v.Forced,
	})
}

func (v *Visit) UnmarshalJSON(b []byte) error {
	var raw visitJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*v = Visit{
		PlaceIndex:      raw.PlaceIndex,
		Name:            raw.Name,
		ArrivalTime:     raw.ArrivalTime,
		DepartureTime:   raw.DepartureTime,
		TravelFromIndex: raw.TravelFromIndex,
		TravelSeconds:   nilOrUnreachable(raw.TravelSeconds),
		DistanceMeters:  nilOrUnreachable(raw.DistanceMeters),
		Forced:          raw.Forced,
	}
	return nil
}

type dayJSON struct {
	Number       int       `json:"day"`
	StartTime    time.Time `json:"start_time"`
	Visits       []Visit   `json:"visits"`
	DriveSeconds float64   `json:"drive_seconds"`
	DriveMeters  float64   `json:"drive_meters"`
	Forced       bool      `json:"forced,omitempty"`
}

func (d Day) MarshalJSON() ([]byte, error) {
	visits := d.Visits
	if visits == nil {
		visits = []Visit{}
	}
	return json.Marshal(dayJSON{
		Number:       d.Number,
		StartTime:    d.StartTime,
		Visits:       visits,
		DriveSeconds: d.DriveSeconds,
		DriveMeters:  d.DriveMeters,
		Forced:       d.Forced,
	})
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var raw dayJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = Day(raw)
	return nil
}

func finiteOrNil(v float64) *float64 {
	if IsUnreachable(v) {
		return nil
	}
	return &v
}

func nilOrUnreachable(p *float64) float64 {
	if p == nil {
		return Unreachable
	}
	return *p
}
