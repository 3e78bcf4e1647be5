package services

import (
	"math"
	"time"
	"trip-planner-service/internal/domain"
)

const (
	DefaultMaxVisitsPerDay       = 4
	DefaultDayStartTime          = "09:00"
	DefaultDwellMinutes          = 60
	DefaultMaxDriveSecondsPerDay = 4 * 3600
)

// ScheduleOptions tunes the day scheduler.
//
// StartIndex is the point each day starts from (hotel or city centre).
// StartDate anchors day 1; day k is anchored k calendar days later. A zero
// StartDate uses the current local date.
type ScheduleOptions struct {
	StartIndex            int
	MaxVisitsPerDay       int
	DayStartTime          string
	DwellMinutes          int
	MaxDriveSecondsPerDay float64
	StartDate             time.Time
}

func DefaultScheduleOptions() ScheduleOptions {
	return ScheduleOptions{
		StartIndex:            0,
		MaxVisitsPerDay:       DefaultMaxVisitsPerDay,
		DayStartTime:          DefaultDayStartTime,
		DwellMinutes:          DefaultDwellMinutes,
		MaxDriveSecondsPerDay: DefaultMaxDriveSecondsPerDay,
	}
}

// now is replaced in tests to pin the default anchor date.
var now = time.Now

// normalize clamps options leniently; the scheduler prefers producing some
// itinerary over refusing to run. An out-of-range StartIndex falls back to 0.
func (o ScheduleOptions) normalize(n int) ScheduleOptions {
	if o.StartIndex < 0 || o.StartIndex >= n {
		o.StartIndex = 0
	}
	if o.MaxVisitsPerDay < 1 {
		o.MaxVisitsPerDay = 1
	}
	if o.DwellMinutes < 0 {
		o.DwellMinutes = 0
	}
	if o.MaxDriveSecondsPerDay < 0 {
		o.MaxDriveSecondsPerDay = 0
	}
	if o.DayStartTime == "" {
		o.DayStartTime = DefaultDayStartTime
	}
	if o.StartDate.IsZero() {
		o.StartDate = now()
	}
	return o
}

// ScheduleItinerary partitions points into days using a greedy nearest-next
// construction bounded by a per-day visit cap and a per-day drive budget.
//
// The algorithm minimizes immediate travel duration at each step and does
// not attempt global route optimization. Ties break to the lowest index.
//
// When a day cannot admit any stop (budget too small or every remaining point
// unreachable) the lowest-indexed remaining point is forced onto that day
// regardless of budget. This guarantees termination in at most len(points)
// days at the cost of occasionally exceeding the drive budget; such visits
// and days are flagged Forced.
func ScheduleItinerary(
	points []domain.Point,
	matrix domain.TravelMatrix,
	opts ScheduleOptions,
) (domain.Itinerary, error) {
	n := len(points)
	if n == 0 {
		return domain.Itinerary{Days: []domain.Day{}}, nil
	}

	if err := matrix.Validate(n); err != nil {
		return domain.Itinerary{}, err
	}

	opts = opts.normalize(n)

	hour, minute, err := domain.ParseClock(opts.DayStartTime)
	if err != nil {
		return domain.Itinerary{}, err
	}

	dwell := time.Duration(opts.DwellMinutes) * time.Minute
	remaining := newIndexSet(n)
	days := make([]domain.Day, 0, n)

	for remaining.len() > 0 {
		date := opts.StartDate.AddDate(0, 0, len(days))
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())

		day := domain.Day{
			Number:    len(days) + 1,
			StartTime: dayStart,
			Visits:    []domain.Visit{},
		}

		clock := dayStart
		current := opts.StartIndex

		for remaining.len() > 0 && len(day.Visits) < opts.MaxVisitsPerDay {
			best, travel := nearest(matrix, current, remaining)
			if best < 0 || domain.IsUnreachable(travel) {
				// Nothing reachable from here today.
				break
			}

			if day.DriveSeconds+travel > opts.MaxDriveSecondsPerDay {
				break
			}

			clock = clock.Add(seconds(travel))
			visit := newVisit(points, matrix, current, best, travel, clock, dwell)
			clock = visit.DepartureTime

			day.Visits = append(day.Visits, visit)
			day.DriveSeconds += travel
			day.DriveMeters += finite(visit.DistanceMeters)

			remaining.remove(best)
			current = best
		}

		if len(day.Visits) == 0 && remaining.len() > 0 {
			forced := remaining.min()
			travel := matrix.Duration(current, forced)

			if !domain.IsUnreachable(travel) {
				clock = clock.Add(seconds(travel))
				day.DriveSeconds += travel
			}

			visit := newVisit(points, matrix, current, forced, travel, clock, dwell)
			visit.Forced = true
			day.Visits = append(day.Visits, visit)
			day.DriveMeters += finite(visit.DistanceMeters)
			day.Forced = true

			remaining.remove(forced)
		}

		days = append(days, day)
	}

	return domain.Itinerary{Days: days}, nil
}

// nearest returns the remaining index with the smallest travel time from
// current, scanning in ascending index order so ties go to the lowest index.
func nearest(m domain.TravelMatrix, current int, remaining *indexSet) (int, float64) {
	best := -1
	bestDur := domain.Unreachable

	for _, cand := range remaining.items() {
		dur := m.Duration(current, cand)
		if dur < bestDur {
			bestDur = dur
			best = cand
		}
	}

	return best, bestDur
}

func newVisit(
	points []domain.Point,
	m domain.TravelMatrix,
	from, to int,
	travel float64,
	arrival time.Time,
	dwell time.Duration,
) domain.Visit {
	return domain.Visit{
		PlaceIndex:      to,
		Name:            points[to].Name,
		ArrivalTime:     arrival,
		DepartureTime:   arrival.Add(dwell),
		TravelFromIndex: from,
		TravelSeconds:   travel,
		DistanceMeters:  m.Distance(from, to),
	}
}

// seconds saturates instead of overflowing on huge inputs.
func seconds(s float64) time.Duration {
	if s >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(s * float64(time.Second))
}

func finite(v float64) float64 {
	if domain.IsUnreachable(v) {
		return 0
	}
	return v
}

// indexSet is an ordered set of point indices.
type indexSet struct {
	present []bool
	count   int
}

func newIndexSet(n int) *indexSet {
	s := &indexSet{present: make([]bool, n), count: n}
	for i := range s.present {
		s.present[i] = true
	}
	return s
}

func (s *indexSet) len() int { return s.count }

func (s *indexSet) remove(i int) {
	if s.present[i] {
		s.present[i] = false
		s.count--
	}
}

func (s *indexSet) min() int {
	for i, ok := range s.present {
		if ok {
			return i
		}
	}
	return -1
}

func (s *indexSet) items() []int {
	out := make([]int, 0, s.count)
	for i, ok := range s.present {
		if ok {
			out = append(out, i)
		}
	}
	return out
}
