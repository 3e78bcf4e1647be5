package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlanner struct {
	got domain.TripRequest
	err error
}

func (s *stubPlanner) Plan(_ context.Context, req domain.TripRequest) (domain.TripState, error) {
	s.got = req
	if s.err != nil {
		return domain.TripState{}, s.err
	}
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	state := domain.NewTripState(req.Normalize()).
		WithItinerary(domain.Itinerary{Days: []domain.Day{{
			Number:    1,
			StartTime: start,
			Visits: []domain.Visit{{
				Name: "Fort Aguada", ArrivalTime: start.Add(10 * time.Minute), DepartureTime: start.Add(70 * time.Minute), TravelSeconds: 600,
			}},
			DriveSeconds: 600,
		}}}).
		WithNarrative("Day 1: sunrise at the fort.")
	return state, nil
}

type stubDistance struct {
	origin, dest domain.Coordinates
}

func (s *stubDistance) GetDistance(_ context.Context, origin, dest domain.Coordinates) (ports.DistanceResult, error) {
	s.origin, s.dest = origin, dest
	return ports.DistanceResult{DistanceMeters: 12500, DurationSeconds: 1260}, nil
}

type testEnv struct {
	app     *App
	planner *stubPlanner
	dist    *stubDistance
	opened  int
	closed  int
}

func newTestEnv() *testEnv {
	env := &testEnv{planner: &stubPlanner{}, dist: &stubDistance{}}
	opts := services.DefaultScheduleOptions()
	env.app = &App{
		Schedule: opts,
		Open: func(context.Context) (*Stack, error) {
			env.opened++
			return &Stack{
				Planner:  env.planner,
				Distance: env.dist,
				Close:    func() error { env.closed++; return nil },
			}, nil
		},
	}
	return env
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestPlanCmd(t *testing.T) {
	env := newTestEnv()

	out, err := executeCmd(t, env.app, "plan", "North", "Goa", "--days", "3", "--persons", "2", "--tier", "budget", "--start-date", "2026-03-02")
	require.NoError(t, err)

	assert.Equal(t, "North Goa", env.planner.got.Destination)
	assert.Equal(t, 3, env.planner.got.Days)
	assert.Equal(t, 2, env.planner.got.Persons)
	assert.Equal(t, "budget", env.planner.got.Tier)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), env.planner.got.StartDate)

	assert.Contains(t, out, "Trip to North Goa (3 days)")
	assert.Contains(t, out, "09:10-10:10 Fort Aguada (travel 10m 0s)")
	assert.Contains(t, out, "Day 1: sunrise at the fort.")
	assert.Equal(t, 1, env.opened)
	assert.Equal(t, 1, env.closed)
}

func TestPlanCmdJSON(t *testing.T) {
	env := newTestEnv()

	out, err := executeCmd(t, env.app, "plan", "Goa", "--json")
	require.NoError(t, err)

	var state domain.TripState
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, "Goa", state.Request.Destination)
	require.NotNil(t, state.Itinerary)
	assert.Equal(t, 1, state.Itinerary.VisitCount())
}

func TestPlanCmdErrors(t *testing.T) {
	env := newTestEnv()

	_, err := executeCmd(t, env.app, "plan")
	require.Error(t, err)

	_, err = executeCmd(t, env.app, "plan", "Goa", "--start-date", "soon")
	require.Error(t, err)
	assert.Equal(t, 0, env.opened)

	env.planner.err = errors.New("plan trip: geocode: not found")
	_, err = executeCmd(t, env.app, "plan", "Atlantis")
	require.Error(t, err)
	assert.Equal(t, 1, env.closed)
}

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const scheduleInput = `{
	"points": [{"name":"Hotel"},{"name":"Fort"},{"name":"Beach"}],
	"matrix": {"duration_s": [[0,600,1200],[600,0,300],[1200,300,0]]},
	"options": {"start_date":"2026-03-02"}
}`

func TestScheduleCmd(t *testing.T) {
	env := newTestEnv()
	path := writeInput(t, scheduleInput)

	out, err := executeCmd(t, env.app, "schedule", "-f", path)
	require.NoError(t, err)

	var res dto.ItineraryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Days, 1)
	assert.Equal(t, 3, res.TotalVisits)
	assert.Equal(t, 900.0, res.TotalDriveSeconds)
	assert.Equal(t, 0, env.opened, "schedule must not open the network stack")
}

func TestScheduleCmdFlagsOverrideFile(t *testing.T) {
	env := newTestEnv()
	path := writeInput(t, scheduleInput)

	out, err := executeCmd(t, env.app, "schedule", "-f", path, "--max-visits", "1", "--start", "07:30", "--dwell", "30")
	require.NoError(t, err)

	var res dto.ItineraryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Days, 3)
	assert.Equal(t, time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC), res.Days[0].StartTime)
	assert.Equal(t, time.Date(2026, 3, 4, 7, 30, 0, 0, time.UTC), res.Days[2].StartTime)
	first := res.Days[0].Visits[0]
	assert.Equal(t, 30*time.Minute, first.DepartureTime.Sub(first.ArrivalTime))
}

func TestScheduleCmdStdin(t *testing.T) {
	env := newTestEnv()

	root := NewRootCmd(env.app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetIn(strings.NewReader(scheduleInput))
	root.SetArgs([]string{"schedule", "-f", "-"})
	require.NoError(t, root.Execute())

	assert.Contains(t, buf.String(), `"total_visits": 3`)
}

func TestScheduleCmdErrors(t *testing.T) {
	env := newTestEnv()

	_, err := executeCmd(t, env.app, "schedule")
	require.Error(t, err, "missing -f")

	_, err = executeCmd(t, env.app, "schedule", "-f", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = executeCmd(t, env.app, "schedule", "-f", writeInput(t, `{"points":[{"name":"A"},{"name":"B"}],"matrix":{"duration_s":[[0]]}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestDistanceCmd(t *testing.T) {
	env := newTestEnv()

	out, err := executeCmd(t, env.app, "distance", "15.5,73.8", "15.6, 73.7")
	require.NoError(t, err)

	assert.Equal(t, domain.Coordinates{Lat: 15.5, Lon: 73.8}, env.dist.origin)
	assert.Equal(t, domain.Coordinates{Lat: 15.6, Lon: 73.7}, env.dist.dest)
	assert.Equal(t, "distance: 12.50 km\nduration: 21m 0s\n", out)
}

func TestParseLatLon(t *testing.T) {
	for _, bad := range []string{"15.5", "x,73.8", "15.5,y", "95,10", "10,200"} {
		_, err := parseLatLon(bad)
		assert.Error(t, err, bad)
	}
}
