package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"trip-planner-service/internal/domain"
)

// SQLite-backed implementation of the TripRepository port.
// The planning state is stored as a JSON document.
type SqliteTripRepository struct{ DB *sql.DB }

func NewSqliteTripRepository(db *sql.DB) *SqliteTripRepository {
	return &SqliteTripRepository{DB: db}
}

func (s *SqliteTripRepository) Save(ctx context.Context, plan domain.TripPlan) error {
	if s.DB == nil {
		return errors.New("sqlite trip repository: DB is nil")
	}
	if plan.ID == "" {
		return errors.New("save trip: id must be non-empty")
	}

	state, err := json.Marshal(plan.State)
	if err != nil {
		return fmt.Errorf("save trip %s: encode state: %w", plan.ID, err)
	}

	query := `
	INSERT OR REPLACE INTO trip_plans (
		id,
		destination,
		created_at,
		state_json
	)
	VALUES (?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(ctx, query,
		plan.ID,
		plan.State.Request.Destination,
		plan.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(state),
	)
	if err != nil {
		return fmt.Errorf("save trip %s: insert: %w", plan.ID, err)
	}

	return nil
}

func (s *SqliteTripRepository) Get(ctx context.Context, id string) (domain.TripPlan, error) {
	if s.DB == nil {
		return domain.TripPlan{}, errors.New("sqlite trip repository: DB is nil")
	}

	query := `
	SELECT
		id,
		created_at,
		state_json
	FROM trip_plans
	WHERE id = ?;
	`
	row := s.DB.QueryRowContext(ctx, query, id)

	plan, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TripPlan{}, fmt.Errorf("get trip %s: %w", id, domain.ErrTripNotFound)
	}
	if err != nil {
		return domain.TripPlan{}, fmt.Errorf("get trip %s: %w", id, err)
	}

	return plan, nil
}

// Return up to limit plans, newest first.
func (s *SqliteTripRepository) List(ctx context.Context, limit int) ([]domain.TripPlan, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite trip repository: DB is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT
		id,
		created_at,
		state_json
	FROM trip_plans
	ORDER BY created_at DESC, id
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list trips: query trip_plans table: %w", err)
	}
	defer rows.Close()

	plans := make([]domain.TripPlan, 0, limit)
	for rows.Next() {
		plan, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("list trips: scan row: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: row iteration: %w", err)
	}

	return plans, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(row scanner) (domain.TripPlan, error) {
	var (
		plan      domain.TripPlan
		createdAt string
		state     string
	)
	if err := row.Scan(&plan.ID, &createdAt, &state); err != nil {
		return domain.TripPlan{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.TripPlan{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	plan.CreatedAt = t

	if err := json.Unmarshal([]byte(state), &plan.State); err != nil {
		return domain.TripPlan{}, fmt.Errorf("decode state: %w", err)
	}

	return plan, nil
}
