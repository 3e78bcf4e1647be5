package cache

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/ports"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arrayConverter lets []string arguments through, as the pgx driver does.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func TestSQLDistanceCacheGetMany(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"destination", "distance_meters", "duration_seconds"}).
		AddRow("b", 1200.0, 90.0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM distance_cache")).
		WithArgs("a", []string{"b", "c"}).
		WillReturnRows(rows)

	c := NewSQLDistanceCache(db)
	got, err := c.GetMany(context.Background(), "a", []string{"b", "c", "b"})
	require.NoError(t, err)

	assert.Equal(t, map[string]ports.DistanceResult{"b": {DistanceMeters: 1200, DurationSeconds: 90}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDistanceCachePutManySkipsUnreachable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO distance_cache"))
	prep.ExpectExec().WithArgs("a", "b", 1200.0, 90.0).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	c := NewSQLDistanceCache(db)
	err = c.PutMany(context.Background(), "a", map[string]ports.DistanceResult{
		"b": {DistanceMeters: 1200, DurationSeconds: 90},
		"c": {DistanceMeters: domain.Unreachable, DurationSeconds: domain.Unreachable},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGeocodeCacheGetMany(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"query", "display_name", "lon", "lat"}).
		AddRow("goa", "Goa, India", 74.08, 15.3)
	mock.ExpectQuery(regexp.QuoteMeta("FROM geocode_cache")).
		WithArgs([]string{"goa"}).
		WillReturnRows(rows)

	c := NewSQLGeocodeCache(db)
	got, err := c.GetMany(context.Background(), []string{" goa "})
	require.NoError(t, err)

	require.Contains(t, got, "goa")
	assert.Equal(t, "Goa, India", got["goa"].DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGeocodeCachePutManyRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO geocode_cache"))
	prep.ExpectExec().WillReturnError(assert.AnError)
	mock.ExpectRollback()

	c := NewSQLGeocodeCache(db)
	err = c.PutMany(context.Background(), map[string]domain.GeoResult{"goa": {DisplayName: "Goa"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
