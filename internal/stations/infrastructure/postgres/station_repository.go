package postgres

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	stations "evcharge-cloud/internal/stations/domain"
)

const defaultStationsTable = "stations"

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// StationRepository is a Postgres implementation for station records.
type StationRepository struct {
	db    DBTX
	table string
}

// NewStationRepository constructs a repository.
func NewStationRepository(db DBTX, opts ...StationOption) *StationRepository {
	repo := &StationRepository{db: db, table: defaultStationsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// StationOption configures the repository.
type StationOption func(*StationRepository)

// WithStationTable overrides the default table name.
func WithStationTable(table string) StationOption {
	return func(repo *StationRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Insert persists a new station, assigning id and store timestamps.
func (r *StationRepository) Insert(ctx context.Context, station *stations.Station) error {
	if r == nil || r.db == nil {
		return errors.New("station repo: nil db")
	}
	if station == nil {
		return errors.New("station repo: nil station")
	}
	if station.ID == "" {
		station.ID = newStationID()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	name,
	longitude,
	latitude,
	status,
	power_output,
	connector_type,
	created_by
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)
RETURNING created_at, updated_at`, r.table)

	err := r.db.QueryRowContext(
		ctx,
		query,
		station.ID,
		station.Name,
		station.Location.Longitude(),
		station.Location.Latitude(),
		string(station.Status),
		station.PowerOutput,
		station.ConnectorType,
		station.CreatedBy,
	).Scan(&station.CreatedAt, &station.UpdatedAt)
	if err != nil {
		return mapConstraintError(err)
	}
	station.CreatedAt = station.CreatedAt.UTC()
	station.UpdatedAt = station.UpdatedAt.UTC()
	return nil
}

// Get loads a station by id, nil when absent.
func (r *StationRepository) Get(ctx context.Context, id string) (*stations.Station, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}
	if id == "" {
		return nil, errors.New("station repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, name, longitude, latitude, status, power_output, connector_type, created_by, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	station, err := scanStation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return station, nil
}

// List returns stations matching the conjunctive filter.
func (r *StationRepository) List(ctx context.Context, filter stations.StationFilter) ([]*stations.Station, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}

	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PowerOutput != nil {
		args = append(args, *filter.PowerOutput)
		conditions = append(conditions, fmt.Sprintf("power_output = $%d", len(args)))
	}
	if filter.ConnectorType != "" {
		args = append(args, filter.ConnectorType)
		conditions = append(conditions, fmt.Sprintf("connector_type = $%d", len(args)))
	}

	query := fmt.Sprintf(`
SELECT id, name, longitude, latitude, status, power_output, connector_type, created_by, created_at, updated_at
FROM %s`, r.table)
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*stations.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, station)
	}
	return result, rows.Err()
}

// Update overwrites all mutable fields of an existing station.
func (r *StationRepository) Update(ctx context.Context, station *stations.Station) error {
	if r == nil || r.db == nil {
		return errors.New("station repo: nil db")
	}
	if station == nil || station.ID == "" {
		return errors.New("station repo: missing station id")
	}

	query := fmt.Sprintf(`
UPDATE %s
SET
	name = $2,
	longitude = $3,
	latitude = $4,
	status = $5,
	power_output = $6,
	connector_type = $7,
	updated_at = NOW()
WHERE id = $1
RETURNING updated_at`, r.table)

	err := r.db.QueryRowContext(
		ctx,
		query,
		station.ID,
		station.Name,
		station.Location.Longitude(),
		station.Location.Latitude(),
		string(station.Status),
		station.PowerOutput,
		station.ConnectorType,
	).Scan(&station.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stations.ErrNotFound
		}
		return mapConstraintError(err)
	}
	station.UpdatedAt = station.UpdatedAt.UTC()
	return nil
}

// Delete removes a station permanently.
func (r *StationRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("station repo: nil db")
	}
	if id == "" {
		return errors.New("station repo: empty id")
	}

	result, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return stations.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStation(row rowScanner) (*stations.Station, error) {
	var (
		station   stations.Station
		longitude float64
		latitude  float64
		status    string
	)
	if err := row.Scan(
		&station.ID,
		&station.Name,
		&longitude,
		&latitude,
		&status,
		&station.PowerOutput,
		&station.ConnectorType,
		&station.CreatedBy,
		&station.CreatedAt,
		&station.UpdatedAt,
	); err != nil {
		return nil, err
	}
	station.Location = stations.NewPoint(longitude, latitude)
	station.Status = stations.Status(status)
	station.CreatedAt = station.CreatedAt.UTC()
	station.UpdatedAt = station.UpdatedAt.UTC()
	return &station, nil
}

// constraintFields maps schema constraint names to wire field names so store
// rejections surface as field-level validation errors, not raw driver errors.
var constraintFields = map[string]string{
	"stations_name_length":    "name",
	"stations_status_enum":    "status",
	"stations_longitude_rng":  "location.longitude",
	"stations_latitude_rng":   "location.latitude",
	"stations_power_rng":      "powerOutput",
	"stations_active_power":   "powerOutput",
	"stations_created_by_set": "createdBy",
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	// Class 23: integrity constraint violations.
	if !strings.HasPrefix(pgErr.Code, "23") {
		return err
	}
	field, ok := constraintFields[pgErr.ConstraintName]
	if !ok {
		field = pgErr.ColumnName
	}
	return stations.NewValidationError(stations.FieldError{
		Field:   field,
		Rule:    stations.RuleConstraint,
		Message: pgErr.Message,
	})
}

func newStationID() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	return "stn-" + hex.EncodeToString(buf)
}
