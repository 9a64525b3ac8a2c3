package application

import (
	"context"
	"errors"
	"time"

	"evcharge-cloud/internal/auth"
	"evcharge-cloud/internal/observability/metrics"
	stations "evcharge-cloud/internal/stations/domain"
)

// Service bridges validated station records to the store and enforces
// creator-only mutation. It holds no state across requests; consistency is
// read-then-check-then-write within one request, so an update racing a
// delete resolves to whichever write lands last.
type Service struct {
	repo stations.StationRepository
}

// NewService constructs a station service.
func NewService(repo stations.StationRepository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("stations: nil repository")
	}
	return &Service{repo: repo}, nil
}

// Create validates raw input and persists a new station owned by
// currentUserID.
func (s *Service) Create(ctx context.Context, input stations.StationInput, currentUserID string) (*stations.Station, error) {
	started := time.Now()
	if currentUserID == "" {
		return nil, auth.ErrUnauthorized
	}

	station, err := stations.ValidateStation(input, currentUserID)
	if err != nil {
		recordRejection(err)
		metrics.ObserveStationOp("create", metrics.ResultLabel(err, true), started)
		return nil, err
	}

	err = s.repo.Insert(ctx, station)
	metrics.ObserveStationOp("create", metrics.ResultLabel(err, isRejection(err)), started)
	if err != nil {
		return nil, err
	}
	return station, nil
}

// Get loads one station.
func (s *Service) Get(ctx context.Context, id string) (*stations.Station, error) {
	started := time.Now()
	station, err := s.repo.Get(ctx, id)
	if err != nil {
		metrics.ObserveStationOp("get", metrics.ResultLabel(err, false), started)
		return nil, err
	}
	metrics.ObserveStationOp("get", metrics.ResultLabel(nil, false), started)
	if station == nil {
		return nil, stations.ErrNotFound
	}
	return station, nil
}

// List returns stations matching the conjunctive filter.
func (s *Service) List(ctx context.Context, filter stations.StationFilter) ([]*stations.Station, error) {
	started := time.Now()
	list, err := s.repo.List(ctx, filter)
	metrics.ObserveStationOp("list", metrics.ResultLabel(err, false), started)
	return list, err
}

// Update revalidates the full payload and overwrites the record. Only the
// creator may update; createdBy always comes from the stored record, never
// from the input.
func (s *Service) Update(ctx context.Context, id string, input stations.StationInput, currentUserID string) (*stations.Station, error) {
	started := time.Now()
	if currentUserID == "" {
		return nil, auth.ErrUnauthorized
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		metrics.ObserveStationOp("update", metrics.ResultLabel(err, false), started)
		return nil, err
	}
	if existing == nil {
		metrics.ObserveStationOp("update", metrics.ResultLabel(stations.ErrNotFound, false), started)
		return nil, stations.ErrNotFound
	}
	if err := existing.EnsureOwner(currentUserID); err != nil {
		metrics.ObserveStationOp("update", metrics.ResultLabel(err, false), started)
		return nil, err
	}

	draft, err := stations.ValidateStation(input, existing.CreatedBy)
	if err != nil {
		recordRejection(err)
		metrics.ObserveStationOp("update", metrics.ResultLabel(err, true), started)
		return nil, err
	}
	draft.ID = existing.ID
	draft.CreatedAt = existing.CreatedAt

	err = s.repo.Update(ctx, draft)
	metrics.ObserveStationOp("update", metrics.ResultLabel(err, isRejection(err)), started)
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// Delete permanently removes a station after the ownership check.
func (s *Service) Delete(ctx context.Context, id string, currentUserID string) error {
	started := time.Now()
	if currentUserID == "" {
		return auth.ErrUnauthorized
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		metrics.ObserveStationOp("delete", metrics.ResultLabel(err, false), started)
		return err
	}
	if existing == nil {
		metrics.ObserveStationOp("delete", metrics.ResultLabel(stations.ErrNotFound, false), started)
		return stations.ErrNotFound
	}
	if err := existing.EnsureOwner(currentUserID); err != nil {
		metrics.ObserveStationOp("delete", metrics.ResultLabel(err, false), started)
		return err
	}

	err = s.repo.Delete(ctx, id)
	metrics.ObserveStationOp("delete", metrics.ResultLabel(err, false), started)
	return err
}

func isRejection(err error) bool {
	var vErr *stations.ValidationError
	return errors.As(err, &vErr)
}

func recordRejection(err error) {
	var vErr *stations.ValidationError
	if errors.As(err, &vErr) {
		metrics.RecordValidationRejections(vErr.FieldNames())
	}
}
