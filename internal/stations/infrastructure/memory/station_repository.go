package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	stations "evcharge-cloud/internal/stations/domain"
)

// StationRepository is an in-memory repository for tests and demos.
type StationRepository struct {
	mu   sync.RWMutex
	data map[string]*stations.Station
}

// NewStationRepository constructs a repository.
func NewStationRepository() *StationRepository {
	return &StationRepository{data: make(map[string]*stations.Station)}
}

// Insert stores a new station, assigning id and timestamps.
func (r *StationRepository) Insert(ctx context.Context, station *stations.Station) error {
	_ = ctx
	if station == nil {
		return errors.New("station repo: nil station")
	}
	if station.ID == "" {
		station.ID = newStationID()
	}
	now := time.Now().UTC()
	station.CreatedAt = now
	station.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *station
	r.data[station.ID] = &clone
	return nil
}

// Get loads a station by id, nil when absent.
func (r *StationRepository) Get(ctx context.Context, id string) (*stations.Station, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	station := r.data[id]
	if station == nil {
		return nil, nil
	}
	clone := *station
	return &clone, nil
}

// List returns stations matching the filter.
func (r *StationRepository) List(ctx context.Context, filter stations.StationFilter) ([]*stations.Station, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*stations.Station, 0, len(r.data))
	for _, station := range r.data {
		if filter.Status != "" && station.Status != filter.Status {
			continue
		}
		if filter.PowerOutput != nil && station.PowerOutput != *filter.PowerOutput {
			continue
		}
		if filter.ConnectorType != "" && station.ConnectorType != filter.ConnectorType {
			continue
		}
		clone := *station
		result = append(result, &clone)
	}
	return result, nil
}

// Update overwrites an existing station.
func (r *StationRepository) Update(ctx context.Context, station *stations.Station) error {
	_ = ctx
	if station == nil || station.ID == "" {
		return errors.New("station repo: missing station id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[station.ID]; !ok {
		return stations.ErrNotFound
	}
	station.UpdatedAt = time.Now().UTC()
	clone := *station
	r.data[station.ID] = &clone
	return nil
}

// Delete removes a station permanently.
func (r *StationRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return stations.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func newStationID() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	return "stn-" + hex.EncodeToString(buf)
}
