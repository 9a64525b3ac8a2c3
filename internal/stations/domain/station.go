package stations

import (
	"context"
	"math"
	"time"
)

// Status describes the operational state of a charging station.
type Status string

const (
	StatusActive      Status = "Active"
	StatusInactive    Status = "Inactive"
	StatusMaintenance Status = "Maintenance"
	StatusFault       Status = "Fault"
)

// ParseStatus validates a status string.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusActive, StatusInactive, StatusMaintenance, StatusFault:
		return Status(value), true
	default:
		return "", false
	}
}

// GeometryPoint is the discriminator tagging a location as point geometry.
const GeometryPoint = "Point"

// Point is a canonical geographic point stored as [longitude, latitude].
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint builds a point with coordinates rounded to 6 decimal places.
func NewPoint(longitude, latitude float64) Point {
	return Point{
		Type:        GeometryPoint,
		Coordinates: [2]float64{roundTo(longitude, 6), roundTo(latitude, 6)},
	}
}

// Longitude returns the first coordinate.
func (p Point) Longitude() float64 { return p.Coordinates[0] }

// Latitude returns the second coordinate.
func (p Point) Latitude() float64 { return p.Coordinates[1] }

// Station is a canonical charging station record.
type Station struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Location      Point     `json:"location"`
	Status        Status    `json:"status"`
	PowerOutput   float64   `json:"powerOutput"`
	ConnectorType string    `json:"connectorType"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EnsureOwner verifies the caller created this station.
func (s *Station) EnsureOwner(callerID string) error {
	if s == nil {
		return ErrNotFound
	}
	if callerID == "" || s.CreatedBy != callerID {
		return ErrForbidden
	}
	return nil
}

// StationFilter narrows List results. Empty fields impose no constraint;
// set fields combine with AND.
type StationFilter struct {
	Status        Status
	PowerOutput   *float64
	ConnectorType string
}

// StationRepository manages station persistence.
type StationRepository interface {
	Insert(ctx context.Context, station *Station) error
	Get(ctx context.Context, id string) (*Station, error)
	List(ctx context.Context, filter StationFilter) ([]*Station, error)
	Update(ctx context.Context, station *Station) error
	Delete(ctx context.Context, id string) error
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
