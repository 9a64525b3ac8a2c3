package stations

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation rule identifiers reported in FieldError.Rule.
const (
	RuleRequired    = "required"
	RuleType        = "type"
	RuleLength      = "length"
	RuleEnum        = "enum"
	RuleRange       = "range"
	RuleActivePower = "active_power"
	RuleConstraint  = "constraint"
)

// FieldError describes one violated validation rule, preserving the raw
// received value for diagnostics.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationError accumulates every violated rule for one input.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

// NewValidationError wraps field errors.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Error joins all field messages.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "station: validation failed"
	}
	messages := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		messages = append(messages, field.Message)
	}
	return "station: validation failed: " + strings.Join(messages, "; ")
}

// FieldNames lists violated fields in report order.
func (e *ValidationError) FieldNames() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		names = append(names, field.Field)
	}
	return names
}

// LocationInput is the loose location shape accepted on the wire. Two entry
// points were built with different conventions, so both a coordinates array
// and separate longitude/latitude scalars are accepted.
type LocationInput struct {
	Type        string `json:"type"`
	Coordinates []any  `json:"coordinates"`
	Longitude   any    `json:"longitude"`
	Latitude    any    `json:"latitude"`
}

// StationInput is the loose station shape accepted on the wire. Numeric
// fields stay untyped so string representations can be coerced.
type StationInput struct {
	Name          string         `json:"name"`
	Location      *LocationInput `json:"location"`
	Status        string         `json:"status"`
	PowerOutput   any            `json:"powerOutput"`
	ConnectorType string         `json:"connectorType"`
}

// ValidateLocation resolves either accepted location shape into a canonical
// point, or reports which coordinate was invalid and what was received.
func ValidateLocation(input *LocationInput) (Point, []FieldError) {
	if input == nil {
		return Point{}, []FieldError{{
			Field:   "location",
			Rule:    RuleRequired,
			Message: "location is required",
		}}
	}

	var (
		rawLongitude any
		rawLatitude  any
	)
	switch {
	case input.Coordinates != nil:
		if len(input.Coordinates) != 2 {
			return Point{}, []FieldError{{
				Field:   "location.coordinates",
				Rule:    RuleLength,
				Message: "coordinates must contain exactly 2 values",
				Value:   input.Coordinates,
			}}
		}
		rawLongitude = input.Coordinates[0]
		rawLatitude = input.Coordinates[1]
	case input.Longitude != nil || input.Latitude != nil:
		rawLongitude = input.Longitude
		rawLatitude = input.Latitude
	default:
		return Point{}, []FieldError{{
			Field:   "location.coordinates",
			Rule:    RuleRequired,
			Message: "coordinates are required",
		}}
	}

	var fields []FieldError
	longitude, ok := coerceNumber(rawLongitude)
	if !ok {
		fields = append(fields, FieldError{
			Field:   "location.longitude",
			Rule:    RuleType,
			Message: "longitude must be a valid number",
			Value:   rawLongitude,
		})
	} else if longitude < -180 || longitude > 180 {
		fields = append(fields, FieldError{
			Field:   "location.longitude",
			Rule:    RuleRange,
			Message: "longitude must be between -180 and 180",
			Value:   rawLongitude,
		})
	}
	latitude, ok := coerceNumber(rawLatitude)
	if !ok {
		fields = append(fields, FieldError{
			Field:   "location.latitude",
			Rule:    RuleType,
			Message: "latitude must be a valid number",
			Value:   rawLatitude,
		})
	} else if latitude < -90 || latitude > 90 {
		fields = append(fields, FieldError{
			Field:   "location.latitude",
			Rule:    RuleRange,
			Message: "latitude must be between -90 and 90",
			Value:   rawLatitude,
		})
	}
	if len(fields) > 0 {
		return Point{}, fields
	}
	return NewPoint(longitude, latitude), nil
}

// ValidateStation turns loose input into a canonical station draft owned by
// currentUserID, or reports every violated rule at once. The draft's id and
// timestamps are assigned by the store.
func ValidateStation(input StationInput, currentUserID string) (*Station, error) {
	var fields []FieldError

	name := strings.TrimSpace(input.Name)
	if name == "" {
		fields = append(fields, FieldError{
			Field:   "name",
			Rule:    RuleRequired,
			Message: "name is required",
		})
	} else if length := utf8.RuneCountInString(name); length < 2 || length > 100 {
		fields = append(fields, FieldError{
			Field:   "name",
			Rule:    RuleLength,
			Message: "name must be between 2 and 100 characters",
			Value:   name,
		})
	}

	location, locationFields := ValidateLocation(input.Location)
	fields = append(fields, locationFields...)

	status := StatusActive
	if input.Status != "" {
		parsed, ok := ParseStatus(input.Status)
		if !ok {
			fields = append(fields, FieldError{
				Field:   "status",
				Rule:    RuleEnum,
				Message: fmt.Sprintf("status must be one of: %s, %s, %s, %s", StatusActive, StatusInactive, StatusMaintenance, StatusFault),
				Value:   input.Status,
			})
		} else {
			status = parsed
		}
	}

	var (
		powerOutput   float64
		powerOutputOK bool
	)
	if input.PowerOutput == nil {
		fields = append(fields, FieldError{
			Field:   "powerOutput",
			Rule:    RuleRequired,
			Message: "powerOutput is required",
		})
	} else if value, ok := coerceNumber(input.PowerOutput); !ok {
		fields = append(fields, FieldError{
			Field:   "powerOutput",
			Rule:    RuleType,
			Message: "powerOutput must be a valid number",
			Value:   input.PowerOutput,
		})
	} else if value < 0 || value > 1000 {
		fields = append(fields, FieldError{
			Field:   "powerOutput",
			Rule:    RuleRange,
			Message: "powerOutput must be between 0 and 1000 kW",
			Value:   input.PowerOutput,
		})
	} else {
		powerOutput = roundTo(value, 2)
		powerOutputOK = true
	}

	connectorType := strings.TrimSpace(input.ConnectorType)
	if connectorType == "" {
		fields = append(fields, FieldError{
			Field:   "connectorType",
			Rule:    RuleRequired,
			Message: "connectorType is required",
		})
	}

	if status == StatusActive && powerOutputOK && powerOutput <= 0 {
		fields = append(fields, FieldError{
			Field:   "powerOutput",
			Rule:    RuleActivePower,
			Message: "active stations must have positive power output",
			Value:   input.PowerOutput,
		})
	}

	if currentUserID == "" {
		fields = append(fields, FieldError{
			Field:   "createdBy",
			Rule:    RuleRequired,
			Message: "creator id is required",
		})
	}

	if len(fields) > 0 {
		return nil, NewValidationError(fields...)
	}
	return &Station{
		Name:          name,
		Location:      location,
		Status:        status,
		PowerOutput:   powerOutput,
		ConnectorType: connectorType,
		CreatedBy:     currentUserID,
	}, nil
}

// coerceNumber parses numeric wire representations. JSON numbers arrive as
// float64 or json.Number depending on the decoder; string forms like "12.5"
// are accepted, non-finite results are not.
func coerceNumber(value any) (float64, bool) {
	var parsed float64
	switch v := value.(type) {
	case float64:
		parsed = v
	case float32:
		parsed = float64(v)
	case int:
		parsed = float64(v)
	case int64:
		parsed = float64(v)
	case json.Number:
		result, err := v.Float64()
		if err != nil {
			return 0, false
		}
		parsed = result
	case string:
		result, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		parsed = result
	default:
		return 0, false
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}
