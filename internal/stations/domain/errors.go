package stations

import "errors"

var (
	// ErrNotFound indicates a missing station record.
	ErrNotFound = errors.New("station: not found")
	// ErrForbidden indicates the caller is not the station's creator.
	ErrForbidden = errors.New("station: caller is not the creator")
)
