package models

import "time"

// Position is a single device location fix.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"` // in meters, 0 if unknown
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Valid reports whether the coordinates are within WGS84 bounds.
func (p Position) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}
