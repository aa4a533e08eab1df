package models

import (
	"fmt"
	"strings"
	"time"
)

// ReportType is the kind of animal sighting being reported.
type ReportType string

const (
	ReportDead    ReportType = "dead"
	ReportInjured ReportType = "injured"
)

// TimestampLayout matches JavaScript's Date.toISOString output.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Valid checks if the report type is one the backend accepts.
func (t ReportType) Valid() bool {
	switch t {
	case ReportDead, ReportInjured:
		return true
	default:
		return false
	}
}

// ParseReportType converts user input into a ReportType.
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown report type %q", s)
	}
	return t, nil
}

// Report is a single animal sighting submitted to the backend.
// It is built per button press and never stored.
type Report struct {
	Type      ReportType `json:"type"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timestamp string     `json:"timestamp"`
}

// NewReport builds a report from a position fix captured at the given time.
func NewReport(t ReportType, pos Position, at time.Time) Report {
	return Report{
		Type:      t,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Timestamp: at.UTC().Format(TimestampLayout),
	}
}

// SubmitResult is the backend acknowledgement for a stored report.
type SubmitResult struct {
	Status string `json:"status"`
	ID     int64  `json:"id,omitempty"`
	Body   string `json:"-"`
}
