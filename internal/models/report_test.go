package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ReportType
		wantErr bool
	}{
		{"dead", "dead", ReportDead, false},
		{"injured", "injured", ReportInjured, false},
		{"mixed case with spaces", "  Injured ", ReportInjured, false},
		{"unknown", "sleeping", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReportType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewReport(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 15, 123456789, time.FixedZone("CET", 3600))
	pos := Position{Latitude: 52.0, Longitude: 1.0, Accuracy: 12}

	r := NewReport(ReportDead, pos, at)

	assert.Equal(t, ReportDead, r.Type)
	assert.Equal(t, 52.0, r.Latitude)
	assert.Equal(t, 1.0, r.Longitude)
	assert.Equal(t, "2024-03-01T08:30:15.123Z", r.Timestamp)

	parsed, err := time.Parse(time.RFC3339, r.Timestamp)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(at.Truncate(time.Millisecond)))
}

func TestPosition_Valid(t *testing.T) {
	assert.True(t, Position{Latitude: 51.5, Longitude: -0.12}.Valid())
	assert.True(t, Position{Latitude: -90, Longitude: 180}.Valid())
	assert.False(t, Position{Latitude: 91, Longitude: 0}.Valid())
	assert.False(t, Position{Latitude: 0, Longitude: -180.5}.Valid())
}
