// Package screen implements the report screen controller: two actions, a
// loading overlay and an alert with the outcome of each submission.
package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/animal-report/internal/location"
	"github.com/ukydev/animal-report/internal/models"
)

// State of the screen.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
)

// Outcome tells which path a submission took.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomePermissionDenied
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomePermissionDenied:
		return "permission_denied"
	default:
		return "failed"
	}
}

// Alert copy shown to the user.
const (
	TitlePermission   = "Permission needed"
	MessagePermission = "Location permission is required to report an animal."
	TitleSuccess      = "Report sent"
	TitleError        = "Error"
	MessageError      = "Could not send the report. Please try again."
)

var ErrInvalidType = errors.New("invalid report type")

// View renders the screen.
type View interface {
	SetLoading(loading bool)
	Alert(title, message string)
}

// Submitter delivers a report to the backend.
type Submitter interface {
	Submit(ctx context.Context, report models.Report) (*models.SubmitResult, error)
}

// ReportScreen wires the permission prompt, the position reader and the
// submitter behind the two report actions.
type ReportScreen struct {
	permissions location.PermissionRequester
	positions   location.PositionReader
	submitter   Submitter
	view        View
	now         func() time.Time

	mu      sync.Mutex
	loading bool
}

// NewReportScreen creates an idle report screen.
func NewReportScreen(permissions location.PermissionRequester, positions location.PositionReader, submitter Submitter, view View) *ReportScreen {
	return &ReportScreen{
		permissions: permissions,
		positions:   positions,
		submitter:   submitter,
		view:        view,
		now:         time.Now,
	}
}

// Loading reports whether the overlay is shown.
func (s *ReportScreen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// State returns the current screen state.
func (s *ReportScreen) State() State {
	if s.Loading() {
		return StateSubmitting
	}
	return StateIdle
}

func (s *ReportScreen) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
	s.view.SetLoading(loading)
}

// RequestAndSend handles one press of a report action. Presses are
// independent; the screen always returns to idle when this returns.
func (s *ReportScreen) RequestAndSend(ctx context.Context, reportType models.ReportType) Outcome {
	s.setLoading(true)
	defer s.setLoading(false)

	if !reportType.Valid() {
		return s.fail(reportType, fmt.Errorf("%w: %q", ErrInvalidType, reportType))
	}

	perm, err := s.permissions.RequestForegroundPermission(ctx)
	if err != nil {
		log.WithError(err).Warn("Location permission request failed")
	}
	if err != nil || perm != location.PermissionGranted {
		log.WithFields(log.Fields{"type": reportType, "permission": perm}).Info("Location permission not granted")
		s.view.Alert(TitlePermission, MessagePermission)
		return OutcomePermissionDenied
	}

	pos, err := s.positions.CurrentPosition(ctx)
	if err != nil {
		return s.fail(reportType, fmt.Errorf("failed to read position: %w", err))
	}

	report := models.NewReport(reportType, pos, s.now())
	result, err := s.submitter.Submit(ctx, report)
	if err != nil {
		return s.fail(reportType, err)
	}

	fields := log.Fields{
		"type":      report.Type,
		"latitude":  report.Latitude,
		"longitude": report.Longitude,
		"timestamp": report.Timestamp,
	}
	if result != nil && result.ID != 0 {
		fields["id"] = result.ID
	}
	log.WithFields(fields).Info("Sent report")

	s.view.Alert(TitleSuccess, fmt.Sprintf("Thanks! Your %s animal report has been sent.", reportType))
	return OutcomeSent
}

func (s *ReportScreen) fail(reportType models.ReportType, err error) Outcome {
	log.WithError(err).WithField("type", reportType).Error("Failed to send report")
	s.view.Alert(TitleError, MessageError)
	return OutcomeFailed
}
