package location

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Permission is the state of the foreground location grant.
type Permission string

const (
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
	PermissionUndetermined Permission = "undetermined"
)

var ErrNoAnswer = errors.New("no answer to permission prompt")

// PermissionRequester asks for foreground location access.
type PermissionRequester interface {
	RequestForegroundPermission(ctx context.Context) (Permission, error)
}

// FixedPermission answers every request with the same grant.
type FixedPermission struct {
	Granted bool
}

// RequestForegroundPermission implements PermissionRequester.
func (f FixedPermission) RequestForegroundPermission(ctx context.Context) (Permission, error) {
	if f.Granted {
		return PermissionGranted, nil
	}
	return PermissionDenied, nil
}

// Asker poses a question to the user and returns the answer line.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// PromptPermission asks the user through an Asker. A grant is remembered for
// the lifetime of the value, a denial is asked again next time.
type PromptPermission struct {
	Asker Asker

	mu      sync.Mutex
	granted bool
}

// NewPromptPermission creates a prompt-based permission requester.
func NewPromptPermission(asker Asker) *PromptPermission {
	return &PromptPermission{Asker: asker}
}

// RequestForegroundPermission implements PermissionRequester.
func (p *PromptPermission) RequestForegroundPermission(ctx context.Context) (Permission, error) {
	p.mu.Lock()
	granted := p.granted
	p.mu.Unlock()
	if granted {
		return PermissionGranted, nil
	}

	answer, err := p.Asker.Ask(ctx, "Allow this app to access your location while in use? [y/N]")
	if err != nil {
		return PermissionUndetermined, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		p.mu.Lock()
		p.granted = true
		p.mu.Unlock()
		return PermissionGranted, nil
	default:
		return PermissionDenied, nil
	}
}
