package location

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ukydev/animal-report/internal/models"
)

// PositionReader returns a one-shot fix of the device position.
type PositionReader interface {
	CurrentPosition(ctx context.Context) (models.Position, error)
}

// StaticReader always reports the same coordinates.
type StaticReader struct {
	Latitude  float64
	Longitude float64
}

// CurrentPosition implements PositionReader.
func (s StaticReader) CurrentPosition(ctx context.Context) (models.Position, error) {
	if err := ctx.Err(); err != nil {
		return models.Position{}, err
	}
	return models.Position{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timestamp: time.Now(),
	}, nil
}

// Reference points for simulated fixes, mostly rural roads across the UK.
var referencePoints = []models.Position{
	{Latitude: 52.0, Longitude: 1.0},        // Suffolk
	{Latitude: 51.5, Longitude: 0.1},        // Essex
	{Latitude: 54.4609, Longitude: -3.0886}, // Lake District
	{Latitude: 50.5719, Longitude: -3.9207}, // Dartmoor
	{Latitude: 53.3498, Longitude: -1.7650}, // Peak District
	{Latitude: 57.1200, Longitude: -3.6400}, // Cairngorms
	{Latitude: 52.8000, Longitude: -3.8000}, // Snowdonia
	{Latitude: 54.3500, Longitude: -1.9500}, // Yorkshire Dales
}

// SimulatedReader returns a random reference point jittered by up to
// JitterMeters in each direction.
type SimulatedReader struct {
	JitterMeters float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedReader creates a simulated reader. A zero seed uses the clock.
func NewSimulatedReader(jitterMeters float64, seed int64) *SimulatedReader {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedReader{
		JitterMeters: jitterMeters,
		rnd:          rand.New(rand.NewSource(seed)),
	}
}

// CurrentPosition implements PositionReader.
func (s *SimulatedReader) CurrentPosition(ctx context.Context) (models.Position, error) {
	if err := ctx.Err(); err != nil {
		return models.Position{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	base := referencePoints[s.rnd.Intn(len(referencePoints))]
	pos := jitterPosition(s.rnd, base, s.JitterMeters)
	pos.Accuracy = s.JitterMeters
	pos.Timestamp = time.Now()
	return pos, nil
}

func jitterPosition(rnd *rand.Rand, base models.Position, meters float64) models.Position {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Latitude*math.Pi/180)
	dLat := (rnd.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rnd.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return models.Position{Latitude: base.Latitude + dLat, Longitude: base.Longitude + dLon}
}
