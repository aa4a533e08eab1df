package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/animal-report/internal/models"
)

var (
	ErrNoFix      = errors.New("no position fix received")
	ErrInvalidFix = errors.New("invalid position fix")
)

// MQTTReader reads the device position from a GPS feed published on an
// MQTT topic. Each call connects with its own session, waits for the first
// fix (a retained message arrives immediately) and disconnects. ClientID is
// the prefix of the per-call session id.
type MQTTReader struct {
	Broker   string
	Topic    string
	ClientID string
	Timeout  time.Duration
}

// NewMQTTReader creates a reader for the given broker and topic.
func NewMQTTReader(broker, topic, clientID string) *MQTTReader {
	if clientID == "" {
		clientID = "animal-reporter-" + uuid.NewString()
	}
	return &MQTTReader{
		Broker:   broker,
		Topic:    topic,
		ClientID: clientID,
		Timeout:  30 * time.Second,
	}
}

// CurrentPosition implements PositionReader.
func (r *MQTTReader) CurrentPosition(ctx context.Context) (models.Position, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(r.Broker).
		SetClientID(r.sessionClientID()).
		SetAutoReconnect(false).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)

	connect := client.Connect()
	if err := waitToken(ctx, connect); err != nil {
		// A connect still in flight may complete after we give up.
		go func() {
			connect.Wait()
			if client.IsConnected() {
				client.Disconnect(0)
			}
		}()
		return models.Position{}, fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}
	defer client.Disconnect(250)

	fixes := make(chan models.Position, 1)
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		pos, err := DecodeFix(msg.Payload())
		if err != nil {
			log.WithError(err).WithField("topic", msg.Topic()).Warn("Discarding GPS message")
			return
		}
		select {
		case fixes <- pos:
		default:
		}
	}

	if err := waitToken(ctx, client.Subscribe(r.Topic, 1, handler)); err != nil {
		return models.Position{}, fmt.Errorf("failed to subscribe to %s: %w", r.Topic, err)
	}
	defer client.Unsubscribe(r.Topic)

	select {
	case pos := <-fixes:
		log.WithFields(log.Fields{
			"topic":     r.Topic,
			"latitude":  pos.Latitude,
			"longitude": pos.Longitude,
		}).Debug("Received GPS fix")
		return pos, nil
	case <-ctx.Done():
		return models.Position{}, fmt.Errorf("%w on %s: %v", ErrNoFix, r.Topic, ctx.Err())
	}
}

// sessionClientID is unique per call. Brokers drop an existing session when
// another connects with the same id, so overlapping reads need their own.
func (r *MQTTReader) sessionClientID() string {
	return r.ClientID + "-" + uuid.NewString()
}

func waitToken(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// gpsMessage accepts the short and long coordinate spellings used by
// common trackers.
type gpsMessage struct {
	Lat       *float64   `json:"lat"`
	Lon       *float64   `json:"lon"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Accuracy  float64    `json:"accuracy"`
	Timestamp *time.Time `json:"timestamp"`
}

// DecodeFix parses a GPS message payload into a position.
func DecodeFix(payload []byte) (models.Position, error) {
	var msg gpsMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return models.Position{}, fmt.Errorf("%w: %v", ErrInvalidFix, err)
	}

	lat, lon := msg.Latitude, msg.Longitude
	if lat == nil {
		lat = msg.Lat
	}
	if lon == nil {
		lon = msg.Lon
	}
	if lat == nil || lon == nil {
		return models.Position{}, fmt.Errorf("%w: missing coordinates", ErrInvalidFix)
	}

	pos := models.Position{
		Latitude:  *lat,
		Longitude: *lon,
		Accuracy:  msg.Accuracy,
		Timestamp: time.Now(),
	}
	if msg.Timestamp != nil {
		pos.Timestamp = *msg.Timestamp
	}
	if !pos.Valid() {
		return models.Position{}, fmt.Errorf("%w: coordinates out of range (%f, %f)", ErrInvalidFix, pos.Latitude, pos.Longitude)
	}
	return pos, nil
}
