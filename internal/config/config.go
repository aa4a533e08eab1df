package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Location sources understood by the reporter.
const (
	SourceStatic    = "static"
	SourceSimulated = "simulated"
	SourceMQTT      = "mqtt"
)

// Permission modes.
const (
	PermissionPrompt  = "prompt"
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

// Config is the runtime configuration of the reporter.
type Config struct {
	URLs URLSources

	LocationSource string
	Permission     string
	StaticLat      float64
	StaticLon      float64
	JitterMeters   float64

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string

	LogLevel log.Level
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first; variables already set take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	manifestPath := getenv("APP_MANIFEST", "app.json")
	extra, err := ManifestBackendURL(manifestPath)
	if err != nil {
		log.WithError(err).WithField("path", manifestPath).Warn("Ignoring app manifest")
	}

	cfg := &Config{
		URLs: URLSources{
			Env:           os.Getenv("EXPO_PUBLIC_BACKEND_URL"),
			ManifestExtra: extra,
		},
		LocationSource: strings.ToLower(getenv("LOCATION_SOURCE", SourceSimulated)),
		Permission:     strings.ToLower(getenv("LOCATION_PERMISSION", PermissionPrompt)),
		StaticLat:      getenvFloat("LOCATION_LAT", 0),
		StaticLon:      getenvFloat("LOCATION_LON", 0),
		JitterMeters:   getenvFloat("LOCATION_JITTER_METERS", 500),
		MQTTBroker:     getenv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTTopic:      getenv("MQTT_TOPIC", "device/gps"),
		MQTTClientID:   os.Getenv("MQTT_CLIENT_ID"),
		LogLevel:       log.InfoLevel,
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := log.ParseLevel(lvl); err == nil {
			cfg.LogLevel = parsed
		}
	}

	switch cfg.LocationSource {
	case SourceStatic, SourceSimulated, SourceMQTT:
	default:
		return nil, fmt.Errorf("unsupported LOCATION_SOURCE %q", cfg.LocationSource)
	}
	switch cfg.Permission {
	case PermissionPrompt, PermissionGranted, PermissionDenied:
	default:
		return nil, fmt.Errorf("unsupported LOCATION_PERMISSION %q", cfg.Permission)
	}

	return cfg, nil
}

// BackendBaseURL resolves the backend base URL for this configuration.
func (c *Config) BackendBaseURL() string {
	return BackendBaseURL(c.URLs)
}

// ReportURL resolves the report endpoint for this configuration.
func (c *Config) ReportURL() string {
	return ReportURL(c.URLs)
}

type manifestExtra struct {
	BackendURL string `json:"backendUrl"`
}

type manifest struct {
	Extra *manifestExtra `json:"extra"`
	Expo  *struct {
		Extra *manifestExtra `json:"extra"`
	} `json:"expo"`
}

// ManifestBackendURL reads extra.backendUrl from an app manifest. Both the
// flat layout and the one nested under "expo" are accepted. A missing file
// is not an error.
func ManifestBackendURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("failed to decode manifest: %w", err)
	}

	if m.Extra != nil && m.Extra.BackendURL != "" {
		return m.Extra.BackendURL, nil
	}
	if m.Expo != nil && m.Expo.Extra != nil {
		return m.Expo.Extra.BackendURL, nil
	}
	return "", nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
