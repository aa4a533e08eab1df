package config

import "strings"

// FallbackBackendURL is used when neither the environment nor the app
// manifest configure a backend.
const FallbackBackendURL = "https://animal-report-api.onrender.com"

// ReportPath is appended to the base URL to submit a report.
const ReportPath = "/report"

// URLSources holds the candidate backend URLs in priority order.
type URLSources struct {
	Env           string // EXPO_PUBLIC_BACKEND_URL
	ManifestExtra string // extra.backendUrl from the app manifest
}

// BackendBaseURL returns the first configured backend URL with trailing
// slashes removed.
func BackendBaseURL(src URLSources) string {
	base := FallbackBackendURL
	for _, candidate := range []string{src.Env, src.ManifestExtra} {
		if v := strings.TrimSpace(candidate); v != "" {
			base = v
			break
		}
	}
	return strings.TrimRight(base, "/")
}

// ReportURL returns the endpoint reports are POSTed to.
func ReportURL(src URLSources) string {
	return BackendBaseURL(src) + ReportPath
}
