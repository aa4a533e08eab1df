package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackendBaseURL_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		src      URLSources
		expected string
	}{
		{"env wins over manifest", URLSources{Env: "https://env.example.com", ManifestExtra: "https://manifest.example.com"}, "https://env.example.com"},
		{"manifest when env empty", URLSources{ManifestExtra: "https://manifest.example.com"}, "https://manifest.example.com"},
		{"whitespace env ignored", URLSources{Env: "   ", ManifestExtra: "https://manifest.example.com"}, "https://manifest.example.com"},
		{"fallback", URLSources{}, FallbackBackendURL},
		{"single trailing slash", URLSources{Env: "https://example.com/"}, "https://example.com"},
		{"many trailing slashes", URLSources{ManifestExtra: "http://10.0.2.2:8000///"}, "http://10.0.2.2:8000"},
		{"path kept", URLSources{Env: "https://example.com/api/"}, "https://example.com/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BackendBaseURL(tt.src))
		})
	}
}

func TestReportURL(t *testing.T) {
	sources := []URLSources{
		{},
		{Env: "https://example.com/"},
		{ManifestExtra: "http://localhost:8000"},
		{Env: "https://a.example.com//", ManifestExtra: "https://b.example.com"},
	}

	for _, src := range sources {
		assert.Equal(t, BackendBaseURL(src)+"/report", ReportURL(src))
	}

	assert.Equal(t, "https://example.com/report", ReportURL(URLSources{Env: "https://example.com/"}))
	assert.Equal(t, "https://animal-report-api.onrender.com/report", ReportURL(URLSources{}))
}
