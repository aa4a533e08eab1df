package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/animal-report/internal/models"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("report rejected with status %s", e.Status)
	}
	return fmt.Sprintf("report rejected with status %s: %s", e.Status, body)
}

// Client submits reports to the backend.
type Client struct {
	// URL returns the report endpoint. It is resolved on every submit.
	URL  func() string
	HTTP *http.Client
}

// New creates a client posting to the endpoint returned by url.
func New(url func() string) *Client {
	return &Client{
		URL:  url,
		HTTP: &http.Client{},
	}
}

// Submit sends a single report. There are no retries.
func (c *Client) Submit(ctx context.Context, report models.Report) (*models.SubmitResult, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	url := c.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send report: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.WithFields(log.Fields{
		"request_id": requestID,
		"url":        url,
		"type":       report.Type,
		"status":     resp.Status,
	}).Debug("Report request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	result := &models.SubmitResult{Body: string(body)}
	if len(bytes.TrimSpace(body)) > 0 {
		// Acknowledgement shape is optional.
		var ack models.SubmitResult
		if err := json.Unmarshal(body, &ack); err != nil {
			log.WithError(err).WithField("request_id", requestID).Debug("Response is not a report acknowledgement")
		} else {
			result.Status = ack.Status
			result.ID = ack.ID
		}
	}
	return result, nil
}
