// Package backend is the HTTP client for the Cocoti core API, the
// external collaborator that owns all durable business state. This
// service only translates validated drafts into requests and relays the
// answers.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ccotek/cocoti-pool-flow/internal/config"
)

// StatusError non-2xx answer from the core API, carrying the best
// human-readable message the body offered
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// TransportError the core API could not be reached at all
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "core API unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 from the core API. Callers
// treat it as a recovery signal (clear the token, re-authenticate), not
// as a failure.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// Client core API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a core API client
func New(cfg config.BackendConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient creates a client over a caller-provided http.Client,
// used by tests
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// do issues one JSON request. A non-empty bearer is sent as
// Authorization; out, when non-nil, receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, bearer string, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(data, resp.Status),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// extractMessage digs a human-readable message out of an error body:
// known JSON fields first, then the raw text, then the HTTP status line
func extractMessage(body []byte, status string) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, key := range []string{"detail", "message", "error", "msg"} {
			if v, ok := parsed[key].(string); ok && v != "" {
				return v
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}

// UploadIllustration uploads a pool illustration through the core API.
// fileType is image or video; the response carries the hosted URL.
func (c *Client) UploadIllustration(ctx context.Context, fileType, filename string, file io.Reader, bearer string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	endpoint := c.baseURL + "/api/v1/money-pools/upload-illustration?file_type=" + url.QueryEscape(fileType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Message: extractMessage(data, resp.Status)}
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	return result.URL, nil
}
