package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// AnonymousPatientID is sent upstream when no authenticated identity is
// available for an upload.
const AnonymousPatientID = "Anonymous"

// UpstreamError is returned when the analysis service answers with a
// non-2xx status.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analysis service returned status %d: %s", e.Status, e.Body)
}

// UpstreamHealth is the analysis service's own health report.
type UpstreamHealth struct {
	Status            string `json:"status"`
	ModelLoaded       bool   `json:"model_loaded"`
	SupabaseConnected bool   `json:"supabase_connected"`
}

// Client is a typed HTTP client for the external analysis service. It
// performs no retries, no caching, and no transformation of responses.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the service at baseURL. The timeout bounds
// each request end to end; inference on large images is slow, so callers
// should allow generous values.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Analyze submits an image for grading via POST /analyze. patientID is the
// authenticated user's email; an empty value falls back to "Anonymous".
func (c *Client) Analyze(ctx context.Context, filename string, file io.Reader, patientID string) (*Result, error) {
	if patientID == "" {
		patientID = AnonymousPatientID
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating multipart file field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copying upload into request body: %w", err)
	}
	if err := mw.WriteField("patient_id", patientID); err != nil {
		return nil, fmt.Errorf("writing patient_id field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("building analyze request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result Result
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// History fetches the full analysis history via GET /history. The endpoint
// takes no parameters; the returned snapshot is not scoped to any user.
func (c *Client) History(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history", nil)
	if err != nil {
		return nil, fmt.Errorf("building history request: %w", err)
	}

	var records []Record
	if err := c.do(req, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Health probes the service's GET /health endpoint.
func (c *Client) Health(ctx context.Context) (*UpstreamHealth, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("building health request: %w", err)
	}

	var health UpstreamHealth
	if err := c.do(req, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// do executes a request and decodes the JSON response into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling analysis service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding analysis service response: %w", err)
	}
	return nil
}
