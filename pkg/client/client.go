// Package client is a Go SDK for the admission portal API. The public
// submission call needs no API key; the dashboard calls do.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/mgmcet/admission-portal/internal/models"
)

// Client is a Go SDK for the admission portal API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new admission portal client. apiKey may be empty for
// submission-only use.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Upload is one image attached to a submission
type Upload struct {
	Filename string
	Data     []byte
}

// SubmitRequest carries a complete application submission
type SubmitRequest struct {
	Form     models.ApplicationForm
	Subjects []models.Subject
	Entrance *models.EntranceMarks

	Photo              Upload
	ParentSignature    Upload
	ApplicantSignature Upload
}

// ListOptions contains options for listing applications
type ListOptions struct {
	Limit  int
	Offset int
}

// ListResult is one page of applications
type ListResult struct {
	Applications []*models.Application `json:"applications"`
	Count        int                   `json:"count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// SubmitApplication posts a new application as a multipart form and returns
// the allocated record.
func (c *Client) SubmitApplication(ctx context.Context, req SubmitRequest) (*models.Application, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields, err := formFields(req.Form)
	if err != nil {
		return nil, err
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	subjects, err := json.Marshal(req.Subjects)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subjects: %w", err)
	}
	if err := mw.WriteField("subjects", string(subjects)); err != nil {
		return nil, fmt.Errorf("failed to write subjects: %w", err)
	}

	if req.Entrance != nil {
		entrance, err := json.Marshal(req.Entrance)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal entrance marks: %w", err)
		}
		if err := mw.WriteField("entranceMarks", string(entrance)); err != nil {
			return nil, fmt.Errorf("failed to write entrance marks: %w", err)
		}
	} else {
		if err := mw.WriteField("hasEntrance", "false"); err != nil {
			return nil, fmt.Errorf("failed to write entrance flag: %w", err)
		}
	}

	uploads := map[string]Upload{
		"photo":              req.Photo,
		"parentSignature":    req.ParentSignature,
		"applicantSignature": req.ApplicantSignature,
	}
	for field, upload := range uploads {
		part, err := mw.CreateFormFile(field, upload.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part %s: %w", field, err)
		}
		if _, err := part.Write(upload.Data); err != nil {
			return nil, fmt.Errorf("failed to write file part %s: %w", field, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/applications", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	return decodeApplication(resp)
}

// GetApplication retrieves an application by its id
func (c *Client) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/applications/%s", id), nil, "")
	if err != nil {
		return nil, err
	}

	return decodeApplication(resp)
}

// ListApplications retrieves one page of applications, oldest first
func (c *Client) ListApplications(ctx context.Context, opts ListOptions) (*ListResult, error) {
	path := "/api/v1/applications"
	if opts.Limit > 0 || opts.Offset > 0 {
		path = fmt.Sprintf("%s?limit=%d&offset=%d", path, opts.Limit, opts.Offset)
	}

	resp, err := c.doRequest(ctx, "GET", path, nil, "")
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool        `json:"success"`
		Data    *ListResult `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// CounterValue reads the current application counter
func (c *Client) CounterValue(ctx context.Context) (int64, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/applications/counter", nil, "")
	if err != nil {
		return 0, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    *struct {
			Counter int64 `json:"counter"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return 0, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Counter, nil
}

// DownloadPDF fetches the rendered application document. date may be empty
// to use the server's default (today).
func (c *Client) DownloadPDF(ctx context.Context, id, date string) ([]byte, error) {
	path := fmt.Sprintf("/api/v1/applications/%s/pdf", id)
	if date != "" {
		path = fmt.Sprintf("%s?date=%s", path, date)
	}

	return c.doRequest(ctx, "GET", path, nil, "")
}

// Health checks service health
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil, "")
	return err
}

// formFields flattens the form struct into its posted field names using the
// json tags, skipping server-assigned fields.
func formFields(form models.ApplicationForm) (map[string]string, error) {
	form.AppID = ""
	form.Photo = ""
	form.ParentSignature = ""
	form.ApplicantSignature = ""

	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form: %w", err)
	}

	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten form: %w", err)
	}
	return fields, nil
}

func decodeApplication(resp []byte) (*models.Application, error) {
	var result struct {
		Success bool                `json:"success"`
		Data    *models.Application `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
