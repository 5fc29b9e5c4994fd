// Package gateway is the single egress point to the management backend.
// Every screen talks to the backend through this client, which normalizes
// transport failures and upstream rejections into a small error taxonomy
// the views can render without knowing HTTP details.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/medica/medica-web/logging"
)

// APIError is an upstream rejection: the backend answered, but with a
// non-2xx status. Message carries the human-readable reason the backend
// sent, extracted from either a JSON body or a plain text one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed: %s", e.Message)
}

// NetworkError is a transport failure: the backend never answered. The
// rendered message is deliberately generic so stack internals never reach
// the browser.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error"
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client wraps the backend origin behind typed resource methods.
type Client struct {
	http *resty.Client
}

// New builds a client for the given backend origin. The timeout bounds
// every call so a stalled upstream cannot hang a page render.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json, text/plain"),
	}
}

// BaseURL reports the configured backend origin.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// request assembles a resty request bound to ctx.
func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// execute runs the request and folds the outcome into the error taxonomy.
// On success it returns the raw body for the caller to decode.
func (c *Client) execute(req *resty.Request, method, path string) ([]byte, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		logging.Error("Backend call failed", "method", method, "path", path, "error", err)
		return nil, &NetworkError{Err: err}
	}
	if resp.IsError() {
		apiErr := errorFromResponse(resp)
		logging.Debug("Backend rejected request",
			"method", method, "path", path,
			"status", apiErr.Status, "message", apiErr.Message)
		return nil, apiErr
	}
	return resp.Body(), nil
}

// errorFromResponse extracts the backend's reason from an error response.
// JSON bodies are probed for a message field; anything else is taken as
// plain text. An empty body falls back to the status text.
func errorFromResponse(resp *resty.Response) *APIError {
	msg := extractMessage(resp.Header().Get("Content-Type"), resp.Body())
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}

func extractMessage(contentType string, body []byte) string {
	if strings.Contains(contentType, "application/json") {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// getJSON fetches path and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.request(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	body, err := c.execute(req, http.MethodGet, path)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// getText fetches path and returns the body as text.
func (c *Client) getText(ctx context.Context, path string, query map[string]string) (string, error) {
	req := c.request(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	body, err := c.execute(req, http.MethodGet, path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// sendJSON sends body as JSON via method and decodes the response into out
// when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	req := c.request(ctx)
	if payload != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}
	body, err := c.execute(req, method, path)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(body, out)
}

// sendText sends body as JSON via method and returns the response text.
func (c *Client) sendText(ctx context.Context, method, path string, payload any, headers map[string]string) (string, error) {
	req := c.request(ctx)
	if payload != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	body, err := c.execute(req, method, path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// upload posts a multipart form with one file part and extra fields.
func (c *Client) upload(ctx context.Context, path, fieldName, fileName string, file io.Reader, fields map[string]string) (string, error) {
	req := c.request(ctx).
		SetFileReader(fieldName, fileName, file).
		SetFormData(fields)
	body, err := c.execute(req, http.MethodPost, path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding backend response: %w", err)
	}
	return nil
}
