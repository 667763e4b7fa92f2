// Package remote is the HTTP client for the sitecrew REST API. It exposes the
// same store.Capability surface as the local store, keyed by server ids.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
)

const DefaultTimeout = 10 * time.Second

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error,omitempty"`
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
}

type Option func(*Client)

// WithToken attaches "Authorization: Bearer <token>" to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(p string, query url.Values) string {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, p string, query url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p, query), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// doJSON sends body as JSON and decodes the envelope's data into out.
func (c *Client) doJSON(ctx context.Context, method, p string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, p, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			statusErr.Code = env.Error.Code
			statusErr.Message = env.Error.Message
			statusErr.Details = env.Error.Details
		}
		return statusErr
	}

	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// Ping checks the server heartbeat.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/", nil, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// Dashboard fetches the server-side aggregate counts.
func (c *Client) Dashboard(ctx context.Context) (dashboard.DashboardResponse, error) {
	var out dashboard.DashboardResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/dashboard", nil, nil, &out)
	return out, err
}

// CalculateWages asks the server for a worker's wage total over a period. req ids are remote ids.
func (c *Client) CalculateWages(ctx context.Context, req payment.CalculateWagesRequest) (payment.WageSummary, error) {
	query := url.Values{}
	query.Set("worker_id", req.WorkerID)
	query.Set("start_date", req.StartDate)
	query.Set("end_date", req.EndDate)

	var out payment.WageSummary
	err := c.doJSON(ctx, http.MethodGet, "/api/calculate-wages", query, nil, &out)
	return out, err
}

// PhotoUpload is the server's answer to a photo upload.
type PhotoUpload struct {
	Path     string `json:"path"`
	PhotoURL string `json:"photo_url"`
}

// UploadPhoto sends an image as multipart field "photo".
func (c *Client) UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader) (PhotoUpload, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, path.Base(filename)))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return PhotoUpload{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return PhotoUpload{}, fmt.Errorf("failed to read photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return PhotoUpload{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload/photo", nil, &body)
	if err != nil {
		return PhotoUpload{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out PhotoUpload
	err = c.send(req, &out)
	return out, err
}
