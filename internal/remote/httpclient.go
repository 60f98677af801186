package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lewisnorthcott/sitesinc-offline/internal/auth"
	"github.com/lewisnorthcott/sitesinc-offline/internal/common"
	"github.com/lewisnorthcott/sitesinc-offline/internal/logging"
	"github.com/lewisnorthcott/sitesinc-offline/internal/models"
)

// HTTPClient implements Source against the backend's JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	instanceID string
	log        logging.Logger

	mu    sync.RWMutex
	token auth.Token
}

func NewHTTPClient(baseURL string, httpClient *http.Client, instanceID string, log logging.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		instanceID: instanceID,
		log:        log,
	}
}

// SetToken installs the session token used for subsequent requests.
func (c *HTTPClient) SetToken(t auth.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = t
}

func (c *HTTPClient) currentToken() auth.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	err := c.getJSON(ctx, "/api/projects", &out)
	return out, err
}

func (c *HTTPClient) ListDrawings(ctx context.Context, projectID int) ([]models.Drawing, error) {
	var out []models.Drawing
	err := c.getJSON(ctx, fmt.Sprintf("/api/projects/%d/drawings", projectID), &out)
	return out, err
}

func (c *HTTPClient) ListDocuments(ctx context.Context, projectID int) ([]models.Document, error) {
	var out []models.Document
	err := c.getJSON(ctx, fmt.Sprintf("/api/projects/%d/documents", projectID), &out)
	return out, err
}

func (c *HTTPClient) ListRFIs(ctx context.Context, projectID int) ([]models.RFI, error) {
	var out []models.RFI
	err := c.getJSON(ctx, fmt.Sprintf("/api/projects/%d/rfis", projectID), &out)
	return out, err
}

func (c *HTTPClient) ListForms(ctx context.Context, projectID int) ([]models.Form, error) {
	var out []models.Form
	err := c.getJSON(ctx, fmt.Sprintf("/api/projects/%d/forms", projectID), &out)
	return out, err
}

func (c *HTTPClient) ListFormSubmissions(ctx context.Context, projectID int) ([]models.FormSubmission, error) {
	var out []models.FormSubmission
	err := c.getJSON(ctx, fmt.Sprintf("/api/projects/%d/form-submissions", projectID), &out)
	return out, err
}

func (c *HTTPClient) ListPhotos(ctx context.Context, projectID int) ([]models.Photo, error) {
	var out []models.Photo
	err := c.getJSON(ctx, fmt.Sprintf("/api/projects/%d/photos", projectID), &out)
	return out, err
}

func (c *HTTPClient) PresignDownload(ctx context.Context, storageKey string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/api/files/presign?key=" + url.QueryEscape(storageKey)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", common.ErrDecoding
	}
	return out.URL, nil
}

func (c *HTTPClient) RecordAccess(ctx context.Context, event models.AccessEvent, token auth.Token) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding access event: %w", err)
	}

	path := fmt.Sprintf("/api/resources/%d/access-events", event.ResourceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapTransportError(ctx, err)
	}
	defer drain(resp.Body)

	if err := mapStatus(resp.StatusCode); err != nil {
		return err
	}
	return nil
}

// getJSON performs an authenticated GET and decodes the body into out. A
// token that is already expired locally fails fast without a round trip.
func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	token := c.currentToken()
	if token.Expired(time.Now()) {
		return common.ErrTokenExpired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.decorate(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapTransportError(ctx, err)
	}
	defer drain(resp.Body)

	if err := mapStatus(resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDecoding, err)
	}
	return nil
}

func (c *HTTPClient) decorate(req *http.Request, token auth.Token) {
	if !token.Empty() {
		req.Header.Set(common.AuthorizationHeaderName, token.Bearer())
	}
	if c.instanceID != "" {
		req.Header.Set(common.ClientInstanceHeaderName, c.instanceID)
	}
}

// mapTransportError keeps cancellation distinguishable from a dead network.
func (c *HTTPClient) mapTransportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrNotConnected, err)
}

func mapStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return common.ErrTokenExpired
	case code == http.StatusForbidden:
		return common.ErrForbidden
	case code >= 500:
		return common.ErrServerError
	case code >= 300:
		return fmt.Errorf("unexpected response status %d", code)
	default:
		return nil
	}
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
