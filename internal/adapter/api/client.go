// Package api implements the REST client for the shorewatch reporting
// backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/viperioribus/shorewatch/internal/domain"
)

// Client talks to the reporting backend. All authenticated calls carry
// "Authorization: Bearer {token}".
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a backend client rooted at baseURL (without the /api
// prefix).
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, login, password string) (string, error) {
	body := map[string]string{"login": login, "password": password}

	var resp tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", "", body, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("login response missing access_token")
	}
	return resp.AccessToken, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, login, password string) error {
	body := map[string]string{"login": login, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", "", body, nil)
}

// Beaches lists every beach reports can be filed against.
func (c *Client) Beaches(ctx context.Context, token string) ([]domain.Beach, error) {
	var beaches []domain.Beach
	if err := c.doJSON(ctx, http.MethodGet, "/api/beaches", token, "", nil, &beaches); err != nil {
		return nil, err
	}
	return beaches, nil
}

// BeachPosts lists the watch posts of one beach.
func (c *Client) BeachPosts(ctx context.Context, token, beachID string) ([]domain.BeachPost, error) {
	var posts []domain.BeachPost
	path := "/api/beach-posts/" + url.PathEscape(beachID)
	if err := c.doJSON(ctx, http.MethodGet, path, token, "", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SubmitIncident sends one incident report. requestID ties the request
// to client logs.
func (c *Client) SubmitIncident(ctx context.Context, token string, r domain.IncidentReport, requestID string) error {
	incidences := make([]string, len(r.Incidences))
	for i, inc := range r.Incidences {
		incidences[i] = string(inc)
	}
	body := incidentPayload{
		Date:         r.Date.Format(dateLayout),
		BeachName:    r.BeachName,
		Hour:         r.Hour,
		Minute:       r.Minute,
		PersonName:   r.PersonName,
		Age:          r.Age,
		PostalCode:   r.PostalCode,
		Incidences:   incidences,
		Observations: r.Observations,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/inform2", token, requestID, body, nil)
}

// SubmitEnvironment sends one environmental report.
func (c *Client) SubmitEnvironment(ctx context.Context, token string, r domain.EnvironmentReport, requestID string) error {
	body := environmentPayload{
		Date:        r.Date.Format(dateLayout),
		BeachName:   r.BeachName,
		Hour:        r.Hour,
		Minute:      r.Minute,
		WindSpeed:   r.WindSpeed,
		Temperature: r.Temperature,
		WaveHeight:  r.WaveHeight,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/inform4", token, requestID, body, nil)
}

// doJSON performs one request and decodes the response into out (when
// non-nil). Status mapping: 2xx ok, 401/403 ErrUnauthorized, other
// non-2xx RejectionError. Transport errors are wrapped and returned as-is.
func (c *Client) doJSON(ctx context.Context, method, path, token, requestID string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serialize request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrUnauthorized)
	default:
		return &domain.RejectionError{Status: resp.StatusCode, Message: readDetail(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readDetail extracts the backend's {"detail": ...} message, falling back
// to the raw body.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var d detailResponse
	if err := json.Unmarshal(data, &d); err == nil && d.Detail != "" {
		return d.Detail
	}
	return strings.TrimSpace(string(data))
}

const dateLayout = "2006-01-02"

// Backend wire types.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type incidentPayload struct {
	Date         string   `json:"date"`
	BeachName    string   `json:"beach_name"`
	Hour         int      `json:"hour"`
	Minute       int      `json:"minute"`
	PersonName   string   `json:"person_name"`
	Age          int      `json:"age"`
	PostalCode   string   `json:"postal_code"`
	Incidences   []string `json:"incidences"`
	Observations string   `json:"observations"`
}

type environmentPayload struct {
	Date        string  `json:"date"`
	BeachName   string  `json:"beach_name"`
	Hour        int     `json:"hour"`
	Minute      int     `json:"minute"`
	WindSpeed   float64 `json:"wind_speed"`
	Temperature float64 `json:"temperature"`
	WaveHeight  float64 `json:"wave_height"`
}
