package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ceijey/greenguardian-backend/pkg/config"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
)

const (
	defaultTimeout             = 10 * time.Second
	requestBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("geocode base url is required")

// Client wraps a reverse-geocoding endpoint used to label pollution hotspots
// with a human-readable locality.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the geocode client from configuration.
func NewClient(cfg config.GeocodeConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Place is the normalized reverse-geocoding result.
type Place struct {
	Locality string `json:"locality"`
	Region   string `json:"region"`
	Country  string `json:"country"`
}

// ReverseGeocode resolves coordinates into a locality. Callers are expected
// to fall back to raw coordinates when this returns an error.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocode client not configured")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}

	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.6f", lat))
	query.Set("lng", fmt.Sprintf("%.6f", lng))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build reverse geocode request")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute reverse geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "reverse geocode request failed")
	}

	var place Place
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode reverse geocode response")
	}
	if strings.TrimSpace(place.Locality) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reverse geocode returned no locality")
	}

	return &place, nil
}
