package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ceijey/greenguardian-backend/pkg/config"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
)

const (
	defaultTimeout              = 30 * time.Second
	requestBodyReadLimit  int64 = 1024
	defaultMaxConsecutive int   = 3
)

var errBaseURLRequired = errors.New("classifier base url is required")

// Client wraps the waste classification inference endpoint. After the
// configured number of consecutive upstream failures the client stops calling
// out and fails fast until a success resets the counter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	maxConsecutive int
	probeCooldown  time.Duration

	mtx         sync.Mutex
	consecutive int
	lastFailure time.Time
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

// NewClient builds the classifier client from configuration.
func NewClient(cfg config.ClassifierConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxConsecutive := cfg.MaxConsecutiveErrors
	if maxConsecutive <= 0 {
		maxConsecutive = defaultMaxConsecutive
	}

	probeCooldown := cfg.MinInterval
	if probeCooldown <= 0 {
		probeCooldown = 3 * time.Second
	}

	client := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		httpClient:     &http.Client{Timeout: timeout},
		maxConsecutive: maxConsecutive,
		probeCooldown:  probeCooldown,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Request is the payload sent to the inference endpoint.
type Request struct {
	ImageBase64 string `json:"image_base64"`
}

// Result is the normalized classification returned by the endpoint.
type Result struct {
	Category     string   `json:"category"`
	Recyclable   bool     `json:"recyclable"`
	Confidence   float64  `json:"confidence"`
	Alternatives []string `json:"alternatives,omitempty"`
	Tips         string   `json:"tips,omitempty"`
}

// Classify submits the image for classification.
func (c *Client) Classify(ctx context.Context, req Request) (*Result, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "classifier client not configured")
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image payload is required")
	}
	if c.open() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "classifier unavailable after repeated failures")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal classify request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build classify request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recordFailure()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute classify request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.recordFailure()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "classify request failed")
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.recordFailure()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode classify response")
	}

	c.recordSuccess()
	return &result, nil
}

// ConsecutiveFailures returns the current failure streak.
func (c *Client) ConsecutiveFailures() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.consecutive
}

// open reports whether calls should fail fast. Once the streak reaches the
// threshold, one probe per cooldown window is still let through so a
// recovered upstream can reset the counter.
func (c *Client) open() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.consecutive < c.maxConsecutive {
		return false
	}
	return time.Since(c.lastFailure) < c.probeCooldown
}

func (c *Client) recordFailure() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.consecutive++
	c.lastFailure = time.Now()
}

func (c *Client) recordSuccess() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.consecutive = 0
}

// Reset clears the failure streak so calls flow upstream again.
func (c *Client) Reset() {
	c.recordSuccess()
}
