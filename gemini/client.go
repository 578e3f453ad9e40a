// Package gemini calls the Google Imagen prediction endpoint to generate
// blog header images.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "imagen-4.0-ultra-generate-001"
)

type predictRequest struct {
	Instances  []instance `json:"instances"`
	Parameters parameters `json:"parameters"`
}

type instance struct {
	Prompt string `json:"prompt"`
}

type parameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio"`
	OutputMimeType string `json:"outputMimeType"`
}

type predictResponse struct {
	Predictions []prediction `json:"predictions"`
	Error       *apiError    `json:"error,omitempty"`
}

type prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client generates images through the Imagen REST API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	verbose bool
	logger  *log.Logger
}

// Option overrides Client defaults.
type Option func(*Client)

// WithModel sets the Imagen model identifier.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithBaseURL points the client at an alternate endpoint, used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

// WithLogger enables verbose logging through the given logger.
func WithLogger(logger *log.Logger, verbose bool) Option {
	return func(c *Client) {
		c.logger = logger
		c.verbose = verbose
	}
}

// New creates an Imagen client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	c := &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate produces a single 16:9 JPEG image for the prompt and returns the
// raw image bytes.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	payload, err := json.Marshal(predictRequest{
		Instances: []instance{{Prompt: prompt}},
		Parameters: parameters{
			SampleCount:    1,
			AspectRatio:    "16:9",
			OutputMimeType: "image/jpeg",
		},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:predict", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	if c.verbose {
		c.logger.Printf("[gemini] generating image model=%s prompt=%.120q", c.model, prompt)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data predictResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse imagen response: %w", err)
	}
	if data.Error != nil {
		return nil, fmt.Errorf("imagen request failed: %d %s", data.Error.Code, data.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagen request failed: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(data.Predictions) == 0 {
		return nil, errors.New("no images generated")
	}
	raw, err := base64.StdEncoding.DecodeString(data.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return raw, nil
}
