// Package openai calls the OpenAI Responses API for deepfake detection
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	perr "vera/internal/platform/errors"
	"vera/internal/platform/logger"
)

const (
	baseURLDefault         = "https://api.openai.com/v1"
	modelDefault           = "o3"
	maxOutputTokensDefault = 800
	timeoutDefault         = 5 * time.Minute
)

// Reasons carried by adapter errors
const (
	ReasonNotConfigured       = "openai_not_configured"
	ReasonDetectionCallFailed = "detection_call_failed"
)

// Envelope is the provider response, passed through untouched
type Envelope = map[string]any

// Options configures the Client
type Options struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int

	// Timeout bounds one call; the request context can only shorten it
	Timeout time.Duration
}

// Client is a minimal Responses API client
// a client without an api key is valid and fails every call with a configuration error
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Model == "" {
		o.Model = modelDefault
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = maxOutputTokensDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = timeoutDefault
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: o.Timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   16,
	}
	return &Client{
		http: &http.Client{Transport: tr},
		opts: o,
		log:  *logger.Named("openai"),
		now:  time.Now,
	}
}

// WithHTTPClient overrides the internal HTTP client
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.http = h
	}
	return c
}

// Configured reports whether an api key is present
func (c *Client) Configured() bool { return c != nil && strings.TrimSpace(c.opts.APIKey) != "" }

// Model returns the model name calls are made with
func (c *Client) Model() string { return c.opts.Model }

// InvokeOption tweaks a single call
type InvokeOption func(*request)

// WithModel overrides the model for one call
func WithModel(m string) InvokeOption { return func(r *request) { r.Model = m } }

// WithMaxOutputTokens overrides the output cap for one call
func WithMaxOutputTokens(n int) InvokeOption {
	return func(r *request) { r.MaxOutputTokens = n }
}

type request struct {
	Model           string    `json:"model"`
	Input           []Message `json:"input"`
	MaxOutputTokens int       `json:"max_output_tokens"`
}

// Invoke submits input and returns the raw provider envelope
// there is no retry; every failure is a detection call failure
func (c *Client) Invoke(ctx context.Context, input []Message, opts ...InvokeOption) (Envelope, error) {
	if !c.Configured() {
		return nil, perr.Reasonf(perr.ErrorCodeConfiguration, ReasonNotConfigured,
			"OpenAI API key is not configured")
	}

	body := request{Model: c.opts.Model, Input: input, MaxOutputTokens: c.opts.MaxOutputTokens}
	for _, o := range opts {
		o(&body)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, failed(err, "encode detection request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/responses", bytes.NewReader(payload))
	if err != nil {
		return nil, failed(err, "build detection request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		c.log.Error().Err(err).Dur("latency", lat).Msg("openai transport error")
		return nil, failed(err, "detection call failed")
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("model", body.Model).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("openai http response")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failed(err, "read detection response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, perr.Reasonf(perr.ErrorCodeUpstream, ReasonDetectionCallFailed,
			"detection call failed: status %d: %s", resp.StatusCode, providerMessage(raw))
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, failed(err, "decode detection response")
	}
	if env == nil {
		return nil, perr.Reasonf(perr.ErrorCodeUpstream, ReasonDetectionCallFailed, "detection call returned an empty envelope")
	}
	return env, nil
}

// failed keeps the transport cause in the message, callers only surface Message()
func failed(err error, msg string) error {
	return perr.WithReason(perr.Wrapf(err, perr.ErrorCodeUpstream, "%s: %v", msg, err), ReasonDetectionCallFailed)
}

// providerMessage pulls error.message out of an error body, else a short tail of it
func providerMessage(raw []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if len(raw) > 512 {
		raw = raw[:512]
	}
	return strings.TrimSpace(string(raw))
}
