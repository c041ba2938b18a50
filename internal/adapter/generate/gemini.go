// Package generate proxies prompts to the Gemini text-generation API.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jfinder/internal/apperr"
)

const (
	// DefaultBaseURL is the Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel favors response latency over quality.
	DefaultModel = "gemini-1.5-flash"

	// DefaultTimeout bounds the external call; past it the request is a
	// transport failure, not a hang.
	DefaultTimeout = 30 * time.Second
)

// placeholderKeys are template values that ship in example .env files.
// Sending them upstream would only produce a confusing auth error.
var placeholderKeys = map[string]bool{
	"your_gemini_api_key_here": true,
	"AIzaSyYourActualKeyHere":  true,
}

// Gemini is a client for the generateContent endpoint. The underlying
// http.Client pools connections and is safe for concurrent use; create one
// Gemini per process and share it.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Option configures a Gemini client.
type Option func(*Gemini)

// WithModel sets the generation model.
func WithModel(model string) Option {
	return func(g *Gemini) {
		g.model = model
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(g *Gemini) {
		g.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Gemini) {
		g.client = hc
	}
}

// NewGemini creates a Gemini client. The key is validated lazily so the
// process can start without generation credentials; Generate reports the
// missing key as a configuration error before any network call.
func NewGemini(apiKey string, opts ...Option) *Gemini {
	g := &Gemini{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate forwards the prompt and returns the first generated candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" || placeholderKeys[g.apiKey] {
		return "", apperr.ErrMissingAPIKey
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", apperr.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, body)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("%w: unparseable response: %v", apperr.ErrUpstream, err)
	}

	text := firstCandidateText(genResp)
	if text == "" {
		reason := genResp.PromptFeedback.BlockReason
		if reason == "" {
			reason = "unknown"
		}
		return "", fmt.Errorf("%w: block reason %s", apperr.ErrBlocked, reason)
	}

	return text, nil
}

// ModelName returns the generation model name.
func (g *Gemini) ModelName() string {
	return g.model
}

func firstCandidateText(resp generateResponse) string {
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// classifyStatus maps an upstream HTTP status to a structured error kind.
// The status code is the signal; response text is carried for server-side
// logs only.
func classifyStatus(status int, body []byte) error {
	msg := string(body)
	if len(msg) > 300 {
		msg = msg[:300]
	}

	var kind error
	switch {
	case status == http.StatusTooManyRequests:
		kind = apperr.ErrRateLimited
	case status == http.StatusBadRequest,
		status == http.StatusUnauthorized,
		status == http.StatusForbidden:
		kind = apperr.ErrAuth
	case status >= 500:
		kind = apperr.ErrUpstream
	default:
		kind = apperr.ErrUpstream
	}

	return &apperr.UpstreamError{StatusCode: status, Kind: kind, Message: msg}
}
