// Package openalex is a rate-limited client for the OpenAlex scholarly
// works API, covering the concept and journal (source) lookups used during
// index population.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org"

	// RateLimit stays under OpenAlex's 10 requests per second ceiling.
	RateLimit = 10.0

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Client is a rate-limited HTTP client for OpenAlex. Setting a mailto
// address routes requests through the polite pool, which OpenAlex
// prioritizes.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMailto sets the contact address sent with every request.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a new OpenAlex client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Concept is an OpenAlex concept (field of study).
type Concept struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SummaryStats holds citation statistics for a source.
type SummaryStats struct {
	TwoYearMeanCitedness float64 `json:"2yr_mean_citedness"`
	HIndex               int     `json:"h_index"`
	I10Index             int     `json:"i10_index"`
}

// Source is an OpenAlex source (journal).
type Source struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	Publisher    string       `json:"host_organization_name"`
	ISSN         []string     `json:"issn"`
	WorksCount   int          `json:"works_count"`
	CitedByCount int          `json:"cited_by_count"`
	HomepageURL  string       `json:"homepage_url"`
	IsOA         bool         `json:"is_oa"`
	IsInDOAJ     bool         `json:"is_in_doaj"`
	SummaryStats SummaryStats `json:"summary_stats"`
	Concepts     []Concept    `json:"x_concepts"`
}

type listResponse[T any] struct {
	Results []T `json:"results"`
}

// ShortID strips the OpenAlex URL prefix from an entity id
// (https://openalex.org/S123 -> S123).
func ShortID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// ListConcepts returns up to perPage concepts.
func (c *Client) ListConcepts(ctx context.Context, perPage int) ([]Concept, error) {
	params := url.Values{}
	params.Set("per-page", strconv.Itoa(perPage))

	var resp listResponse[Concept]
	if err := c.getJSON(ctx, "/concepts", params, &resp); err != nil {
		return nil, fmt.Errorf("listing concepts: %w", err)
	}
	return resp.Results, nil
}

// SearchConcept finds the best-matching concept for a field-of-study name.
// Returns nil when nothing matches.
func (c *Client) SearchConcept(ctx context.Context, name string) (*Concept, error) {
	params := url.Values{}
	params.Set("search", name)
	params.Set("per-page", "1")

	var resp listResponse[Concept]
	if err := c.getJSON(ctx, "/concepts", params, &resp); err != nil {
		return nil, fmt.Errorf("searching concept %q: %w", name, err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// JournalsForConcept returns up to perPage journal sources tagged with the
// concept, most-published first.
func (c *Client) JournalsForConcept(ctx context.Context, conceptID string, perPage int) ([]Source, error) {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("concepts.id:%s,type:journal", ShortID(conceptID)))
	params.Set("sort", "works_count:desc")
	params.Set("per-page", strconv.Itoa(perPage))

	var resp listResponse[Source]
	if err := c.getJSON(ctx, "/sources", params, &resp); err != nil {
		return nil, fmt.Errorf("listing journals for concept %s: %w", conceptID, err)
	}
	return resp.Results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openalex returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
