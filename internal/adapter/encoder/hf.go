package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// HFBackend fetches per-token hidden states from a Hugging Face style
// feature-extraction endpoint. Pooling is deliberately left to the caller so
// the mean-pooling contract lives in one place.
type HFBackend struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	maxTokens int
	client    *http.Client
}

type hfRequest struct {
	Inputs     []string     `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	Truncation bool `json:"truncation"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfError struct {
	Error string `json:"error"`
}

// NewHFBackend creates a backend for the given model. The API key is read
// from the named environment variable. Dimension must match the model's
// hidden size (768 for allenai/scibert_scivocab_uncased).
func NewHFBackend(apiKeyEnv, model, baseURL string, dimension, maxTokens int) (*HFBackend, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction"
	}
	if maxTokens == 0 {
		maxTokens = 512
	}

	return &HFBackend{
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		dimension: dimension,
		maxTokens: maxTokens,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// TokenStates runs the model over the given texts and returns per-token
// last-layer hidden states. The endpoint truncates to the model's maximum
// token length; every returned token is a real token, so the mask is all ones.
func (b *HFBackend) TokenStates(ctx context.Context, texts []string) ([]TokenStates, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	const maxBatch = 100
	var all []TokenStates

	for i := 0; i < len(texts); i += maxBatch {
		end := i + maxBatch
		if end > len(texts) {
			end = len(texts)
		}
		states, err := b.tokenStatesBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, states...)
	}

	return all, nil
}

func (b *HFBackend) tokenStatesBatch(ctx context.Context, texts []string) ([]TokenStates, error) {
	reqBody := hfRequest{
		Inputs:     texts,
		Parameters: hfParameters{Truncation: true},
		Options:    hfOptions{WaitForModel: true},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := b.baseURL + "/" + b.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	// Response shape: one [tokens][dimension] matrix per input text.
	var hidden [][][]float32
	if err := json.Unmarshal(body, &hidden); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200]
		}
		return nil, fmt.Errorf("failed to parse response (body: %s): %w", bodyPreview, err)
	}

	if len(hidden) != len(texts) {
		return nil, fmt.Errorf("API returned %d outputs for %d inputs", len(hidden), len(texts))
	}

	states := make([]TokenStates, len(hidden))
	for i, tokens := range hidden {
		mask := make([]int, len(tokens))
		for j := range mask {
			mask[j] = 1
		}
		states[i] = TokenStates{Hidden: tokens, Mask: mask}
	}

	return states, nil
}

// Dimension returns the hidden size of the model.
func (b *HFBackend) Dimension() int {
	return b.dimension
}

// ModelName returns the name of the model.
func (b *HFBackend) ModelName() string {
	return b.model
}

// MaxTokens returns the truncation length applied by the endpoint.
func (b *HFBackend) MaxTokens() int {
	return b.maxTokens
}
