package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider generates embeddings using Google's Generative Language API.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiProvider creates a new Gemini embedding provider.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "embedding-001"
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return string(KindGemini) }

type geminiRequest struct {
	Model   string `json:"model"`
	Content struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
}

type geminiResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed generates an embedding using the Gemini embedContent endpoint.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := geminiRequest{Model: "models/" + p.model}
	reqBody.Content.Parts = []struct {
		Text string `json:"text"`
	}{{Text: text}}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ProviderError{Provider: KindGemini, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:embedContent", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: KindGemini, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: KindGemini, Err: fmt.Errorf("calling Gemini: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: KindGemini, Err: fmt.Errorf("reading response: %w", err)}
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &ProviderError{Provider: KindGemini, Err: fmt.Errorf("parsing response: %w", err)}
	}

	if result.Error != nil {
		return nil, &ProviderError{Provider: KindGemini, Err: fmt.Errorf("Gemini error: %s", result.Error.Message)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: KindGemini, Err: fmt.Errorf("Gemini returned %d", resp.StatusCode)}
	}

	if len(result.Embedding.Values) == 0 {
		return nil, &ProviderError{Provider: KindGemini, Err: errors.New("no embeddings returned")}
	}

	return result.Embedding.Values, nil
}
