// Package embeddings provides a swappable interface for text embedding
// generation across the supported backends.
package embeddings

import (
	"context"
	"fmt"
)

// Kind identifies one of the supported embedding backends.
type Kind string

const (
	KindOpenAI Kind = "openai"
	KindGemini Kind = "gemini"
	KindSimple Kind = "simple"
)

// ParseKind validates a caller-supplied provider tag.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOpenAI, KindGemini, KindSimple:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown embedding provider %q", s)
}

// Provider generates text embeddings.
type Provider interface {
	// Embed generates an embedding vector for the given text. The returned
	// vector has the provider's native length; it is never truncated or
	// padded here.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider name for logging.
	Name() string
}

// ConfigurationError reports a provider that cannot be used because its
// required configuration (typically an API key) is absent. It is raised at
// call time so that other, configured providers stay usable.
type ConfigurationError struct {
	Provider Kind
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("embedding provider %q is not configured", e.Provider)
}

// ProviderError reports a transport or backend failure, or a malformed
// response, from an embedding provider call.
type ProviderError struct {
	Provider Kind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %q: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Registry holds the providers configured at startup plus the process-wide
// default. It is constructed once in main and passed into the pipeline;
// there is no ambient global state.
type Registry struct {
	providers map[Kind]Provider
	def       Kind
}

// NewRegistry creates an empty registry with the given default provider.
func NewRegistry(def Kind) *Registry {
	return &Registry{
		providers: make(map[Kind]Provider),
		def:       def,
	}
}

// Register makes a provider available under the given kind.
func (r *Registry) Register(kind Kind, p Provider) {
	r.providers[kind] = p
}

// Default returns the process-wide default provider kind.
func (r *Registry) Default() Kind { return r.def }

// Resolve returns kind, or the default when kind is empty.
func (r *Registry) Resolve(kind Kind) Kind {
	if kind == "" {
		return r.def
	}
	return kind
}

// Configured reports whether a provider is registered for kind.
func (r *Registry) Configured(kind Kind) bool {
	_, ok := r.providers[r.Resolve(kind)]
	return ok
}

// Generate produces an embedding for text using the given provider, falling
// back to the default when kind is empty. An unconfigured provider fails
// with *ConfigurationError; the text is forwarded to the backend as-is.
func (r *Registry) Generate(ctx context.Context, text string, kind Kind) ([]float32, error) {
	kind = r.Resolve(kind)
	p, ok := r.providers[kind]
	if !ok {
		return nil, &ConfigurationError{Provider: kind}
	}
	return p.Embed(ctx, text)
}
