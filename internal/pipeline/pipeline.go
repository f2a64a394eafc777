// Package pipeline orchestrates embedding generation, similarity scoring
// and vector persistence for document intake and CV analysis.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shahbaz-dev1/ai-resume-filter/internal/embeddings"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/similarity"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/store"
)

// textMetadataKey is the conventional metadata key carrying the original
// source text of a stored document.
const textMetadataKey = "text"

// excerptRunes bounds the excerpt of each input included in an analysis.
const excerptRunes = 300

// Pipeline glues the embedding registry, the scorer and the vector store
// into the user-facing add / search / analyze operations.
type Pipeline struct {
	registry        *embeddings.Registry
	docs            store.DocumentStore
	dims            int
	persistAnalyses bool
	logger          *slog.Logger
}

// New creates a pipeline over a configured registry and an opened store.
// dims is the store collection's fixed dimensionality; every stored vector
// is normalized to it. When persistAnalyses is set, analyzed CVs are also
// upserted into the collection.
func New(registry *embeddings.Registry, docs store.DocumentStore, dims int, persistAnalyses bool, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		registry:        registry,
		docs:            docs,
		dims:            dims,
		persistAnalyses: persistAnalyses,
		logger:          logger,
	}
}

// AddDocument embeds text with the resolved provider and upserts the record.
// The stored metadata additionally carries the source text; an embedding
// failure aborts before any store mutation.
func (p *Pipeline) AddDocument(ctx context.Context, id, text string, metadata map[string]any, kind embeddings.Kind) error {
	vec, err := p.registry.Generate(ctx, text, kind)
	if err != nil {
		return fmt.Errorf("embedding document: %w", err)
	}
	vec = similarity.Normalize(vec, p.dims)

	md := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	md[textMetadataKey] = text

	if err := p.docs.Add(ctx, id, vec, md); err != nil {
		return fmt.Errorf("storing document: %w", err)
	}

	p.logger.Debug("document added", "id", id, "provider", string(p.registry.Resolve(kind)))
	return nil
}

// Search embeds the query text and returns the topK nearest stored records.
func (p *Pipeline) Search(ctx context.Context, text string, topK int, kind embeddings.Kind) ([]store.SearchResult, error) {
	vec, err := p.registry.Generate(ctx, text, kind)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	vec = similarity.Normalize(vec, p.dims)

	results, err := p.docs.Search(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []store.SearchResult{}
	}
	return results, nil
}

// Analysis is the report produced by comparing a CV against a job
// description.
type Analysis struct {
	Summary     string             `json:"summary"`
	Verdict     similarity.Verdict `json:"verdict"`
	FileExcerpt string             `json:"fileExcerpt"`
	JobExcerpt  string             `json:"jobExcerpt"`
	ModelUsed   string             `json:"modelUsed"`
	MatchScore  float64            `json:"matchScore"`
}

// Analyze embeds both texts with the SAME provider (vectors from different
// providers are not comparable), scores them on their raw native-length
// vectors and derives the verdict. When analysis persistence is enabled the
// CV embedding is normalized to the collection dimensionality and upserted;
// scoring always happens before that normalization.
func (p *Pipeline) Analyze(ctx context.Context, docText, jobText string, kind embeddings.Kind) (*Analysis, error) {
	kind = p.registry.Resolve(kind)

	docVec, err := p.registry.Generate(ctx, docText, kind)
	if err != nil {
		return nil, fmt.Errorf("embedding document: %w", err)
	}
	jobVec, err := p.registry.Generate(ctx, jobText, kind)
	if err != nil {
		return nil, fmt.Errorf("embedding job description: %w", err)
	}

	score := similarity.Cosine(docVec, jobVec)
	verdict := similarity.VerdictFor(score)

	analysis := &Analysis{
		Summary:     summaryFor(verdict, score),
		Verdict:     verdict,
		FileExcerpt: excerpt(docText),
		JobExcerpt:  excerpt(jobText),
		ModelUsed:   string(kind),
		MatchScore:  score,
	}

	if p.persistAnalyses {
		id := uuid.NewString()
		md := map[string]any{
			textMetadataKey:  docText,
			"jobDescription": jobText,
			"summary":        analysis.Summary,
			"matchScore":     score,
			"analyzedAt":     time.Now().UTC().Format(time.RFC3339),
		}
		if err := p.docs.Add(ctx, id, similarity.Normalize(docVec, p.dims), md); err != nil {
			return nil, fmt.Errorf("storing document: %w", err)
		}
		p.logger.Debug("analysis persisted", "id", id)
	}

	return analysis, nil
}

// summaryFor renders the human-readable verdict line with the score as a
// percentage, one decimal place.
func summaryFor(v similarity.Verdict, score float64) string {
	pct := score * 100
	switch v {
	case similarity.VerdictStrong:
		return fmt.Sprintf("Strong match: The CV and job description are highly aligned. (Similarity: %.1f%%)", pct)
	case similarity.VerdictModerate:
		return fmt.Sprintf("Moderate match: The CV and job description have some overlap. (Similarity: %.1f%%)", pct)
	default:
		return fmt.Sprintf("Low match: The CV and job description have limited alignment. (Similarity: %.1f%%)", pct)
	}
}

// excerpt returns the first excerptRunes runes of s.
func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptRunes {
		return s
	}
	return string(runes[:excerptRunes])
}
