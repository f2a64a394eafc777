package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shahbaz-dev1/ai-resume-filter/internal/embeddings"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/events"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/extract"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/middleware"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/pipeline"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/store"
)

// maxUploadBytes caps analyze uploads at 5 MB.
const maxUploadBytes = 5 << 20

// defaultTopK is used when a search request omits topK.
const defaultTopK = 5

// VectorHandler provides the document add, search and analyze endpoints.
type VectorHandler struct {
	pipeline  *pipeline.Pipeline
	activity  store.ActivityStore
	publisher *events.Publisher
	logger    *slog.Logger
}

// NewVectorHandler creates a new VectorHandler. publisher may be nil when no
// event bus is configured.
func NewVectorHandler(p *pipeline.Pipeline, activity store.ActivityStore, publisher *events.Publisher, logger *slog.Logger) *VectorHandler {
	return &VectorHandler{
		pipeline:  p,
		activity:  activity,
		publisher: publisher,
		logger:    logger,
	}
}

// AddRequest is the request body for adding a document.
type AddRequest struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Provider string         `json:"provider,omitempty"`
}

// Add handles POST /vector/add.
func (h *VectorHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "id is required")
		return
	}

	kind, ok := h.parseProvider(w, req.Provider)
	if !ok {
		return
	}

	if err := h.pipeline.AddDocument(r.Context(), req.ID, req.Text, req.Metadata, kind); err != nil {
		h.logError(w, err, "add document failed", "id", req.ID)
		_ = h.activity.Log(r.Context(), store.ActionVectorAdd, userID, &req.ID, false, nil)
		return
	}

	_ = h.activity.Log(r.Context(), store.ActionVectorAdd, userID, &req.ID, true, nil)
	if h.publisher != nil {
		_ = h.publisher.DocumentAdded(req.ID, userID, req.Provider)
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "Document added"})
}

// SearchRequest is the request body for semantic search.
type SearchRequest struct {
	Text     string `json:"text"`
	TopK     int    `json:"topK,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Search handles POST /vector/search.
func (h *VectorHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	kind, ok := h.parseProvider(w, req.Provider)
	if !ok {
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = defaultTopK
	}

	results, err := h.pipeline.Search(r.Context(), req.Text, topK, kind)
	if err != nil {
		h.logError(w, err, "search failed")
		_ = h.activity.Log(r.Context(), store.ActionVectorSearch, userID, nil, false, nil)
		return
	}

	_ = h.activity.Log(r.Context(), store.ActionVectorSearch, userID, nil, true,
		map[string]any{"result_count": len(results)})

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Analyze handles POST /vector/analyze: a multipart upload with the CV file,
// a job description and the provider choice.
func (h *VectorHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "No file uploaded")
		return
	}
	defer file.Close()

	jobDescription := r.FormValue("jobDescription")
	if jobDescription == "" {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "jobDescription is required")
		return
	}

	kind, ok := h.parseProvider(w, r.FormValue("model"))
	if !ok {
		return
	}

	text, err := extract.Text(header.Filename, file)
	if err != nil {
		h.logError(w, err, "text extraction failed", "filename", header.Filename)
		_ = h.activity.Log(r.Context(), store.ActionVectorAnalyze, userID, nil, false, nil)
		return
	}

	analysis, err := h.pipeline.Analyze(r.Context(), text, jobDescription, kind)
	if err != nil {
		h.logError(w, err, "analysis failed")
		_ = h.activity.Log(r.Context(), store.ActionVectorAnalyze, userID, nil, false, nil)
		return
	}

	_ = h.activity.Log(r.Context(), store.ActionVectorAnalyze, userID, nil, true,
		map[string]any{"match_score": analysis.MatchScore})
	if h.publisher != nil {
		_ = h.publisher.AnalysisCompleted(userID, analysis.ModelUsed, analysis.MatchScore)
	}

	writeJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

// parseProvider validates an optional provider tag, writing the error
// response itself when the tag is unknown.
func (h *VectorHandler) parseProvider(w http.ResponseWriter, s string) (embeddings.Kind, bool) {
	if s == "" {
		return "", true
	}
	kind, err := embeddings.ParseKind(s)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return "", false
	}
	return kind, true
}

// logError maps a pipeline error onto the HTTP response and logs it.
func (h *VectorHandler) logError(w http.ResponseWriter, err error, msg string, args ...any) {
	h.logger.Error(msg, append(args, "error", err)...)
	status, code := errorStatus(err)
	writeError(w, status, code, err.Error())
}

// errorStatus maps the core error taxonomy to response semantics:
// provider outages are retryable, caller faults are 4xx.
func errorStatus(err error) (int, string) {
	var (
		cfgErr   *embeddings.ConfigurationError
		provErr  *embeddings.ProviderError
		valErr   *store.ValidationError
		unsupErr *extract.UnsupportedFormatError
		extErr   *extract.ExtractionError
		stErr    *store.Error
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable, "PROVIDER_UNCONFIGURED"
	case errors.As(err, &provErr):
		return http.StatusServiceUnavailable, "PROVIDER_ERROR"
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR"
	case errors.As(err, &unsupErr):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"
	case errors.As(err, &extErr):
		return http.StatusUnprocessableEntity, "EXTRACTION_ERROR"
	case errors.As(err, &stErr):
		return http.StatusInternalServerError, "STORE_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
