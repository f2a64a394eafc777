package api

import (
	"net/http"
	"strconv"

	"github.com/shahbaz-dev1/ai-resume-filter/internal/store"
)

// ActivityHandler exposes the activity log listing.
type ActivityHandler struct {
	activity store.ActivityStore
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activity store.ActivityStore) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// Recent handles GET /activity.
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.activity.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list activity")
		return
	}
	if entries == nil {
		entries = []store.ActivityEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
