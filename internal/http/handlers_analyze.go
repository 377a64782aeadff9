package http

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"rimborsi/internal/core"
	"rimborsi/internal/markup"
)

// answerData backs the analysis answer partial.
type answerData struct {
	Query  string
	Answer template.HTML
}

// handleAnalyze answers a free-text question over the current list.
// Answers are cached per (query, list revision) so repeating a
// question does not re-bill the model.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "Analysis is not configured.")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	query := strings.TrimSpace(r.Form.Get("q"))
	if query == "" {
		writeError(w, http.StatusUnprocessableEntity, "Type a question about your expenses first.")
		return
	}

	records := s.records.List()
	key := answerCacheKey(records, query)
	if answer, ok := s.answerCache.Get(key); ok {
		s.render(w, r, http.StatusOK, "answer.html", answerData{Query: query, Answer: answer})
		return
	}

	text, err := s.assistant.Analyze(r.Context(), records, query)
	if err != nil {
		slog.ErrorContext(r.Context(), "Analysis failed", "error", err)
		writeError(w, http.StatusBadGateway, "Could not analyze your expenses. Please try again.")
		return
	}

	answer := markup.Render(text)
	s.answerCache.Set(key, answer)
	s.render(w, r, http.StatusOK, "answer.html", answerData{Query: query, Answer: answer})
}

// answerCacheKey ties a cached answer to the exact list it was
// computed over: any save or delete changes the key.
func answerCacheKey(records []core.Record, query string) string {
	var maxID int64
	for _, rec := range records {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}
	return fmt.Sprintf("%d|%d|%s", len(records), maxID, query)
}
