package http

import (
	"fmt"
	"log/slog"
	"net/http"
)

// handleSync pushes the whole list to the configured webhook. Send is
// treated as success once the transport accepts it; a transport
// failure surfaces as a blocking alert and the user retries manually.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.syncer == nil || !s.syncer.Configured() {
		writeError(w, http.StatusUnprocessableEntity, "No sync endpoint is configured.")
		return
	}

	records := s.records.List()
	if err := s.syncer.Push(r.Context(), records); err != nil {
		slog.ErrorContext(r.Context(), "Webhook sync failed", "count", len(records), "error", err)
		writeAlert(w, http.StatusBadGateway, "Sync failed: the spreadsheet endpoint could not be reached. Your expenses were not sent.")
		return
	}

	slog.InfoContext(r.Context(), "Webhook sync sent", "count", len(records))
	writeNotice(w, fmt.Sprintf("Sent %d expenses to the spreadsheet endpoint.", len(records)))
}
