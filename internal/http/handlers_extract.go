package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rimborsi/internal/core"
)

// readUpload pulls the uploaded file out of the multipart form,
// bounded by the configured upload limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		slog.WarnContext(r.Context(), "Multipart parse failed", "error", err)
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload too large: the limit is %d MB.", s.maxUploadBytes>>20))
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file was uploaded.")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Upload read failed", "error", err)
		writeError(w, http.StatusBadRequest, "Could not read the uploaded file.")
		return nil, "", false
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, true
}

func (s *Server) handleExtractImage(w http.ResponseWriter, r *http.Request) {
	s.handleExtract(w, r, "image/", func(data []byte, mimeType string) (core.Record, error) {
		return s.assistant.ExtractFromImage(r.Context(), data, mimeType)
	})
}

func (s *Server) handleExtractAudio(w http.ResponseWriter, r *http.Request) {
	s.handleExtract(w, r, "audio/", func(data []byte, mimeType string) (core.Record, error) {
		return s.assistant.ExtractFromAudio(r.Context(), data, mimeType)
	})
}

// handleExtract runs one extraction and renders the draft review form.
// Model or transport failures discard the draft; the user retries by
// re-submitting.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request, wantPrefix string, extract func([]byte, string) (core.Record, error)) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "Receipt extraction is not configured.")
		return
	}

	data, mimeType, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if !strings.HasPrefix(mimeType, wantPrefix) {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("Unsupported file type %q.", mimeType))
		return
	}

	draft, err := extract(data, mimeType)
	if err != nil {
		slog.ErrorContext(r.Context(), "Extraction failed", "mime_type", mimeType, "error", err)
		writeError(w, http.StatusBadGateway, "Could not read the receipt. Please try again.")
		return
	}

	// A receipt from another year cannot be claimed; the draft is
	// dropped rather than offered for review.
	if year := time.Now().Year(); !draft.Date.IsAbsent() && draft.Date.Year() != year {
		slog.WarnContext(r.Context(), "Extracted date outside current year", "date", draft.Date.String())
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("The receipt is dated %d; only expenses from %d can be recorded.", draft.Date.Year(), year))
		return
	}

	f := formFromRecord(draft)
	f.Notice = "Review the extracted fields, then save."
	s.render(w, r, http.StatusOK, "review.html", f)
}
