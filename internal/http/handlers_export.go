package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"rimborsi/internal/core"
	"rimborsi/internal/export"
	"rimborsi/internal/summary"
)

// handleExportCSV streams a CSV download for the active selector: one
// row per record under All, one row per category total otherwise.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	g := summary.ParseGranularity(r.URL.Query().Get("view"))
	filtered := summary.Filter(s.records.List(), g, now)

	var buf bytes.Buffer
	var name string
	if g == summary.All {
		name = export.Filename("records", "csv", now)
		if err := export.WriteRecordsCSV(&buf, filtered); err != nil {
			slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Could not build the CSV file.")
			return
		}
	} else {
		name = export.Filename("summary", "csv", now)
		if err := export.WriteSummaryCSV(&buf, summary.Aggregate(filtered), summary.Title(g, now)); err != nil {
			slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Could not build the CSV file.")
			return
		}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
}

// handleExportPDF streams the tabular document for the All view. Any
// other selector gets an explanatory notice and no file.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	g := summary.ParseGranularity(r.URL.Query().Get("view"))
	if g != summary.All {
		writeNotice(w, "PDF export is available for the All view only. Switch the view to All and try again.")
		return
	}

	records := s.records.List()
	var buf bytes.Buffer
	if err := export.WriteRecordsPDF(&buf, records, summary.Title(summary.All, now), documentStamp(records)); err != nil {
		slog.ErrorContext(r.Context(), "PDF export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not build the PDF file.")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename("records", "pdf", now)))
	_, _ = w.Write(buf.Bytes())
}

// documentStamp derives the PDF metadata timestamp from the list
// itself, so exporting the same list twice yields identical bytes.
func documentStamp(records []core.Record) time.Time {
	var maxID int64
	for _, rec := range records {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}
	return time.UnixMilli(maxID).UTC()
}
