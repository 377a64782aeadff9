package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rimborsi/internal/core"
	"rimborsi/internal/summary"
)

// viewOption is one selector choice on the index page.
type viewOption struct {
	Value    string
	Label    string
	Selected bool
}

// indexData backs the full page render.
type indexData struct {
	Draft formModel
	Views []viewOption
}

func viewOptions() []viewOption {
	pairs := []struct {
		g     summary.Granularity
		label string
	}{
		{summary.Daily, "Daily"},
		{summary.Weekly, "Weekly"},
		{summary.Monthly, "Monthly"},
		{summary.Quarterly, "Quarterly"},
		{summary.Yearly, "Yearly"},
		{summary.All, "All"},
	}
	opts := make([]viewOption, len(pairs))
	for i, p := range pairs {
		opts[i] = viewOption{Value: string(p.g), Label: p.label, Selected: p.g == summary.Default}
	}
	return opts
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := indexData{Draft: emptyForm(), Views: viewOptions()}
	s.render(w, r, http.StatusOK, "index.html", data)
}

// draftFromForm builds a draft record from the review form. Blank
// fields stay absent so validation can name what is missing.
func draftFromForm(r *http.Request) (core.Record, error) {
	draft := core.Record{
		Name:         strings.TrimSpace(r.Form.Get("name")),
		Counterparty: strings.TrimSpace(r.Form.Get("counterparty")),
		Purpose:      strings.TrimSpace(r.Form.Get("purpose")),
	}
	if v := strings.TrimSpace(r.Form.Get("amount")); v != "" {
		m, err := core.ParseMoney(v)
		if err != nil {
			return core.Record{}, fmt.Errorf("amount: %w", err)
		}
		draft.Amount = &m
	}
	if v := strings.TrimSpace(r.Form.Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Record{}, fmt.Errorf("date: %w", err)
		}
		draft.Date = d
	}
	if v := strings.TrimSpace(r.Form.Get("category")); v != "" {
		draft.Category = core.NormalizeCategory(v)
	}
	return draft, nil
}

// handleCreateRecord saves a reviewed or manually entered record and
// re-renders the entry form. The records partial refreshes itself via
// the records-updated event.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	draft, err := draftFromForm(r)
	if err != nil {
		f := reviewFormFromValues(r)
		f.Error = "Check the highlighted fields: " + err.Error()
		s.render(w, r, http.StatusUnprocessableEntity, "review.html", f)
		return
	}

	if year := time.Now().Year(); !draft.Date.IsAbsent() && draft.Date.Year() != year {
		f := reviewFormFromValues(r)
		f.Error = fmt.Sprintf("The receipt is dated %d; only expenses from %d can be saved.", draft.Date.Year(), year)
		s.render(w, r, http.StatusUnprocessableEntity, "review.html", f)
		return
	}

	saved, err := s.records.Save(r.Context(), draft)
	if err != nil {
		f := reviewFormFromValues(r)
		if errors.Is(err, core.ErrIncompleteRecord) {
			f.Error = "Incomplete data: name, amount, date and category are required."
		} else {
			slog.ErrorContext(r.Context(), "Save failed", "error", err)
			f.Error = "Could not save the expense. Please try again."
		}
		s.render(w, r, http.StatusUnprocessableEntity, "review.html", f)
		return
	}

	slog.InfoContext(r.Context(), "Record saved", "id", saved.ID, "name", saved.Name, "category", saved.Category)
	w.Header().Set("HX-Trigger", "records-updated")
	f := emptyForm()
	f.Notice = fmt.Sprintf("Saved %s (%s).", saved.Name, saved.AmountOrZero().Currency())
	s.render(w, r, http.StatusOK, "review.html", f)
}

// reviewFormFromValues echoes the submitted values back into the form
// so a rejected save does not wipe the user's input.
func reviewFormFromValues(r *http.Request) formModel {
	f := emptyForm()
	f.Name = strings.TrimSpace(r.Form.Get("name"))
	f.Amount = strings.TrimSpace(r.Form.Get("amount"))
	f.Date = strings.TrimSpace(r.Form.Get("date"))
	f.Category = strings.TrimSpace(r.Form.Get("category"))
	f.Counterparty = strings.TrimSpace(r.Form.Get("counterparty"))
	f.Purpose = strings.TrimSpace(r.Form.Get("purpose"))
	return f
}

// handleDeleteRecord removes a record and returns the refreshed
// records partial for the active selector.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("id")), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record id")
		return
	}

	if err := s.records.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrUnknownRecord) {
			writeError(w, http.StatusNotFound, "The expense no longer exists.")
			return
		}
		slog.ErrorContext(r.Context(), "Delete failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Could not delete the expense.")
		return
	}

	g := summary.ParseGranularity(r.Form.Get("view"))
	view := buildRecordsView(s.records.List(), g, time.Now())
	s.render(w, r, http.StatusOK, "records.html", view)
}

// handleRecordsPartial renders the summary partial for the requested
// selector: raw rows for All, per-category totals otherwise.
func (s *Server) handleRecordsPartial(w http.ResponseWriter, r *http.Request) {
	g := summary.ParseGranularity(r.URL.Query().Get("view"))
	view := buildRecordsView(s.records.List(), g, time.Now())
	s.render(w, r, http.StatusOK, "records.html", view)
}
