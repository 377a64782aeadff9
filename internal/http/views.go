package http

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"rimborsi/internal/core"
	"rimborsi/internal/ledger"
	"rimborsi/internal/summary"
)

// formModel backs the review/manual-entry form partial.
type formModel struct {
	Name         string
	Amount       string
	Date         string
	Category     string
	Counterparty string
	Purpose      string

	Categories []string
	Notice     string
	Error      string
}

func emptyForm() formModel {
	cats := core.AllCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return formModel{Categories: names}
}

// formFromRecord prefills the review form with an extracted draft.
// Absent fields stay blank for the user to fill in.
func formFromRecord(rec core.Record) formModel {
	f := emptyForm()
	f.Name = rec.Name
	f.Category = string(rec.Category)
	f.Counterparty = rec.Counterparty
	f.Purpose = rec.Purpose
	if rec.Amount != nil {
		f.Amount = rec.Amount.Decimal()
	}
	if !rec.Date.IsAbsent() {
		f.Date = rec.Date.Format("2006-01-02")
	}
	return f
}

// recordRow is one record prepared for display in the All view.
type recordRow struct {
	ID             int64
	Date           string
	Name           string
	Amount         string
	Category       string
	Counterparty   string
	Purpose        string
	MissingPurpose bool
}

type totalRow struct {
	Category string
	Total    string
}

// recordsView backs the records partial: either raw rows (All) or
// per-category totals (every other selector).
type recordsView struct {
	View    string
	Title   string
	All     bool
	Rows    []recordRow
	Totals  []totalRow
	Total   string
	Count   int
	CSVHref string
	PDFHref string
}

// buildRecordsView filters and shapes the list for the given selector.
func buildRecordsView(records []core.Record, g summary.Granularity, now time.Time) recordsView {
	filtered := summary.Filter(records, g, now)
	v := recordsView{
		View:    string(g),
		Title:   summary.Title(g, now),
		All:     g == summary.All,
		Total:   ledger.Total(filtered).Currency(),
		Count:   len(filtered),
		CSVHref: "/export/csv?view=" + url.QueryEscape(string(g)),
		PDFHref: "/export/pdf?view=" + url.QueryEscape(string(g)),
	}

	if v.All {
		v.Rows = make([]recordRow, 0, len(filtered))
		for _, rec := range filtered {
			row := recordRow{
				ID:             rec.ID,
				Name:           rec.Name,
				Amount:         rec.AmountOrZero().Currency(),
				Category:       string(rec.Category),
				Counterparty:   rec.Counterparty,
				Purpose:        rec.Purpose,
				MissingPurpose: rec.Purpose == "",
			}
			if !rec.Date.IsAbsent() {
				row.Date = rec.Date.Format("2006-01-02")
			}
			v.Rows = append(v.Rows, row)
		}
		return v
	}

	for _, ct := range summary.Aggregate(filtered) {
		v.Totals = append(v.Totals, totalRow{Category: string(ct.Category), Total: ct.Total.Currency()})
	}
	return v
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", name, "error", err)
	}
}

func writeFragment(w http.ResponseWriter, status int, class, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="%s">%s</div>`, class, template.HTMLEscapeString(msg))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeFragment(w, status, "error", msg)
}

func writeNotice(w http.ResponseWriter, msg string) {
	writeFragment(w, http.StatusOK, "notice", msg)
}

// writeAlert renders a blocking alert, used for sync failures.
func writeAlert(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="alert" role="alert">%s</div>`, template.HTMLEscapeString(msg))
}
