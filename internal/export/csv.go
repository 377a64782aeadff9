// Package export renders the currently filtered view as a downloadable
// file: delimited text for any selector, a paginated PDF for the All view.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"rimborsi/internal/core"
	"rimborsi/internal/summary"
)

// WriteRecordsCSV writes the All view: one row per record in display order.
// encoding/csv doubles embedded quotes, which is the escaping the format
// requires.
func WriteRecordsCSV(out io.Writer, records []core.Record) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Name", "Amount", "Category", "Counterparty", "Purpose"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Date.String(),
			r.Name,
			r.AmountOrZero().Decimal(),
			string(r.Category),
			r.Counterparty,
			r.Purpose,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSummaryCSV writes a non-All view: a header naming the resolved
// period followed by one (category, total) row per aggregate pair.
func WriteSummaryCSV(out io.Writer, totals []summary.CategoryTotal, periodTitle string) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"Category", "Total (" + periodTitle + ")"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, ct := range totals {
		if err := w.Write([]string{string(ct.Category), ct.Total.Decimal()}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Filename builds the download name: export type plus the current date.
func Filename(kind string, ext string, now time.Time) string {
	return fmt.Sprintf("expenses-%s-%s.%s", kind, now.Format("2006-01-02"), ext)
}
