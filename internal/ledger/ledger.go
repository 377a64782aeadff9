// Package ledger holds the pure record-list operations: inserting a saved
// record keeping the list sorted by date, and removing one by ID. Callers
// own the slice and decide when to persist it.
package ledger

import (
	"time"

	"rimborsi/internal/core"
)

// Insert validates the draft, assigns its ID from the save timestamp and
// returns a new list with the record inserted so the list stays sorted
// non-increasing by date. Relative order of equal dates is preserved, the
// new record going after existing ones of the same date.
//
// The ID comes from now.UnixMilli(), which is monotonically increasing in
// practice but not collision-proof: two saves within the same millisecond
// would collide. Known limitation, intentionally not strengthened.
func Insert(records []core.Record, draft core.Record, now time.Time) ([]core.Record, core.Record, error) {
	if err := draft.ValidateForSave(); err != nil {
		return records, core.Record{}, err
	}
	saved := draft
	saved.ID = now.UnixMilli()

	pos := len(records)
	for i, r := range records {
		if saved.Date.After(r.Date.Time) {
			pos = i
			break
		}
	}
	out := make([]core.Record, 0, len(records)+1)
	out = append(out, records[:pos]...)
	out = append(out, saved)
	out = append(out, records[pos:]...)
	return out, saved, nil
}

// Remove deletes the record with the given ID, preserving relative order.
// It returns core.ErrUnknownRecord when no record has that ID.
func Remove(records []core.Record, id int64) ([]core.Record, error) {
	for i, r := range records {
		if r.ID == id {
			out := make([]core.Record, 0, len(records)-1)
			out = append(out, records[:i]...)
			out = append(out, records[i+1:]...)
			return out, nil
		}
	}
	return records, core.ErrUnknownRecord
}

// Total sums the amounts of all records, absent amounts counting as zero.
func Total(records []core.Record) core.Money {
	var total core.Money
	for _, r := range records {
		total = total.Add(r.AmountOrZero())
	}
	return total
}
