// Package summary partitions the record list into a time window anchored to
// "now" and aggregates the result per category. Everything here is pure;
// the HTTP layer holds the active selector.
package summary

import (
	"fmt"
	"time"

	"rimborsi/internal/core"
)

// Granularity selects the summary window. It is a plain selector, not a
// sequential state machine: any value can be picked at any time.
type Granularity string

const (
	Daily     Granularity = "daily"
	Weekly    Granularity = "weekly"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
	All       Granularity = "all"
)

// Default is the initial selector value.
const Default = All

// CategoryTotal is one (category, total) aggregate pair.
type CategoryTotal struct {
	Category core.Category
	Total    core.Money
}

// ParseGranularity maps a request parameter onto a selector value,
// falling back to the default for anything unrecognized.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case Daily, Weekly, Monthly, Quarterly, Yearly, All:
		return Granularity(s)
	}
	return Default
}

// windowStart returns the inclusive lower bound of the window containing
// now, at local midnight. All is unbounded and handled by the caller.
func windowStart(g Granularity, now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch g {
	case Daily:
		return midnight
	case Weekly:
		// Most recent Monday at or before now. A Sunday still belongs to
		// the week that started the preceding Monday.
		offset := (int(now.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case Quarterly:
		qMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		return time.Date(now.Year(), qMonth, 1, 0, 0, 0, 0, now.Location())
	case Yearly:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}
	return time.Time{}
}

// WeekBounds returns the Monday and Sunday of the week containing now.
func WeekBounds(now time.Time) (start, end time.Time) {
	start = windowStart(Weekly, now)
	return start, start.AddDate(0, 0, 6)
}

// Filter returns the records whose date falls inside the window for g
// anchored at now, in stored order. All returns the input unfiltered.
func Filter(records []core.Record, g Granularity, now time.Time) []core.Record {
	if g == All {
		return records
	}
	start := windowStart(g, now)
	var end time.Time
	if g == Weekly {
		_, sunday := WeekBounds(now)
		end = sunday.AddDate(0, 0, 1) // exclusive day-end bound
	}
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if r.Date.IsAbsent() || r.Date.Before(start) {
			continue
		}
		if !end.IsZero() && !r.Date.Before(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Aggregate folds records into (category, total) pairs. One pair per
// distinct category present, in order of first occurrence; absent amounts
// contribute zero.
func Aggregate(records []core.Record) []CategoryTotal {
	index := make(map[core.Category]int, len(records))
	var out []CategoryTotal
	for _, r := range records {
		i, seen := index[r.Category]
		if !seen {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryTotal{Category: r.Category})
		}
		out[i].Total = out[i].Total.Add(r.AmountOrZero())
	}
	return out
}

// Title describes the resolved window for display and export headers.
func Title(g Granularity, now time.Time) string {
	switch g {
	case Daily:
		return now.Format("January 2, 2006")
	case Weekly:
		start, end := WeekBounds(now)
		return fmt.Sprintf("Week of %s – %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	case Monthly:
		return now.Format("January 2006")
	case Quarterly:
		q := (int(now.Month())-1)/3 + 1
		return fmt.Sprintf("Q%d %d", q, now.Year())
	case Yearly:
		return fmt.Sprintf("%d", now.Year())
	}
	return "All Expenses"
}
