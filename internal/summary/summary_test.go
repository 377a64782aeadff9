package summary

import (
	"testing"
	"time"

	"rimborsi/internal/core"
)

func rec(cents int64, date core.Date, cat core.Category) core.Record {
	m := core.Money{Cents: cents}
	return core.Record{Name: "r", Amount: &m, Date: date, Category: cat}
}

func TestWeekBoundsFromWednesday(t *testing.T) {
	// 2026-08-26 is a Wednesday.
	now := time.Date(2026, time.August, 26, 15, 30, 0, 0, time.Local)
	start, end := WeekBounds(now)

	if start.Weekday() != time.Monday {
		t.Fatalf("week start weekday = %v, want Monday", start.Weekday())
	}
	if got := start.Format("2006-01-02"); got != "2026-08-24" {
		t.Fatalf("week start = %s, want 2026-08-24", got)
	}
	if got := end.Format("2006-01-02"); got != "2026-08-30" {
		t.Fatalf("week end = %s, want 2026-08-30", got)
	}
}

func TestWeekBoundsFromSunday(t *testing.T) {
	// 2026-08-30 is a Sunday; the week still starts the preceding Monday.
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.Local)
	start, _ := WeekBounds(now)
	if got := start.Format("2006-01-02"); got != "2026-08-24" {
		t.Fatalf("week start = %s, want 2026-08-24", got)
	}
}

func TestFilterWindows(t *testing.T) {
	now := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.Local)
	records := []core.Record{
		rec(100, core.NewDate(2026, time.August, 26), core.CategoryOther),  // today
		rec(100, core.NewDate(2026, time.August, 24), core.CategoryOther),  // this week
		rec(100, core.NewDate(2026, time.August, 2), core.CategoryOther),   // this month
		rec(100, core.NewDate(2026, time.July, 10), core.CategoryOther),    // this quarter
		rec(100, core.NewDate(2026, time.February, 1), core.CategoryOther), // this year
		rec(100, core.NewDate(2025, time.December, 31), core.CategoryOther),
	}

	cases := []struct {
		g    Granularity
		want int
	}{
		{Daily, 1},
		{Weekly, 2},
		{Monthly, 3},
		{Quarterly, 4},
		{Yearly, 5},
		{All, 6},
	}
	for _, tc := range cases {
		if got := len(Filter(records, tc.g, now)); got != tc.want {
			t.Fatalf("%s: got %d records, want %d", tc.g, got, tc.want)
		}
	}
}

func TestFilterSkipsAbsentDates(t *testing.T) {
	records := []core.Record{{Name: "draftish"}}
	if got := Filter(records, Monthly, time.Now()); len(got) != 0 {
		t.Fatalf("records without a date must not match any window, got %d", len(got))
	}
}

func TestAggregateFirstSeenOrder(t *testing.T) {
	d := core.NewDate(2026, time.August, 10)
	records := []core.Record{
		rec(5000, d, core.CategoryTransport),
		rec(10000, d, core.CategoryTransport),
		rec(20000, d, core.CategoryFoodAndDrink),
	}

	got := Aggregate(Filter(records, Monthly, time.Date(2026, time.August, 26, 0, 0, 0, 0, time.Local)))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Category != core.CategoryTransport || got[0].Total.Cents != 15000 {
		t.Fatalf("first pair = (%s, %d), want (Transportation, 15000)", got[0].Category, got[0].Total.Cents)
	}
	if got[1].Category != core.CategoryFoodAndDrink || got[1].Total.Cents != 20000 {
		t.Fatalf("second pair = (%s, %d), want (Food & Drink, 20000)", got[1].Category, got[1].Total.Cents)
	}
}

func TestAggregateAbsentAmountIsZero(t *testing.T) {
	d := core.NewDate(2026, time.August, 10)
	records := []core.Record{
		{Name: "no amount", Date: d, Category: core.CategoryTravel},
		rec(700, d, core.CategoryTravel),
	}
	got := Aggregate(records)
	if len(got) != 1 || got[0].Total.Cents != 700 {
		t.Fatalf("got %+v, want one Travel pair totalling 700", got)
	}
}

func TestParseGranularity(t *testing.T) {
	if ParseGranularity("weekly") != Weekly {
		t.Fatal("weekly should parse")
	}
	if ParseGranularity("fortnightly") != Default {
		t.Fatal("unknown selector should fall back to default")
	}
	if ParseGranularity("") != All {
		t.Fatal("empty selector should fall back to All")
	}
}

func TestTitles(t *testing.T) {
	now := time.Date(2026, time.August, 26, 0, 0, 0, 0, time.Local)
	cases := []struct {
		g    Granularity
		want string
	}{
		{Daily, "August 26, 2026"},
		{Weekly, "Week of Aug 24 – Aug 30, 2026"},
		{Monthly, "August 2026"},
		{Quarterly, "Q3 2026"},
		{Yearly, "2026"},
		{All, "All Expenses"},
	}
	for _, tc := range cases {
		if got := Title(tc.g, now); got != tc.want {
			t.Fatalf("%s: Title = %q, want %q", tc.g, got, tc.want)
		}
	}
}
