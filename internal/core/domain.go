package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Closed category enumeration. Anything else collapses to CategoryOther.
const (
	CategoryFoodAndDrink  Category = "Food & Drink"
	CategoryGroceries     Category = "Groceries"
	CategoryTransport     Category = "Transportation"
	CategoryShopping      Category = "Shopping"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health & Wellness"
	CategoryTravel        Category = "Travel"
	CategoryOther         Category = "Other"
)

type (
	Category string

	// Date is a calendar date with no time-of-day semantics beyond local
	// midnight. The zero value means "absent".
	Date struct {
		time.Time
	}

	// Record is the sole domain entity: one expense transaction.
	// A Record with ID == 0 is a transient draft (extraction output or a
	// form in progress); the ID is assigned at save time.
	Record struct {
		ID           int64    `json:"id,omitempty"`
		Name         string   `json:"name"`
		Amount       *Money   `json:"amount"`
		Date         Date     `json:"date"`
		Category     Category `json:"category"`
		Counterparty string   `json:"counterparty,omitempty"`
		Purpose      string   `json:"purpose,omitempty"`
	}
)

var (
	ErrIncompleteRecord = errors.New("incomplete data: name, amount, date and category are required")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnknownRecord    = errors.New("record not found")
)

// AllCategories returns the closed enumeration in display order.
func AllCategories() []Category {
	return []Category{
		CategoryFoodAndDrink,
		CategoryGroceries,
		CategoryTransport,
		CategoryShopping,
		CategoryUtilities,
		CategoryEntertainment,
		CategoryHealth,
		CategoryTravel,
		CategoryOther,
	}
}

// Valid reports whether c is a member of the closed enumeration.
func (c Category) Valid() bool {
	for _, k := range AllCategories() {
		if c == k {
			return true
		}
	}
	return false
}

// NormalizeCategory maps an arbitrary string onto the closed enumeration.
// Comparison ignores case and surrounding whitespace; anything that does not
// match a member becomes CategoryOther.
func NormalizeCategory(s string) Category {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllCategories() {
		if needle == strings.ToLower(string(k)) {
			return k
		}
	}
	return CategoryOther
}

// NewDate creates a Date at local midnight of the given day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// DateOf truncates t to its local calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// IsAbsent reports whether the date was never set.
func (d Date) IsAbsent() bool {
	return d.IsZero()
}

// String renders the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsAbsent() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when absent.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsAbsent() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", "" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*d = Date{}
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", *s, time.Local)
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.Local)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ValidateForSave enforces the persistence invariant: a record may only be
// persisted once name, amount, date and category are all present and the
// category is a member of the closed enumeration. Partially-filled records
// stay in transient edit state.
func (r Record) ValidateForSave() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrIncompleteRecord
	}
	if r.Amount == nil {
		return ErrIncompleteRecord
	}
	if r.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if r.Date.IsAbsent() {
		return ErrIncompleteRecord
	}
	if r.Category == "" || !r.Category.Valid() {
		return ErrIncompleteRecord
	}
	return nil
}

// AmountOrZero returns the amount, treating an absent amount as zero.
func (r Record) AmountOrZero() Money {
	if r.Amount == nil {
		return Money{}
	}
	return *r.Amount
}
