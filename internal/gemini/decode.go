package gemini

import (
	"math"
	"strings"

	"rimborsi/internal/core"
)

// decodeDraft maps the raw model object onto a draft record, defaulting
// every field independently: a missing or wrong-typed amount stays absent,
// an out-of-enumeration category collapses to Other, absent strings stay
// empty. When anchor is non-nil (the audio path) a missing date defaults
// to it; on the image path it stays absent.
func decodeDraft(raw map[string]any, anchor *core.Date) core.Record {
	r := core.Record{
		Name:         stringField(raw, "transaction_name"),
		Counterparty: stringField(raw, "client_or_prospect"),
		Purpose:      stringField(raw, "purpose"),
		Category:     core.NormalizeCategory(stringField(raw, "category")),
	}

	if v, ok := raw["total_amount"].(float64); ok && v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
		m := core.Money{Cents: int64(math.Round(v * 100))}
		r.Amount = &m
	}

	if s := stringField(raw, "transaction_date"); s != "" {
		if d, err := core.ParseDate(s); err == nil {
			r.Date = d
		}
	}
	if r.Date.IsAbsent() && anchor != nil {
		r.Date = *anchor
	}

	return r
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

// cleanModelJSON strips markdown fences and surrounding junk in case the
// model ignored the strict-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
