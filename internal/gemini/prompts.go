package gemini

import (
	"strings"

	"rimborsi/internal/core"
)

func categoryList() string {
	names := make([]string, 0, len(core.AllCategories()))
	for _, c := range core.AllCategories() {
		names = append(names, `"`+string(c)+`"`)
	}
	return strings.Join(names, ", ")
}

func extractionFieldsPrompt() string {
	return "Return a single JSON object with these fields (use null for anything you cannot determine):\n" +
		"- \"transaction_name\": string or null — the merchant or a short transaction label\n" +
		"- \"total_amount\": number or null — the total amount paid\n" +
		"- \"transaction_date\": string or null — ISO format \"YYYY-MM-DD\"\n" +
		"- \"category\": string — exactly one of: " + categoryList() + "\n" +
		"- \"client_or_prospect\": string or null — the client or prospect involved, if any\n" +
		"- \"purpose\": string or null — the business justification, if stated\n"
}

func imageExtractionPrompt() string {
	return "You are an expense report assistant. Extract the transaction details " +
		"from the attached receipt image.\n\n" +
		extractionFieldsPrompt() +
		"\nOutput STRICT JSON only. No comments, no extra text, no code fences.\n"
}

func audioExtractionPrompt(today core.Date) string {
	return "You are an expense report assistant. Extract the transaction details " +
		"from the attached voice note.\n\n" +
		"Today's date is " + today.String() + ". Resolve relative phrases like " +
		"\"yesterday\" or \"last Friday\" against it.\n\n" +
		extractionFieldsPrompt() +
		"\nOutput STRICT JSON only. No comments, no extra text, no code fences.\n"
}

// recordsTable serializes the record list into the pipe-delimited table the
// analysis prompt embeds. Absent fields render as "N/A", amounts with two
// decimals.
func recordsTable(records []core.Record) string {
	var b strings.Builder
	b.WriteString("date | name | amount | category | counterparty | purpose\n")
	for _, r := range records {
		cells := []string{
			orNA(r.Date.String()),
			orNA(r.Name),
			amountOrNA(r),
			orNA(string(r.Category)),
			orNA(r.Counterparty),
			orNA(r.Purpose),
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func amountOrNA(r core.Record) string {
	if r.Amount == nil {
		return "N/A"
	}
	return r.Amount.Decimal()
}

func analysisPrompt(records []core.Record, query string) string {
	return "You are a concise, friendly financial analyst for a personal " +
		"expense liquidation log. Answer the user's question using only the " +
		"expense table below. Keep the answer short. You may use \"---\" as a " +
		"horizontal rule, \"**bold**\" for emphasis and \"* \" bullet lines; " +
		"use no other markup.\n\n" +
		"Expense table:\n" + recordsTable(records) + "\n" +
		"Question: " + query + "\n"
}
