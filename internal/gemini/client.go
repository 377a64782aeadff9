// Package gemini wraps the hosted multimodal model behind the three
// operations the app needs: extracting a draft record from an image or an
// audio note, and answering a free-text question about the record list.
// All field-level intelligence lives in the model; this package only
// formats requests and validates/defaults responses.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"

	"rimborsi/internal/core"
)

const DefaultModel = "gemini-2.5-flash"

type Client struct {
	gc    *genai.Client
	model string
}

// NewClient builds a client for the given model name. Credentials come
// from the environment (GEMINI_API_KEY / GOOGLE_API_KEY), the same way the
// rest of the Google stack is configured.
func NewClient(ctx context.Context, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{gc: gc, model: model}, nil
}

// extractionSchema constrains the structured extraction response. Every
// field is nullable: the model reports what it cannot read as null.
func extractionSchema() *genai.Schema {
	categories := make([]string, 0, len(core.AllCategories()))
	for _, c := range core.AllCategories() {
		categories = append(categories, string(c))
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"transaction_name":   {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"total_amount":       {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
			"transaction_date":   {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"category":           {Type: genai.TypeString, Enum: categories, Nullable: genai.Ptr(true)},
			"client_or_prospect": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"purpose":            {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		},
	}
}

// ExtractFromImage turns a receipt photo into a draft record. Fields the
// model cannot determine stay absent; an out-of-enumeration category
// collapses to Other. Errors are not retried here.
func (c *Client) ExtractFromImage(ctx context.Context, data []byte, mimeType string) (core.Record, error) {
	raw, err := c.extract(ctx, imageExtractionPrompt(), data, mimeType)
	if err != nil {
		return core.Record{}, err
	}
	return decodeDraft(raw, nil), nil
}

// ExtractFromAudio turns a voice note into a draft record. The prompt
// anchors relative date phrases ("yesterday") to today, and a missing
// date defaults to that same anchor.
func (c *Client) ExtractFromAudio(ctx context.Context, data []byte, mimeType string) (core.Record, error) {
	anchor := core.DateOf(time.Now())
	raw, err := c.extract(ctx, audioExtractionPrompt(anchor), data, mimeType)
	if err != nil {
		return core.Record{}, err
	}
	return decodeDraft(raw, &anchor), nil
}

func (c *Client) extract(ctx context.Context, prompt string, data []byte, mimeType string) (map[string]any, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			},
		},
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   extractionSchema(),
	}
	resp, err := c.gc.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleanModelJSON(text)), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal model response: %w", err)
	}
	return raw, nil
}

// Analyze answers a free-text question about the record list. The whole
// list is serialized into the prompt; the model's text comes back verbatim.
func (c *Client) Analyze(ctx context.Context, records []core.Record, query string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: analysisPrompt(records, query)}},
		},
	}
	resp, err := c.gc.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
