// Package syncer pushes the entire record list to an external spreadsheet
// webhook. One-way and fire-and-forget: the response status and body are
// not inspected, acceptance by the transport counts as success.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"rimborsi/internal/core"
)

type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{url: url, client: client}
}

// Configured reports whether a target URL was provided.
func (w *Webhook) Configured() bool {
	return w.url != ""
}

// Push sends the whole list as a JSON body. Transport errors propagate to
// the caller (surfaced as a blocking alert); nothing is retried here.
func (w *Webhook) Push(ctx context.Context, records []core.Record) error {
	if w.url == "" {
		return fmt.Errorf("sync webhook not configured")
	}
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sync request: %w", err)
	}
	// No acknowledgement contract: drain and move on.
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}
