package sheets

import (
	"context"

	"rimborsi/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// RecordAppender appends one saved record as a spreadsheet row.
	RecordAppender interface {
		Append(ctx context.Context, r core.Record) (rowRef string, err error)
	}
)
