package sheets

import (
	"context"

	"github.com/blueshirts/cofi/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportExporter writes a finished monthly report somewhere a human can
	// look at it, keyed by the user the report was computed for.
	ReportExporter interface {
		Export(ctx context.Context, user string, r *core.Report) error
	}
)
