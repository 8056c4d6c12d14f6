// Package memory provides an in-memory report exporter for tests and the
// memory backend.
package memory

import (
	"context"
	"sync"

	"github.com/blueshirts/cofi/internal/core"
	"github.com/blueshirts/cofi/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	reports map[string]*core.Report
	exports int

	// Err, when set, is returned by every Export call.
	Err error
}

var _ sheets.ReportExporter = (*Exporter)(nil)

func NewExporter() *Exporter {
	return &Exporter{reports: make(map[string]*core.Report)}
}

func (e *Exporter) Export(_ context.Context, user string, r *core.Report) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.reports[user] = r
	e.exports++
	return nil
}

// Last returns the report most recently exported for user, or nil.
func (e *Exporter) Last(user string) *core.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reports[user]
}

// Exports returns the number of successful Export calls.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}
