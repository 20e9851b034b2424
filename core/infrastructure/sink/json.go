// Package sink ships inventory reports to stdout, RabbitMQ or Redis.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

// JSONWriter writes each report as an indented JSON document. Publish is
// safe for concurrent use.
type JSONWriter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ ports.Publisher = (*JSONWriter)(nil)

func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

func (j *JSONWriter) Publish(_ context.Context, report entities.InventoryReport) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report for %s: %w", report.Target, err)
	}
	return nil
}

func (j *JSONWriter) Close() error { return nil }
