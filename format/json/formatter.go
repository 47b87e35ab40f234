// Package json formats a webhook payload into a JSON byte slice for the
// dispatch worker pool to POST. All json struct tags live on the model types
// themselves, so serialisation is a single json.Marshal call with optional
// indentation.
package json

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vpbank/intellivue-gateway/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// Formatter interface
// ─────────────────────────────────────────────────────────────────────────────

// Formatter serialises a models.WebhookPayload into a byte slice. Declared as
// an interface so alternative encodings (e.g. a compact binary form for a
// bandwidth-constrained subscriber) can be swapped in without touching the
// worker pool.
type Formatter interface {
	Format(payload *models.WebhookPayload) ([]byte, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config controls JSONFormatter behaviour.
type Config struct {
	// PrettyPrint emits indented, human-readable JSON when true.
	// Use false (default) in production to minimise byte count on the wire.
	PrettyPrint bool

	// Indent is the indent string used when PrettyPrint=true.
	// Defaults to two spaces when empty and PrettyPrint=true.
	Indent string
}

// ─────────────────────────────────────────────────────────────────────────────
// JSONFormatter
// ─────────────────────────────────────────────────────────────────────────────

// JSONFormatter implements Formatter using encoding/json from the standard
// library. It is safe for concurrent use by multiple goroutines; all fields
// are immutable after construction.
type JSONFormatter struct {
	cfg    Config
	logger *slog.Logger
}

// New constructs a JSONFormatter. If logger is nil, a no-op logger is
// substituted so the formatter never panics on a nil receiver.
func New(cfg Config, logger *slog.Logger) *JSONFormatter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	if cfg.PrettyPrint && cfg.Indent == "" {
		cfg.Indent = "  "
	}
	return &JSONFormatter{cfg: cfg, logger: logger}
}

// Format serialises payload to JSON. It returns a non-nil error only when
// json.Marshal itself fails (e.g. an un-serialisable value type entered the
// pipeline upstream). The returned byte slice is always non-nil on success.
//
//	{
//	  "monitor_id": "00:11:22:33:44:55",
//	  "datetime": "2026-02-26T10:30:00.123Z",
//	  "observations": [ { "physio_id": …, "state": [ … ], "unit_code": …, "value": … } ]
//	}
func (f *JSONFormatter) Format(payload *models.WebhookPayload) ([]byte, error) {
	if payload == nil {
		return nil, fmt.Errorf("format/json: payload must not be nil")
	}

	var (
		data []byte
		err  error
	)

	if f.cfg.PrettyPrint {
		data, err = json.MarshalIndent(payload, "", f.cfg.Indent)
	} else {
		data, err = json.Marshal(payload)
	}

	if err != nil {
		f.logger.Error("format/json: marshal failed",
			"monitor_id", payload.MonitorID,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("format/json: marshal: %w", err)
	}

	f.logger.Debug("format/json: formatted webhook payload",
		"monitor_id", payload.MonitorID,
		"observation_count", len(payload.Observations),
		"bytes", len(data),
	)

	return data, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// no-op logger writer
// ─────────────────────────────────────────────────────────────────────────────

// noopWriter discards all log output when no logger is provided.
type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
