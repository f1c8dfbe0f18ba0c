// Package notify publishes scan-completed events so that downstream
// systems (case management, alerting) can react to new screening results.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nao1215/samradar/internal/model"
)

// DefaultSubject is the subject scan events are published on.
const DefaultSubject = "samradar.scans.completed"

// ErrInvalidEvent is returned when an event lacks its scan id or entity.
var ErrInvalidEvent = errors.New("invalid scan event: missing scan id or entity")

// ScanEvent is the message published when a scan finishes.
type ScanEvent struct {
	ScanID      string            `json:"scan_id"`
	Entity      string            `json:"entity"`
	DateScanned time.Time         `json:"date_scanned"`
	Elapsed     time.Duration     `json:"elapsed"`
	Summary     model.RiskSummary `json:"summary"`
	Failed      int               `json:"failed_calls"`
	TimedOut    bool              `json:"timed_out"`
}

// NewScanEvent builds the event for a finished report.
func NewScanEvent(report *model.ScanReport) ScanEvent {
	return ScanEvent{
		ScanID:      report.ScanID,
		Entity:      report.Entity,
		DateScanned: report.DateScanned,
		Elapsed:     report.Elapsed,
		Summary:     report.Summary(),
		Failed:      report.OutcomeCounts()[model.OutcomeFailed],
		TimedOut:    report.TimedOut,
	}
}

// Validate reports whether the event carries its identity fields.
func (e ScanEvent) Validate() error {
	if e.ScanID == "" || e.Entity == "" {
		return ErrInvalidEvent
	}
	return nil
}

// Publisher sends scan events.
type Publisher interface {
	Publish(ctx context.Context, report *model.ScanReport) error
	Close() error
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes scan events on a NATS core subject.
type NATSPublisher struct {
	nc      conn
	subject string
	logger  *slog.Logger
}

// Option configures a NATSPublisher.
type Option func(*NATSPublisher)

// WithSubject overrides DefaultSubject.
func WithSubject(subject string) Option {
	return func(p *NATSPublisher) {
		if subject != "" {
			p.subject = subject
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *NATSPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Connect dials the NATS server at url (nats.DefaultURL when empty).
func Connect(url string, opts ...Option) (*NATSPublisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("samradar"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return newPublisher(nc, opts...), nil
}

func newPublisher(nc conn, opts ...Option) *NATSPublisher {
	p := &NATSPublisher{
		nc:      nc,
		subject: DefaultSubject,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

// Publish sends the scan event for report.
func (p *NATSPublisher) Publish(ctx context.Context, report *model.ScanReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	evt := NewScanEvent(report)
	if err := evt.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode scan event: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish scan event: %w", err)
	}
	p.logger.Debug("scan event published", "subject", p.subject, "scan_id", evt.ScanID)
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// Nop is a Publisher that does nothing. It is used when no NATS URL is
// configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, *model.ScanReport) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }
