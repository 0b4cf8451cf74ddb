// Package notify records synthetic SMS and email notification events
// against a case timeline and hands them to an optional dispatcher.
// The dispatcher is the seam where a real SMS/email gateway plugs in;
// the timeline log is the part the intake core guarantees.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gunaso-platform/grievance/internal/model"
)

// Event is one logical notification fanned out to every citizen merged
// into a case.
type Event struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	Message     string    `json:"message"`
	Recipients  int       `json:"recipients"`
	Priority    string    `json:"priority"`
	Department  string    `json:"department"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Dispatcher forwards notification events to an external system.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
	Close()
}

// NoopDispatcher drops events; used when no broker is configured.
type NoopDispatcher struct{}

func (NoopDispatcher) Dispatch(context.Context, Event) error { return nil }
func (NoopDispatcher) Close()                                {}

// Log appends notification timeline entries and forwards events.
type Log struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewLog creates a notification log. A nil dispatcher disables
// forwarding.
func NewLog(dispatcher Dispatcher, logger *slog.Logger) *Log {
	if dispatcher == nil {
		dispatcher = NoopDispatcher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{dispatcher: dispatcher, logger: logger}
}

// Record logs one logical notification against the case: an SMS-style
// and an email-style timeline entry, each scaled by the number of
// merged citizen reports. Dispatch failures are logged and swallowed;
// they must never corrupt the case mutation in flight.
func (l *Log) Record(ctx context.Context, c *model.Case, message string, now time.Time) {
	count := c.ReportCount
	if count < 1 {
		count = 1
	}

	citizens := fmt.Sprintf("%d citizen", count)
	if count > 1 {
		citizens += "s"
	}

	c.AppendTypedStep(now,
		fmt.Sprintf("SMS notification sent to %s: %q", citizens, message),
		model.EntryNotification, "")
	c.AppendTypedStep(now,
		fmt.Sprintf("Email notification sent to %s: %q", citizens, message),
		model.EntryNotification, "")

	// SMS + email per citizen.
	c.NotificationsSent += 2 * count

	event := Event{
		ID:         uuid.New().String(),
		CaseID:     c.ID,
		Message:    message,
		Recipients: count,
		Priority:   string(c.Priority),
		Department: c.Classification.Department,
		OccurredAt: now,
	}

	if err := l.dispatcher.Dispatch(ctx, event); err != nil {
		l.logger.Error("notification dispatch failed",
			"case_id", c.ID,
			"error", err,
		)
	}

	l.logger.Info("notification logged",
		"case_id", c.ID,
		"recipients", count,
		"message", message,
	)
}

// Close releases the underlying dispatcher.
func (l *Log) Close() {
	l.dispatcher.Close()
}
