package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubmissionEvent describes a submission lifecycle transition broadcast to
// downstream consumers (notification fan-out, analytics).
type SubmissionEvent struct {
	ContentID  uint      `json:"contentId"`
	StudentID  uint      `json:"studentId"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Score      *float64  `json:"score,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// SubmissionEvents publishes lifecycle events. Publishing is best-effort: a
// broker failure is logged and never fails the originating request.
type SubmissionEvents interface {
	Submitted(ctx context.Context, event SubmissionEvent)
	Graded(ctx context.Context, event SubmissionEvent)
}

type natsSubmissionEvents struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

// NewNATSSubmissionEvents constructs a NATS-backed event publisher. A nil
// connection yields a publisher that silently drops events, so callers do not
// need to special-case deployments without a broker.
func NewNATSSubmissionEvents(conn *nats.Conn, subjectBase string, logger zerolog.Logger) SubmissionEvents {
	if subjectBase == "" {
		subjectBase = "lms.submission"
	}

	return &natsSubmissionEvents{
		conn:        conn,
		subjectBase: subjectBase,
		logger:      logger.With().Str("component", "submission_events").Logger(),
	}
}

func (p *natsSubmissionEvents) Submitted(ctx context.Context, event SubmissionEvent) {
	p.publish("submitted", event)
}

func (p *natsSubmissionEvents) Graded(ctx context.Context, event SubmissionEvent) {
	p.publish("graded", event)
}

func (p *natsSubmissionEvents) publish(suffix string, event SubmissionEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode submission event")
		return
	}

	subject := p.subjectBase + "." + suffix
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish submission event")
	}
}
