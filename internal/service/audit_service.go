package service

import (
	"context"

	"ai-reading-tutor-be/internal/pkg/logger"
	"ai-reading-tutor-be/pkg/events"
	pktNats "ai-reading-tutor-be/pkg/nats"
)

const turnCompletedSubject = "events.tutor.TUTOR_TURN_COMPLETED"

type ITurnAuditService interface {
	// Start registers the durable NATS consumer. Returns nil when NATS
	// is unavailable; auditing is best-effort.
	Start() error
}

// turnAuditService records every turn-completed event that round-trips
// through JetStream into the isolated turn-event log. It is the in-repo
// stand-in for the downstream analytics consumers.
type turnAuditService struct {
	subscriber  *pktNats.Subscriber
	eventLogger logger.ILogger
}

func NewTurnAuditService(subscriber *pktNats.Subscriber, eventLogger logger.ILogger) ITurnAuditService {
	return &turnAuditService{
		subscriber:  subscriber,
		eventLogger: eventLogger,
	}
}

func (s *turnAuditService) Start() error {
	if s.subscriber == nil {
		return nil
	}
	return s.subscriber.Subscribe(turnCompletedSubject, "tutor-turn-audit", s.handleEvent)
}

func (s *turnAuditService) handleEvent(_ context.Context, event events.Event) error {
	s.eventLogger.Info("AUDIT", "Turn completed", map[string]interface{}{
		"subject": event.EventType(),
		"payload": event.Payload(),
	})
	return nil
}
