package service

import (
	"context"
	"encoding/json"

	"ai-reading-tutor-be/internal/dto"
	"ai-reading-tutor-be/internal/pkg/logger"
	"ai-reading-tutor-be/pkg/events"
	pktNats "ai-reading-tutor-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains turn-completed messages off the in-process bus
// and forwards them to NATS for downstream analytics consumers.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	eventPublisher *pktNats.Publisher
	eventLogger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	eventPublisher *pktNats.Publisher,
	eventLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		eventPublisher: eventPublisher,
		eventLogger:    eventLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TurnCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.eventLogger.Error("CONSUMER", "Failed to unmarshal turn-completed message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.eventPublisher == nil {
		// NATS unavailable at startup, drop quietly
		msg.Ack()
		return
	}

	event := events.NewTurnCompletedEvent(
		payload.UserId.String(),
		payload.TraceId,
		payload.Intent,
		payload.PayloadKind,
		payload.SourceCount,
	)

	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.eventLogger.Error("CONSUMER", "Failed to forward turn-completed event to NATS", map[string]interface{}{
			"traceId": payload.TraceId,
			"error":   err.Error(),
		})
		msg.Nack() // Retry
		return
	}

	cs.eventLogger.Info("CONSUMER", "Forwarded turn-completed event", map[string]interface{}{
		"traceId": payload.TraceId,
		"intent":  payload.Intent,
	})
	msg.Ack()
}
