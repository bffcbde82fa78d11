package service

import (
	"context"
	"encoding/json"

	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IAuditService consumes lifecycle events off the bus and writes them to the
// structured log, giving every login, logout, and session state change an
// audit trail without any service knowing about the log format.
type IAuditService interface {
	Start(ctx context.Context) error
}

type auditService struct {
	subscriber message.Subscriber
	log        logger.ILogger
}

func NewAuditService(subscriber message.Subscriber, log logger.ILogger) IAuditService {
	return &auditService{subscriber: subscriber, log: log}
}

func (s *auditService) Start(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go s.consume(messages)
	return nil
}

func (s *auditService) consume(messages <-chan *message.Message) {
	for msg := range messages {
		var envelope events.Envelope
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			s.log.Warn("audit", "dropping malformed event", map[string]interface{}{
				"message_id": msg.UUID,
				"error":      err.Error(),
			})
			msg.Ack()
			continue
		}

		s.log.Info("audit", envelope.Type, map[string]interface{}{
			"message_id":  msg.UUID,
			"payload":     envelope.Payload,
			"occurred_at": envelope.OccurredAt,
		})
		msg.Ack()
	}
}
