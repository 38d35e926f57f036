package interfaces

import (
	"context"

	"github.com/caseflowhq/mailroom/internal/enum"
)

type EventPublisher interface {
	PublishPollJob(ctx context.Context, accountID, firmID string) error
	PublishDocumentAnalysis(ctx context.Context, firmID, matterID, documentID string) error
	PublishNotification(ctx context.Context, tenant string, entityId string, entityType enum.EntityType, message interface{}) error
	Close() error
}

type EventListener interface {
	Handle(ctx context.Context, event any) error
	GetEventType() string
	GetQueueName() string
}

type EventSubscriber interface {
	RegisterListener(listener EventListener)
	ListenQueue(queueName string) error
	Close() error
}
