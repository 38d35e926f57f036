package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/caseflowhq/mailroom/dto"
	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/logger"
	"github.com/caseflowhq/mailroom/internal/tracing"
	"github.com/caseflowhq/mailroom/internal/utils"
)

const (
	consumeRetryDelay = 5 * time.Second
	ackMaxRetries     = 5
	ackRetryDelay     = 100 * time.Millisecond
)

// RabbitMQSubscriber consumes poll jobs and routes each event to the
// listener registered for its event type. Failed handlers nack without
// requeue, which routes the delivery to the queue's DLQ.
type RabbitMQSubscriber struct {
	connection      *amqp091.Connection
	connectionMutex sync.Mutex
	url             string
	logger          logger.Logger
	listeners       map[string]interfaces.EventListener
	listenerMutex   sync.RWMutex
}

func NewRabbitMQSubscriber(rabbitmqURL string, logger logger.Logger) (*RabbitMQSubscriber, error) {
	subscriber := &RabbitMQSubscriber{
		url:       rabbitmqURL,
		logger:    logger,
		listeners: make(map[string]interfaces.EventListener),
	}

	if err := subscriber.connect(); err != nil {
		return nil, err
	}

	return subscriber, nil
}

func (r *RabbitMQSubscriber) RegisterListener(listener interfaces.EventListener) {
	r.listenerMutex.Lock()
	defer r.listenerMutex.Unlock()

	eventType := listener.GetEventType()
	r.listeners[eventType] = listener
	r.logger.Infof("Registered listener for event type: %s on queue: %s",
		eventType, listener.GetQueueName())
}

// ListenQueue starts a consumer loop for the queue. The loop re-registers
// the consumer after channel or connection loss.
func (r *RabbitMQSubscriber) ListenQueue(queueName string) error {
	go func() {
		for {
			channel, err := r.connection.Channel()
			if err != nil {
				r.logger.Errorf("Failed to open channel for queue %s: %v. Retrying...", queueName, err)
				time.Sleep(consumeRetryDelay)
				continue
			}

			msgs, err := channel.Consume(
				queueName, // queue
				"",        // consumer tag
				false,     // auto-ack
				false,     // exclusive
				false,     // no-local
				false,     // no-wait
				nil,       // args
			)
			if err != nil {
				channel.Close()
				r.logger.Errorf("Failed to register consumer on queue %s: %v. Retrying...", queueName, err)
				time.Sleep(consumeRetryDelay)
				continue
			}

			r.logger.Infof("Listening for messages on queue %s", queueName)

			for d := range msgs {
				r.handleMessage(d, queueName)
			}

			channel.Close()
			r.logger.Warnf("Connection lost for queue %s. Reconnecting...", queueName)
			time.Sleep(consumeRetryDelay)
		}
	}()

	return nil
}

func (r *RabbitMQSubscriber) handleMessage(d amqp091.Delivery, queueName string) {
	defer tracing.RecoverAndLogToJaeger(r.logger)

	err := r.processMessage(d, queueName)
	if err != nil {
		r.logger.Errorf("Failed to process message on queue %s: %v", queueName, err)
		r.retryAckNack(d, false)
	} else {
		r.retryAckNack(d, true)
	}
}

func (r *RabbitMQSubscriber) processMessage(d amqp091.Delivery, queueName string) error {
	ctx := context.Background()

	var event dto.Event
	if err := json.Unmarshal(d.Body, &event); err != nil {
		return errors.Wrap(err, "failed to unmarshal message")
	}

	// Enrich context with event metadata
	ctx = utils.WithCustomContext(ctx, &utils.CustomContext{
		AppSource: event.Metadata.AppSource,
		Tenant:    event.Event.Tenant,
		UserId:    event.Metadata.UserId,
	})

	ctx, span := tracing.StartRabbitMQMessageTracerSpanWithHeader(ctx, "RabbitMQSubscriber.ProcessMessage", event.Metadata.UberTraceId)
	defer span.Finish()
	span.LogKV("event_type", event.Event.EventType)
	span.LogKV("queue_name", queueName)

	r.listenerMutex.RLock()
	listener, exists := r.listeners[event.Event.EventType]
	r.listenerMutex.RUnlock()

	if !exists {
		r.logger.Infof("No listener found for event type: %s on queue: %s", event.Event.EventType, queueName)
		return nil // nothing to do, acknowledge the message
	}

	if listener.GetQueueName() != queueName {
		r.logger.Warnf("Event type %s received on wrong queue. Expected %s, got %s",
			event.Event.EventType, listener.GetQueueName(), queueName)
		return nil // wrong queue, acknowledge the message
	}

	return listener.Handle(ctx, event)
}

func (r *RabbitMQSubscriber) connect() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	r.connection, err = amqp091.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "Failed to connect to RabbitMQ")
	}

	go func() {
		notifyClose := r.connection.NotifyClose(make(chan *amqp091.Error))
		<-notifyClose
		r.logger.Warn("RabbitMQ connection closed, attempting to reconnect")
		_ = r.connect()
	}()

	return nil
}

// retryAckNack retries the broker acknowledgement a few times; a delivery
// that can be neither acked nor nacked is redelivered by the broker anyway.
func (r *RabbitMQSubscriber) retryAckNack(d amqp091.Delivery, ack bool) {
	for i := 0; i < ackMaxRetries; i++ {
		var err error
		if ack {
			err = d.Ack(false)
		} else {
			err = d.Nack(false, false)
		}

		if err == nil {
			return
		}

		time.Sleep(ackRetryDelay)
	}

	r.logger.Errorf("Failed to settle message after %d attempts (ack=%v)", ackMaxRetries, ack)
}

func (r *RabbitMQSubscriber) Close() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	if r.connection != nil && !r.connection.IsClosed() {
		return r.connection.Close()
	}
	return nil
}
