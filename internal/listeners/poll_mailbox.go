package listeners

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/caseflowhq/mailroom/dto"
	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/logger"
	"github.com/caseflowhq/mailroom/internal/tracing"
	"github.com/caseflowhq/mailroom/services/events"
)

type PollMailboxListener struct {
	events.BaseEventListener
	log       logger.Logger
	ingestion interfaces.IngestionService
}

func NewPollMailboxListener(
	logger logger.Logger, ingestion interfaces.IngestionService,
) interfaces.EventListener {
	return &PollMailboxListener{
		BaseEventListener: events.NewBaseEventListener(
			logger,
			events.GetEventType[dto.PollMailbox](), // subscribed event
			events.QueuePollMailbox,                // listening on Direct queue
		),
		log:       logger,
		ingestion: ingestion,
	}
}

func (l *PollMailboxListener) Handle(ctx context.Context, baseEvent any) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "PollMailboxListener.Handle")
	defer span.Finish()
	tracing.SetDefaultListenerSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "event", baseEvent)

	validatedEvent, err := l.ValidateBaseEvent(ctx, baseEvent)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	job, err := events.DecodeEventData[dto.PollMailbox](ctx, validatedEvent)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	summary, err := l.ingestion.Poll(ctx, job.EmailAccountID, job.FirmID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	tracing.LogObjectAsJson(span, "summary", summary)
	if summary.Errors > 0 {
		l.log.Warnf("[%s] Poll completed with %d failed messages out of %d",
			job.EmailAccountID, summary.Errors, summary.Total)
	}
	return nil
}
