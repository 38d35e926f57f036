package ingestion

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/caseflowhq/mailroom/dto"
	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/tracing"
	"github.com/caseflowhq/mailroom/services/matcher"
	"github.com/caseflowhq/mailroom/services/storage"
)

// fanOutMatched performs the side effects of a successful match: attachment
// storage, document rows, analysis jobs, the matter timeline entry and the
// user notification. Every step is attempted regardless of earlier failures
// and the last failure is returned so the message counts as errored; the
// import ledger row is written regardless, so a failed side effect is never
// retried through re-ingestion.
func (s *ingestionService) fanOutMatched(ctx context.Context, account *models.MailboxAccount, msg *interfaces.InboundMessage, email *models.Email, result *matcher.MatchResult) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.fanOutMatched")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, email.ID)
	span.SetTag("matter.id", result.MatterID)

	var failed error
	for _, attachment := range msg.Attachments {
		if err := s.storeAttachment(ctx, account, msg, email, result.MatterID, attachment); err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("[%s] Failed to store attachment %s of message %s: %v",
				account.ID, attachment.FileName, msg.MessageID, err)
			failed = err
		}
	}

	if err := s.recordTimelineEvent(ctx, email, result); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("Failed to record timeline event for email %s: %v", email.ID, err)
		failed = err
	}
	if err := s.notifyMatched(ctx, email, result); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("Failed to notify match for email %s: %v", email.ID, err)
		failed = err
	}

	if failed != nil {
		return errors.Wrap(failed, "match fan-out incomplete")
	}
	return nil
}

func (s *ingestionService) storeAttachment(ctx context.Context, account *models.MailboxAccount, msg *interfaces.InboundMessage, email *models.Email, matterID string, attachment interfaces.InboundAttachment) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.storeAttachment")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("attachment.file_name", attachment.FileName)

	content, err := s.deps.MailboxClient.FetchAttachment(ctx, account, msg.ProviderID, attachment.ID)
	if err != nil {
		return err
	}

	key := storage.AttachmentKey(account.FirmID, attachment.FileName)
	if err := s.deps.Storage.Upload(ctx, key, content, attachment.ContentType); err != nil {
		return err
	}

	document := &models.Document{
		FirmID:      account.FirmID,
		MatterID:    matterID,
		EmailID:     email.ID,
		FileName:    attachment.FileName,
		ContentType: attachment.ContentType,
		Size:        int64(len(content)),
		StorageKey:  key,
	}
	if err := s.deps.DocumentRepo.Create(ctx, document); err != nil {
		return err
	}

	if err := s.deps.Publisher.PublishDocumentAnalysis(ctx, account.FirmID, matterID, document.ID); err != nil {
		return errors.Wrapf(err, "failed to enqueue analysis for document %s", document.ID)
	}
	return nil
}

func (s *ingestionService) recordTimelineEvent(ctx context.Context, email *models.Email, result *matcher.MatchResult) error {
	event := &models.TimelineEvent{
		FirmID:    email.FirmID,
		MatterID:  result.MatterID,
		EventType: "email_received",
		Summary:   fmt.Sprintf("Email from %s: %s", email.FromAddress, email.Subject),
		Payload: models.JSONMap{
			"emailId":     email.ID,
			"fromAddress": email.FromAddress,
			"method":      string(result.Method),
			"confidence":  result.Confidence,
		},
	}
	return s.deps.TimelineRepo.Create(ctx, event)
}

// notifyMatched creates the in-app notification for the matter's assigned
// user and fans the event out on the bus. Unmatched mail is deliberately
// silent; it surfaces through the triage endpoint instead.
func (s *ingestionService) notifyMatched(ctx context.Context, email *models.Email, result *matcher.MatchResult) error {
	matter, err := s.deps.MatterRepo.GetByID(ctx, result.MatterID)
	if err != nil {
		return errors.Wrapf(err, "failed to load matter %s", result.MatterID)
	}
	if matter == nil {
		return errors.Errorf("matter %s not found", result.MatterID)
	}

	if matter.AssignedUserID != "" {
		notification := &models.Notification{
			FirmID:   email.FirmID,
			UserID:   matter.AssignedUserID,
			MatterID: matter.ID,
			Kind:     "email_matched",
			Message:  fmt.Sprintf("New email on %s from %s", matter.ReferenceCode, email.FromAddress),
		}
		if err := s.deps.NotificationRepo.Create(ctx, notification); err != nil {
			return errors.Wrap(err, "failed to create notification")
		}
	}

	payload := dto.EmailMatched{
		FirmID:     email.FirmID,
		MatterID:   matter.ID,
		EmailID:    email.ID,
		Subject:    email.Subject,
		Method:     string(result.Method),
		Confidence: result.Confidence,
	}
	return s.deps.Publisher.PublishNotification(ctx, email.FirmID, email.ID, enum.EMAIL, payload)
}
