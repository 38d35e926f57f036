package ingestion

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	mailroom_errors "github.com/caseflowhq/mailroom/errors"
	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/logger"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/tracing"
	"github.com/caseflowhq/mailroom/internal/utils"
	"github.com/caseflowhq/mailroom/services/matcher"
)

// defaultLookback bounds the first poll of an account that has never
// synced.
const defaultLookback = 24 * time.Hour

type Deps struct {
	Logger           logger.Logger
	MailboxClient    interfaces.MailboxClient
	Storage          interfaces.StorageService
	Publisher        interfaces.EventPublisher
	AccountRepo      interfaces.MailboxAccountRepository
	EmailRepo        interfaces.EmailRepository
	ImportRepo       interfaces.EmailImportRepository
	MatterRepo       interfaces.MatterRepository
	DocumentRepo     interfaces.DocumentRepository
	TimelineRepo     interfaces.TimelineEventRepository
	NotificationRepo interfaces.NotificationRepository
}

type ingestionService struct {
	deps Deps
	log  logger.Logger
}

func NewIngestionService(deps Deps) interfaces.IngestionService {
	return &ingestionService{deps: deps, log: deps.Logger}
}

// Poll runs one ingestion pass over a mailbox account. One failing message
// never aborts the batch; the summary carries the counts. Safe to re-run at
// any time, the import ledger dedups on (firm, message id).
func (s *ingestionService) Poll(ctx context.Context, accountID, firmID string) (*interfaces.RunSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.Poll")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, accountID)
	tracing.TagTenant(span, firmID)

	ctx = utils.SetTenantInContext(ctx, firmID)

	account, err := s.deps.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if account == nil {
		// The account was deleted between enqueue and execution.
		s.log.Infof("[%s] Account no longer exists, skipping poll", accountID)
		span.SetTag("result.skipped", true)
		return &interfaces.RunSummary{Skipped: true}, nil
	}
	if account.FirmID != firmID {
		err := errors.Errorf("account %s does not belong to firm %s", accountID, firmID)
		tracing.TraceErr(span, err)
		return nil, err
	}

	if account.Status != enum.AccountStatusConnected {
		s.log.Infof("[%s] Account status is %s, skipping poll", accountID, account.Status)
		span.SetTag("result.skipped", true)
		return &interfaces.RunSummary{Skipped: true}, nil
	}

	// The watermark is captured before listing so messages arriving during
	// the run fall into the next one.
	pollStartedAt := utils.Now()
	since := pollStartedAt.Add(-defaultLookback)
	if account.LastSyncAt != nil {
		since = *account.LastSyncAt
	}

	messages, err := s.deps.MailboxClient.ListSince(ctx, account, since)
	if err != nil {
		if mailroom_errors.IsAuthExpired(err) {
			return s.handleAuthFailure(ctx, account, err)
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list mailbox messages")
	}

	candidates, err := s.loadCandidates(ctx, firmID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	summary := &interfaces.RunSummary{Total: len(messages)}
	for _, msg := range messages {
		if ctx.Err() != nil {
			tracing.TraceErr(span, ctx.Err())
			return summary, ctx.Err()
		}

		// A message can count in both: a matched email whose fan-out failed
		// is ingested (processed) yet carries an error.
		processed, err := s.processMessage(ctx, account, msg, candidates)
		if err != nil {
			summary.Errors++
			s.log.Errorf("[%s] Failed to process message %s: %v", accountID, msg.MessageID, err)
		}
		if processed {
			summary.Processed++
		}
	}

	// Advanced even when some messages failed; a poison message must not
	// stall the whole mailbox.
	if err := s.deps.AccountRepo.SetLastSyncAt(ctx, account.ID, pollStartedAt); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("[%s] Failed to advance sync watermark: %v", accountID, err)
	}

	span.LogKV("result.total", summary.Total, "result.processed", summary.Processed, "result.errors", summary.Errors)
	return summary, nil
}

// handleAuthFailure marks the account so the scheduler stops enqueueing it
// until the user reconnects. Deliberately returns a nil error; retrying the
// job cannot fix expired credentials.
func (s *ingestionService) handleAuthFailure(ctx context.Context, account *models.MailboxAccount, cause error) (*interfaces.RunSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.handleAuthFailure")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, account.ID)
	tracing.TraceErr(span, cause)

	s.log.Warnf("[%s] Mailbox credentials rejected: %v", account.ID, cause)

	if err := s.deps.AccountRepo.SetStatus(ctx, account.ID, enum.AccountStatusError, cause.Error()); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("[%s] Failed to flag account auth failure: %v", account.ID, err)
	}

	return &interfaces.RunSummary{AuthFailure: true, Error: interfaces.RunResultAuthFailure}, nil
}

// loadCandidates materializes the open matters of the firm with their
// contact addresses, loaded once per run.
func (s *ingestionService) loadCandidates(ctx context.Context, firmID string) ([]matcher.MatterCandidate, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.loadCandidates")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	matters, err := s.deps.MatterRepo.ListOpenByFirm(ctx, firmID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list open matters")
	}
	contacts, err := s.deps.MatterRepo.ListContactsByFirm(ctx, firmID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list matter contacts")
	}

	contactsByMatter := make(map[string][]string, len(matters))
	for _, contact := range contacts {
		contactsByMatter[contact.MatterID] = append(contactsByMatter[contact.MatterID], contact.EmailAddress)
	}

	candidates := make([]matcher.MatterCandidate, 0, len(matters))
	for _, matter := range matters {
		candidates = append(candidates, matcher.MatterCandidate{
			ID:            matter.ID,
			ReferenceCode: matter.ReferenceCode,
			ContactEmails: contactsByMatter[matter.ID],
		})
	}

	span.LogKV("result.count", len(candidates))
	return candidates, nil
}

// processMessage ingests a single message end to end. A duplicate counts as
// processed: redelivery of an already-ingested batch must report the same
// processed total as the run that ingested it. The returned error marks the
// message as failed without negating the processed flag.
func (s *ingestionService) processMessage(ctx context.Context, account *models.MailboxAccount, msg *interfaces.InboundMessage, candidates []matcher.MatterCandidate) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.processMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, account.ID)
	span.SetTag("message.id", msg.MessageID)

	alreadyImported, err := s.deps.ImportRepo.Exists(ctx, account.FirmID, msg.MessageID)
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}
	if alreadyImported {
		span.SetTag("result.duplicate", true)
		return true, nil
	}

	result := s.matchMessage(ctx, account.FirmID, msg, candidates)

	email := s.buildEmail(account, msg, result)
	if err := s.deps.EmailRepo.Create(ctx, email); err != nil {
		tracing.TraceErr(span, err)
		return false, errors.Wrap(err, "failed to persist email")
	}

	// Fan-out failures count against the run but never block the import
	// row; once it exists the message is ingested for good.
	var fanOutErr error
	if result != nil {
		fanOutErr = s.fanOutMatched(ctx, account, msg, email, result)
	}

	imp := &models.EmailImport{
		FirmID:    account.FirmID,
		MessageID: msg.MessageID,
		AccountID: account.ID,
		EmailID:   email.ID,
		Status:    enum.ImportStatusUnmatched,
	}
	if result != nil {
		imp.Status = enum.ImportStatusMatched
		imp.MatterID = result.MatterID
		imp.MatchMethod = result.Method
		imp.MatchConfidence = result.Confidence
	}
	if err := s.deps.ImportRepo.Create(ctx, imp); err != nil {
		if errors.Is(err, mailroom_errors.ErrAlreadyImported) {
			// a concurrent run won the insert race, nothing to undo
			span.SetTag("result.duplicate", true)
			return true, nil
		}
		tracing.TraceErr(span, err)
		return false, errors.Wrap(err, "failed to record import")
	}

	// Only matched mail is marked read; unmatched mail stays unread so it
	// remains visible in the mailbox for manual triage.
	if result != nil {
		if err := s.deps.MailboxClient.MarkRead(ctx, account, msg.ProviderID); err != nil {
			s.log.Warnf("[%s] Failed to mark message %s read: %v", account.ID, msg.MessageID, err)
		}
	}

	return true, fanOutErr
}

// matchMessage runs the matcher with thread continuity resolved against
// previously ingested mail.
func (s *ingestionService) matchMessage(ctx context.Context, firmID string, msg *interfaces.InboundMessage, candidates []matcher.MatterCandidate) *matcher.MatchResult {
	facts := matcher.MessageFacts{
		Subject:     msg.Subject,
		FromAddress: msg.FromAddress,
		ThreadID:    msg.ThreadID,
	}

	if msg.ThreadID != "" && msg.ThreadID != msg.MessageID {
		matterID, err := s.deps.EmailRepo.FindMatterByThread(ctx, firmID, msg.ThreadID)
		if err != nil {
			s.log.Warnf("Thread lookup failed for %s: %v", msg.ThreadID, err)
		} else if matterID != "" {
			for i := range candidates {
				if candidates[i].ID == matterID {
					candidates[i].ThreadIDs = append(candidates[i].ThreadIDs, msg.ThreadID)
					break
				}
			}
		}
	}

	return matcher.Match(facts, candidates)
}

func (s *ingestionService) buildEmail(account *models.MailboxAccount, msg *interfaces.InboundMessage, result *matcher.MatchResult) *models.Email {
	email := &models.Email{
		FirmID:        account.FirmID,
		AccountID:     account.ID,
		MessageID:     msg.MessageID,
		ThreadID:      msg.ThreadID,
		To:            msg.To,
		Cc:            msg.Cc,
		Subject:       msg.Subject,
		FromAddress:   msg.FromAddress,
		FromName:      msg.FromName,
		BodyText:      msg.BodyText,
		BodyHTML:      msg.BodyHTML,
		HasAttachment: msg.HasAttachments,
		ReceivedAt:    utils.Ptr(msg.ReceivedAt),
		Processed:     true,
	}
	if result != nil {
		email.MatterID = result.MatterID
		email.MatchMethod = result.Method
		email.MatchConfidence = result.Confidence
	}
	return email
}
