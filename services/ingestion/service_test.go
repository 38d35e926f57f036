package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mailroom_errors "github.com/caseflowhq/mailroom/errors"
	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/logger"
	"github.com/caseflowhq/mailroom/internal/models"
)

type fixture struct {
	client           *mockMailboxClient
	storage          *mockStorage
	publisher        *mockPublisher
	accountRepo      *mockAccountRepo
	emailRepo        *mockEmailRepo
	importRepo       *mockImportRepo
	matterRepo       *mockMatterRepo
	documentRepo     *mockDocumentRepo
	timelineRepo     *mockTimelineRepo
	notificationRepo *mockNotificationRepo
	svc              interfaces.IngestionService
}

func newFixture() *fixture {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()

	f := &fixture{
		client:           new(mockMailboxClient),
		storage:          new(mockStorage),
		publisher:        new(mockPublisher),
		accountRepo:      new(mockAccountRepo),
		emailRepo:        new(mockEmailRepo),
		importRepo:       new(mockImportRepo),
		matterRepo:       new(mockMatterRepo),
		documentRepo:     new(mockDocumentRepo),
		timelineRepo:     new(mockTimelineRepo),
		notificationRepo: new(mockNotificationRepo),
	}
	f.svc = NewIngestionService(Deps{
		Logger:           appLogger,
		MailboxClient:    f.client,
		Storage:          f.storage,
		Publisher:        f.publisher,
		AccountRepo:      f.accountRepo,
		EmailRepo:        f.emailRepo,
		ImportRepo:       f.importRepo,
		MatterRepo:       f.matterRepo,
		DocumentRepo:     f.documentRepo,
		TimelineRepo:     f.timelineRepo,
		NotificationRepo: f.notificationRepo,
	})
	return f
}

func connectedAccount() *models.MailboxAccount {
	return &models.MailboxAccount{
		ID:     "acct_1",
		FirmID: "firm_1",
		Status: enum.AccountStatusConnected,
		Folder: "INBOX",
	}
}

func (f *fixture) expectNoCandidates() {
	f.matterRepo.On("ListOpenByFirm", mock.Anything, "firm_1").Return([]*models.Matter{}, nil)
	f.matterRepo.On("ListContactsByFirm", mock.Anything, "firm_1").Return([]*models.MatterContact{}, nil)
}

func inboundMessage(messageID string) *interfaces.InboundMessage {
	return &interfaces.InboundMessage{
		ProviderID:  "101",
		MessageID:   messageID,
		ThreadID:    messageID,
		FromAddress: "someone@example.com",
		Subject:     "hello",
		ReceivedAt:  time.Now().UTC(),
	}
}

func TestPoll_SkipsAccountNotConnected(t *testing.T) {
	f := newFixture()
	account := connectedAccount()
	account.Status = enum.AccountStatusError
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(account, nil)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.True(t, summary.Skipped)
	f.client.AssertNotCalled(t, "ListSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestPoll_DeletedAccountSkipped(t *testing.T) {
	// An account removed between enqueue and execution is a stale job, not a
	// failure; the job must ack instead of cycling through the DLQ.
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(nil, nil)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.True(t, summary.Skipped)
	f.client.AssertNotCalled(t, "ListSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestPoll_FirmMismatchRejected(t *testing.T) {
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)

	_, err := f.svc.Poll(context.Background(), "acct_1", "firm_other")

	assert.Error(t, err)
	f.client.AssertNotCalled(t, "ListSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestPoll_AuthExpiredFlagsAccountAndStops(t *testing.T) {
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.Wrap(mailroom_errors.ErrAuthExpired, "LOGIN failed"))
	f.accountRepo.On("SetStatus", mock.Anything, "acct_1", enum.AccountStatusError, mock.Anything).Return(nil)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	// Expired credentials are not a retryable job failure; the summary
	// carries the distinguished marker, not the raw provider text.
	require.NoError(t, err)
	assert.True(t, summary.AuthFailure)
	assert.Equal(t, interfaces.RunResultAuthFailure, summary.Error)
	f.accountRepo.AssertCalled(t, "SetStatus", mock.Anything, "acct_1", enum.AccountStatusError, mock.Anything)
	f.accountRepo.AssertNotCalled(t, "SetLastSyncAt", mock.Anything, mock.Anything, mock.Anything)
}

func TestPoll_FirstRunDefaultsWatermarkTo24Hours(t *testing.T) {
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.expectNoCandidates()
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.Anything).Return(nil)

	var gotSince time.Time
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		gotSince = since
		return true
	})).Return([]*interfaces.InboundMessage{}, nil)

	_, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(-24*time.Hour), gotSince, 5*time.Second)
}

func TestPoll_UsesLastSyncAsWatermark(t *testing.T) {
	f := newFixture()
	lastSync := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	account := connectedAccount()
	account.LastSyncAt = &lastSync
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(account, nil)
	f.expectNoCandidates()
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.Anything).Return(nil)
	f.client.On("ListSince", mock.Anything, mock.Anything, lastSync).
		Return([]*interfaces.InboundMessage{}, nil)

	_, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	f.client.AssertExpectations(t)
}

func TestPoll_AdvancesWatermarkToPollStart(t *testing.T) {
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.expectNoCandidates()
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.Anything).
		Return([]*interfaces.InboundMessage{}, nil)

	var advancedTo time.Time
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.MatchedBy(func(at time.Time) bool {
		advancedTo = at
		return true
	})).Return(nil)

	_, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), advancedTo, 5*time.Second)
}

func TestPoll_DuplicateMessageCountsAsProcessed(t *testing.T) {
	// A redelivered batch must report the same processed total as the run
	// that ingested it; a dedup hit is an idempotent no-op, not a skip.
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.expectNoCandidates()
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.Anything).Return(nil)
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.Anything).
		Return([]*interfaces.InboundMessage{inboundMessage("dup@example.com")}, nil)
	f.importRepo.On("Exists", mock.Anything, "firm_1", "dup@example.com").Return(true, nil)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Errors)
	f.emailRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPoll_ImportInsertRaceIsNotAnError(t *testing.T) {
	// Two workers polling the same account concurrently: the loser of the
	// ledger insert treats the message as a duplicate, not a failure.
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.expectNoCandidates()
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.Anything).Return(nil)
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.Anything).
		Return([]*interfaces.InboundMessage{inboundMessage("race@example.com")}, nil)
	f.importRepo.On("Exists", mock.Anything, "firm_1", "race@example.com").Return(false, nil)
	f.emailRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.importRepo.On("Create", mock.Anything, mock.Anything).Return(mailroom_errors.ErrAlreadyImported)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Errors)
}

func TestPoll_OneFailingMessageDoesNotAbortBatch(t *testing.T) {
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.expectNoCandidates()
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.Anything).Return(nil)

	good1 := inboundMessage("one@example.com")
	bad := inboundMessage("two@example.com")
	good2 := inboundMessage("three@example.com")
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.Anything).
		Return([]*interfaces.InboundMessage{good1, bad, good2}, nil)

	f.importRepo.On("Exists", mock.Anything, "firm_1", mock.Anything).Return(false, nil)
	f.emailRepo.On("Create", mock.Anything, mock.MatchedBy(func(email *models.Email) bool {
		return email.MessageID == "two@example.com"
	})).Return(errors.New("constraint violation"))
	f.emailRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.importRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Errors)
	// The batch still advances the watermark.
	f.accountRepo.AssertCalled(t, "SetLastSyncAt", mock.Anything, "acct_1", mock.Anything)
}

func TestPoll_MatchedMessageFullFanOut(t *testing.T) {
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.Anything).Return(nil)

	f.matterRepo.On("ListOpenByFirm", mock.Anything, "firm_1").Return([]*models.Matter{
		{ID: "matter_42", FirmID: "firm_1", ReferenceCode: "MAT-042", AssignedUserID: "user_9"},
	}, nil)
	f.matterRepo.On("ListContactsByFirm", mock.Anything, "firm_1").Return([]*models.MatterContact{}, nil)
	f.matterRepo.On("GetByID", mock.Anything, "matter_42").Return(&models.Matter{
		ID: "matter_42", FirmID: "firm_1", ReferenceCode: "MAT-042", AssignedUserID: "user_9",
	}, nil)

	msg := inboundMessage("engagement@example.com")
	msg.Subject = "Re: MAT-042 engagement letter"
	msg.HasAttachments = true
	msg.Attachments = []interfaces.InboundAttachment{
		{ID: "0", FileName: "letter.pdf", ContentType: "application/pdf", Size: 4},
	}
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.Anything).
		Return([]*interfaces.InboundMessage{msg}, nil)
	f.importRepo.On("Exists", mock.Anything, "firm_1", "engagement@example.com").Return(false, nil)

	var savedEmail *models.Email
	f.emailRepo.On("Create", mock.Anything, mock.MatchedBy(func(email *models.Email) bool {
		savedEmail = email
		email.ID = "email_1"
		return true
	})).Return(nil)

	f.client.On("FetchAttachment", mock.Anything, mock.Anything, "101", "0").Return([]byte("%PDF"), nil)
	f.storage.On("Upload", mock.Anything, mock.Anything, []byte("%PDF"), "application/pdf").Return(nil)

	var savedDocument *models.Document
	f.documentRepo.On("Create", mock.Anything, mock.MatchedBy(func(document *models.Document) bool {
		savedDocument = document
		document.ID = "doc_1"
		return true
	})).Return(nil)
	f.publisher.On("PublishDocumentAnalysis", mock.Anything, "firm_1", "matter_42", "doc_1").Return(nil)

	f.timelineRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notificationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishNotification", mock.Anything, "firm_1", "email_1", enum.EMAIL, mock.Anything).Return(nil)

	var savedImport *models.EmailImport
	f.importRepo.On("Create", mock.Anything, mock.MatchedBy(func(imp *models.EmailImport) bool {
		savedImport = imp
		return true
	})).Return(nil)
	f.client.On("MarkRead", mock.Anything, mock.Anything, "101").Return(nil)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Errors)

	require.NotNil(t, savedEmail)
	assert.Equal(t, "matter_42", savedEmail.MatterID)
	assert.Equal(t, enum.MatchMethodSubjectReference, savedEmail.MatchMethod)
	assert.Equal(t, 98, savedEmail.MatchConfidence)

	require.NotNil(t, savedDocument)
	assert.Equal(t, "matter_42", savedDocument.MatterID)
	assert.Equal(t, "letter.pdf", savedDocument.FileName)
	assert.NotEmpty(t, savedDocument.StorageKey)

	require.NotNil(t, savedImport)
	assert.Equal(t, enum.ImportStatusMatched, savedImport.Status)
	assert.Equal(t, "matter_42", savedImport.MatterID)
	assert.Equal(t, enum.MatchMethodSubjectReference, savedImport.MatchMethod)

	f.publisher.AssertExpectations(t)
	f.notificationRepo.AssertExpectations(t)
	f.timelineRepo.AssertExpectations(t)
}

func TestPoll_UnmatchedMessageStaysQuiet(t *testing.T) {
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.expectNoCandidates()
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.Anything).Return(nil)
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.Anything).
		Return([]*interfaces.InboundMessage{inboundMessage("unknown@example.com")}, nil)
	f.importRepo.On("Exists", mock.Anything, "firm_1", "unknown@example.com").Return(false, nil)
	f.emailRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	var savedImport *models.EmailImport
	f.importRepo.On("Create", mock.Anything, mock.MatchedBy(func(imp *models.EmailImport) bool {
		savedImport = imp
		return true
	})).Return(nil)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)

	require.NotNil(t, savedImport)
	assert.Equal(t, enum.ImportStatusUnmatched, savedImport.Status)
	assert.Empty(t, savedImport.MatterID)

	// Unmatched mail surfaces in triage, never as a notification, and stays
	// unread in the mailbox.
	f.publisher.AssertNotCalled(t, "PublishNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.timelineRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.client.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestPoll_FanOutFailureCountsAsError(t *testing.T) {
	// A matched message whose attachment cannot be stored is still ingested
	// (import row written, never re-fetched) but the run must not report it
	// as clean.
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.Anything).Return(nil)

	f.matterRepo.On("ListOpenByFirm", mock.Anything, "firm_1").Return([]*models.Matter{
		{ID: "matter_42", FirmID: "firm_1", ReferenceCode: "MAT-042"},
	}, nil)
	f.matterRepo.On("ListContactsByFirm", mock.Anything, "firm_1").Return([]*models.MatterContact{}, nil)
	f.matterRepo.On("GetByID", mock.Anything, "matter_42").Return(&models.Matter{
		ID: "matter_42", FirmID: "firm_1", ReferenceCode: "MAT-042",
	}, nil)

	msg := inboundMessage("broken@example.com")
	msg.Subject = "MAT-042 exhibits"
	msg.HasAttachments = true
	msg.Attachments = []interfaces.InboundAttachment{
		{ID: "0", FileName: "exhibit.pdf", ContentType: "application/pdf"},
	}
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.Anything).
		Return([]*interfaces.InboundMessage{msg}, nil)
	f.importRepo.On("Exists", mock.Anything, "firm_1", "broken@example.com").Return(false, nil)
	f.emailRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	f.client.On("FetchAttachment", mock.Anything, mock.Anything, "101", "0").
		Return(nil, errors.New("connection reset"))

	f.timelineRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var savedImport *models.EmailImport
	f.importRepo.On("Create", mock.Anything, mock.MatchedBy(func(imp *models.EmailImport) bool {
		savedImport = imp
		return true
	})).Return(nil)
	f.client.On("MarkRead", mock.Anything, mock.Anything, "101").Return(nil)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Errors)

	require.NotNil(t, savedImport)
	assert.Equal(t, enum.ImportStatusMatched, savedImport.Status)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.documentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPoll_ThreadContinuityMatch(t *testing.T) {
	f := newFixture()
	f.accountRepo.On("GetByID", mock.Anything, "acct_1").Return(connectedAccount(), nil)
	f.accountRepo.On("SetLastSyncAt", mock.Anything, "acct_1", mock.Anything).Return(nil)

	f.matterRepo.On("ListOpenByFirm", mock.Anything, "firm_1").Return([]*models.Matter{
		{ID: "matter_9", FirmID: "firm_1", ReferenceCode: "MAT-009"},
	}, nil)
	f.matterRepo.On("ListContactsByFirm", mock.Anything, "firm_1").Return([]*models.MatterContact{}, nil)
	f.matterRepo.On("GetByID", mock.Anything, "matter_9").Return(&models.Matter{ID: "matter_9", FirmID: "firm_1"}, nil)

	msg := inboundMessage("reply@example.com")
	msg.Subject = "Re: our call"
	msg.ThreadID = "root@example.com"
	f.client.On("ListSince", mock.Anything, mock.Anything, mock.Anything).
		Return([]*interfaces.InboundMessage{msg}, nil)
	f.importRepo.On("Exists", mock.Anything, "firm_1", "reply@example.com").Return(false, nil)
	f.emailRepo.On("FindMatterByThread", mock.Anything, "firm_1", "root@example.com").Return("matter_9", nil)

	var savedEmail *models.Email
	f.emailRepo.On("Create", mock.Anything, mock.MatchedBy(func(email *models.Email) bool {
		savedEmail = email
		return true
	})).Return(nil)
	f.importRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.timelineRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.client.On("MarkRead", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	summary, err := f.svc.Poll(context.Background(), "acct_1", "firm_1")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	require.NotNil(t, savedEmail)
	assert.Equal(t, "matter_9", savedEmail.MatterID)
	assert.Equal(t, enum.MatchMethodThreadContinuity, savedEmail.MatchMethod)
	assert.Equal(t, 90, savedEmail.MatchConfidence)
}
