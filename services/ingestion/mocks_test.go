package ingestion

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/models"
)

type mockMailboxClient struct {
	mock.Mock
}

func (m *mockMailboxClient) ListSince(ctx context.Context, account *models.MailboxAccount, since time.Time) ([]*interfaces.InboundMessage, error) {
	args := m.Called(ctx, account, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*interfaces.InboundMessage), args.Error(1)
}

func (m *mockMailboxClient) FetchAttachment(ctx context.Context, account *models.MailboxAccount, messageID, attachmentID string) ([]byte, error) {
	args := m.Called(ctx, account, messageID, attachmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockMailboxClient) MarkRead(ctx context.Context, account *models.MailboxAccount, messageID string) error {
	args := m.Called(ctx, account, messageID)
	return args.Error(0)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *mockStorage) Download(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockStorage) GetPublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishPollJob(ctx context.Context, accountID, firmID string) error {
	args := m.Called(ctx, accountID, firmID)
	return args.Error(0)
}

func (m *mockPublisher) PublishDocumentAnalysis(ctx context.Context, firmID, matterID, documentID string) error {
	args := m.Called(ctx, firmID, matterID, documentID)
	return args.Error(0)
}

func (m *mockPublisher) PublishNotification(ctx context.Context, tenant string, entityId string, entityType enum.EntityType, message interface{}) error {
	args := m.Called(ctx, tenant, entityId, entityType, message)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id string) (*models.MailboxAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MailboxAccount), args.Error(1)
}

func (m *mockAccountRepo) ListByStatus(ctx context.Context, status enum.AccountStatus) ([]*models.MailboxAccount, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MailboxAccount), args.Error(1)
}

func (m *mockAccountRepo) ListByFirm(ctx context.Context, firmID string) ([]*models.MailboxAccount, error) {
	args := m.Called(ctx, firmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MailboxAccount), args.Error(1)
}

func (m *mockAccountRepo) Create(ctx context.Context, account *models.MailboxAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepo) SetStatus(ctx context.Context, id string, status enum.AccountStatus, errorMessage string) error {
	args := m.Called(ctx, id, status, errorMessage)
	return args.Error(0)
}

func (m *mockAccountRepo) SetLastSyncAt(ctx context.Context, id string, syncedAt time.Time) error {
	args := m.Called(ctx, id, syncedAt)
	return args.Error(0)
}

type mockEmailRepo struct {
	mock.Mock
}

func (m *mockEmailRepo) Create(ctx context.Context, email *models.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockEmailRepo) GetByID(ctx context.Context, id string) (*models.Email, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

func (m *mockEmailRepo) GetByMessageID(ctx context.Context, firmID, messageID string) (*models.Email, error) {
	args := m.Called(ctx, firmID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

func (m *mockEmailRepo) FindMatterByThread(ctx context.Context, firmID, threadID string) (string, error) {
	args := m.Called(ctx, firmID, threadID)
	return args.String(0), args.Error(1)
}

type mockImportRepo struct {
	mock.Mock
}

func (m *mockImportRepo) Create(ctx context.Context, imp *models.EmailImport) error {
	args := m.Called(ctx, imp)
	return args.Error(0)
}

func (m *mockImportRepo) Exists(ctx context.Context, firmID, messageID string) (bool, error) {
	args := m.Called(ctx, firmID, messageID)
	return args.Bool(0), args.Error(1)
}

func (m *mockImportRepo) ListUnmatched(ctx context.Context, firmID string, limit, offset int) ([]*models.EmailImport, int64, error) {
	args := m.Called(ctx, firmID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.EmailImport), args.Get(1).(int64), args.Error(2)
}

type mockMatterRepo struct {
	mock.Mock
}

func (m *mockMatterRepo) GetByID(ctx context.Context, id string) (*models.Matter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Matter), args.Error(1)
}

func (m *mockMatterRepo) ListOpenByFirm(ctx context.Context, firmID string) ([]*models.Matter, error) {
	args := m.Called(ctx, firmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Matter), args.Error(1)
}

func (m *mockMatterRepo) ListContactsByFirm(ctx context.Context, firmID string) ([]*models.MatterContact, error) {
	args := m.Called(ctx, firmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MatterContact), args.Error(1)
}

type mockDocumentRepo struct {
	mock.Mock
}

func (m *mockDocumentRepo) Create(ctx context.Context, document *models.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}

func (m *mockDocumentRepo) ListByMatter(ctx context.Context, matterID string) ([]*models.Document, error) {
	args := m.Called(ctx, matterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Document), args.Error(1)
}

type mockTimelineRepo struct {
	mock.Mock
}

func (m *mockTimelineRepo) Create(ctx context.Context, event *models.TimelineEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}
