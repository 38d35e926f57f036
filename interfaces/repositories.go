package interfaces

import (
	"context"
	"time"

	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/models"
)

type MailboxAccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.MailboxAccount, error)
	ListByStatus(ctx context.Context, status enum.AccountStatus) ([]*models.MailboxAccount, error)
	ListByFirm(ctx context.Context, firmID string) ([]*models.MailboxAccount, error)
	Create(ctx context.Context, account *models.MailboxAccount) error
	SetStatus(ctx context.Context, id string, status enum.AccountStatus, errorMessage string) error
	SetLastSyncAt(ctx context.Context, id string, syncedAt time.Time) error
}

type EmailRepository interface {
	Create(ctx context.Context, email *models.Email) error
	GetByID(ctx context.Context, id string) (*models.Email, error)
	GetByMessageID(ctx context.Context, firmID, messageID string) (*models.Email, error)
	FindMatterByThread(ctx context.Context, firmID, threadID string) (string, error)
}

type EmailImportRepository interface {
	// Create returns errors.ErrAlreadyImported when the (firm, message id)
	// pair already exists; that violation is the idempotency signal.
	Create(ctx context.Context, imp *models.EmailImport) error
	Exists(ctx context.Context, firmID, messageID string) (bool, error)
	ListUnmatched(ctx context.Context, firmID string, limit, offset int) ([]*models.EmailImport, int64, error)
}

type MatterRepository interface {
	GetByID(ctx context.Context, id string) (*models.Matter, error)
	ListOpenByFirm(ctx context.Context, firmID string) ([]*models.Matter, error)
	ListContactsByFirm(ctx context.Context, firmID string) ([]*models.MatterContact, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	ListByMatter(ctx context.Context, matterID string) ([]*models.Document, error)
}

type TimelineEventRepository interface {
	Create(ctx context.Context, event *models.TimelineEvent) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}
