package repository

import (
	"context"
	"errors"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/tracing"
	"github.com/caseflowhq/mailroom/internal/utils"
)

type mailboxAccountRepository struct {
	db *gorm.DB
}

func NewMailboxAccountRepository(db *gorm.DB) interfaces.MailboxAccountRepository {
	return &mailboxAccountRepository{db: db}
}

// GetByID retrieves an account by its ID; returns nil when not found
func (r *mailboxAccountRepository) GetByID(ctx context.Context, id string) (*models.MailboxAccount, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxAccountRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var account models.MailboxAccount
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &account, nil
}

func (r *mailboxAccountRepository) ListByStatus(ctx context.Context, status enum.AccountStatus) ([]*models.MailboxAccount, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxAccountRepository.ListByStatus")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var accounts []*models.MailboxAccount
	if err := r.db.WithContext(ctx).Where("status = ?", status).Find(&accounts).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return accounts, nil
}

func (r *mailboxAccountRepository) ListByFirm(ctx context.Context, firmID string) ([]*models.MailboxAccount, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxAccountRepository.ListByFirm")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var accounts []*models.MailboxAccount
	if err := r.db.WithContext(ctx).Where("firm_id = ?", firmID).Find(&accounts).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return accounts, nil
}

func (r *mailboxAccountRepository) Create(ctx context.Context, account *models.MailboxAccount) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxAccountRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

// SetStatus transitions the connection status; last-writer-wins, only one
// poll per account is in flight at a time
func (r *mailboxAccountRepository) SetStatus(ctx context.Context, id string, status enum.AccountStatus, errorMessage string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxAccountRepository.SetStatus")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("account.id", id)
	span.SetTag("account.status", status.String())

	result := r.db.WithContext(ctx).
		Model(&models.MailboxAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"updated_at":    utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	return nil
}

func (r *mailboxAccountRepository) SetLastSyncAt(ctx context.Context, id string, syncedAt time.Time) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxAccountRepository.SetLastSyncAt")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("account.id", id)

	result := r.db.WithContext(ctx).
		Model(&models.MailboxAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_sync_at": syncedAt,
			"updated_at":   utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	return nil
}
