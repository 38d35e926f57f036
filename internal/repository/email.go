package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/tracing"
)

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) interfaces.EmailRepository {
	return &emailRepository{db: db}
}

func (r *emailRepository) Create(ctx context.Context, email *models.Email) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	// Check if email already exists before creating
	existingEmail := &models.Email{}
	err := r.db.WithContext(ctx).
		Where("firm_id = ? AND message_id = ?", email.FirmID, email.MessageID).
		First(existingEmail).Error

	if err == nil {
		// Email already exists
		span.SetTag("duplicate", true)
		email.ID = existingEmail.ID
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		tracing.TraceErr(span, err)
		return err
	}

	result := r.db.WithContext(ctx).Create(email)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}

	return nil
}

// GetByID retrieves an email by its ID
func (r *emailRepository) GetByID(ctx context.Context, id string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var email models.Email
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

// GetByMessageID retrieves an email by its internet message id within a firm
func (r *emailRepository) GetByMessageID(ctx context.Context, firmID, messageID string) (*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByMessageID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var email models.Email
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND message_id = ?", firmID, messageID).
		First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

// FindMatterByThread returns the matter a conversation thread is already
// linked to via a previously ingested email, or "" when the thread is new.
func (r *emailRepository) FindMatterByThread(ctx context.Context, firmID, threadID string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.FindMatterByThread")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if threadID == "" {
		return "", nil
	}

	var email models.Email
	err := r.db.WithContext(ctx).
		Where("firm_id = ? AND thread_id = ? AND matter_id <> ''", firmID, threadID).
		Order("received_at DESC").
		First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		tracing.TraceErr(span, err)
		return "", err
	}
	return email.MatterID, nil
}
