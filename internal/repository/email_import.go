package repository

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	mailroom_errors "github.com/caseflowhq/mailroom/errors"
	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/tracing"
)

type emailImportRepository struct {
	db *gorm.DB
}

func NewEmailImportRepository(db *gorm.DB) interfaces.EmailImportRepository {
	return &emailImportRepository{db: db}
}

// Create inserts the import ledger row. The composite unique index on
// (firm_id, message_id) is the authoritative idempotency gate: a violation
// means the message was already ingested, possibly by a concurrent
// redelivery, and surfaces as ErrAlreadyImported rather than a failure.
func (r *emailImportRepository) Create(ctx context.Context, imp *models.EmailImport) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailImportRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("message.id", imp.MessageID)

	result := r.db.WithContext(ctx).Create(imp)
	if result.Error != nil {
		if IsUniqueViolation(result.Error) {
			span.SetTag("duplicate", true)
			return mailroom_errors.ErrAlreadyImported
		}
		tracing.TraceErr(span, result.Error)
		return result.Error
	}

	return nil
}

func (r *emailImportRepository) Exists(ctx context.Context, firmID, messageID string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailImportRepository.Exists")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EmailImport{}).
		Where("firm_id = ? AND message_id = ?", firmID, messageID).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}
	return count > 0, nil
}

// ListUnmatched returns unmatched imports for manual triage, newest first
func (r *emailImportRepository) ListUnmatched(ctx context.Context, firmID string, limit, offset int) ([]*models.EmailImport, int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailImportRepository.ListUnmatched")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var imports []*models.EmailImport
	var count int64

	if err := r.db.WithContext(ctx).Model(&models.EmailImport{}).
		Where("firm_id = ? AND status = ?", firmID, enum.ImportStatusUnmatched).
		Count(&count).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND status = ?", firmID, enum.ImportStatusUnmatched).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&imports).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	return imports, count, nil
}

// IsUniqueViolation reports whether err is a storage-level uniqueness
// violation. gorm's postgres driver translates these to ErrDuplicatedKey;
// the SQLSTATE check covers drivers that do not.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "duplicate key value")
}
