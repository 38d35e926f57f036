package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/tracing"
)

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) interfaces.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "documentRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Create(document).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *documentRepository) ListByMatter(ctx context.Context, matterID string) ([]*models.Document, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "documentRepository.ListByMatter")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var documents []*models.Document
	if err := r.db.WithContext(ctx).
		Where("matter_id = ?", matterID).
		Order("created_at ASC").
		Find(&documents).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return documents, nil
}
