package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/tracing"
)

type timelineEventRepository struct {
	db *gorm.DB
}

func NewTimelineEventRepository(db *gorm.DB) interfaces.TimelineEventRepository {
	return &timelineEventRepository{db: db}
}

func (r *timelineEventRepository) Create(ctx context.Context, event *models.TimelineEvent) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "timelineEventRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
