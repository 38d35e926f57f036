package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/tracing"
)

type matterRepository struct {
	db *gorm.DB
}

func NewMatterRepository(db *gorm.DB) interfaces.MatterRepository {
	return &matterRepository{db: db}
}

func (r *matterRepository) GetByID(ctx context.Context, id string) (*models.Matter, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "matterRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var matter models.Matter
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&matter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &matter, nil
}

func (r *matterRepository) ListOpenByFirm(ctx context.Context, firmID string) ([]*models.Matter, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "matterRepository.ListOpenByFirm")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var matters []*models.Matter
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND status = ?", firmID, enum.MatterStatusOpen).
		Find(&matters).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return matters, nil
}

func (r *matterRepository) ListContactsByFirm(ctx context.Context, firmID string) ([]*models.MatterContact, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "matterRepository.ListContactsByFirm")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var contacts []*models.MatterContact
	if err := r.db.WithContext(ctx).
		Where("firm_id = ?", firmID).
		Find(&contacts).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return contacts, nil
}
