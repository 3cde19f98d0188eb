package repository

import (
	"context"
	"time"

	"minecraft-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentRefunded  = "payment.refunded"

	StatusComplete = "complete"
)

type WebhookEventRepository interface {
	// MarkProcessed stores the event and reports false when it was
	// already recorded.
	MarkProcessed(ctx context.Context, event *model.WebhookEvent) (bool, error)
	IsBasketCompleted(ctx context.Context, basketIdent string) (bool, error)
}

type webhookEventRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepositoryImpl{db: db}
}

func (r *webhookEventRepositoryImpl) MarkProcessed(ctx context.Context, event *model.WebhookEvent) (bool, error) {
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *webhookEventRepositoryImpl) IsBasketCompleted(ctx context.Context, basketIdent string) (bool, error) {
	if basketIdent == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("basket_ident = ? AND event_type = ? AND status = ?", basketIdent, EventPaymentCompleted, StatusComplete).
		Count(&count).Error

	return count > 0, err
}
