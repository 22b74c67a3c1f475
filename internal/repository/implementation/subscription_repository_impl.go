package implementation

import (
	"context"
	"errors"
	"time"

	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/mapper"
	"estate-crm-be/internal/model"
	"estate-crm-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) Upsert(ctx context.Context, sub *entity.Subscription) error {
	m := r.mapper.ToModel(sub)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_customer_id",
			"stripe_subscription_id",
			"status",
			"price_id",
			"current_period_end",
			"updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*sub = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) EnsureRecord(ctx context.Context, userId uuid.UUID) error {
	m := &model.Subscription{
		UserId: userId,
		Status: string(entity.SubscriptionStatusIncomplete),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(m).Error
}

func (r *SubscriptionRepositoryImpl) SetCustomerIdIfAbsent(ctx context.Context, userId uuid.UUID, customerId string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ? AND (stripe_customer_id IS NULL OR stripe_customer_id = '')", userId).
		Updates(map[string]interface{}{
			"stripe_customer_id": customerId,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SubscriptionRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	var m model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindByCustomerId(ctx context.Context, customerId string) (*entity.Subscription, error) {
	var m model.Subscription
	err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", customerId).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) RecordWebhookEvent(ctx context.Context, evt *entity.WebhookEvent) (bool, error) {
	m := r.mapper.WebhookEventToModel(evt)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// The id is already on file. Only a delivery that finished cleanly counts
	// as a duplicate; a row left unprocessed or marked with an error is a
	// failed attempt the provider is retrying, so let it run again.
	var existing model.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("provider_event_id = ?", evt.ProviderEventId).
		First(&existing).Error
	if err != nil {
		return false, err
	}
	if existing.ProcessedAt != nil && existing.ProcessingError == "" {
		return false, nil
	}
	return true, nil
}

func (r *SubscriptionRepositoryImpl) MarkWebhookEventProcessed(ctx context.Context, providerEventId string, processingError string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", providerEventId).
		Updates(map[string]interface{}{
			"processed_at":     &now,
			"processing_error": processingError,
		}).Error
}
