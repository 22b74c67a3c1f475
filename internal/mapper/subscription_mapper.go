package mapper

import (
	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                   s.Id,
		UserId:               s.UserId,
		StripeCustomerId:     s.StripeCustomerId,
		StripeSubscriptionId: s.StripeSubscriptionId,
		Status:               entity.SubscriptionStatus(s.Status),
		PriceId:              s.PriceId,
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                   s.Id,
		UserId:               s.UserId,
		StripeCustomerId:     s.StripeCustomerId,
		StripeSubscriptionId: s.StripeSubscriptionId,
		Status:               string(s.Status),
		PriceId:              s.PriceId,
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) WebhookEventToEntity(e *model.WebhookEvent) *entity.WebhookEvent {
	if e == nil {
		return nil
	}
	return &entity.WebhookEvent{
		Id:              e.Id,
		ProviderEventId: e.ProviderEventId,
		EventType:       e.EventType,
		Payload:         []byte(e.Payload),
		ProcessedAt:     e.ProcessedAt,
		ProcessingError: e.ProcessingError,
		CreatedAt:       e.CreatedAt,
	}
}

func (m *SubscriptionMapper) WebhookEventToModel(e *entity.WebhookEvent) *model.WebhookEvent {
	if e == nil {
		return nil
	}
	return &model.WebhookEvent{
		Id:              e.Id,
		ProviderEventId: e.ProviderEventId,
		EventType:       e.EventType,
		Payload:         datatypes.JSON(e.Payload),
		ProcessedAt:     e.ProcessedAt,
		ProcessingError: e.ProcessingError,
		CreatedAt:       e.CreatedAt,
	}
}
