package memory

import (
	"context"
	"sync"
	"time"

	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/repository/contract"

	"github.com/google/uuid"
)

// SubscriptionRepository is a map-backed implementation of the subscription
// contract. It mirrors the durable store's semantics closely enough for
// service-level tests: upsert keyed on user id, conditional customer-id
// writes, and duplicate detection on provider event ids.
type SubscriptionRepository struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*entity.Subscription
	events map[string]*entity.WebhookEvent
}

func NewSubscriptionRepository() contract.SubscriptionRepository {
	return &SubscriptionRepository{
		byUser: make(map[uuid.UUID]*entity.Subscription),
		events: make(map[string]*entity.WebhookEvent),
	}
}

func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *entity.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	existing, ok := r.byUser[sub.UserId]
	if ok {
		sub.Id = existing.Id
		sub.CreatedAt = existing.CreatedAt
	} else {
		if sub.Id == uuid.Nil {
			sub.Id = uuid.New()
		}
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	stored := *sub
	r.byUser[sub.UserId] = &stored
	return nil
}

func (r *SubscriptionRepository) EnsureRecord(ctx context.Context, userId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUser[userId]; ok {
		return nil
	}
	now := time.Now()
	r.byUser[userId] = &entity.Subscription{
		Id:        uuid.New(),
		UserId:    userId,
		Status:    entity.SubscriptionStatusIncomplete,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *SubscriptionRepository) SetCustomerIdIfAbsent(ctx context.Context, userId uuid.UUID, customerId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byUser[userId]
	if !ok || sub.StripeCustomerId != "" {
		return false, nil
	}
	sub.StripeCustomerId = customerId
	sub.UpdatedAt = time.Now()
	return true, nil
}

func (r *SubscriptionRepository) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byUser[userId]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (r *SubscriptionRepository) FindByCustomerId(ctx context.Context, customerId string) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.byUser {
		if sub.StripeCustomerId == customerId {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *SubscriptionRepository) RecordWebhookEvent(ctx context.Context, evt *entity.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.events[evt.ProviderEventId]; ok {
		// A cleanly processed row is a duplicate; a failed or unfinished
		// attempt is reprocessable on redelivery.
		if existing.ProcessedAt != nil && existing.ProcessingError == "" {
			return false, nil
		}
		return true, nil
	}
	if evt.Id == uuid.Nil {
		evt.Id = uuid.New()
	}
	evt.CreatedAt = time.Now()
	stored := *evt
	r.events[evt.ProviderEventId] = &stored
	return true, nil
}

func (r *SubscriptionRepository) MarkWebhookEventProcessed(ctx context.Context, providerEventId string, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	evt, ok := r.events[providerEventId]
	if !ok {
		return nil
	}
	now := time.Now()
	evt.ProcessedAt = &now
	evt.ProcessingError = processingError
	return nil
}
