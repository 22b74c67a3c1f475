package contract

import (
	"context"

	"estate-crm-be/internal/entity"

	"github.com/google/uuid"
)

// SubscriptionRepository is the durable store behind billing reconciliation.
// All steady-state writes go through Upsert, an atomic insert-or-update keyed
// on user_id, so concurrent webhook deliveries never race a read-modify-write.
type SubscriptionRepository interface {
	// Upsert writes the full record keyed on user_id. All fields are written
	// together; the row is never left partially updated.
	Upsert(ctx context.Context, sub *entity.Subscription) error

	// EnsureRecord inserts a bare record with status incomplete for the user
	// if none exists yet. Existing rows are left untouched.
	EnsureRecord(ctx context.Context, userId uuid.UUID) error

	// SetCustomerIdIfAbsent stores the customer id only when the row has none,
	// reporting whether the write took effect. A false return means another
	// request won the race and the caller should re-read.
	SetCustomerIdIfAbsent(ctx context.Context, userId uuid.UUID, customerId string) (bool, error)

	// FindByUserId returns the user's record, newest first, or nil.
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error)

	// FindByCustomerId returns the record holding the given external customer
	// id, or nil. Used to attribute events that carry no user metadata.
	FindByCustomerId(ctx context.Context, customerId string) (*entity.Subscription, error)

	// RecordWebhookEvent durably registers a provider event id. It reports
	// false only when the id was already recorded and processed cleanly; a
	// redelivery of a failed or unfinished attempt reports true so the event
	// is processed again.
	RecordWebhookEvent(ctx context.Context, evt *entity.WebhookEvent) (bool, error)

	// MarkWebhookEventProcessed stamps the outcome of processing onto the
	// stored event, keyed by provider event id.
	MarkWebhookEventProcessed(ctx context.Context, providerEventId string, processingError string) error
}
