package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusNone       SubscriptionStatus = "none"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid     SubscriptionStatus = "unpaid"
)

// NormalizeStatus maps a provider-reported status onto the closed enum.
// Stripe reports a few states we do not track separately:
// incomplete_expired collapses to canceled, paused to past_due.
// Anything unrecognized becomes none rather than leaking a foreign value.
func NormalizeStatus(s string) SubscriptionStatus {
	switch SubscriptionStatus(s) {
	case SubscriptionStatusIncomplete,
		SubscriptionStatusTrialing,
		SubscriptionStatusActive,
		SubscriptionStatusPastDue,
		SubscriptionStatusCanceled,
		SubscriptionStatusUnpaid:
		return SubscriptionStatus(s)
	}
	switch s {
	case "incomplete_expired":
		return SubscriptionStatusCanceled
	case "paused":
		return SubscriptionStatusPastDue
	}
	return SubscriptionStatusNone
}

// GrantsAccess reports whether the status unlocks paid features.
// Access is always derived from status, never stored.
func (s SubscriptionStatus) GrantsAccess() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue:
		return true
	}
	return false
}

// Subscription is the single per-user billing record. It mirrors the
// provider's reported truth; the application never invents a status locally.
type Subscription struct {
	Id                   uuid.UUID
	UserId               uuid.UUID
	StripeCustomerId     string
	StripeSubscriptionId string
	Status               SubscriptionStatus
	PriceId              string
	CurrentPeriodEnd     *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasAccess derives the paid-feature gate from the current status.
func (s *Subscription) HasAccess() bool {
	return s.Status.GrantsAccess()
}

// BillingPlan is one entry of the fixed price allow-list. Plans come from
// configuration, not from user input or the database.
type BillingPlan struct {
	Slug            string
	Name            string
	PriceId         string
	TrialPeriodDays int64
	Description     string
}

// WebhookEvent is the durable record of one provider webhook delivery,
// keyed by the provider's event id for idempotent processing.
type WebhookEvent struct {
	Id              uuid.UUID
	ProviderEventId string
	EventType       string
	Payload         []byte
	ProcessedAt     *time.Time
	ProcessingError string
	CreatedAt       time.Time
}
