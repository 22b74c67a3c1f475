package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Subscription struct {
	Id                   uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId               uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	StripeCustomerId     string     `gorm:"type:varchar(255);index"`
	StripeSubscriptionId string     `gorm:"type:varchar(255)"`
	Status               string     `gorm:"type:varchar(50);not null;default:'none'"`
	PriceId              string     `gorm:"type:varchar(255)"`
	CurrentPeriodEnd     *time.Time `gorm:""`
	CreatedAt            time.Time  `gorm:"autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// WebhookEvent stores provider webhook deliveries with a unique provider
// event id so replays are detected even across restarts.
type WebhookEvent struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProviderEventId string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	EventType       string         `gorm:"type:varchar(100);not null;index"`
	Payload         datatypes.JSON `gorm:"type:jsonb"`
	ProcessedAt     *time.Time     `gorm:""`
	ProcessingError string         `gorm:"type:text"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index"`
}

func (WebhookEvent) TableName() string {
	return "billing_webhook_events"
}
