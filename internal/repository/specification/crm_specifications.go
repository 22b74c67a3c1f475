package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByContactID filters notes, events and deals linked to a contact.
type ByContactID struct {
	ContactID uuid.UUID
}

func (s ByContactID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("contact_id = ?", s.ContactID)
}

// ByDealID filters notes and tasks linked to a deal.
type ByDealID struct {
	DealID uuid.UUID
}

func (s ByDealID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("deal_id = ?", s.DealID)
}

// ByStage filters contacts or deals by pipeline stage.
type ByStage struct {
	Stage string
}

func (s ByStage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stage = ?", s.Stage)
}

// PendingTasks keeps only tasks not yet completed.
type PendingTasks struct{}

func (s PendingTasks) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("done = ?", false)
}

// StartsWithin keeps calendar events whose start lies inside [From, To).
type StartsWithin struct {
	From time.Time
	To   time.Time
}

func (s StartsWithin) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("starts_at >= ? AND starts_at < ?", s.From, s.To)
}
