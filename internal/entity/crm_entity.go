package entity

import (
	"time"

	"github.com/google/uuid"
)

type ContactStage string
type DealStage string

const (
	ContactStageLead     ContactStage = "lead"
	ContactStageActive   ContactStage = "active"
	ContactStagePastDeal ContactStage = "past_deal"
	ContactStageArchived ContactStage = "archived"

	DealStageProspect      DealStage = "prospect"
	DealStageShowing       DealStage = "showing"
	DealStageOffer         DealStage = "offer"
	DealStageUnderContract DealStage = "under_contract"
	DealStageClosed        DealStage = "closed"
	DealStageLost          DealStage = "lost"
)

type Contact struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	FullName  string
	Email     string
	Phone     string
	Stage     ContactStage
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Deal struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	ContactId       *uuid.UUID
	Title           string
	PropertyAddress string
	Amount          float64
	Stage           DealStage
	ExpectedClose   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Note is a free-form annotation attached to a contact or a deal
// (both references optional, at most one set in practice).
type Note struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	ContactId *uuid.UUID
	DealId    *uuid.UUID
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Task struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	DealId    *uuid.UUID
	Title     string
	DueAt     *time.Time
	Done      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CalendarEvent struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	ContactId *uuid.UUID
	Title     string
	Location  string
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
