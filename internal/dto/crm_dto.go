package dto

import (
	"time"

	"github.com/google/uuid"
)

// Contacts

type CreateContactRequest struct {
	FullName string `json:"full_name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Stage    string `json:"stage" validate:"omitempty,oneof=lead active past_deal archived"`
	Notes    string `json:"notes"`
}

type UpdateContactRequest struct {
	FullName string `json:"full_name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Stage    string `json:"stage" validate:"omitempty,oneof=lead active past_deal archived"`
	Notes    string `json:"notes"`
}

type ContactResponse struct {
	Id        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Stage     string    `json:"stage"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deals

type CreateDealRequest struct {
	ContactId       *uuid.UUID `json:"contact_id"`
	Title           string     `json:"title" validate:"required,min=1,max=255"`
	PropertyAddress string     `json:"property_address" validate:"omitempty,max=500"`
	Amount          float64    `json:"amount" validate:"gte=0"`
	Stage           string     `json:"stage" validate:"omitempty,oneof=prospect showing offer under_contract closed lost"`
	ExpectedClose   *time.Time `json:"expected_close"`
}

type UpdateDealRequest struct {
	ContactId       *uuid.UUID `json:"contact_id"`
	Title           string     `json:"title" validate:"required,min=1,max=255"`
	PropertyAddress string     `json:"property_address" validate:"omitempty,max=500"`
	Amount          float64    `json:"amount" validate:"gte=0"`
	Stage           string     `json:"stage" validate:"omitempty,oneof=prospect showing offer under_contract closed lost"`
	ExpectedClose   *time.Time `json:"expected_close"`
}

type DealResponse struct {
	Id              uuid.UUID  `json:"id"`
	ContactId       *uuid.UUID `json:"contact_id,omitempty"`
	Title           string     `json:"title"`
	PropertyAddress string     `json:"property_address"`
	Amount          float64    `json:"amount"`
	Stage           string     `json:"stage"`
	ExpectedClose   *time.Time `json:"expected_close,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Notes

type CreateNoteRequest struct {
	ContactId *uuid.UUID `json:"contact_id"`
	DealId    *uuid.UUID `json:"deal_id"`
	Body      string     `json:"body" validate:"required,min=1"`
}

type UpdateNoteRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

type NoteResponse struct {
	Id        uuid.UUID  `json:"id"`
	ContactId *uuid.UUID `json:"contact_id,omitempty"`
	DealId    *uuid.UUID `json:"deal_id,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Tasks

type CreateTaskRequest struct {
	DealId *uuid.UUID `json:"deal_id"`
	Title  string     `json:"title" validate:"required,min=1,max=255"`
	DueAt  *time.Time `json:"due_at"`
}

type UpdateTaskRequest struct {
	Title string     `json:"title" validate:"required,min=1,max=255"`
	DueAt *time.Time `json:"due_at"`
	Done  bool       `json:"done"`
}

type TaskResponse struct {
	Id        uuid.UUID  `json:"id"`
	DealId    *uuid.UUID `json:"deal_id,omitempty"`
	Title     string     `json:"title"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Calendar

type CreateCalendarEventRequest struct {
	ContactId *uuid.UUID `json:"contact_id"`
	Title     string     `json:"title" validate:"required,min=1,max=255"`
	Location  string     `json:"location" validate:"omitempty,max=500"`
	StartsAt  time.Time  `json:"starts_at" validate:"required"`
	EndsAt    time.Time  `json:"ends_at" validate:"required"`
}

type UpdateCalendarEventRequest struct {
	ContactId *uuid.UUID `json:"contact_id"`
	Title     string     `json:"title" validate:"required,min=1,max=255"`
	Location  string     `json:"location" validate:"omitempty,max=500"`
	StartsAt  time.Time  `json:"starts_at" validate:"required"`
	EndsAt    time.Time  `json:"ends_at" validate:"required"`
}

type CalendarEventResponse struct {
	Id        uuid.UUID  `json:"id"`
	ContactId *uuid.UUID `json:"contact_id,omitempty"`
	Title     string     `json:"title"`
	Location  string     `json:"location"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    time.Time  `json:"ends_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
