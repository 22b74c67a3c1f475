package model

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName  string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(50)"`
	Stage     string    `gorm:"type:varchar(50);not null;default:'lead'"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Contact) TableName() string {
	return "contacts"
}

type Deal struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID  `gorm:"type:uuid;not null;index"`
	ContactId       *uuid.UUID `gorm:"type:uuid;index"`
	Title           string     `gorm:"type:varchar(255);not null"`
	PropertyAddress string     `gorm:"type:text"`
	Amount          float64    `gorm:"type:decimal(14,2);default:0"`
	Stage           string     `gorm:"type:varchar(50);not null;default:'prospect'"`
	ExpectedClose   *time.Time `gorm:""`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Deal) TableName() string {
	return "deals"
}

type Note struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ContactId *uuid.UUID `gorm:"type:uuid;index"`
	DealId    *uuid.UUID `gorm:"type:uuid;index"`
	Body      string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (Note) TableName() string {
	return "notes"
}

type Task struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	DealId    *uuid.UUID `gorm:"type:uuid;index"`
	Title     string     `gorm:"type:varchar(255);not null"`
	DueAt     *time.Time `gorm:"index"`
	Done      bool       `gorm:"default:false"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (Task) TableName() string {
	return "tasks"
}

type CalendarEvent struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ContactId *uuid.UUID `gorm:"type:uuid;index"`
	Title     string     `gorm:"type:varchar(255);not null"`
	Location  string     `gorm:"type:text"`
	StartsAt  time.Time  `gorm:"not null;index"`
	EndsAt    time.Time  `gorm:"not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}
