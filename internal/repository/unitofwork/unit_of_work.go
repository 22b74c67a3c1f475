package unitofwork

import (
	"context"

	"estate-crm-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SubscriptionRepository() contract.SubscriptionRepository

	ContactRepository() contract.ContactRepository
	DealRepository() contract.DealRepository
	NoteRepository() contract.NoteRepository
	TaskRepository() contract.TaskRepository
	CalendarEventRepository() contract.CalendarEventRepository
}
