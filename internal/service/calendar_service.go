package service

import (
	"context"
	"time"

	"estate-crm-be/internal/dto"
	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/pkg/serverutils"
	"estate-crm-be/internal/repository/specification"
	"estate-crm-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ICalendarService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCalendarEventRequest) (*dto.CalendarEventResponse, error)
	List(ctx context.Context, userId uuid.UUID, from, to *time.Time) ([]*dto.CalendarEventResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateCalendarEventRequest) (*dto.CalendarEventResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type calendarService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCalendarService(uowFactory unitofwork.RepositoryFactory) ICalendarService {
	return &calendarService{
		uowFactory: uowFactory,
	}
}

func (c *calendarService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCalendarEventRequest) (*dto.CalendarEventResponse, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, serverutils.NewValidationError("ends_at must be after starts_at")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	event := entity.CalendarEvent{
		Id:        uuid.New(),
		UserId:    userId,
		ContactId: req.ContactId,
		Title:     req.Title,
		Location:  req.Location,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		CreatedAt: time.Now(),
	}

	if err := uow.CalendarEventRepository().Create(ctx, &event); err != nil {
		return nil, err
	}
	return calendarEventToResponse(&event), nil
}

func (c *calendarService) List(ctx context.Context, userId uuid.UUID, from, to *time.Time) ([]*dto.CalendarEventResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "starts_at", Desc: false},
	}
	if from != nil && to != nil {
		specs = append(specs, specification.StartsWithin{From: *from, To: *to})
	}

	eventsList, err := uow.CalendarEventRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.CalendarEventResponse, len(eventsList))
	for i, event := range eventsList {
		res[i] = calendarEventToResponse(event)
	}
	return res, nil
}

func (c *calendarService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateCalendarEventRequest) (*dto.CalendarEventResponse, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, serverutils.NewValidationError("ends_at must be after starts_at")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	event, err := uow.CalendarEventRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, serverutils.NewNotFoundError("calendar event not found")
	}

	event.ContactId = req.ContactId
	event.Title = req.Title
	event.Location = req.Location
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.UpdatedAt = time.Now()

	if err := uow.CalendarEventRepository().Update(ctx, event); err != nil {
		return nil, err
	}
	return calendarEventToResponse(event), nil
}

func (c *calendarService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	event, err := uow.CalendarEventRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if event == nil {
		return serverutils.NewNotFoundError("calendar event not found")
	}
	return uow.CalendarEventRepository().Delete(ctx, id)
}

func calendarEventToResponse(event *entity.CalendarEvent) *dto.CalendarEventResponse {
	return &dto.CalendarEventResponse{
		Id:        event.Id,
		ContactId: event.ContactId,
		Title:     event.Title,
		Location:  event.Location,
		StartsAt:  event.StartsAt,
		EndsAt:    event.EndsAt,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}
