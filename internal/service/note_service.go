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

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	List(ctx context.Context, userId uuid.UUID, contactId, dealId *uuid.UUID) ([]*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewNoteService(uowFactory unitofwork.RepositoryFactory) INoteService {
	return &noteService{
		uowFactory: uowFactory,
	}
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if req.ContactId == nil && req.DealId == nil {
		return nil, serverutils.NewValidationError("note must reference a contact or a deal")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note := entity.Note{
		Id:        uuid.New(),
		UserId:    userId,
		ContactId: req.ContactId,
		DealId:    req.DealId,
		Body:      req.Body,
		CreatedAt: time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}
	return noteToResponse(&note), nil
}

func (c *noteService) List(ctx context.Context, userId uuid.UUID, contactId, dealId *uuid.UUID) ([]*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if contactId != nil {
		specs = append(specs, specification.ByContactID{ContactID: *contactId})
	}
	if dealId != nil {
		specs = append(specs, specification.ByDealID{DealID: *dealId})
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NoteResponse, len(notes))
	for i, note := range notes {
		res[i] = noteToResponse(note)
	}
	return res, nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, serverutils.NewNotFoundError("note not found")
	}

	note.Body = req.Body
	note.UpdatedAt = time.Now()

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}
	return noteToResponse(note), nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if note == nil {
		return serverutils.NewNotFoundError("note not found")
	}
	return uow.NoteRepository().Delete(ctx, id)
}

func noteToResponse(note *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:        note.Id,
		ContactId: note.ContactId,
		DealId:    note.DealId,
		Body:      note.Body,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
