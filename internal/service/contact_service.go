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

type IContactService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateContactRequest) (*dto.ContactResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ContactResponse, error)
	List(ctx context.Context, userId uuid.UUID, stage string) ([]*dto.ContactResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateContactRequest) (*dto.ContactResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type contactService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewContactService(uowFactory unitofwork.RepositoryFactory) IContactService {
	return &contactService{
		uowFactory: uowFactory,
	}
}

func (c *contactService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateContactRequest) (*dto.ContactResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	stage := entity.ContactStageLead
	if req.Stage != "" {
		stage = entity.ContactStage(req.Stage)
	}

	contact := entity.Contact{
		Id:        uuid.New(),
		UserId:    userId,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Stage:     stage,
		Notes:     req.Notes,
		CreatedAt: time.Now(),
	}

	if err := uow.ContactRepository().Create(ctx, &contact); err != nil {
		return nil, err
	}
	return contactToResponse(&contact), nil
}

func (c *contactService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ContactResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	contact, err := uow.ContactRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, serverutils.NewNotFoundError("contact not found")
	}
	return contactToResponse(contact), nil
}

func (c *contactService) List(ctx context.Context, userId uuid.UUID, stage string) ([]*dto.ContactResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if stage != "" {
		specs = append(specs, specification.ByStage{Stage: stage})
	}

	contacts, err := uow.ContactRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ContactResponse, len(contacts))
	for i, contact := range contacts {
		res[i] = contactToResponse(contact)
	}
	return res, nil
}

func (c *contactService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	contact, err := uow.ContactRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, serverutils.NewNotFoundError("contact not found")
	}

	contact.FullName = req.FullName
	contact.Email = req.Email
	contact.Phone = req.Phone
	if req.Stage != "" {
		contact.Stage = entity.ContactStage(req.Stage)
	}
	contact.Notes = req.Notes
	contact.UpdatedAt = time.Now()

	if err := uow.ContactRepository().Update(ctx, contact); err != nil {
		return nil, err
	}
	return contactToResponse(contact), nil
}

func (c *contactService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	contact, err := uow.ContactRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if contact == nil {
		return serverutils.NewNotFoundError("contact not found")
	}
	return uow.ContactRepository().Delete(ctx, id)
}

func contactToResponse(contact *entity.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		Id:        contact.Id,
		FullName:  contact.FullName,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Stage:     string(contact.Stage),
		Notes:     contact.Notes,
		CreatedAt: contact.CreatedAt,
		UpdatedAt: contact.UpdatedAt,
	}
}
