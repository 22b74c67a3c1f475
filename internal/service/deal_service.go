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

type IDealService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDealRequest) (*dto.DealResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DealResponse, error)
	List(ctx context.Context, userId uuid.UUID, stage string) ([]*dto.DealResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateDealRequest) (*dto.DealResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type dealService struct {
	uowFactory     unitofwork.RepositoryFactory
	billingService IBillingService
	freeDealLimit  int
}

func NewDealService(uowFactory unitofwork.RepositoryFactory, billingService IBillingService, freeDealLimit int) IDealService {
	return &dealService{
		uowFactory:     uowFactory,
		billingService: billingService,
		freeDealLimit:  freeDealLimit,
	}
}

func (c *dealService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDealRequest) (*dto.DealResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	// Free tier caps open deals; any paying status lifts the cap.
	status, err := c.billingService.GetSubscriptionStatus(ctx, userId)
	if err != nil {
		return nil, err
	}
	if !status.HasAccess {
		count, err := uow.DealRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
		if err != nil {
			return nil, err
		}
		if count >= int64(c.freeDealLimit) {
			return nil, serverutils.NewForbiddenError("free plan deal limit reached, upgrade to add more")
		}
	}

	stage := entity.DealStageProspect
	if req.Stage != "" {
		stage = entity.DealStage(req.Stage)
	}

	deal := entity.Deal{
		Id:              uuid.New(),
		UserId:          userId,
		ContactId:       req.ContactId,
		Title:           req.Title,
		PropertyAddress: req.PropertyAddress,
		Amount:          req.Amount,
		Stage:           stage,
		ExpectedClose:   req.ExpectedClose,
		CreatedAt:       time.Now(),
	}

	if err := uow.DealRepository().Create(ctx, &deal); err != nil {
		return nil, err
	}
	return dealToResponse(&deal), nil
}

func (c *dealService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DealResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	deal, err := uow.DealRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, serverutils.NewNotFoundError("deal not found")
	}
	return dealToResponse(deal), nil
}

func (c *dealService) List(ctx context.Context, userId uuid.UUID, stage string) ([]*dto.DealResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if stage != "" {
		specs = append(specs, specification.ByStage{Stage: stage})
	}

	deals, err := uow.DealRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DealResponse, len(deals))
	for i, deal := range deals {
		res[i] = dealToResponse(deal)
	}
	return res, nil
}

func (c *dealService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateDealRequest) (*dto.DealResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	deal, err := uow.DealRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, serverutils.NewNotFoundError("deal not found")
	}

	deal.ContactId = req.ContactId
	deal.Title = req.Title
	deal.PropertyAddress = req.PropertyAddress
	deal.Amount = req.Amount
	if req.Stage != "" {
		deal.Stage = entity.DealStage(req.Stage)
	}
	deal.ExpectedClose = req.ExpectedClose
	deal.UpdatedAt = time.Now()

	if err := uow.DealRepository().Update(ctx, deal); err != nil {
		return nil, err
	}
	return dealToResponse(deal), nil
}

func (c *dealService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	deal, err := uow.DealRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if deal == nil {
		return serverutils.NewNotFoundError("deal not found")
	}
	return uow.DealRepository().Delete(ctx, id)
}

func dealToResponse(deal *entity.Deal) *dto.DealResponse {
	return &dto.DealResponse{
		Id:              deal.Id,
		ContactId:       deal.ContactId,
		Title:           deal.Title,
		PropertyAddress: deal.PropertyAddress,
		Amount:          deal.Amount,
		Stage:           string(deal.Stage),
		ExpectedClose:   deal.ExpectedClose,
		CreatedAt:       deal.CreatedAt,
		UpdatedAt:       deal.UpdatedAt,
	}
}
