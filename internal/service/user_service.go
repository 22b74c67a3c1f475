package service

import (
	"context"
	"time"

	"estate-crm-be/internal/dto"
	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/pkg/serverutils"
	"estate-crm-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type userService struct {
	uowFactory     unitofwork.RepositoryFactory
	billingService IBillingService
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, billingService IBillingService) IUserService {
	return &userService{
		uowFactory:     uowFactory,
		billingService: billingService,
	}
}

func (c *userService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewUnauthorizedError("user not found")
	}

	res := userToResponse(user)
	billing, err := c.billingService.GetSubscriptionStatus(ctx, userId)
	if err != nil {
		return nil, err
	}
	res.Billing = billing
	return res, nil
}

func (c *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewUnauthorizedError("user not found")
	}

	user.FullName = req.FullName
	user.AvatarURL = req.AvatarURL
	user.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	return userToResponse(user), nil
}

func userToResponse(user *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		Id:        user.Id,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		Status:    string(user.Status),
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}
