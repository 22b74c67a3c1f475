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

type ITaskService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	List(ctx context.Context, userId uuid.UUID, pendingOnly bool) ([]*dto.TaskResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type taskService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewTaskService(uowFactory unitofwork.RepositoryFactory) ITaskService {
	return &taskService{
		uowFactory: uowFactory,
	}
}

func (c *taskService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	task := entity.Task{
		Id:        uuid.New(),
		UserId:    userId,
		DealId:    req.DealId,
		Title:     req.Title,
		DueAt:     req.DueAt,
		CreatedAt: time.Now(),
	}

	if err := uow.TaskRepository().Create(ctx, &task); err != nil {
		return nil, err
	}
	return taskToResponse(&task), nil
}

func (c *taskService) List(ctx context.Context, userId uuid.UUID, pendingOnly bool) ([]*dto.TaskResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "due_at", Desc: false},
	}
	if pendingOnly {
		specs = append(specs, specification.PendingTasks{})
	}

	tasks, err := uow.TaskRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.TaskResponse, len(tasks))
	for i, task := range tasks {
		res[i] = taskToResponse(task)
	}
	return res, nil
}

func (c *taskService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	task, err := uow.TaskRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, serverutils.NewNotFoundError("task not found")
	}

	task.Title = req.Title
	task.DueAt = req.DueAt
	task.Done = req.Done
	task.UpdatedAt = time.Now()

	if err := uow.TaskRepository().Update(ctx, task); err != nil {
		return nil, err
	}
	return taskToResponse(task), nil
}

func (c *taskService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	task, err := uow.TaskRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if task == nil {
		return serverutils.NewNotFoundError("task not found")
	}
	return uow.TaskRepository().Delete(ctx, id)
}

func taskToResponse(task *entity.Task) *dto.TaskResponse {
	return &dto.TaskResponse{
		Id:        task.Id,
		DealId:    task.DealId,
		Title:     task.Title,
		DueAt:     task.DueAt,
		Done:      task.Done,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}
