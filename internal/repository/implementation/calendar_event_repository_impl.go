package implementation

import (
	"context"
	"errors"

	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/mapper"
	"estate-crm-be/internal/model"
	"estate-crm-be/internal/repository/contract"
	"estate-crm-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CalendarEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CalendarEventMapper
}

func NewCalendarEventRepository(db *gorm.DB) contract.CalendarEventRepository {
	return &CalendarEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewCalendarEventMapper(),
	}
}

func (r *CalendarEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CalendarEventRepositoryImpl) Create(ctx context.Context, event *entity.CalendarEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *CalendarEventRepositoryImpl) Update(ctx context.Context, event *entity.CalendarEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *CalendarEventRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CalendarEvent{}, id).Error
}

func (r *CalendarEventRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CalendarEvent, error) {
	var m model.CalendarEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CalendarEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CalendarEvent, error) {
	var models []*model.CalendarEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CalendarEvent, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
