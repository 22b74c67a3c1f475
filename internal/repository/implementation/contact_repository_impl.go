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

type ContactRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContactMapper
}

func NewContactRepository(db *gorm.DB) contract.ContactRepository {
	return &ContactRepositoryImpl{
		db:     db,
		mapper: mapper.NewContactMapper(),
	}
}

func (r *ContactRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContactRepositoryImpl) Create(ctx context.Context, contact *entity.Contact) error {
	m := r.mapper.ToModel(contact)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*contact = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContactRepositoryImpl) Update(ctx context.Context, contact *entity.Contact) error {
	m := r.mapper.ToModel(contact)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*contact = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContactRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Contact{}, id).Error
}

func (r *ContactRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contact, error) {
	var m model.Contact
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContactRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contact, error) {
	var models []*model.Contact
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Contact, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ContactRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Contact{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
