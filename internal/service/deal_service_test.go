package service

import (
	"context"
	"testing"

	"estate-crm-be/internal/dto"
	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/pkg/serverutils"
	"estate-crm-be/internal/repository/contract"
	"estate-crm-be/internal/repository/specification"
	"estate-crm-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceDealRepo struct {
	deals []*entity.Deal
}

func (r *sliceDealRepo) Create(_ context.Context, deal *entity.Deal) error {
	cp := *deal
	r.deals = append(r.deals, &cp)
	return nil
}

func (r *sliceDealRepo) Update(_ context.Context, deal *entity.Deal) error {
	for i, d := range r.deals {
		if d.Id == deal.Id {
			cp := *deal
			r.deals[i] = &cp
		}
	}
	return nil
}

func (r *sliceDealRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, d := range r.deals {
		if d.Id == id {
			r.deals = append(r.deals[:i], r.deals[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *sliceDealRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.Deal, error) {
	if len(r.deals) == 0 {
		return nil, nil
	}
	cp := *r.deals[0]
	return &cp, nil
}

func (r *sliceDealRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Deal, error) {
	return r.deals, nil
}

func (r *sliceDealRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.deals)), nil
}

type stubUnitOfWork struct {
	dealRepo *sliceDealRepo
}

func (u *stubUnitOfWork) Begin(_ context.Context) error { return nil }
func (u *stubUnitOfWork) Commit() error                 { return nil }
func (u *stubUnitOfWork) Rollback() error               { return nil }

func (u *stubUnitOfWork) UserRepository() contract.UserRepository                   { return nil }
func (u *stubUnitOfWork) SubscriptionRepository() contract.SubscriptionRepository   { return nil }
func (u *stubUnitOfWork) ContactRepository() contract.ContactRepository             { return nil }
func (u *stubUnitOfWork) DealRepository() contract.DealRepository                   { return u.dealRepo }
func (u *stubUnitOfWork) NoteRepository() contract.NoteRepository                   { return nil }
func (u *stubUnitOfWork) TaskRepository() contract.TaskRepository                   { return nil }
func (u *stubUnitOfWork) CalendarEventRepository() contract.CalendarEventRepository { return nil }

type stubFactory struct {
	uow *stubUnitOfWork
}

func (f *stubFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork { return f.uow }

// fixedAccessBilling reports a constant access answer; everything else is
// unused by the deal service.
type fixedAccessBilling struct {
	IBillingService
	hasAccess bool
}

func (b *fixedAccessBilling) GetSubscriptionStatus(_ context.Context, _ uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	status := "none"
	if b.hasAccess {
		status = "active"
	}
	return &dto.SubscriptionStatusResponse{Status: status, HasAccess: b.hasAccess}, nil
}

func newDealFixture(hasAccess bool, limit int) (IDealService, *sliceDealRepo) {
	repo := &sliceDealRepo{}
	factory := &stubFactory{uow: &stubUnitOfWork{dealRepo: repo}}
	svc := NewDealService(factory, &fixedAccessBilling{hasAccess: hasAccess}, limit)
	return svc, repo
}

func TestDealCreateFreeTierCap(t *testing.T) {
	svc, repo := newDealFixture(false, 2)
	userId := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := svc.Create(context.Background(), userId, &dto.CreateDealRequest{
			Title: "123 Main St listing",
		})
		require.NoError(t, err)
	}

	_, err := svc.Create(context.Background(), userId, &dto.CreateDealRequest{
		Title: "one too many",
	})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Code)
	assert.Len(t, repo.deals, 2)
}

func TestDealCreateUnlimitedWithAccess(t *testing.T) {
	svc, repo := newDealFixture(true, 2)
	userId := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), userId, &dto.CreateDealRequest{
			Title: "another listing",
		})
		require.NoError(t, err)
	}
	assert.Len(t, repo.deals, 5)
}

func TestDealCreateDefaultsStage(t *testing.T) {
	svc, repo := newDealFixture(true, 0)

	res, err := svc.Create(context.Background(), uuid.New(), &dto.CreateDealRequest{
		Title: "no stage given",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.DealStageProspect), res.Stage)
	require.Len(t, repo.deals, 1)
	assert.Equal(t, entity.DealStageProspect, repo.deals[0].Stage)
}
