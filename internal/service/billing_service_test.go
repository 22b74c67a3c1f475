package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"estate-crm-be/internal/config"
	"estate-crm-be/internal/dto"
	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/pkg/dedup"
	"estate-crm-be/internal/pkg/serverutils"
	"estate-crm-be/internal/repository/contract"
	"estate-crm-be/internal/repository/memory"

	"estate-crm-be/pkg/events"
	"estate-crm-be/pkg/payments"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type billingFixture struct {
	service   IBillingService
	subRepo   contract.SubscriptionRepository
	userRepo  contract.UserRepository
	gateway   *payments.MockGateway
	publisher *recordingPublisher
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.ClientURL = "http://localhost:5173"
	cfg.Stripe.PriceStarter = "price_starter"
	cfg.Stripe.PricePro = "price_pro"
	cfg.Stripe.TrialPeriodDays = 14
	cfg.Billing.SyncPollInterval = 10 * time.Millisecond
	cfg.Billing.SyncPollTimeout = 80 * time.Millisecond

	subRepo := memory.NewSubscriptionRepository()
	userRepo := memory.NewUserRepository()
	gateway := payments.NewMockGateway()
	publisher := &recordingPublisher{}

	svc := NewBillingService(subRepo, userRepo, gateway, nil, publisher, nil, nopLogger{}, cfg)

	return &billingFixture{
		service:   svc,
		subRepo:   subRepo,
		userRepo:  userRepo,
		gateway:   gateway,
		publisher: publisher,
	}
}

func (f *billingFixture) seedUser(t *testing.T) uuid.UUID {
	t.Helper()
	user := &entity.User{
		Email:    "agent@example.com",
		FullName: "Test Agent",
		Role:     entity.UserRoleUser,
		Status:   entity.UserStatusActive,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user.Id
}

func TestGetPlans(t *testing.T) {
	f := newBillingFixture(t)

	plans := f.service.GetPlans(context.Background())

	require.Len(t, plans, 2)
	assert.Equal(t, "starter", plans[0].Slug)
	assert.Equal(t, "price_starter", plans[0].PriceId)
	assert.Equal(t, int64(14), plans[0].TrialPeriodDays)
	assert.Equal(t, "pro", plans[1].Slug)
	assert.Zero(t, plans[1].TrialPeriodDays, "only the entry tier carries a trial")
}

func TestCheckoutRejectsUnknownPrice(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	_, err := f.service.CreateCheckoutSession(context.Background(), userId, &dto.CheckoutRequest{
		PriceId: "price_i_made_up",
	})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)

	// Nothing reached the provider and no record was created.
	assert.Empty(t, f.gateway.CheckoutCalls)
	assert.Empty(t, f.gateway.Customers)
	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestCheckoutCreatesCustomerAndSession(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	res, err := f.service.CreateCheckoutSession(context.Background(), userId, &dto.CheckoutRequest{
		PriceId: "price_starter",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.URL)

	// The record now carries the customer id persisted before checkout.
	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.NotEmpty(t, sub.StripeCustomerId)
	assert.Equal(t, entity.SubscriptionStatusIncomplete, sub.Status)

	// Session was created with the user stamped in metadata.
	require.Len(t, f.gateway.CheckoutCalls, 1)
	call := f.gateway.CheckoutCalls[0]
	assert.Equal(t, sub.StripeCustomerId, call.CustomerId)
	assert.Equal(t, "price_starter", call.PriceId)
	assert.Equal(t, userId.String(), call.Metadata["user_id"])
	assert.Equal(t, "price_starter", call.Metadata["price_id"])
	assert.Equal(t, int64(14), call.TrialPeriodDays)
}

func TestCheckoutReusesExistingCustomer(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	require.NoError(t, f.subRepo.Upsert(context.Background(), &entity.Subscription{
		UserId:           userId,
		StripeCustomerId: "cus_existing",
		Status:           entity.SubscriptionStatusIncomplete,
	}))

	_, err := f.service.CreateCheckoutSession(context.Background(), userId, &dto.CheckoutRequest{
		PriceId: "price_pro",
	})
	require.NoError(t, err)

	assert.Empty(t, f.gateway.Customers, "no new customer should be created")
	require.Len(t, f.gateway.CheckoutCalls, 1)
	assert.Equal(t, "cus_existing", f.gateway.CheckoutCalls[0].CustomerId)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newBillingFixture(t)

	err := f.service.HandleWebhook(context.Background(), []byte(`{}`), "t=1,v1=garbage")

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestWebhookReconcilesSubscription(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)
	periodEnd := time.Now().Add(30 * 24 * time.Hour)

	f.gateway.Events["sig_1"] = &payments.Event{
		ID:   "evt_1",
		Type: "customer.subscription.updated",
		Subscription: &payments.Subscription{
			ID:               "sub_1",
			CustomerId:       "cus_1",
			Status:           "active",
			PriceId:          "price_starter",
			CurrentPeriodEnd: &periodEnd,
			Metadata:         map[string]string{"user_id": userId.String()},
		},
	}

	require.NoError(t, f.service.HandleWebhook(context.Background(), []byte(`{}`), "sig_1"))

	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionId)
	assert.Equal(t, "cus_1", sub.StripeCustomerId)
	assert.Equal(t, "price_starter", sub.PriceId)
	assert.True(t, sub.HasAccess())

	assert.Contains(t, f.publisher.typesSeen(), "SUBSCRIPTION_SYNCED")
}

func TestWebhookDuplicateDeliveryIsIdempotent(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	f.gateway.Events["sig_1"] = &payments.Event{
		ID:   "evt_1",
		Type: "customer.subscription.updated",
		Subscription: &payments.Subscription{
			ID:         "sub_1",
			CustomerId: "cus_1",
			Status:     "active",
			Metadata:   map[string]string{"user_id": userId.String()},
		},
	}

	require.NoError(t, f.service.HandleWebhook(context.Background(), []byte(`{}`), "sig_1"))

	// Provider redelivers the same event id; the stale snapshot inside must
	// not be applied again.
	f.gateway.Events["sig_1"].Subscription.Status = "canceled"
	require.NoError(t, f.service.HandleWebhook(context.Background(), []byte(`{}`), "sig_1"))

	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
}

func TestWebhookFailedDeliveryIsReprocessedOnRetry(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.ClientURL = "http://localhost:5173"
	cfg.Stripe.PriceStarter = "price_starter"
	cfg.Stripe.PricePro = "price_pro"
	cfg.Billing.SyncPollInterval = 10 * time.Millisecond
	cfg.Billing.SyncPollTimeout = 80 * time.Millisecond

	subRepo := memory.NewSubscriptionRepository()
	userRepo := memory.NewUserRepository()
	gateway := payments.NewMockGateway()
	svc := NewBillingService(subRepo, userRepo, gateway,
		dedup.NewMemoryDeduper(time.Minute), nil, nil, nopLogger{}, cfg)

	user := &entity.User{Email: "agent@example.com", Role: entity.UserRoleUser, Status: entity.UserStatusActive}
	require.NoError(t, userRepo.Create(context.Background(), user))

	gateway.Subscriptions["sub_1"] = &payments.Subscription{
		ID:         "sub_1",
		CustomerId: "cus_1",
		Status:     "active",
		Metadata:   map[string]string{"user_id": user.Id.String()},
	}
	gateway.Events["sig_1"] = &payments.Event{
		ID:             "evt_1",
		Type:           "invoice.paid",
		SubscriptionId: "sub_1",
	}

	// The re-fetch fails transiently; the handler must error so the provider
	// redelivers.
	gateway.GetSubscriptionErr = errors.New("stripe: 500")
	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig_1")
	require.Error(t, err)

	sub, err := subRepo.FindByUserId(context.Background(), user.Id)
	require.NoError(t, err)
	assert.Nil(t, sub)

	// Redelivery of the same event id must not be shadowed by either dedup
	// layer once the failing dependency recovers.
	gateway.GetSubscriptionErr = nil
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig_1"))

	sub, err = subRepo.FindByUserId(context.Background(), user.Id)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)

	// And once it has processed cleanly, a further redelivery is a no-op.
	gateway.Events["sig_1"].SubscriptionId = "sub_missing"
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig_1"))
}

func TestWebhookOutOfOrderDeliveryConverges(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	f.gateway.Events["sig_new"] = &payments.Event{
		ID:   "evt_2",
		Type: "customer.subscription.updated",
		Subscription: &payments.Subscription{
			ID:         "sub_1",
			CustomerId: "cus_1",
			Status:     "active",
			Metadata:   map[string]string{"user_id": userId.String()},
		},
	}
	// The creation event arrives late with its older snapshot.
	f.gateway.Events["sig_old"] = &payments.Event{
		ID:   "evt_1",
		Type: "customer.subscription.created",
		Subscription: &payments.Subscription{
			ID:         "sub_1",
			CustomerId: "cus_1",
			Status:     "incomplete",
			Metadata:   map[string]string{"user_id": userId.String()},
		},
	}

	require.NoError(t, f.service.HandleWebhook(context.Background(), []byte(`{}`), "sig_new"))
	require.NoError(t, f.service.HandleWebhook(context.Background(), []byte(`{}`), "sig_old"))

	// Last arrival wins; the record stays a valid enum member and a single row.
	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionStatusIncomplete, sub.Status)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionId)
}

func TestWebhookAttributionFallsBackToCustomerId(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	require.NoError(t, f.subRepo.Upsert(context.Background(), &entity.Subscription{
		UserId:           userId,
		StripeCustomerId: "cus_known",
		Status:           entity.SubscriptionStatusIncomplete,
	}))

	// No user_id metadata on the event.
	f.gateway.Events["sig_1"] = &payments.Event{
		ID:   "evt_1",
		Type: "customer.subscription.updated",
		Subscription: &payments.Subscription{
			ID:         "sub_1",
			CustomerId: "cus_known",
			Status:     "active",
		},
	}

	require.NoError(t, f.service.HandleWebhook(context.Background(), []byte(`{}`), "sig_1"))

	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
}

func TestWebhookUnattributableEventIsSkipped(t *testing.T) {
	f := newBillingFixture(t)

	f.gateway.Events["sig_1"] = &payments.Event{
		ID:   "evt_1",
		Type: "customer.subscription.updated",
		Subscription: &payments.Subscription{
			ID:         "sub_1",
			CustomerId: "cus_nobody_knows",
			Status:     "active",
		},
	}

	// Skipped, not failed: returning an error would make the provider
	// redeliver an event we can never attribute.
	require.NoError(t, f.service.HandleWebhook(context.Background(), []byte(`{}`), "sig_1"))
	assert.Empty(t, f.publisher.typesSeen())
}

func TestWebhookSubscriptionDeletedSetsCanceled(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	f.gateway.Events["sig_1"] = &payments.Event{
		ID:   "evt_1",
		Type: "customer.subscription.deleted",
		Subscription: &payments.Subscription{
			ID:         "sub_1",
			CustomerId: "cus_1",
			Status:     "active", // stale snapshot inside the delete event
			Metadata:   map[string]string{"user_id": userId.String()},
		},
	}

	require.NoError(t, f.service.HandleWebhook(context.Background(), []byte(`{}`), "sig_1"))

	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusCanceled, sub.Status)
	assert.False(t, sub.HasAccess())
}

func TestWebhookInvoicePaymentFailedRefetchesSubscription(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	// The invoice payload is just a pointer; current truth lives on the
	// provider's subscription object.
	f.gateway.Subscriptions["sub_1"] = &payments.Subscription{
		ID:         "sub_1",
		CustomerId: "cus_1",
		Status:     "past_due",
		PriceId:    "price_starter",
		Metadata:   map[string]string{"user_id": userId.String()},
	}
	f.gateway.Events["sig_1"] = &payments.Event{
		ID:             "evt_1",
		Type:           "invoice.payment_failed",
		SubscriptionId: "sub_1",
	}

	require.NoError(t, f.service.HandleWebhook(context.Background(), []byte(`{}`), "sig_1"))

	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusPastDue, sub.Status)
	// past_due keeps access while the provider retries the charge.
	assert.True(t, sub.HasAccess())

	seen := f.publisher.typesSeen()
	assert.Contains(t, seen, "SUBSCRIPTION_SYNCED")
	assert.Contains(t, seen, "PAYMENT_FAILED")
}

func TestSyncFromCheckoutSession(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	f.gateway.Sessions["cs_1"] = &payments.CheckoutSession{
		ID:             "cs_1",
		CustomerId:     "cus_1",
		SubscriptionId: "sub_1",
	}
	f.gateway.Subscriptions["sub_1"] = &payments.Subscription{
		ID:         "sub_1",
		CustomerId: "cus_1",
		Status:     "trialing",
		PriceId:    "price_pro",
	}

	res, err := f.service.SyncFromCheckoutSession(context.Background(), userId, &dto.SyncRequest{
		SessionId: "cs_1",
	})
	require.NoError(t, err)
	assert.True(t, res.Ok)
	assert.Equal(t, "trialing", res.Status)

	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusTrialing, sub.Status)
	assert.Equal(t, "price_pro", sub.PriceId)
}

func TestSyncBeforeCheckoutCompletes(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	// Session exists but the subscription is not attached yet.
	f.gateway.Sessions["cs_1"] = &payments.CheckoutSession{
		ID:         "cs_1",
		CustomerId: "cus_1",
	}

	res, err := f.service.SyncFromCheckoutSession(context.Background(), userId, &dto.SyncRequest{
		SessionId: "cs_1",
	})
	require.NoError(t, err)
	assert.False(t, res.Ok)
	assert.Equal(t, "incomplete", res.Status)

	// The session's customer link is kept even before the subscription
	// exists, so later webhooks can attribute by customer id.
	sub, err := f.subRepo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "cus_1", sub.StripeCustomerId)
}

func TestSyncRejectsCustomerlessSession(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	f.gateway.Sessions["cs_1"] = &payments.CheckoutSession{ID: "cs_1"}

	_, err := f.service.SyncFromCheckoutSession(context.Background(), userId, &dto.SyncRequest{
		SessionId: "cs_1",
	})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestPortalRequiresExistingCustomer(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	_, err := f.service.CreatePortalSession(context.Background(), userId)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Empty(t, f.gateway.PortalCalls)
}

func TestPortalOpensForKnownCustomer(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	require.NoError(t, f.subRepo.Upsert(context.Background(), &entity.Subscription{
		UserId:           userId,
		StripeCustomerId: "cus_1",
		Status:           entity.SubscriptionStatusActive,
	}))

	res, err := f.service.CreatePortalSession(context.Background(), userId)
	require.NoError(t, err)
	assert.NotEmpty(t, res.URL)
	assert.Equal(t, []string{"cus_1"}, f.gateway.PortalCalls)
}

func TestGetSubscriptionStatusWithoutRecord(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	res, err := f.service.GetSubscriptionStatus(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, "none", res.Status)
	assert.False(t, res.HasAccess)
}

func TestAwaitAccessTimesOutWithoutError(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	res, err := f.service.AwaitAccess(context.Background(), userId)

	// Expiry means "still syncing", never a failure.
	require.NoError(t, err)
	assert.False(t, res.Granted)
	assert.Equal(t, "none", res.Status)
}

func TestAwaitAccessGrantedMidPoll(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = f.subRepo.Upsert(context.Background(), &entity.Subscription{
			UserId:           userId,
			StripeCustomerId: "cus_1",
			Status:           entity.SubscriptionStatusActive,
		})
	}()

	res, err := f.service.AwaitAccess(context.Background(), userId)
	require.NoError(t, err)
	assert.True(t, res.Granted)
	assert.Equal(t, "active", res.Status)
}

func TestAwaitAccessHonorsContextCancellation(t *testing.T) {
	f := newBillingFixture(t)
	userId := f.seedUser(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := f.service.AwaitAccess(ctx, userId)
	assert.ErrorIs(t, err, context.Canceled)
}
