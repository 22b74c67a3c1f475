package service

import (
	"context"
	"fmt"
	"time"

	"estate-crm-be/internal/config"
	"estate-crm-be/internal/dto"
	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/pkg/dedup"
	"estate-crm-be/internal/pkg/logger"
	"estate-crm-be/internal/pkg/mailer"
	"estate-crm-be/internal/pkg/serverutils"
	"estate-crm-be/internal/repository/contract"

	"estate-crm-be/pkg/events"
	"estate-crm-be/pkg/payments"

	"github.com/google/uuid"
)

// EventPublisher is the slice of the NATS publisher the billing service
// needs; tests substitute a recorder.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IBillingService interface {
	GetPlans(ctx context.Context) []*dto.PlanResponse
	CreateCheckoutSession(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	SyncFromCheckoutSession(ctx context.Context, userId uuid.UUID, req *dto.SyncRequest) (*dto.SyncResponse, error)
	CreatePortalSession(ctx context.Context, userId uuid.UUID) (*dto.PortalResponse, error)
	GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error)
	AwaitAccess(ctx context.Context, userId uuid.UUID) (*dto.AwaitAccessResponse, error)
}

type billingService struct {
	subRepo        contract.SubscriptionRepository
	userRepo       contract.UserRepository
	gateway        payments.Gateway
	deduper        dedup.Deduper
	eventPublisher EventPublisher
	emailService   mailer.IEmailService
	log            logger.ILogger

	plans        []*entity.BillingPlan
	clientURL    string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewBillingService(
	subRepo contract.SubscriptionRepository,
	userRepo contract.UserRepository,
	gateway payments.Gateway,
	deduper dedup.Deduper,
	eventPublisher EventPublisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
	cfg *config.Config,
) IBillingService {
	plans := []*entity.BillingPlan{
		{
			Slug:            "starter",
			Name:            "Starter",
			PriceId:         cfg.Stripe.PriceStarter,
			TrialPeriodDays: int64(cfg.Stripe.TrialPeriodDays),
			Description:     "Unlimited deals, notes and tasks for solo agents",
		},
		{
			// Pro is not trial-eligible; trials only apply to the entry tier.
			Slug:        "pro",
			Name:        "Pro",
			PriceId:     cfg.Stripe.PricePro,
			Description: "Everything in Starter plus calendar sync and priority support",
		},
	}

	return &billingService{
		subRepo:        subRepo,
		userRepo:       userRepo,
		gateway:        gateway,
		deduper:        deduper,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		log:            log,
		plans:          plans,
		clientURL:      cfg.App.ClientURL,
		pollInterval:   cfg.Billing.SyncPollInterval,
		pollTimeout:    cfg.Billing.SyncPollTimeout,
	}
}

func (s *billingService) GetPlans(ctx context.Context) []*dto.PlanResponse {
	res := make([]*dto.PlanResponse, 0, len(s.plans))
	for _, p := range s.plans {
		res = append(res, &dto.PlanResponse{
			Slug:            p.Slug,
			Name:            p.Name,
			PriceId:         p.PriceId,
			TrialPeriodDays: p.TrialPeriodDays,
			Description:     p.Description,
		})
	}
	return res
}

// planByPriceId enforces the price allow-list. Checkout never forwards a
// client-supplied price id that is not in the catalog.
func (s *billingService) planByPriceId(priceId string) *entity.BillingPlan {
	for _, p := range s.plans {
		if p.PriceId != "" && p.PriceId == priceId {
			return p
		}
	}
	return nil
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	plan := s.planByPriceId(req.PriceId)
	if plan == nil {
		return nil, serverutils.NewValidationError("unknown price_id")
	}

	user, err := s.userRepo.FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewUnauthorizedError("user not found")
	}

	if err := s.subRepo.EnsureRecord(ctx, userId); err != nil {
		return nil, err
	}

	sub, err := s.subRepo.FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}

	customerId := sub.StripeCustomerId
	if customerId == "" {
		customer, err := s.gateway.CreateCustomer(ctx, user.Email, map[string]string{
			"user_id": userId.String(),
		})
		if err != nil {
			s.log.Error("billing", "create customer failed", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
			return nil, serverutils.NewUpstreamError("payment provider unavailable")
		}

		won, err := s.subRepo.SetCustomerIdIfAbsent(ctx, userId, customer.ID)
		if err != nil {
			return nil, err
		}
		if won {
			customerId = customer.ID
		} else {
			// A concurrent checkout created a customer first; use theirs and
			// let ours become an orphan on the provider side.
			current, err := s.subRepo.FindByUserId(ctx, userId)
			if err != nil {
				return nil, err
			}
			customerId = current.StripeCustomerId
		}
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, &payments.CheckoutParams{
		CustomerId:      customerId,
		PriceId:         plan.PriceId,
		SuccessURL:      s.clientURL + "/settings/billing?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       s.clientURL + "/settings/billing",
		TrialPeriodDays: plan.TrialPeriodDays,
		Metadata: map[string]string{
			"user_id":  userId.String(),
			"price_id": plan.PriceId,
		},
	})
	if err != nil {
		s.log.Error("billing", "create checkout session failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return nil, serverutils.NewUpstreamError("payment provider unavailable")
	}

	return &dto.CheckoutResponse{URL: sess.URL}, nil
}

func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	evt, err := s.gateway.VerifyEvent(payload, sigHeader)
	if err != nil {
		s.log.Warn("billing", "webhook signature rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return serverutils.NewValidationError("invalid webhook signature")
	}

	// Fast path: short-window cache catches rapid redeliveries.
	if s.deduper != nil {
		first, err := s.deduper.FirstSeen(ctx, evt.ID)
		if err == nil && !first {
			s.log.Info("billing", "duplicate webhook skipped (cache)", map[string]interface{}{
				"event_id": evt.ID,
			})
			return nil
		}
	}

	// Durable path: the event log's unique index survives restarts.
	firstDelivery, err := s.subRepo.RecordWebhookEvent(ctx, &entity.WebhookEvent{
		ProviderEventId: evt.ID,
		EventType:       evt.Type,
		Payload:         payload,
	})
	if err != nil {
		return err
	}
	if !firstDelivery {
		s.log.Info("billing", "duplicate webhook skipped", map[string]interface{}{
			"event_id": evt.ID,
		})
		return nil
	}

	if procErr := s.processEvent(ctx, evt); procErr != nil {
		// Unmark the fast-path cache so the provider's redelivery is not
		// swallowed as a duplicate; the event log keeps the error and stays
		// reprocessable.
		if s.deduper != nil {
			if forgetErr := s.deduper.Forget(ctx, evt.ID); forgetErr != nil {
				s.log.Warn("billing", "dedup unmark failed", map[string]interface{}{
					"event_id": evt.ID,
					"error":    forgetErr.Error(),
				})
			}
		}
		if markErr := s.subRepo.MarkWebhookEventProcessed(ctx, evt.ID, procErr.Error()); markErr != nil {
			s.log.Error("billing", "mark webhook failed", map[string]interface{}{
				"event_id": evt.ID,
				"error":    markErr.Error(),
			})
		}
		return procErr
	}

	return s.subRepo.MarkWebhookEventProcessed(ctx, evt.ID, "")
}

func (s *billingService) processEvent(ctx context.Context, evt *payments.Event) error {
	switch evt.Type {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		return s.reconcile(ctx, evt.Subscription, evt.Type)

	case "invoice.paid", "invoice.payment_succeeded", "invoice.payment_failed":
		if evt.SubscriptionId == "" {
			// One-off invoices carry no subscription; nothing to reconcile.
			return nil
		}
		// The invoice payload is a snapshot; fetch the subscription's current
		// state so late deliveries still converge on provider truth.
		sub, err := s.gateway.GetSubscription(ctx, evt.SubscriptionId)
		if err != nil {
			return fmt.Errorf("refetch subscription %s: %w", evt.SubscriptionId, err)
		}
		if err := s.reconcile(ctx, sub, evt.Type); err != nil {
			return err
		}
		if evt.Type == "invoice.payment_failed" {
			s.notifyPaymentFailed(ctx, sub)
		}
		return nil

	default:
		s.log.Debug("billing", "ignoring webhook event type", map[string]interface{}{
			"event_id": evt.ID,
			"type":     evt.Type,
		})
		return nil
	}
}

// reconcile writes provider-reported state into the local record. Attribution
// prefers the user_id stamped in subscription metadata at checkout; events on
// customers created before that convention fall back to a customer-id lookup.
func (s *billingService) reconcile(ctx context.Context, sub *payments.Subscription, eventType string) error {
	if sub == nil {
		return nil
	}

	userId, ok := s.attributeUser(ctx, sub)
	if !ok {
		s.log.Warn("billing", "webhook not attributable to any user", map[string]interface{}{
			"subscription_id": sub.ID,
			"customer_id":     sub.CustomerId,
			"type":            eventType,
		})
		return nil
	}

	status := entity.NormalizeStatus(sub.Status)
	if eventType == "customer.subscription.deleted" {
		status = entity.SubscriptionStatusCanceled
	}

	record := &entity.Subscription{
		UserId:               userId,
		StripeCustomerId:     sub.CustomerId,
		StripeSubscriptionId: sub.ID,
		Status:               status,
		PriceId:              sub.PriceId,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
	}
	if err := s.subRepo.Upsert(ctx, record); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "SUBSCRIPTION_SYNCED",
			Data: map[string]interface{}{
				"user_id":         userId.String(),
				"subscription_id": sub.ID,
				"status":          string(status),
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("billing", "publish SUBSCRIPTION_SYNCED failed", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
		}
	}

	return nil
}

func (s *billingService) attributeUser(ctx context.Context, sub *payments.Subscription) (uuid.UUID, bool) {
	if raw, ok := sub.Metadata["user_id"]; ok {
		if userId, err := uuid.Parse(raw); err == nil {
			return userId, true
		}
	}
	if sub.CustomerId != "" {
		existing, err := s.subRepo.FindByCustomerId(ctx, sub.CustomerId)
		if err == nil && existing != nil {
			return existing.UserId, true
		}
	}
	return uuid.Nil, false
}

func (s *billingService) notifyPaymentFailed(ctx context.Context, sub *payments.Subscription) {
	userId, ok := s.attributeUser(ctx, sub)
	if !ok {
		return
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "PAYMENT_FAILED",
			Data: map[string]interface{}{
				"user_id":         userId.String(),
				"subscription_id": sub.ID,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("billing", "publish PAYMENT_FAILED failed", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
		}
	}

	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.FindById(ctx, userId)
	if err != nil || user == nil {
		return
	}
	if err := s.emailService.SendPaymentFailedNotice(user.Email); err != nil {
		s.log.Warn("billing", "payment failed notice not sent", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}
}

// SyncFromCheckoutSession is the client-driven fallback for the window
// between checkout redirect and webhook arrival. It pulls the session's
// subscription from the provider and reconciles immediately.
func (s *billingService) SyncFromCheckoutSession(ctx context.Context, userId uuid.UUID, req *dto.SyncRequest) (*dto.SyncResponse, error) {
	sess, err := s.gateway.GetCheckoutSession(ctx, req.SessionId)
	if err != nil {
		s.log.Error("billing", "get checkout session failed", map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return nil, serverutils.NewUpstreamError("payment provider unavailable")
	}

	if sess.CustomerId == "" {
		return nil, serverutils.NewValidationError("checkout session has no customer")
	}

	if sess.SubscriptionId == "" {
		// Checkout not completed yet. Keep the customer link in case this
		// session was created before the record had one, then report
		// whatever we have locally.
		if err := s.subRepo.EnsureRecord(ctx, userId); err != nil {
			return nil, err
		}
		if _, err := s.subRepo.SetCustomerIdIfAbsent(ctx, userId, sess.CustomerId); err != nil {
			return nil, err
		}
		return s.currentSyncState(ctx, userId)
	}

	sub, err := s.gateway.GetSubscription(ctx, sess.SubscriptionId)
	if err != nil {
		return nil, serverutils.NewUpstreamError("payment provider unavailable")
	}

	// The session belongs to the authenticated user; trust that over
	// possibly-missing metadata.
	status := entity.NormalizeStatus(sub.Status)
	record := &entity.Subscription{
		UserId:               userId,
		StripeCustomerId:     sub.CustomerId,
		StripeSubscriptionId: sub.ID,
		Status:               status,
		PriceId:              sub.PriceId,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
	}
	if err := s.subRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	return &dto.SyncResponse{Ok: status.GrantsAccess(), Status: string(status)}, nil
}

func (s *billingService) currentSyncState(ctx context.Context, userId uuid.UUID) (*dto.SyncResponse, error) {
	sub, err := s.subRepo.FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	status := entity.SubscriptionStatusNone
	if sub != nil {
		status = sub.Status
	}
	return &dto.SyncResponse{Ok: status.GrantsAccess(), Status: string(status)}, nil
}

func (s *billingService) CreatePortalSession(ctx context.Context, userId uuid.UUID) (*dto.PortalResponse, error) {
	sub, err := s.subRepo.FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.StripeCustomerId == "" {
		return nil, serverutils.NewValidationError("no billing account for this user")
	}

	url, err := s.gateway.CreatePortalSession(ctx, sub.StripeCustomerId, s.clientURL+"/settings/billing")
	if err != nil {
		s.log.Error("billing", "create portal session failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return nil, serverutils.NewUpstreamError("payment provider unavailable")
	}

	return &dto.PortalResponse{URL: url}, nil
}

func (s *billingService) GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	sub, err := s.subRepo.FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.SubscriptionStatusResponse{
			Status:    string(entity.SubscriptionStatusNone),
			HasAccess: false,
		}, nil
	}
	return &dto.SubscriptionStatusResponse{
		Status:           string(sub.Status),
		HasAccess:        sub.HasAccess(),
		PriceId:          sub.PriceId,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}, nil
}

// AwaitAccess blocks until the user's record grants access, the window
// expires, or ctx is canceled. Expiry is not an error: the caller gets the
// last observed status and granted=false, and the client keeps its own
// "still syncing" state.
func (s *billingService) AwaitAccess(ctx context.Context, userId uuid.UUID) (*dto.AwaitAccessResponse, error) {
	deadline := time.NewTimer(s.pollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	lastStatus := entity.SubscriptionStatusNone
	for {
		sub, err := s.subRepo.FindByUserId(ctx, userId)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			lastStatus = sub.Status
			if sub.HasAccess() {
				return &dto.AwaitAccessResponse{Granted: true, Status: string(lastStatus)}, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return &dto.AwaitAccessResponse{Granted: false, Status: string(lastStatus)}, nil
		case <-ticker.C:
		}
	}
}
