package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeGateway implements Gateway against the Stripe API. The client is
// held on the struct rather than set globally so tests and multi-account
// setups don't fight over package state.
type StripeGateway struct {
	sc            *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{
		sc:            sc,
		webhookSecret: webhookSecret,
	}
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	c, err := g.sc.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("payments: create stripe customer: %w", err)
	}
	return &Customer{ID: c.ID, Email: c.Email}, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p *CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(p.CustomerId),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceId),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: p.Metadata,
		},
	}
	params.Context = ctx
	if p.TrialPeriodDays > 0 {
		params.SubscriptionData.TrialPeriodDays = stripe.Int64(p.TrialPeriodDays)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("payments: create checkout session: %w", err)
	}
	return checkoutSessionFromStripe(sess), nil
}

func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionId string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.sc.CheckoutSessions.Get(sessionId, params)
	if err != nil {
		return nil, fmt.Errorf("payments: get checkout session: %w", err)
	}
	return checkoutSessionFromStripe(sess), nil
}

func (g *StripeGateway) GetSubscription(ctx context.Context, subscriptionId string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := g.sc.Subscriptions.Get(subscriptionId, params)
	if err != nil {
		return nil, fmt.Errorf("payments: get subscription: %w", err)
	}
	return subscriptionFromStripe(sub), nil
}

func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerId, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerId),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := g.sc.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("payments: create portal session: %w", err)
	}
	return sess.URL, nil
}

func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("payments: webhook signature verification failed: %w", err)
	}

	evt := &Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
	}

	switch stripeEvent.Type {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(stripeEvent.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("payments: parse subscription event: %w", err)
		}
		evt.Subscription = subscriptionFromStripe(&sub)
		evt.SubscriptionId = sub.ID
	case "invoice.paid", "invoice.payment_succeeded", "invoice.payment_failed":
		// Invoices only reference their subscription by id. The payload shape
		// moved between API versions, so check both locations.
		var inv struct {
			Subscription string `json:"subscription"`
			Parent       struct {
				SubscriptionDetails struct {
					Subscription string `json:"subscription"`
				} `json:"subscription_details"`
			} `json:"parent"`
		}
		if err := json.Unmarshal(stripeEvent.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("payments: parse invoice event: %w", err)
		}
		evt.SubscriptionId = inv.Subscription
		if evt.SubscriptionId == "" {
			evt.SubscriptionId = inv.Parent.SubscriptionDetails.Subscription
		}
	}

	return evt, nil
}

func checkoutSessionFromStripe(sess *stripe.CheckoutSession) *CheckoutSession {
	cs := &CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}
	if sess.Customer != nil {
		cs.CustomerId = sess.Customer.ID
	}
	if sess.Subscription != nil {
		cs.SubscriptionId = sess.Subscription.ID
	}
	return cs
}

func subscriptionFromStripe(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:       sub.ID,
		Status:   string(sub.Status),
		Metadata: sub.Metadata,
	}
	if sub.Customer != nil {
		out.CustomerId = sub.Customer.ID
	}
	// Billing period moved onto the items; the first item carries it for
	// single-price subscriptions.
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			out.PriceId = item.Price.ID
		}
		if item.CurrentPeriodEnd > 0 {
			t := time.Unix(item.CurrentPeriodEnd, 0)
			out.CurrentPeriodEnd = &t
		}
	}
	return out
}
