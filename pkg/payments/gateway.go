package payments

import (
	"context"
	"time"
)

// Customer is the provider-side identity a subscription hangs off of.
type Customer struct {
	ID    string
	Email string
}

// CheckoutSession is a hosted payment page the client gets redirected to.
type CheckoutSession struct {
	ID             string
	URL            string
	CustomerId     string
	SubscriptionId string
}

// Subscription is the provider's view of a recurring billing agreement.
// Status carries the provider's raw value; callers normalize it.
type Subscription struct {
	ID               string
	CustomerId       string
	Status           string
	PriceId          string
	CurrentPeriodEnd *time.Time
	Metadata         map[string]string
}

// Event is one verified webhook delivery. Subscription is populated for
// subscription lifecycle events; invoice events only carry SubscriptionId
// and the caller re-fetches the current state.
type Event struct {
	ID             string
	Type           string
	Subscription   *Subscription
	SubscriptionId string
}

// CheckoutParams describes the session to create. Metadata is attached to
// both the session and the resulting subscription so webhook events can be
// attributed back to a user.
type CheckoutParams struct {
	CustomerId      string
	PriceId         string
	SuccessURL      string
	CancelURL       string
	TrialPeriodDays int64
	Metadata        map[string]string
}

// Gateway abstracts the payment provider. The concrete implementation talks
// to Stripe; tests swap in a mock.
type Gateway interface {
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (*Customer, error)
	CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionId string) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionId string) (*Subscription, error)
	CreatePortalSession(ctx context.Context, customerId, returnURL string) (string, error)

	// VerifyEvent checks the payload signature and parses the event.
	// A non-nil error means the delivery must be rejected.
	VerifyEvent(payload []byte, sigHeader string) (*Event, error)
}
