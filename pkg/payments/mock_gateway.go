package payments

import (
	"context"
	"fmt"
	"sync"
)

// MockGateway is a test double that records calls and returns configurable
// results.
type MockGateway struct {
	mu sync.Mutex

	// Customers maps customerID -> email.
	Customers map[string]string
	// Sessions maps sessionID -> session.
	Sessions map[string]*CheckoutSession
	// Subscriptions maps subscriptionID -> subscription.
	Subscriptions map[string]*Subscription
	// CheckoutCalls collects the params of every checkout session created.
	CheckoutCalls []*CheckoutParams
	// PortalCalls collects customer ids portal sessions were opened for.
	PortalCalls []string

	// Events maps signature header -> event, letting tests hand-craft
	// deliveries. Any unknown signature fails verification.
	Events map[string]*Event

	// Error fields allow tests to inject failures.
	CreateCustomerErr  error
	CreateSessionErr   error
	GetSessionErr      error
	GetSubscriptionErr error
	PortalErr          error

	nextCustomerSeq int
	nextSessionSeq  int
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		Customers:     make(map[string]string),
		Sessions:      make(map[string]*CheckoutSession),
		Subscriptions: make(map[string]*Subscription),
		Events:        make(map[string]*Event),
	}
}

func (m *MockGateway) CreateCustomer(_ context.Context, email string, _ map[string]string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateCustomerErr != nil {
		return nil, m.CreateCustomerErr
	}

	m.nextCustomerSeq++
	id := fmt.Sprintf("cus_mock_%d", m.nextCustomerSeq)
	m.Customers[id] = email
	return &Customer{ID: id, Email: email}, nil
}

func (m *MockGateway) CreateCheckoutSession(_ context.Context, params *CheckoutParams) (*CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateSessionErr != nil {
		return nil, m.CreateSessionErr
	}

	m.CheckoutCalls = append(m.CheckoutCalls, params)
	m.nextSessionSeq++
	sess := &CheckoutSession{
		ID:         fmt.Sprintf("cs_mock_%d", m.nextSessionSeq),
		URL:        fmt.Sprintf("https://checkout.mock/pay/%d", m.nextSessionSeq),
		CustomerId: params.CustomerId,
	}
	m.Sessions[sess.ID] = sess
	return sess, nil
}

func (m *MockGateway) GetCheckoutSession(_ context.Context, sessionId string) (*CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetSessionErr != nil {
		return nil, m.GetSessionErr
	}

	sess, ok := m.Sessions[sessionId]
	if !ok {
		return nil, fmt.Errorf("payments: session %s not found", sessionId)
	}
	return sess, nil
}

func (m *MockGateway) GetSubscription(_ context.Context, subscriptionId string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetSubscriptionErr != nil {
		return nil, m.GetSubscriptionErr
	}

	sub, ok := m.Subscriptions[subscriptionId]
	if !ok {
		return nil, fmt.Errorf("payments: subscription %s not found", subscriptionId)
	}
	return sub, nil
}

func (m *MockGateway) CreatePortalSession(_ context.Context, customerId, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PortalErr != nil {
		return "", m.PortalErr
	}

	m.PortalCalls = append(m.PortalCalls, customerId)
	return fmt.Sprintf("https://billing.mock/portal/%s", customerId), nil
}

func (m *MockGateway) VerifyEvent(_ []byte, sigHeader string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	evt, ok := m.Events[sigHeader]
	if !ok {
		return nil, fmt.Errorf("payments: webhook signature verification failed")
	}
	return evt, nil
}
