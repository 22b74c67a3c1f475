package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  SubscriptionStatus
	}{
		{"active passes through", "active", SubscriptionStatusActive},
		{"trialing passes through", "trialing", SubscriptionStatusTrialing},
		{"past_due passes through", "past_due", SubscriptionStatusPastDue},
		{"canceled passes through", "canceled", SubscriptionStatusCanceled},
		{"unpaid passes through", "unpaid", SubscriptionStatusUnpaid},
		{"incomplete passes through", "incomplete", SubscriptionStatusIncomplete},
		{"incomplete_expired collapses to canceled", "incomplete_expired", SubscriptionStatusCanceled},
		{"paused collapses to past_due", "paused", SubscriptionStatusPastDue},
		{"unknown value becomes none", "some_future_status", SubscriptionStatusNone},
		{"empty value becomes none", "", SubscriptionStatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.input))
		})
	}
}

func TestGrantsAccess(t *testing.T) {
	granting := []SubscriptionStatus{
		SubscriptionStatusActive,
		SubscriptionStatusTrialing,
		SubscriptionStatusPastDue,
	}
	denying := []SubscriptionStatus{
		SubscriptionStatusNone,
		SubscriptionStatusIncomplete,
		SubscriptionStatusCanceled,
		SubscriptionStatusUnpaid,
	}

	for _, s := range granting {
		assert.True(t, s.GrantsAccess(), "expected %s to grant access", s)
	}
	for _, s := range denying {
		assert.False(t, s.GrantsAccess(), "expected %s to deny access", s)
	}
}

func TestSubscriptionHasAccess(t *testing.T) {
	sub := &Subscription{Status: SubscriptionStatusActive}
	assert.True(t, sub.HasAccess())

	sub.Status = SubscriptionStatusCanceled
	assert.False(t, sub.HasAccess())
}
