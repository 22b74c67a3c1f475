package dto

import "time"

type PlanResponse struct {
	Slug            string `json:"slug"`
	Name            string `json:"name"`
	PriceId         string `json:"price_id"`
	TrialPeriodDays int64  `json:"trial_period_days"`
	Description     string `json:"description"`
}

type CheckoutRequest struct {
	PriceId string `json:"price_id" validate:"required"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type SyncRequest struct {
	SessionId string `json:"session_id" validate:"required"`
}

type SyncResponse struct {
	Ok     bool   `json:"ok"`
	Status string `json:"status"`
}

type PortalResponse struct {
	URL string `json:"url"`
}

type SubscriptionStatusResponse struct {
	Status           string     `json:"status"`
	HasAccess        bool       `json:"has_access"`
	PriceId          string     `json:"price_id,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

type AwaitAccessResponse struct {
	Granted bool   `json:"granted"`
	Status  string `json:"status"`
}
