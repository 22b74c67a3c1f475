package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Billing *SubscriptionStatusResponse `json:"billing,omitempty"`
}

type UpdateProfileRequest struct {
	FullName  string  `json:"full_name" validate:"required,min=1,max=255"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}
