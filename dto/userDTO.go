package dto

import (
	"storefront/model"
	"time"
)

type UserResponse struct {
	UserID    string `json:"uid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func NewUserResponse(p model.UserProfile) UserResponse {
	resp := UserResponse{
		UserID: p.UID,
		Name:   p.Name,
		Email:  p.Email,
		Phone:  p.Phone,
		Role:   p.Role,
	}
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// AccountSummary is what the account page renders for a live session.
type AccountSummary struct {
	Authenticated bool          `json:"authenticated"`
	Profile       *UserResponse `json:"profile,omitempty"`
}
