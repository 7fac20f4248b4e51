package auth

import (
	"github.com/google/uuid"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the public slice of a user returned after login.
type UserSummary struct {
	ID       uuid.UUID                `json:"id"`
	Email    string                   `json:"email"`
	Name     string                   `json:"name"`
	Role     enums.UserRole           `json:"role"`
	Approval enums.UserApprovalStatus `json:"approval_status"`
}

// LoginResponse carries the bearer token and the authenticated user.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	User        UserSummary `json:"user"`
}

func userSummary(user *models.User) UserSummary {
	return UserSummary{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
		Approval: user.Approval,
	}
}
