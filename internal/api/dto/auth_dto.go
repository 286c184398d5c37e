package dto

import "github.com/travel-desk/itinerary-service/internal/domain"

// LoginRequest payload for POST /auth/login/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest payload for POST /auth/register/.
type RegisterRequest struct {
	Username        *string `json:"username"`
	Email           string  `json:"email"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

// LogoutRequest payload for POST /auth/logout/.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest payload for POST /auth/token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the new access token.
type RefreshResponse struct {
	Access string `json:"access"`
}

// UserSummary is the public view of an identity.
type UserSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	User         UserSummary `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewUserSummary maps an identity for output.
func NewUserSummary(identity *domain.Identity) UserSummary {
	if identity == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:        identity.ID,
		Username:  identity.Username,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		IsActive:  identity.IsActive,
	}
}

// NewAuthResponse maps a login or registration result.
func NewAuthResponse(identity *domain.Identity, tokens domain.TokenPair) AuthResponse {
	return AuthResponse{
		User:         NewUserSummary(identity),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
}
