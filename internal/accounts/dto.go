package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
)

// RegisterInput carries the payload for account creation.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// LoginInput carries the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult bundles the minted access token with its metadata.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

// UserDTO is the public projection of a user account.
type UserDTO struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           *string   `json:"phone,omitempty"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToUserDTO maps the model to its public projection.
func ToUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Phone:           user.Phone,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
	}
}
