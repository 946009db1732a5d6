package account

import (
	"time"

	"github.com/clinicdesk/frontdesk/internal/platform/auth"
)

// Account maps to the users table.
type Account struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	Name           string    `db:"name" json:"name"`
	Position       string    `db:"position" json:"position"`
	Phone          *string   `db:"phone" json:"phone"`
	TelegramID     *string   `db:"telegram_id" json:"telegram_id"`
	Email          *string   `db:"email" json:"email"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	IsAdmin        bool      `db:"is_admin" json:"is_admin"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

func (a *Account) Identity() *auth.Identity {
	return &auth.Identity{UserID: a.ID, Username: a.Username, Name: a.Name, IsAdmin: a.IsAdmin}
}

// AccountInput is the body of registration, admin create and admin update.
type AccountInput struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	Name       string  `json:"name"`
	Position   string  `json:"position"`
	Phone      *string `json:"phone"`
	TelegramID *string `json:"telegram_id"`
	Email      *string `json:"email"`
	IsAdmin    bool    `json:"is_admin"`
}

// ProfileInput is what an account may change about itself.
type ProfileInput struct {
	Name       string  `json:"name"`
	Position   string  `json:"position"`
	Phone      *string `json:"phone"`
	TelegramID *string `json:"telegram_id"`
	Email      *string `json:"email"`
}

type Credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
