package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical customer identity.
type User struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string     `gorm:"column:password_hash;not null"`
	FirstName       string     `gorm:"column:first_name;not null"`
	LastName        string     `gorm:"column:last_name;not null"`
	Phone           *string    `gorm:"column:phone"`
	IsEmailVerified bool       `gorm:"column:is_email_verified;not null;default:false"`
	IsAdmin         bool       `gorm:"column:is_admin;not null;default:false"`
	LastLoginAt     *time.Time `gorm:"column:last_login_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the name parts for invoices and emails.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// BeforeCreate assigns an id when the database default is unavailable
// (sqlite in tests).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
