package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the mutable collection of line items owned by exactly one identity:
// either an authenticated user or an anonymous session token, never both.
// At most one open (is_paid=false) cart exists per owner, enforced by partial
// unique indexes at the storage layer.
type Cart struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       *uuid.UUID `gorm:"column:user_id;type:uuid"`
	User         *User      `gorm:"foreignKey:UserID"`
	SessionToken *string    `gorm:"column:session_token"`
	IsPaid       bool       `gorm:"column:is_paid;not null;default:false"`
	CouponID     *uuid.UUID `gorm:"column:coupon_id;type:uuid"`
	Coupon       *Coupon    `gorm:"foreignKey:CouponID"`
	Items        []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// OwnedByUser reports whether the cart belongs to the given user.
func (c *Cart) OwnedByUser(userID uuid.UUID) bool {
	return c != nil && c.UserID != nil && *c.UserID == userID
}

// OwnedBySession reports whether the cart belongs to the given anonymous
// session token.
func (c *Cart) OwnedBySession(token string) bool {
	return c != nil && token != "" && c.SessionToken != nil && *c.SessionToken == token
}
