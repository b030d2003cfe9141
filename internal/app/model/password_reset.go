package model

import (
	"time"
)

// PasswordResetToken records an issued reset token. Token holds the SHA-256
// digest of the token string, never the token itself.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Token     string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// IsRedeemableAt reports whether the record can still be used at now.
func (t *PasswordResetToken) IsRedeemableAt(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
