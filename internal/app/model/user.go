package model

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`                          // user ID
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`  // display name, at least 3 characters
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`    // login identifier
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`    // bcrypt digest
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
