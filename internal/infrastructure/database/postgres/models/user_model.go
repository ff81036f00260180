package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel represents the database model for User
type UserModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	HashedPassword string    `gorm:"type:varchar(255);not null"`
	Role           string    `gorm:"type:varchar(50);not null;default:'standard'"`
	IsActive       bool      `gorm:"default:true;not null"`
	IsVerified     bool      `gorm:"default:false;not null"`

	VerificationToken        *string    `gorm:"type:varchar(255);index"`
	VerificationTokenExpires *time.Time `gorm:"type:timestamp"`
	ResetToken               *string    `gorm:"type:varchar(255);index"`
	ResetTokenExpires        *time.Time `gorm:"type:timestamp"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
