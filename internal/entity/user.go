package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Surname      string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Role         UserRole  `gorm:"type:varchar(16);default:'user';not null"`
	IsActive     bool      `gorm:"not null;default:true"`

	// At most one code is outstanding; issuing a new one replaces it.
	PendingCode   *string `gorm:"type:varchar(16)"`
	PendingCodeAt *time.Time
	PendingEmail  *string `gorm:"type:varchar(255)"`

	ProfileImage *string `gorm:"type:text"`
	Phone        *string `gorm:"type:varchar(32)"`
	Address      *string `gorm:"type:text"`
	Age          *int

	RegisteredAt time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
