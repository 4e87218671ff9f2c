package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SecurityAction string

const (
	LoginSuccess        SecurityAction = "login_success"
	LoginFailed         SecurityAction = "login_failed"
	CodeIssued          SecurityAction = "code_issued"
	PasswordChanged     SecurityAction = "password_changed"
	AccountDeactivated  SecurityAction = "account_deactivated"
	AccountReactivated  SecurityAction = "account_reactivated"
	AccountDeleted      SecurityAction = "account_deleted"
	EmailChanged        SecurityAction = "email_changed"
	RoleChanged         SecurityAction = "role_changed"
	ProfileImageChanged SecurityAction = "profile_image_changed"
)

// SecurityLog rows outlive the user they reference, so UserID is kept
// without a foreign key.
type SecurityLog struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID    *uuid.UUID     `gorm:"type:uuid;index"`
	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:varchar(32);not null;index"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
