package models

import "time"

// User identifies a person by email. Rows are created lazily the first time an
// email shows up in a registration, invitation, or task assignment, so the
// password hash is empty until the user registers explicitly.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	FullName string `json:"full_name"`
	Password string `gorm:"column:password_hash" json:"-"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Groups []Group `gorm:"many2many:group_members;" json:"groups,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// HasCredentials reports whether the user completed registration with a password.
func (u *User) HasCredentials() bool {
	return u.Password != ""
}
