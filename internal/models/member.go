package models

// Member is a contact-directory entry managed by a registered user. It is
// unrelated to group membership; the directory is a standalone CRUD surface.
type Member struct {
	BaseModel

	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"not null;index" json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
