package models

import "time"

// Invitation status values. The lifecycle is monotonic: pending -> accepted.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
)

// Invitation is a single-use offer to join a group, addressed to an email that
// may not belong to a registered user yet. Only the SHA-256 of the token is
// stored; the raw token travels in the invite email.
type Invitation struct {
	BaseModel

	GroupID    string     `gorm:"type:uuid;not null;index" json:"group_id"`
	Email      string     `gorm:"not null;index" json:"email"`
	Status     string     `gorm:"type:varchar(32);not null;default:'pending'" json:"status"`
	TokenHash  string     `gorm:"uniqueIndex;not null" json:"-"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`

	Group *Group `gorm:"constraint:OnDelete:CASCADE" json:"group,omitempty"`
}

// Accepted reports whether the invitation has been redeemed.
func (i *Invitation) Accepted() bool {
	return i.Status == InvitationStatusAccepted
}
