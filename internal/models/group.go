package models

import "time"

// Group is a collection of users working on the same set of tasks. Invitations
// and tasks belong to their group and are removed with it.
type Group struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	Members     []User       `gorm:"many2many:group_members;" json:"members,omitempty"`
	Invitations []Invitation `gorm:"foreignKey:GroupID" json:"invitations,omitempty"`
	Tasks       []Task       `gorm:"foreignKey:GroupID" json:"tasks,omitempty"`
}

// Membership roles stored on the group_members join row.
const (
	GroupRoleOwner  = "owner"
	GroupRoleMember = "member"
)

// GroupMember is the join row behind the Group.Members association. The role
// column records who created the group instead of relying on insertion order.
type GroupMember struct {
	GroupID   string    `gorm:"primaryKey;type:uuid" json:"group_id"`
	UserID    string    `gorm:"primaryKey;type:uuid" json:"user_id"`
	Role      string    `gorm:"type:varchar(32);not null;default:'member'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
