package models

import "time"

// Task status values mirror the simple string progression of the task board.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task is a unit of work scoped to a group. The assignee is referenced by
// email only; the matching user row is created on first touch and the email
// does not have to belong to a group member.
type Task struct {
	BaseModel

	Title         string     `gorm:"not null" json:"title"`
	Description   string     `json:"description"`
	GroupID       string     `gorm:"type:uuid;not null;index" json:"group_id"`
	AssigneeEmail *string    `gorm:"index" json:"assignee_email,omitempty"`
	Status        string     `gorm:"type:varchar(32);not null;default:'todo'" json:"status"`
	DueDate       *time.Time `json:"due_date,omitempty"`

	Group *Group `gorm:"constraint:OnDelete:CASCADE" json:"group,omitempty"`
}
