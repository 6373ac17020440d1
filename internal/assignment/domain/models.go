// Package domain contains the task-assignment state machine models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the fixed assignment-state enumeration. Transitions are forward
// only: OPEN -> IN_PROGRESS -> COMPLETED -> ACCEPTED.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusAccepted   Status = "ACCEPTED"
)

var statusOrder = map[Status]int{
	StatusOpen:       0,
	StatusInProgress: 1,
	StatusCompleted:  2,
	StatusAccepted:   3,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next advances the state
// machine by exactly one step.
func (s Status) CanTransitionTo(next Status) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to == from+1
}

// TaskAssignment links one task to one contractor engagement.
type TaskAssignment struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	TaskID       snowflake.ID `json:"task_id" gorm:"not null;index"`
	ClientID     snowflake.ID `json:"client_id" gorm:"not null;index"`
	ContractorID snowflake.ID `json:"contractor_id" gorm:"not null;index"`
	Status       Status       `json:"status" gorm:"type:text;not null;default:'IN_PROGRESS'"`
	CompletedAt  *time.Time   `json:"completed_at"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TaskAssignment) TableName() string { return "task_assignments" }
