// Package domain contains review and rating models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ReviewType names which party is being reviewed.
type ReviewType string

const (
	// TypeContractorReview is a client's review of the contractor.
	TypeContractorReview ReviewType = "CONTRACTOR_REVIEW"
	// TypeClientReview is a contractor's review of the client.
	TypeClientReview ReviewType = "CLIENT_REVIEW"
)

// Review is one party's rating and feedback on the other for an assignment.
// Uniqueness per (assignment, reviewer, type) is approximated by
// update-or-create in the service, not a database constraint.
type Review struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	AssignmentID snowflake.ID `json:"assignment_id" gorm:"not null;index"`
	ReviewerID   snowflake.ID `json:"reviewer_id" gorm:"not null;index"`
	RevieweeID   snowflake.ID `json:"reviewee_id" gorm:"not null;index"`
	Rating       int          `json:"rating" gorm:"not null"`
	Description  string       `json:"description" gorm:"type:text"`
	Type         ReviewType   `json:"type" gorm:"type:text;not null"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Review) TableName() string { return "reviews" }
