// Package notify defines the system-notification contract shared by the
// assignment, review and payment services. The messaging module provides the
// implementation; services receive it as an explicit constructor dependency.
package notify

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Event names recorded in system-message metadata.
const (
	EventAssignmentCreated   = "assignment.created"
	EventAssignmentCompleted = "assignment.completed"
	EventAssignmentAccepted  = "assignment.accepted"
	EventReviewSubmitted     = "review.submitted"
	EventPaymentReceived     = "payment.received"
)

// Dispatcher posts a system message into the conversation already scoped to
// the given assignment. Implementations fail closed when no conversation
// exists and must never block the caller's primary state change.
type Dispatcher interface {
	SystemMessage(ctx context.Context, assignmentID snowflake.ID, text string, metadata map[string]any) error
}
