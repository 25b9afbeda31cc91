package model

import "time"

// Video idea change types.
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

// VideoIdeaEvent describes a change of a video idea. It is pushed to realtime
// subscribers and published on the lifecycle event bus.
type VideoIdeaEvent struct {
	Type           string    `json:"type"`
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Status         string    `json:"status,omitempty"`
	ApprovalStatus string    `json:"approval_status,omitempty"`
	Phase          string    `json:"phase,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewVideoIdeaEvent builds an event from the current state of an idea.
func NewVideoIdeaEvent(eventType string, v *VideoIdea) VideoIdeaEvent {
	evt := VideoIdeaEvent{
		Type:       eventType,
		ID:         v.ID,
		UserID:     v.UserID,
		Status:     v.Status,
		OccurredAt: time.Now().UTC(),
	}
	if v.ApprovalStatus != nil {
		evt.ApprovalStatus = *v.ApprovalStatus
	}
	return evt
}
