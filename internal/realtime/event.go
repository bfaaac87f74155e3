// Package realtime provides the per-activity publish/subscribe broadcaster
// used to push capacity and membership changes to connected observers.
package realtime

// EventType identifies the kind of realtime event.
type EventType string

const (
	// EventSlotsChanged is emitted whenever an activity's available slot
	// count changes (register, withdraw, remove, ban).
	EventSlotsChanged EventType = "slotsChanged"
	// EventMembershipChanged is emitted on organizer decisions that change
	// who belongs to an activity (approve, reject, remove, ban, unban).
	EventMembershipChanged EventType = "membershipChanged"
)

// MembershipKind distinguishes the organizer decision behind a
// membershipChanged event.
type MembershipKind string

const (
	MembershipApproved MembershipKind = "approved"
	MembershipRejected MembershipKind = "rejected"
	MembershipRemoved  MembershipKind = "removed"
	MembershipBanned   MembershipKind = "banned"
	MembershipUnbanned MembershipKind = "unbanned"
)

// Event is a single broadcast message scoped to one activity channel.
type Event struct {
	Type       EventType   `json:"type"`
	ActivityID string      `json:"activity_id"`
	Data       interface{} `json:"data"`
}

// SlotsChangedData carries the capacity snapshot taken by the mutation that
// triggered the event. Remaining and Capacity are nil for unlimited
// activities.
type SlotsChangedData struct {
	Remaining *int `json:"remaining,omitempty"`
	Capacity  *int `json:"capacity,omitempty"`
	Unlimited bool `json:"unlimited"`
}

// MembershipChangedData carries the decision kind and the affected subject.
type MembershipChangedData struct {
	Kind      MembershipKind `json:"kind"`
	SubjectID string         `json:"subject_id"`
}

// NewSlotsChanged builds a slotsChanged event for an activity.
func NewSlotsChanged(activityID string, remaining, capacity *int) Event {
	return Event{
		Type:       EventSlotsChanged,
		ActivityID: activityID,
		Data: SlotsChangedData{
			Remaining: remaining,
			Capacity:  capacity,
			Unlimited: capacity == nil,
		},
	}
}

// NewMembershipChanged builds a membershipChanged event for an activity.
func NewMembershipChanged(activityID string, kind MembershipKind, subjectID string) Event {
	return Event{
		Type:       EventMembershipChanged,
		ActivityID: activityID,
		Data: MembershipChangedData{
			Kind:      kind,
			SubjectID: subjectID,
		},
	}
}
