package model

import (
	"time"
)

// CallStatus is the lifecycle state of a call log.
type CallStatus string

const (
	CallStatusRinging     CallStatus = "ringing"
	CallStatusAnswered    CallStatus = "answered"
	CallStatusRejected    CallStatus = "rejected"
	CallStatusEnded       CallStatus = "ended"
	CallStatusMissed      CallStatus = "missed"
	CallStatusUnavailable CallStatus = "unavailable"
)

// Call Types
const (
	CallTypeAudio = "audio"
	CallTypeVideo = "video"
)

// IsValidCallType reports whether t is one of the supported call kinds.
func IsValidCallType(t string) bool {
	return t == CallTypeAudio || t == CallTypeVideo
}

// CanTransition reports whether a call log may move from s to next.
// Transitions only go forward: ringing -> {answered, rejected, unavailable, missed},
// answered -> ended, and ringing -> ended for a call hung up before it was answered.
func (s CallStatus) CanTransition(next CallStatus) bool {
	switch s {
	case CallStatusRinging:
		switch next {
		case CallStatusAnswered, CallStatusRejected, CallStatusUnavailable, CallStatusMissed, CallStatusEnded:
			return true
		}
	case CallStatusAnswered:
		return next == CallStatusEnded
	}
	return false
}

// CallLog is the durable record of a single call attempt (stored in DB for call history)
type CallLog struct {
	ID         string     `json:"id" bson:"-"`
	From       string     `json:"from" bson:"from"`         // caller
	To         string     `json:"to" bson:"to"`             // callee
	CallType   string     `json:"callType" bson:"callType"` // "audio" or "video"
	Status     CallStatus `json:"status" bson:"status"`
	StartedAt  time.Time  `json:"startedAt" bson:"startedAt"`
	AnsweredAt *time.Time `json:"answeredAt" bson:"answeredAt"`
	EndedAt    *time.Time `json:"endedAt" bson:"endedAt"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// CallLogFilter selects call logs between two participants.
type CallLogFilter struct {
	From     string
	To       string
	Statuses []CallStatus
	// EitherDirection also matches logs where From and To are swapped.
	EitherDirection bool
}

// CallLogUpdate is a status transition plus the timestamp it stamps.
type CallLogUpdate struct {
	Status     CallStatus
	AnsweredAt *time.Time
	EndedAt    *time.Time
	// Expect applies the update only while the row still has this status.
	// Empty skips the check.
	Expect CallStatus
	// UpdatedAt defaults to the store's clock when zero.
	UpdatedAt time.Time
}
