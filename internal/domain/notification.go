package domain

import "errors"

const (
	ObjectTypeTask       = "task"
	ObjectTypeEvent      = "event"
	ObjectTypeInvitation = "invitation"
)

const (
	EventKindAssign   = "assign"
	EventKindUnassign = "unassign"
	EventKindInvite   = "invite"
)

var (
	ErrInvalidObjectType     = errors.New("invalid object type")
	ErrInvalidEventKind      = errors.New("invalid event kind")
	ErrMissingField          = errors.New("missing required field")
	ErrAuthentication        = errors.New("authentication failed")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrDuplicateNotification = errors.New("duplicate notification")
)

func IsValidObjectType(value string) bool {
	switch value {
	case ObjectTypeTask, ObjectTypeEvent, ObjectTypeInvitation:
		return true
	default:
		return false
	}
}

func IsValidEventKind(value string) bool {
	switch value {
	case EventKindAssign, EventKindUnassign, EventKindInvite:
		return true
	default:
		return false
	}
}

// KindMatchesObject reports whether an event kind can be raised for an object type.
// Assignments concern tasks and events; invites concern invitations only.
func KindMatchesObject(kind, objectType string) bool {
	switch kind {
	case EventKindAssign, EventKindUnassign:
		return objectType == ObjectTypeTask || objectType == ObjectTypeEvent
	case EventKindInvite:
		return objectType == ObjectTypeInvitation
	default:
		return false
	}
}
