package domain

import "encoding/json"

const (
	MessageTypeNotifications = "notifications"
	MessageTypeTask          = ObjectTypeTask
	MessageTypeEvent         = ObjectTypeEvent
)

// Envelope is the wire shape of every push frame. Count is always the absolute
// unread count, never a delta.
type Envelope struct {
	Type  string `json:"type"`
	Msg   string `json:"msg,omitempty"`
	Count int    `json:"count"`
}

// Message is the closed set of frames pushed to live connections.
type Message interface {
	Envelope() Envelope
	sealed()
}

// WelcomeMessage is sent once right after a connection is admitted.
type WelcomeMessage struct {
	Count int
}

// CountMessage refreshes the badge without any event context.
type CountMessage struct {
	Count int
}

type AssignmentMessage struct {
	ObjectType string
	Count      int
}

type UnassignmentMessage struct {
	ObjectType string
	Count      int
}

type InvitationMessage struct {
	Count int
}

func (m WelcomeMessage) Envelope() Envelope {
	return Envelope{Type: MessageTypeNotifications, Count: m.Count}
}

func (m CountMessage) Envelope() Envelope {
	return Envelope{Type: MessageTypeNotifications, Count: m.Count}
}

func (m AssignmentMessage) Envelope() Envelope {
	return Envelope{Type: m.ObjectType, Msg: EventKindAssign, Count: m.Count}
}

func (m UnassignmentMessage) Envelope() Envelope {
	return Envelope{Type: m.ObjectType, Msg: EventKindUnassign, Count: m.Count}
}

func (m InvitationMessage) Envelope() Envelope {
	return Envelope{Type: MessageTypeNotifications, Count: m.Count}
}

func (WelcomeMessage) sealed()      {}
func (CountMessage) sealed()        {}
func (AssignmentMessage) sealed()   {}
func (UnassignmentMessage) sealed() {}
func (InvitationMessage) sealed()   {}

// MessageForKind builds the push frame that follows a notification of the given kind.
func MessageForKind(kind, objectType string, count int) (Message, error) {
	switch kind {
	case EventKindAssign:
		return AssignmentMessage{ObjectType: objectType, Count: count}, nil
	case EventKindUnassign:
		return UnassignmentMessage{ObjectType: objectType, Count: count}, nil
	case EventKindInvite:
		return InvitationMessage{Count: count}, nil
	default:
		return nil, ErrInvalidEventKind
	}
}

func Encode(m Message) ([]byte, error) {
	return json.Marshal(m.Envelope())
}
