package queue

import "context"

type Consumer interface {
	Start(ctx context.Context) error
}

type Publisher interface {
	Publish(ctx context.Context, payload []byte, routingKey string) error
}

// Event is the JSON body carried on the domain-events exchange. The routing
// key is "<prefix>.<kind>".
type Event struct {
	UserID     string `json:"user_id"`
	SenderID   string `json:"sender_id"`
	ObjectType string `json:"object_type"`
	ObjectID   string `json:"object_id"`
	Message    string `json:"message"`
	Kind       string `json:"kind"`
}

func RoutingKey(prefix, kind string) string {
	if prefix == "" {
		return kind
	}
	return prefix + "." + kind
}
