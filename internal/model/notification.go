package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SenderID   string    `json:"sender_id"`
	ObjectType string    `json:"object_type"`
	ObjectID   string    `json:"object_id"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DedupKey identifies semantically identical notifications. The rendered
// message is part of the key so that a changed text produces a fresh row.
type DedupKey struct {
	UserID     string
	SenderID   string
	ObjectType string
	ObjectID   string
	Message    string
}

func (n Notification) Key() DedupKey {
	return DedupKey{
		UserID:     n.UserID,
		SenderID:   n.SenderID,
		ObjectType: n.ObjectType,
		ObjectID:   n.ObjectID,
		Message:    n.Message,
	}
}

// Hash returns a fixed-width digest of the key, suitable for a unique index.
func (k DedupKey) Hash() string {
	h := sha256.New()
	for _, part := range []string{k.UserID, k.SenderID, k.ObjectType, k.ObjectID, k.Message} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
