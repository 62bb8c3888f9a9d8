package dto

import "notify_hub/internal/model"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NotifyRequest addresses a notice to UserID. The sender is always the
// authenticated caller.
type NotifyRequest struct {
	UserID     string `json:"user_id"`
	ObjectType string `json:"object_type"`
	ObjectID   string `json:"object_id"`
	Message    string `json:"message"`
	Kind       string `json:"kind"`
}

type NotifyResponse struct {
	Outcome      string              `json:"outcome"`
	Notification *model.Notification `json:"notification,omitempty"`
}

type RespondRequest struct {
	IsRead *bool `json:"is_read"`
}

type ListResponse struct {
	Notifications []model.Notification `json:"notifications"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

type CountResponse struct {
	UnreadCount int `json:"unread_count"`
}
