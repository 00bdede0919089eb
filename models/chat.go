package models

import "time"

type UserRole string

const (
	RoleBrand   UserRole = "brand"
	RoleCreator UserRole = "creator"
)

type Sender struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

type ChatMessage struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	Message        string    `json:"message"`
	AttachmentURL  *string   `json:"attachment_url,omitempty"`
	AttachmentName *string   `json:"attachment_name,omitempty"`
	AttachmentSize *int64    `json:"attachment_size,omitempty"`
	IsRead         bool      `json:"is_read"`
	Sender         Sender    `json:"sender"`
	CreatedAt      time.Time `json:"created_at"`
	// set only on locally echoed messages that the API has not confirmed yet
	Pending bool `json:"pending,omitempty"`
}

type Attachment struct {
	Name    string
	Content []byte
}

type ChatStats struct {
	UnreadCount int `json:"unread_count"`
}
