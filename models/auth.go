package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrentUser is built from the bearer token claims. Token is the raw JWT,
// forwarded as-is to the marketplace API.
type CurrentUser struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
	Token string   `json:"-"`
}

func (u CurrentUser) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func (u CurrentUser) Sender() Sender {
	return Sender{ID: u.ID, Name: u.DisplayName(), Role: u.Role}
}

// OrderIncident records an order that was created upstream while its payment failed.
// Nothing compensates it automatically; rows are for operators to reconcile.
type OrderIncident struct {
	JsonModel
	OrderID     string `gorm:"index" json:"order_id"`
	OrderNumber string `json:"order_number"`
	Amount      int64  `json:"amount"`
	UserID      string `gorm:"index" json:"user_id"`
	Reason      string `gorm:"type:text" json:"reason"`
}
