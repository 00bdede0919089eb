package models

import "time"

type SettlementOrder struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	TotalPrice  int64  `json:"total_price"`
}

// Settlement is a creator payout for a completed order, net of the platform fee.
type Settlement struct {
	ID               string           `json:"id"`
	CreatorID        string           `json:"creator_id"`
	OrderID          string           `json:"order_id"`
	TotalAmount      int64            `json:"total_amount"`
	PlatformFee      int64            `json:"platform_fee"`
	SettlementAmount int64            `json:"settlement_amount"`
	Status           string           `json:"status"`
	CompletedAt      *time.Time       `json:"completed_at"`
	CreatedAt        time.Time        `json:"created_at"`
	Order            *SettlementOrder `json:"order,omitempty"`
}

type SettlementsPage struct {
	Items         []Settlement `json:"items"`
	Total         int          `json:"total"`
	Page          int          `json:"page"`
	Limit         int          `json:"limit"`
	PendingAmount int64        `json:"pending_amount"`
}
