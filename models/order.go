package models

import (
	"regexp"
	"time"

	"github.com/go-playground/validator"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderAccepted   OrderStatus = "accepted"
	OrderRejected   OrderStatus = "rejected"
	OrderInProgress OrderStatus = "in_progress"
	OrderReview     OrderStatus = "review"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderStatusPattern = regexp.MustCompile("^(pending|paid|accepted|rejected|in_progress|review|completed|cancelled)$")

func ValidateOrderStatus(fl validator.FieldLevel) bool {
	return orderStatusPattern.MatchString(fl.Field().String())
}

type OrderModel struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// Order is the detail record shown on the chat header and in the dashboard modal.
type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"order_number"`
	Model           *OrderModel `json:"model,omitempty"`
	ModelName       string      `json:"model_name,omitempty"`
	ModelID         string      `json:"model_id,omitempty"`
	BrandID         string      `json:"brand_id,omitempty"`
	CreatorID       string      `json:"creator_id,omitempty"`
	PackageType     string      `json:"package_type"`
	Status          OrderStatus `json:"status"`
	TotalPrice      int64       `json:"total_price"`
	Description     *string     `json:"description,omitempty"`
	Requirements    *string     `json:"requirements,omitempty"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`
	DeliveryDate    *time.Time  `json:"delivery_date,omitempty"`
	HasChat         bool        `json:"has_chat"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type OrderListItem struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"order_number"`
	ModelName   string      `json:"model_name"`
	ModelID     string      `json:"model_id"`
	PackageType string      `json:"package_type"`
	Status      OrderStatus `json:"status"`
	TotalPrice  int64       `json:"total_price"`
	HasChat     bool        `json:"has_chat"`
	CreatedAt   time.Time   `json:"created_at"`
}

type OrdersPage struct {
	Items   []OrderListItem `json:"items"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

type OrderStatusUpdateIn struct {
	Status          OrderStatus `json:"status" validate:"required,order_status"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`
}

type DeliveryFile struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	FileURL    string    `json:"file_url"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type DeliveryFilesPage struct {
	Items []DeliveryFile `json:"items"`
	Total int            `json:"total"`
}

type DeliveryUploadIn struct {
	OrderID  string   `json:"order_id"`
	FileURLs []string `json:"file_urls"`
	Notes    *string  `json:"notes,omitempty"`
}
