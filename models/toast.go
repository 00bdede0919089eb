package models

import "time"

type ToastVariant string

const (
	ToastSuccess ToastVariant = "success"
	ToastError   ToastVariant = "error"
	ToastInfo    ToastVariant = "info"
)

type Toast struct {
	ID       string        `json:"id"`
	Variant  ToastVariant  `json:"variant"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
}
