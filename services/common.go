package services

import (
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

func StrPointer(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

// FormatWon renders an amount the way the checkout modal shows it, e.g. ₩100,000.
func FormatWon(amount int64) string {
	return message.NewPrinter(language.Korean).Sprintf("₩%d", amount)
}
