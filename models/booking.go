package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

const (
	MaxConceptLength   = 500
	MaxReferenceImages = 3
)

// ConceptDraft is the brief collected on the first wizard step.
type ConceptDraft struct {
	Concept         string   `json:"concept"`
	ReferenceImages []string `json:"reference_images"`
}

type ModelSummary struct {
	ID           string   `json:"id"`
	CreatorID    string   `json:"creator_id"`
	Name         string   `json:"name"`
	Description  *string  `json:"description,omitempty"`
	Style        string   `json:"style"`
	Gender       string   `json:"gender"`
	AgeRange     string   `json:"age_range"`
	ViewCount    int      `json:"view_count"`
	Rating       float64  `json:"rating"`
	Status       string   `json:"status"`
	ThumbnailURL *string  `json:"thumbnail_url"`
	Tags         []string `json:"tags"`
}

type Recommendation struct {
	Model ModelSummary `json:"model"`
	// 0-100
	Score float64 `json:"score"`
}

type MatchingRequest struct {
	ConceptDescription string   `json:"concept_description"`
	ReferenceImages    []string `json:"reference_images"`
}

type MatchingResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

type PackageType string

const (
	PackageStandard  PackageType = "standard"
	PackagePremium   PackageType = "premium"
	PackageExclusive PackageType = "exclusive"
)

type PackageOption struct {
	Type            PackageType `json:"type"`
	Name            string      `json:"name"`
	ImageCount      int         `json:"image_count"`
	Price           int64       `json:"price"`
	IsExclusive     bool        `json:"is_exclusive"`
	ExclusiveMonths *int        `json:"exclusive_months,omitempty"`
	Description     string      `json:"description"`
}

var exclusiveMonths = 3

var packageCatalog = []PackageOption{
	{Type: PackageStandard, Name: "Standard", ImageCount: 3, Price: 50000, Description: "기본 3장"},
	{Type: PackagePremium, Name: "Premium", ImageCount: 5, Price: 100000, Description: "프리미엄 5장"},
	{Type: PackageExclusive, Name: "Exclusive", ImageCount: 10, Price: 200000, IsExclusive: true, ExclusiveMonths: &exclusiveMonths, Description: "독점 10장 (3개월)"},
}

// Packages returns a copy of the package tiers offered on the last wizard step.
func Packages() []PackageOption {
	out := make([]PackageOption, len(packageCatalog))
	copy(out, packageCatalog)
	return out
}

func FindPackage(t PackageType) (PackageOption, bool) {
	for _, p := range packageCatalog {
		if p.Type == t {
			return p, true
		}
	}
	return PackageOption{}, false
}

var packageTypePattern = regexp.MustCompile("^(standard|premium|exclusive)$")

func ValidatePackageType(fl validator.FieldLevel) bool {
	return packageTypePattern.MatchString(fl.Field().String())
}

func ValidatePackageTypeRaw(value string) bool {
	return packageTypePattern.MatchString(value)
}

type CreateOrderIn struct {
	ModelID            string      `json:"model_id"`
	CreatorID          string      `json:"creator_id"`
	ConceptDescription string      `json:"concept_description"`
	PackageType        PackageType `json:"package_type"`
	ImageCount         int         `json:"image_count"`
	TotalPrice         int64       `json:"total_price"`
	IsExclusive        bool        `json:"is_exclusive"`
	ExclusiveMonths    *int        `json:"exclusive_months,omitempty"`
}

type OrderCreated struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	TotalPrice  int64  `json:"total_price"`
	Status      string `json:"status"`
}

type CreatePaymentIn struct {
	OrderID       string `json:"order_id"`
	PaymentMethod string `json:"payment_method"`
	Amount        int64  `json:"amount"`
}

type PaymentOut struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}
