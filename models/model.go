package models

import (
	"encoding/json"
	"time"
)

type ModelImage struct {
	ID           string    `json:"id"`
	ModelID      string    `json:"model_id"`
	ImageURL     string    `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
}

type ModelCreator struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

type AIModel struct {
	ID           string        `json:"id"`
	CreatorID    string        `json:"creator_id"`
	Name         string        `json:"name"`
	Description  *string       `json:"description"`
	Style        *string       `json:"style"`
	Gender       *string       `json:"gender"`
	AgeRange     *string       `json:"age_range"`
	ViewCount    int           `json:"view_count"`
	Rating       *float64      `json:"rating"`
	Status       string        `json:"status"`
	ThumbnailURL *string       `json:"thumbnail_url"`
	Tags         []string      `json:"tags"`
	Images       []ModelImage  `json:"images"`
	Creator      *ModelCreator `json:"creator,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type SortKey string

const (
	SortRecent  SortKey = "recent"
	SortPopular SortKey = "popular"
	SortRating  SortKey = "rating"
)

// ModelsQuery is the full explore tuple; two equal queries must hit the same cache entry.
type ModelsQuery struct {
	Style     string  `json:"style" query:"style"`
	Gender    string  `json:"gender" query:"gender" validate:"omitempty,oneof=male female other"`
	AgeRange  string  `json:"age_range" query:"age_range"`
	Keyword   string  `json:"keyword" query:"keyword" validate:"max=100"`
	Sort      SortKey `json:"sort" query:"sort" validate:"omitempty,oneof=recent popular rating"`
	Page      int     `json:"page" query:"page"`
	Limit     int     `json:"limit" query:"limit"`
	CreatorID string  `json:"creator_id,omitempty" query:"creator_id"`
}

// CacheKey encodes the whole tuple; ParseModelsQueryKey reverses it.
func (q ModelsQuery) CacheKey() string {
	b, _ := json.Marshal(q)
	return string(b)
}

func ParseModelsQueryKey(key string) (ModelsQuery, error) {
	var q ModelsQuery
	err := json.Unmarshal([]byte(key), &q)
	return q, err
}

type ModelsPage struct {
	Items []AIModel `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

type Favorite struct {
	ID           string    `json:"id"`
	ModelID      string    `json:"model_id"`
	ModelName    string    `json:"model_name"`
	CreatorName  string    `json:"creator_name"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type FavoritesPage struct {
	Items []Favorite `json:"items"`
	Total int        `json:"total"`
}

type FavoriteIn struct {
	ModelID string `json:"model_id"`
}

// ModelCreateIn registers a new model; form tags bind the creator's multipart upload.
type ModelCreateIn struct {
	Name        string   `json:"name" form:"name" validate:"required,max=100"`
	Description string   `json:"description,omitempty" form:"description" validate:"max=1000"`
	Style       string   `json:"style" form:"style" validate:"required,oneof=casual formal sporty vintage"`
	Gender      string   `json:"gender" form:"gender" validate:"required,oneof=male female neutral"`
	AgeRange    string   `json:"age_range" form:"age_range" validate:"required,oneof=10s 20s 30s 40s+"`
	Tags        []string `json:"tags" form:"tags" validate:"max=10,dive,required,max=30"`
	Status      string   `json:"status" form:"status" validate:"required,oneof=draft active"`
}

type ModelImageIn struct {
	FileURL      string `json:"file_url"`
	DisplayOrder int    `json:"display_order"`
	IsThumbnail  bool   `json:"is_thumbnail"`
}

type PlatformStats struct {
	TotalModels   int `json:"total_models"`
	TotalBookings int `json:"total_bookings"`
	TotalBrands   int `json:"total_brands"`
}
