package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"modelhubweb/models"
)

type ModelServiceProvider interface {
	ListModels(ctx context.Context, q models.ModelsQuery) (*models.ModelsPage, error)
	GetModel(ctx context.Context, modelID string) (*models.AIModel, error)
	RecordView(ctx context.Context, modelID string) error
}

// CreatorModelServiceProvider adds registration calls for the creator's own models.
type CreatorModelServiceProvider interface {
	ModelServiceProvider
	CreateModel(ctx context.Context, in models.ModelCreateIn) (*models.AIModel, error)
	AddModelImage(ctx context.Context, modelID string, in models.ModelImageIn) (*models.ModelImage, error)
}

type FavoriteServiceProvider interface {
	GetFavorites(ctx context.Context) (*models.FavoritesPage, error)
	AddFavorite(ctx context.Context, modelID string) (*models.Favorite, error)
	RemoveFavorite(ctx context.Context, modelID string) error
}

type ModelService struct {
	API *APIClient
}

func modelsQueryValues(q models.ModelsQuery) url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("style", q.Style)
	set("gender", q.Gender)
	set("age_range", q.AgeRange)
	set("keyword", q.Keyword)
	set("sort", string(q.Sort))
	set("creator_id", q.CreatorID)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (s *ModelService) ListModels(ctx context.Context, q models.ModelsQuery) (*models.ModelsPage, error) {
	var out models.ModelsPage
	if err := s.API.Get(ctx, "/api/models", modelsQueryValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ModelService) GetModel(ctx context.Context, modelID string) (*models.AIModel, error) {
	var out models.AIModel
	if err := s.API.Get(ctx, fmt.Sprintf("/api/models/%s", url.PathEscape(modelID)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ModelService) RecordView(ctx context.Context, modelID string) error {
	return s.API.Post(ctx, fmt.Sprintf("/api/models/%s/view", url.PathEscape(modelID)), nil, nil)
}

func (s *ModelService) CreateModel(ctx context.Context, in models.ModelCreateIn) (*models.AIModel, error) {
	var out models.AIModel
	if err := s.API.Post(ctx, "/api/models", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ModelService) AddModelImage(ctx context.Context, modelID string, in models.ModelImageIn) (*models.ModelImage, error) {
	var out models.ModelImage
	if err := s.API.Post(ctx, fmt.Sprintf("/api/models/%s/images", url.PathEscape(modelID)), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type FavoriteService struct {
	API *APIClient
}

func (s *FavoriteService) GetFavorites(ctx context.Context) (*models.FavoritesPage, error) {
	var out models.FavoritesPage
	if err := s.API.Get(ctx, "/api/favorites", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *FavoriteService) AddFavorite(ctx context.Context, modelID string) (*models.Favorite, error) {
	var out models.Favorite
	if err := s.API.Post(ctx, "/api/favorites", models.FavoriteIn{ModelID: modelID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *FavoriteService) RemoveFavorite(ctx context.Context, modelID string) error {
	return s.API.Delete(ctx, "/api/favorites/"+url.PathEscape(modelID))
}

type StatsServiceProvider interface {
	GetPlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

type StatsService struct {
	API *APIClient
}

func (s *StatsService) GetPlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var out models.PlatformStats
	if err := s.API.Get(ctx, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
