package services

import (
	"context"

	"modelhubweb/models"
)

type BookingServiceProvider interface {
	GetRecommendations(ctx context.Context, concept string, images []string) (*models.MatchingResponse, error)
	CreateOrder(ctx context.Context, in models.CreateOrderIn) (*models.OrderCreated, error)
	CreatePayment(ctx context.Context, in models.CreatePaymentIn) (*models.PaymentOut, error)
}

type BookingService struct {
	API *APIClient
}

func (s *BookingService) GetRecommendations(ctx context.Context, concept string, images []string) (*models.MatchingResponse, error) {
	if images == nil {
		images = []string{}
	}
	var out models.MatchingResponse
	err := s.API.Post(ctx, "/api/matching/recommend", models.MatchingRequest{
		ConceptDescription: concept,
		ReferenceImages:    images,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *BookingService) CreateOrder(ctx context.Context, in models.CreateOrderIn) (*models.OrderCreated, error) {
	var out models.OrderCreated
	if err := s.API.Post(ctx, "/api/orders", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *BookingService) CreatePayment(ctx context.Context, in models.CreatePaymentIn) (*models.PaymentOut, error) {
	var out models.PaymentOut
	if err := s.API.Post(ctx, "/api/payments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
