package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"modelhubweb/models"
)

type OrderServiceProvider interface {
	ListOrders(ctx context.Context, role models.UserRole, page, perPage int) (*models.OrdersPage, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, in models.OrderStatusUpdateIn) (*models.Order, error)
	GetDeliveryFiles(ctx context.Context, orderID string) (*models.DeliveryFilesPage, error)
	UploadDelivery(ctx context.Context, in models.DeliveryUploadIn) error
	GetSettlements(ctx context.Context) (*models.SettlementsPage, error)
}

type OrderService struct {
	API *APIClient
}

func orderPath(orderID string) string {
	return fmt.Sprintf("/api/orders/%s", url.PathEscape(orderID))
}

func getOrder(ctx context.Context, api *APIClient, orderID string) (*models.Order, error) {
	var out models.Order
	if err := api.Get(ctx, orderPath(orderID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func getDeliveryFiles(ctx context.Context, api *APIClient, orderID string) (*models.DeliveryFilesPage, error) {
	var out models.DeliveryFilesPage
	if err := api.Get(ctx, "/api/delivery/"+url.PathEscape(orderID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *OrderService) ListOrders(ctx context.Context, role models.UserRole, page, perPage int) (*models.OrdersPage, error) {
	query := url.Values{}
	query.Set("role", string(role))
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	var out models.OrdersPage
	if err := s.API.Get(ctx, "/api/orders", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return getOrder(ctx, s.API, orderID)
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, in models.OrderStatusUpdateIn) (*models.Order, error) {
	var out models.Order
	if err := s.API.Patch(ctx, orderPath(orderID)+"/status", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *OrderService) GetDeliveryFiles(ctx context.Context, orderID string) (*models.DeliveryFilesPage, error) {
	return getDeliveryFiles(ctx, s.API, orderID)
}

func (s *OrderService) UploadDelivery(ctx context.Context, in models.DeliveryUploadIn) error {
	return s.API.Post(ctx, "/api/delivery", in, nil)
}

func (s *OrderService) GetSettlements(ctx context.Context) (*models.SettlementsPage, error) {
	var out models.SettlementsPage
	if err := s.API.Get(ctx, "/api/settlements", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
