package services

import (
	"context"
	"fmt"
	"net/url"

	"modelhubweb/models"
)

type ChatServiceProvider interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	GetMessages(ctx context.Context, orderID string) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, orderID, text string, attachment *models.Attachment) (*models.ChatMessage, error)
	MarkAsRead(ctx context.Context, orderID string) error
	GetUnreadCount(ctx context.Context, orderID string) (*models.ChatStats, error)
	GetDeliveryFiles(ctx context.Context, orderID string) ([]models.DeliveryFile, error)
}

type ChatService struct {
	API *APIClient
}

func chatPath(orderID string) string {
	return fmt.Sprintf("/api/chat/%s", url.PathEscape(orderID))
}

func (s *ChatService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return getOrder(ctx, s.API, orderID)
}

func (s *ChatService) GetMessages(ctx context.Context, orderID string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	if err := s.API.Get(ctx, chatPath(orderID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ChatService) SendMessage(ctx context.Context, orderID, text string, attachment *models.Attachment) (*models.ChatMessage, error) {
	var out models.ChatMessage
	err := s.API.DoMultipart(ctx, chatPath(orderID), map[string]string{"message": text}, "attachment", attachment, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ChatService) MarkAsRead(ctx context.Context, orderID string) error {
	return s.API.Post(ctx, chatPath(orderID)+"/read", nil, nil)
}

func (s *ChatService) GetUnreadCount(ctx context.Context, orderID string) (*models.ChatStats, error) {
	var out models.ChatStats
	if err := s.API.Get(ctx, chatPath(orderID)+"/unread", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ChatService) GetDeliveryFiles(ctx context.Context, orderID string) ([]models.DeliveryFile, error) {
	page, err := getDeliveryFiles(ctx, s.API, orderID)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
