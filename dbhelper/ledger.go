package dbhelper

import (
	"context"
	"fmt"

	"modelhubweb/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IncidentLedger stores orders that were created while their payment failed.
type IncidentLedger struct {
	DB *gorm.DB
}

func (l *IncidentLedger) RecordOrderIncident(ctx context.Context, incident models.OrderIncident) error {
	if err := l.DB.WithContext(ctx).Create(&incident).Error; err != nil {
		return fmt.Errorf("failed to record incident for order %s: %w", incident.OrderID, err)
	}
	log.WithFields(log.Fields{
		"incident_id": incident.ID,
		"order_id":    incident.OrderID,
		"amount":      incident.Amount,
	}).Warn("order incident recorded")
	return nil
}

// Recent returns the latest incidents first.
func (l *IncidentLedger) Recent(ctx context.Context, limit int) ([]models.OrderIncident, error) {
	var incidents []models.OrderIncident
	err := l.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&incidents).Error
	if err != nil {
		return nil, err
	}
	return incidents, nil
}
