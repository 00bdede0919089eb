package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"modelhubweb/models"
	"modelhubweb/services"
	"modelhubweb/uistore"

	log "github.com/sirupsen/logrus"
)

const (
	ModelsPerPage          = 12
	SettlementCompleted    = "completed"
	MaxModelImages         = 10
	deliveryObjectPrefix   = "deliveries"
	modelObjectPrefix      = "models"
	registrationFallback   = "모델 등록에 실패했습니다"
	statusUpdateFallback   = "주문 상태 변경에 실패했습니다."
	deliveryUploadFallback = "납품 파일 업로드에 실패했습니다."
)

var (
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")
	ErrNoDeliveryFiles         = errors.New("at least one delivery file is required")
	ErrOrderBusy               = errors.New("order is already being updated")
	ErrStorageUnavailable      = errors.New("file storage is not configured")
	ErrNoModelImages           = errors.New("at least one model image is required")
	ErrTooManyModelImages      = fmt.Errorf("a model takes at most %d images", MaxModelImages)
)

type SettlementSummary struct {
	CompletedCount int    `json:"completed_count"`
	TotalAmount    int64  `json:"total_amount"`
	PlatformFee    int64  `json:"platform_fee"`
	SettledAmount  int64  `json:"settled_amount"`
	SettledDisplay string `json:"settled_display"`
	PendingAmount  int64  `json:"pending_amount"`
	PendingDisplay string `json:"pending_display"`
}

type SettlementsView struct {
	Items   []models.Settlement `json:"items"`
	Total   int                 `json:"total"`
	Summary SettlementSummary   `json:"summary"`
}

type CreatorDashboard struct {
	user     models.CurrentUser
	orders   services.OrderServiceProvider
	models   services.CreatorModelServiceProvider
	storage  services.StorageProvider
	notifier uistore.Notifier

	mu       sync.Mutex
	page     int
	list     *models.OrdersPage
	inFlight map[string]struct{}
}

// NewCreatorDashboard expects an uncached model service: listings here are
// per creator and must reflect new uploads immediately.
func NewCreatorDashboard(user models.CurrentUser, orders services.OrderServiceProvider, modelService services.CreatorModelServiceProvider, storage services.StorageProvider, notifier uistore.Notifier) *CreatorDashboard {
	return &CreatorDashboard{
		user:     user,
		orders:   orders,
		models:   modelService,
		storage:  storage,
		notifier: notifier,
		page:     1,
		inFlight: map[string]struct{}{},
	}
}

func (d *CreatorDashboard) logger(orderID string) *log.Entry {
	return log.WithFields(log.Fields{"creator_id": d.user.ID, "order_id": orderID})
}

func (d *CreatorDashboard) Orders(ctx context.Context, page int) (*models.OrdersPage, error) {
	if page < 1 {
		page = 1
	}
	list, err := d.orders.ListOrders(ctx, models.RoleCreator, page, OrdersPerPage)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.page = page
	d.list = list
	d.mu.Unlock()
	return list, nil
}

// reload refetches the last viewed page after a mutation. A failure here does
// not undo the mutation, so it is only logged.
func (d *CreatorDashboard) reload(ctx context.Context) {
	d.mu.Lock()
	page := d.page
	d.mu.Unlock()
	if _, err := d.Orders(ctx, page); err != nil {
		log.WithError(err).WithField("creator_id", d.user.ID).Warn("order list refresh failed")
	}
}

func (d *CreatorDashboard) acquire(orderID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inFlight[orderID]; ok {
		return ErrOrderBusy
	}
	d.inFlight[orderID] = struct{}{}
	return nil
}

func (d *CreatorDashboard) release(orderID string) {
	d.mu.Lock()
	delete(d.inFlight, orderID)
	d.mu.Unlock()
}

func (d *CreatorDashboard) setStatus(ctx context.Context, orderID string, in models.OrderStatusUpdateIn) (*models.Order, error) {
	order, err := d.orders.UpdateOrderStatus(ctx, orderID, in)
	if err != nil {
		d.logger(orderID).WithError(err).Warn("order status update failed")
		notify(d.notifier, models.ToastError, services.UserMessage(err, statusUpdateFallback))
		return nil, err
	}
	return order, nil
}

func (d *CreatorDashboard) Accept(ctx context.Context, orderID string) (*models.Order, error) {
	if err := d.acquire(orderID); err != nil {
		return nil, err
	}
	defer d.release(orderID)

	order, err := d.setStatus(ctx, orderID, models.OrderStatusUpdateIn{Status: models.OrderAccepted})
	if err != nil {
		return nil, err
	}
	notify(d.notifier, models.ToastSuccess, "주문을 수락했습니다.")
	d.reload(ctx)
	return order, nil
}

func (d *CreatorDashboard) Reject(ctx context.Context, orderID, reason string) (*models.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectionReasonRequired
	}
	if err := d.acquire(orderID); err != nil {
		return nil, err
	}
	defer d.release(orderID)

	order, err := d.setStatus(ctx, orderID, models.OrderStatusUpdateIn{
		Status:          models.OrderRejected,
		RejectionReason: &reason,
	})
	if err != nil {
		return nil, err
	}
	notify(d.notifier, models.ToastInfo, "주문을 거절했습니다.")
	d.reload(ctx)
	return order, nil
}

// Complete uploads every file, registers the delivery with the resulting URLs
// and only then marks the order completed.
func (d *CreatorDashboard) Complete(ctx context.Context, orderID string, files []models.Attachment, notes string) (*models.Order, error) {
	if len(files) == 0 {
		return nil, ErrNoDeliveryFiles
	}
	if d.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if err := d.acquire(orderID); err != nil {
		return nil, err
	}
	defer d.release(orderID)

	urls := make([]string, 0, len(files))
	for _, f := range files {
		key := services.ObjectKey(fmt.Sprintf("%s/%s", deliveryObjectPrefix, orderID), f.Name)
		url, err := d.storage.Upload(ctx, key, f.Content)
		if err != nil {
			d.logger(orderID).WithError(err).WithField("file", f.Name).Warn("delivery upload failed")
			notify(d.notifier, models.ToastError, deliveryUploadFallback)
			return nil, fmt.Errorf("failed to upload %s: %w", f.Name, err)
		}
		urls = append(urls, url)
	}

	err := d.orders.UploadDelivery(ctx, models.DeliveryUploadIn{
		OrderID:  orderID,
		FileURLs: urls,
		Notes:    services.StrPointer(strings.TrimSpace(notes)),
	})
	if err != nil {
		d.logger(orderID).WithError(err).Warn("delivery registration failed")
		notify(d.notifier, models.ToastError, services.UserMessage(err, deliveryUploadFallback))
		return nil, err
	}

	order, err := d.setStatus(ctx, orderID, models.OrderStatusUpdateIn{Status: models.OrderCompleted})
	if err != nil {
		return nil, err
	}
	d.logger(orderID).WithField("files", len(urls)).Info("order delivered")
	notify(d.notifier, models.ToastSuccess, "납품이 완료되었습니다.")
	d.reload(ctx)
	return order, nil
}

func (d *CreatorDashboard) Settlements(ctx context.Context) (*SettlementsView, error) {
	page, err := d.orders.GetSettlements(ctx)
	if err != nil {
		return nil, err
	}
	return &SettlementsView{
		Items:   page.Items,
		Total:   page.Total,
		Summary: Summarize(page.Items, page.PendingAmount),
	}, nil
}

// Summarize totals completed settlements. Pending payouts come from the API
// as they may include orders without a settlement row yet.
func Summarize(items []models.Settlement, pendingAmount int64) SettlementSummary {
	var s SettlementSummary
	for _, it := range items {
		if it.Status != SettlementCompleted {
			continue
		}
		s.CompletedCount++
		s.TotalAmount += it.TotalAmount
		s.PlatformFee += it.PlatformFee
		s.SettledAmount += it.SettlementAmount
	}
	s.PendingAmount = pendingAmount
	s.SettledDisplay = services.FormatWon(s.SettledAmount)
	s.PendingDisplay = services.FormatWon(s.PendingAmount)
	return s
}

func (d *CreatorDashboard) MyModels(ctx context.Context, page int) (*models.ModelsPage, error) {
	if page < 1 {
		page = 1
	}
	return d.models.ListModels(ctx, models.ModelsQuery{
		CreatorID: d.user.ID,
		Sort:      models.SortRecent,
		Page:      page,
		Limit:     ModelsPerPage,
	})
}

// RegisterModel stores the images, creates the model and attaches the images
// in upload order. The first image becomes the thumbnail. Every image is in
// storage before the model exists.
func (d *CreatorDashboard) RegisterModel(ctx context.Context, in models.ModelCreateIn, images []models.Attachment) (*models.AIModel, error) {
	switch {
	case len(images) == 0:
		return nil, ErrNoModelImages
	case len(images) > MaxModelImages:
		return nil, ErrTooManyModelImages
	case d.storage == nil:
		return nil, ErrStorageUnavailable
	}
	in.Name = strings.TrimSpace(in.Name)
	logger := log.WithFields(log.Fields{"user_id": d.user.ID, "model_name": in.Name})

	urls := make([]string, 0, len(images))
	for _, img := range images {
		key := services.ObjectKey(fmt.Sprintf("%s/%s", modelObjectPrefix, d.user.ID), img.Name)
		url, err := d.storage.Upload(ctx, key, img.Content)
		if err != nil {
			logger.WithError(err).WithField("file", img.Name).Warn("model image upload failed")
			notify(d.notifier, models.ToastError, registrationFallback)
			return nil, fmt.Errorf("failed to upload %s: %w", img.Name, err)
		}
		urls = append(urls, url)
	}

	model, err := d.models.CreateModel(ctx, in)
	if err != nil {
		logger.WithError(err).Warn("model creation failed")
		notify(d.notifier, models.ToastError, services.UserMessage(err, registrationFallback))
		return nil, err
	}
	logger = logger.WithField("model_id", model.ID)

	for i, u := range urls {
		image, err := d.models.AddModelImage(ctx, model.ID, models.ModelImageIn{
			FileURL:      u,
			DisplayOrder: i,
			IsThumbnail:  i == 0,
		})
		if err != nil {
			logger.WithError(err).WithField("display_order", i).Warn("model image registration failed")
			notify(d.notifier, models.ToastError, services.UserMessage(err, registrationFallback))
			return nil, fmt.Errorf("model %s created, image %d not attached: %w", model.ID, i, err)
		}
		model.Images = append(model.Images, *image)
	}
	logger.WithField("images", len(urls)).Info("model registered")
	notify(d.notifier, models.ToastSuccess, "모델이 등록되었습니다.")
	return model, nil
}

// LastOrders is the list as of the latest fetch or refresh.
func (d *CreatorDashboard) LastOrders() *models.OrdersPage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.list
}
