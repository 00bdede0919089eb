package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"modelhubweb/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrders records every call in order so sequences can be asserted.
type fakeOrders struct {
	mu        sync.Mutex
	calls     []string
	updates   []models.OrderStatusUpdateIn
	delivery  *models.DeliveryUploadIn
	updateErr error
	listArgs  []string
}

func (f *fakeOrders) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeOrders) ListOrders(ctx context.Context, role models.UserRole, page, perPage int) (*models.OrdersPage, error) {
	f.record("list")
	f.mu.Lock()
	f.listArgs = append(f.listArgs, fmt.Sprintf("%s/%d/%d", role, page, perPage))
	f.mu.Unlock()
	return &models.OrdersPage{Items: []models.OrderListItem{{ID: "o1"}}, Total: 1, Page: page, PerPage: perPage}, nil
}

func (f *fakeOrders) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	f.record("get")
	return &models.Order{ID: orderID}, nil
}

func (f *fakeOrders) UpdateOrderStatus(ctx context.Context, orderID string, in models.OrderStatusUpdateIn) (*models.Order, error) {
	f.record("status:" + string(in.Status))
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, in)
	return &models.Order{ID: orderID, Status: in.Status}, nil
}

func (f *fakeOrders) GetDeliveryFiles(ctx context.Context, orderID string) (*models.DeliveryFilesPage, error) {
	f.record("files")
	return &models.DeliveryFilesPage{Items: []models.DeliveryFile{{ID: "f1"}}, Total: 1}, nil
}

func (f *fakeOrders) UploadDelivery(ctx context.Context, in models.DeliveryUploadIn) error {
	f.record("delivery")
	f.delivery = &in
	return nil
}

func (f *fakeOrders) GetSettlements(ctx context.Context) (*models.SettlementsPage, error) {
	return &models.SettlementsPage{
		Items: []models.Settlement{
			{ID: "s1", Status: "completed", TotalAmount: 100000, PlatformFee: 10000, SettlementAmount: 90000},
			{ID: "s2", Status: "completed", TotalAmount: 50000, PlatformFee: 5000, SettlementAmount: 45000},
			{ID: "s3", Status: "pending", TotalAmount: 200000, PlatformFee: 20000, SettlementAmount: 180000},
		},
		Total:         3,
		PendingAmount: 180000,
	}, nil
}

type fakeStorage struct {
	orders *fakeOrders
	keys   []string
	err    error
}

func (s *fakeStorage) PresignUpload(ctx context.Context, key string) (string, error) {
	return "https://upload/" + key, nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "https://cdn/" + key
}

func (s *fakeStorage) Upload(ctx context.Context, key string, content []byte) (string, error) {
	s.orders.record("upload")
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)
	return "https://cdn/" + key, nil
}

type fakeModels struct {
	orders    *fakeOrders
	query     models.ModelsQuery
	created   *models.ModelCreateIn
	images    []models.ModelImageIn
	createErr error
	imageErr  error
}

func (f *fakeModels) ListModels(ctx context.Context, q models.ModelsQuery) (*models.ModelsPage, error) {
	f.query = q
	return &models.ModelsPage{Items: []models.AIModel{{ID: "m1", CreatorID: q.CreatorID}}, Total: 1}, nil
}

func (f *fakeModels) GetModel(ctx context.Context, modelID string) (*models.AIModel, error) {
	return &models.AIModel{ID: modelID}, nil
}

func (f *fakeModels) RecordView(ctx context.Context, modelID string) error {
	return nil
}

func (f *fakeModels) CreateModel(ctx context.Context, in models.ModelCreateIn) (*models.AIModel, error) {
	f.orders.record("create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &in
	return &models.AIModel{ID: "new-model", Name: in.Name, CreatorID: "creator-1"}, nil
}

func (f *fakeModels) AddModelImage(ctx context.Context, modelID string, in models.ModelImageIn) (*models.ModelImage, error) {
	f.orders.record("image")
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	f.images = append(f.images, in)
	return &models.ModelImage{ID: fmt.Sprintf("img-%d", in.DisplayOrder), ModelID: modelID, ImageURL: in.FileURL, DisplayOrder: in.DisplayOrder, IsPrimary: in.IsThumbnail}, nil
}

var creator = models.CurrentUser{ID: "creator-1", Name: "Creator", Role: models.RoleCreator}

func newCreator() (*CreatorDashboard, *fakeOrders, *fakeStorage, *fakeModels) {
	orders := &fakeOrders{}
	storage := &fakeStorage{orders: orders}
	modelService := &fakeModels{orders: orders}
	return NewCreatorDashboard(creator, orders, modelService, storage, nil), orders, storage, modelService
}

func TestCompleteUploadsThenDeliversThenCompletes(t *testing.T) {
	d, orders, storage, _ := newCreator()
	_, err := d.Orders(context.Background(), 2)
	require.NoError(t, err)

	files := []models.Attachment{
		{Name: "a.png", Content: []byte("a")},
		{Name: "b.zip", Content: []byte("b")},
	}
	order, err := d.Complete(context.Background(), "o1", files, "  final cut ")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, order.Status)

	assert.Equal(t, []string{"list", "upload", "upload", "delivery", "status:completed", "list"}, orders.calls)
	require.Len(t, storage.keys, 2)
	assert.Contains(t, storage.keys[0], "deliveries/o1/")
	assert.Contains(t, storage.keys[1], "b.zip")

	require.NotNil(t, orders.delivery)
	assert.Equal(t, "o1", orders.delivery.OrderID)
	assert.Equal(t, []string{"https://cdn/" + storage.keys[0], "https://cdn/" + storage.keys[1]}, orders.delivery.FileURLs)
	require.NotNil(t, orders.delivery.Notes)
	assert.Equal(t, "final cut", *orders.delivery.Notes)

	// refresh keeps the page the creator was looking at
	assert.Equal(t, []string{"creator/2/20", "creator/2/20"}, orders.listArgs)
}

func TestCompleteStopsOnUploadFailure(t *testing.T) {
	d, orders, storage, _ := newCreator()
	storage.err = errors.New("r2 down")

	_, err := d.Complete(context.Background(), "o1", []models.Attachment{{Name: "a.png", Content: []byte("a")}}, "")
	require.Error(t, err)
	assert.Equal(t, []string{"upload"}, orders.calls)

	_, err = d.Complete(context.Background(), "o1", nil, "")
	assert.ErrorIs(t, err, ErrNoDeliveryFiles)
}

func TestRejectRequiresReason(t *testing.T) {
	d, orders, _, _ := newCreator()

	_, err := d.Reject(context.Background(), "o1", "   ")
	assert.ErrorIs(t, err, ErrRejectionReasonRequired)
	assert.Empty(t, orders.calls)

	_, err = d.Reject(context.Background(), "o1", "schedule conflict")
	require.NoError(t, err)
	require.Len(t, orders.updates, 1)
	assert.Equal(t, models.OrderRejected, orders.updates[0].Status)
	assert.Equal(t, "schedule conflict", *orders.updates[0].RejectionReason)
	assert.Equal(t, []string{"status:rejected", "list"}, orders.calls)
}

func TestAcceptRefetchesList(t *testing.T) {
	d, orders, _, _ := newCreator()

	_, err := d.Accept(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, []string{"status:accepted", "list"}, orders.calls)
	require.NotNil(t, d.LastOrders())
	assert.Equal(t, 1, d.LastOrders().Total)
}

func TestFailedStatusUpdateSkipsRefetch(t *testing.T) {
	d, orders, _, _ := newCreator()
	orders.updateErr = errors.New("conflict")

	_, err := d.Accept(context.Background(), "o1")
	require.Error(t, err)
	assert.Equal(t, []string{"status:accepted"}, orders.calls)

	// the order is released after a failure
	orders.updateErr = nil
	_, err = d.Accept(context.Background(), "o1")
	require.NoError(t, err)
}

func TestSettlementSummary(t *testing.T) {
	d, _, _, _ := newCreator()

	view, err := d.Settlements(context.Background())
	require.NoError(t, err)
	assert.Len(t, view.Items, 3)
	assert.Equal(t, 2, view.Summary.CompletedCount)
	assert.Equal(t, int64(150000), view.Summary.TotalAmount)
	assert.Equal(t, int64(15000), view.Summary.PlatformFee)
	assert.Equal(t, int64(135000), view.Summary.SettledAmount)
	assert.Equal(t, "₩135,000", view.Summary.SettledDisplay)
	assert.Equal(t, "₩180,000", view.Summary.PendingDisplay)
}

func TestMyModelsFiltersByCreator(t *testing.T) {
	d, _, _, modelService := newCreator()

	page, err := d.MyModels(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "creator-1", modelService.query.CreatorID)
	assert.Equal(t, 1, modelService.query.Page)
	assert.Equal(t, ModelsPerPage, modelService.query.Limit)
}

type fakeFavorites struct {
	removed []string
}

func (f *fakeFavorites) GetFavorites(ctx context.Context) (*models.FavoritesPage, error) {
	return &models.FavoritesPage{Items: []models.Favorite{{ID: "f1", ModelID: "m1"}}, Total: 1}, nil
}

func (f *fakeFavorites) AddFavorite(ctx context.Context, modelID string) (*models.Favorite, error) {
	return &models.Favorite{ModelID: modelID}, nil
}

func (f *fakeFavorites) RemoveFavorite(ctx context.Context, modelID string) error {
	f.removed = append(f.removed, modelID)
	return nil
}

func TestBrandDashboard(t *testing.T) {
	orders := &fakeOrders{}
	favs := &fakeFavorites{}
	d := NewBrandDashboard(orders, favs, nil)

	_, err := d.Orders(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"brand/1/20"}, orders.listArgs)

	files, err := d.DeliveryFiles(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, files.Total)

	page, err := d.Favorites(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	require.NoError(t, d.RemoveFavorite(context.Background(), "m1"))
	assert.Equal(t, []string{"m1"}, favs.removed)
}

func modelDraft() models.ModelCreateIn {
	return models.ModelCreateIn{Name: " Mina ", Style: "casual", Gender: "female", AgeRange: "20s", Tags: []string{"fresh"}, Status: "active"}
}

func TestRegisterModelUploadsCreatesThenAttaches(t *testing.T) {
	d, orders, storage, modelService := newCreator()
	images := []models.Attachment{
		{Name: "front.png", Content: []byte("a")},
		{Name: "side.png", Content: []byte("b")},
	}

	model, err := d.RegisterModel(context.Background(), modelDraft(), images)
	require.NoError(t, err)
	assert.Equal(t, "new-model", model.ID)
	require.Len(t, model.Images, 2)

	assert.Equal(t, []string{"upload", "upload", "create", "image", "image"}, orders.calls)
	require.NotNil(t, modelService.created)
	assert.Equal(t, "Mina", modelService.created.Name)

	require.Len(t, storage.keys, 2)
	assert.Contains(t, storage.keys[0], "models/creator-1/")
	assert.Equal(t, []models.ModelImageIn{
		{FileURL: "https://cdn/" + storage.keys[0], DisplayOrder: 0, IsThumbnail: true},
		{FileURL: "https://cdn/" + storage.keys[1], DisplayOrder: 1, IsThumbnail: false},
	}, modelService.images)
}

func TestRegisterModelChecksImages(t *testing.T) {
	d, orders, _, _ := newCreator()

	_, err := d.RegisterModel(context.Background(), modelDraft(), nil)
	assert.ErrorIs(t, err, ErrNoModelImages)

	tooMany := make([]models.Attachment, MaxModelImages+1)
	for i := range tooMany {
		tooMany[i] = models.Attachment{Name: fmt.Sprintf("%d.png", i), Content: []byte("x")}
	}
	_, err = d.RegisterModel(context.Background(), modelDraft(), tooMany)
	assert.ErrorIs(t, err, ErrTooManyModelImages)
	assert.Empty(t, orders.calls)

	noStorage := NewCreatorDashboard(creator, orders, &fakeModels{orders: orders}, nil, nil)
	_, err = noStorage.RegisterModel(context.Background(), modelDraft(), tooMany[:1])
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestRegisterModelFailures(t *testing.T) {
	d, orders, storage, modelService := newCreator()
	storage.err = errors.New("r2 down")
	_, err := d.RegisterModel(context.Background(), modelDraft(), []models.Attachment{{Name: "a.png", Content: []byte("a")}})
	require.Error(t, err)
	assert.Equal(t, []string{"upload"}, orders.calls)

	d, orders, _, modelService = newCreator()
	modelService.imageErr = errors.New("bad image")
	_, err = d.RegisterModel(context.Background(), modelDraft(), []models.Attachment{{Name: "a.png", Content: []byte("a")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "new-model")
	assert.Equal(t, []string{"upload", "create", "image"}, orders.calls)
}
