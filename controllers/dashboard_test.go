package controllers

import (
	"net/http"
	"strings"
	"testing"

	"modelhubweb/dashboard"
	"modelhubweb/models"
	"modelhubweb/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockCreatorOrders(s *testServer) {
	s.api.JSON(http.MethodGet, "/api/orders", http.StatusOK, models.OrdersPage{
		Items: []models.OrderListItem{{ID: "o1", OrderNumber: "ORD-1", Status: models.OrderInProgress}},
		Total: 1, Page: 1, PerPage: 20,
	})
}

func TestCreatorCompleteOrder(t *testing.T) {
	s := setupTestServer(t)
	mockCreatorOrders(s)
	s.api.JSON(http.MethodPost, "/api/delivery", http.StatusCreated, map[string]bool{"ok": true})
	s.api.JSON(http.MethodPatch, "/api/orders/o1/status", http.StatusOK, models.Order{ID: "o1", Status: models.OrderCompleted})
	token := test.GenerateUserToken("creator-1", models.RoleCreator)

	req := test.NewMultipartTokenRequest(http.MethodPost, "/dashboard/creator/orders/o1/complete", token,
		map[string]string{"notes": "최종본"},
		map[string][]models.Attachment{"files": {
			{Name: "cut1.png", Content: []byte("\x89PNG\r\n\x1a\n")},
			{Name: "cut2.png", Content: []byte("\x89PNG\r\n\x1a\n")},
		}},
	)
	rec := s.serve(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, s.storage.Uploads, 2)

	var paths []string
	for _, r := range s.api.Requests() {
		paths = append(paths, r.Method+" "+r.Path)
	}
	assert.Equal(t, []string{"POST /api/delivery", "PATCH /api/orders/o1/status", "GET /api/orders"}, paths)

	var delivery models.DeliveryUploadIn
	require.NoError(t, s.api.Calls(http.MethodPost, "/api/delivery")[0].JSON(&delivery))
	assert.Equal(t, "o1", delivery.OrderID)
	assert.Len(t, delivery.FileURLs, 2)
	for _, u := range delivery.FileURLs {
		assert.True(t, strings.HasPrefix(u, "https://fakebucketurl.com/deliveries/o1/"), u)
		assert.NotContains(t, u, "?")
	}
	require.NotNil(t, delivery.Notes)
	assert.Equal(t, "최종본", *delivery.Notes)

	var status models.OrderStatusUpdateIn
	require.NoError(t, s.api.Calls(http.MethodPatch, "/api/orders/o1/status")[0].JSON(&status))
	assert.Equal(t, models.OrderCompleted, status.Status)

	list := s.api.Calls(http.MethodGet, "/api/orders")[0]
	assert.Equal(t, "creator", list.Query.Get("role"))
}

func TestCreatorRejectNeedsReason(t *testing.T) {
	s := setupTestServer(t)
	mockCreatorOrders(s)
	s.api.JSON(http.MethodPatch, "/api/orders/o1/status", http.StatusOK, models.Order{ID: "o1", Status: models.OrderRejected})
	token := test.GenerateUserToken("creator-1", models.RoleCreator)

	rec := s.serve(test.NewJSONTokenRequest(http.MethodPost, "/dashboard/creator/orders/o1/reject", token, RejectIn{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.api.Requests())

	rec = s.serve(test.NewJSONTokenRequest(http.MethodPost, "/dashboard/creator/orders/o1/reject", token, RejectIn{Reason: "일정이 맞지 않습니다"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status models.OrderStatusUpdateIn
	require.NoError(t, s.api.Calls(http.MethodPatch, "/api/orders/o1/status")[0].JSON(&status))
	assert.Equal(t, models.OrderRejected, status.Status)
	assert.Equal(t, "일정이 맞지 않습니다", *status.RejectionReason)
}

func TestCreatorSettlements(t *testing.T) {
	s := setupTestServer(t)
	s.api.JSON(http.MethodGet, "/api/settlements", http.StatusOK, models.SettlementsPage{
		Items: []models.Settlement{
			{ID: "s1", Status: "completed", TotalAmount: 100000, PlatformFee: 10000, SettlementAmount: 90000},
			{ID: "s2", Status: "pending", TotalAmount: 50000, PlatformFee: 5000, SettlementAmount: 45000},
		},
		Total:         2,
		PendingAmount: 45000,
	})
	token := test.GenerateUserToken("creator-1", models.RoleCreator)

	rec := s.serve(test.NewJSONTokenRequest(http.MethodGet, "/dashboard/creator/settlements", token, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view dashboard.SettlementsView
	decode(t, rec, &view)
	assert.Equal(t, int64(90000), view.Summary.SettledAmount)
	assert.Equal(t, "₩90,000", view.Summary.SettledDisplay)
	assert.Equal(t, "₩45,000", view.Summary.PendingDisplay)
}

func TestCreatorModelsUseOwnID(t *testing.T) {
	s := setupTestServer(t)
	s.api.JSON(http.MethodGet, "/api/models", http.StatusOK, models.ModelsPage{Items: []models.AIModel{{ID: "m1"}}, Total: 1})
	token := test.GenerateUserToken("creator-1", models.RoleCreator)

	rec := s.serve(test.NewJSONTokenRequest(http.MethodGet, "/dashboard/creator/models?page=2", token, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	call := s.api.Calls(http.MethodGet, "/api/models")[0]
	assert.Equal(t, "creator-1", call.Query.Get("creator_id"))
	assert.Equal(t, "2", call.Query.Get("page"))
	assert.Equal(t, "Bearer "+token, call.Authorization)
}

func TestBrandOrders(t *testing.T) {
	s := setupTestServer(t)
	mockCreatorOrders(s)
	token := test.GenerateUserToken("brand-1", models.RoleBrand)

	rec := s.serve(test.NewJSONTokenRequest(http.MethodGet, "/dashboard/brand/orders", token, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	call := s.api.Calls(http.MethodGet, "/api/orders")[0]
	assert.Equal(t, "brand", call.Query.Get("role"))
	assert.Equal(t, "20", call.Query.Get("per_page"))

	rec = s.serve(test.NewJSONTokenRequest(http.MethodGet, "/dashboard/brand/orders?page=abc", token, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.serve(test.NewJSONTokenRequest(http.MethodGet, "/dashboard/creator/orders", token, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatorRegistersModel(t *testing.T) {
	s := setupTestServer(t)
	s.api.JSON(http.MethodPost, "/api/models", http.StatusCreated, models.AIModel{ID: "m7", Name: "Mina", CreatorID: "creator-1"})
	s.api.JSON(http.MethodPost, "/api/models/m7/images", http.StatusCreated, models.ModelImage{ID: "i1", ModelID: "m7"})
	token := test.GenerateUserToken("creator-1", models.RoleCreator)

	req := test.NewMultipartTokenRequest(http.MethodPost, "/dashboard/creator/models", token,
		map[string]string{"name": "Mina", "style": "casual", "gender": "female", "age_range": "20s", "tags": "fresh"},
		map[string][]models.Attachment{"images": {
			{Name: "front.png", Content: []byte("\x89PNG\r\n\x1a\n")},
			{Name: "side.png", Content: []byte("\x89PNG\r\n\x1a\n")},
		}},
	)
	rec := s.serve(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, s.storage.Uploads, 2)

	var created models.ModelCreateIn
	require.NoError(t, s.api.Calls(http.MethodPost, "/api/models")[0].JSON(&created))
	assert.Equal(t, "Mina", created.Name)
	assert.Equal(t, "draft", created.Status)
	assert.Equal(t, []string{"fresh"}, created.Tags)

	attached := s.api.Calls(http.MethodPost, "/api/models/m7/images")
	require.Len(t, attached, 2)
	var first models.ModelImageIn
	require.NoError(t, attached[0].JSON(&first))
	assert.True(t, first.IsThumbnail)
	assert.True(t, strings.HasPrefix(first.FileURL, "https://fakebucketurl.com/models/creator-1/"), first.FileURL)
}

func TestCreatorModelRegistrationValidation(t *testing.T) {
	s := setupTestServer(t)
	token := test.GenerateUserToken("creator-1", models.RoleCreator)

	req := test.NewMultipartTokenRequest(http.MethodPost, "/dashboard/creator/models", token,
		map[string]string{"name": "Mina", "style": "punk", "gender": "female", "age_range": "20s"},
		map[string][]models.Attachment{"images": {{Name: "front.png", Content: []byte("png")}}},
	)
	assert.Equal(t, http.StatusBadRequest, s.serve(req).Code)

	req = test.NewMultipartTokenRequest(http.MethodPost, "/dashboard/creator/models", token,
		map[string]string{"name": "Mina", "style": "casual", "gender": "female", "age_range": "20s"}, nil)
	assert.Equal(t, http.StatusBadRequest, s.serve(req).Code)
	assert.Empty(t, s.api.Requests())

	brand := test.GenerateUserToken("brand-1", models.RoleBrand)
	req = test.NewMultipartTokenRequest(http.MethodPost, "/dashboard/creator/models", brand,
		map[string]string{"name": "Mina"}, nil)
	assert.Equal(t, http.StatusForbidden, s.serve(req).Code)
}
