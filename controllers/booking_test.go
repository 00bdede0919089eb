package controllers

import (
	"net/http"
	"testing"

	"modelhubweb/booking"
	"modelhubweb/models"
	"modelhubweb/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockRecommendations(s *testServer) {
	s.api.JSON(http.MethodPost, "/api/matching/recommend", http.StatusOK, models.MatchingResponse{
		Recommendations: []models.Recommendation{
			{Model: models.ModelSummary{ID: "m1", CreatorID: "c1", Name: "Mina"}, Score: 92},
			{Model: models.ModelSummary{ID: "m2", CreatorID: "c2", Name: "Jiho"}, Score: 88},
		},
	})
}

func startWizard(t *testing.T, s *testServer, token string) booking.View {
	t.Helper()
	rec := s.serve(test.NewJSONTokenRequest(http.MethodPost, "/booking", token, nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var view booking.View
	decode(t, rec, &view)
	return view
}

func TestBookingFlowEndToEnd(t *testing.T) {
	s := setupTestServer(t)
	mockRecommendations(s)
	s.api.JSON(http.MethodPost, "/api/orders", http.StatusCreated, models.OrderCreated{ID: "order-1", OrderNumber: "ORD-1", TotalPrice: 100000, Status: "pending"})
	s.api.JSON(http.MethodPost, "/api/payments", http.StatusCreated, models.PaymentOut{ID: "pay-1", Status: "completed", TransactionID: "tx-1"})
	token := test.GenerateUserToken("brand-1", models.RoleBrand)

	view := startWizard(t, s, token)
	assert.Equal(t, booking.StepConcept, view.Step)
	base := "/booking/" + view.ID

	rec := s.serve(test.NewJSONTokenRequest(http.MethodPost, base+"/concept", token, ConceptIn{Concept: "캐주얼 여름"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &view)
	assert.Equal(t, booking.StepRecommendation, view.Step)
	require.Len(t, view.Recommendations, 2)

	rec = s.serve(test.NewJSONTokenRequest(http.MethodPost, base+"/model", token, SelectModelIn{ModelID: "m2"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &view)
	assert.Equal(t, booking.StepPackage, view.Step)

	rec = s.serve(test.NewJSONTokenRequest(http.MethodPost, base+"/package", token, PackageIn{PackageType: models.PackagePremium}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &view)
	require.NotNil(t, view.Modal)
	assert.Equal(t, booking.ModalSuccess, view.Modal.Kind)
	assert.Equal(t, "ORD-1", view.Modal.OrderNumber)
	assert.Equal(t, "₩100,000", view.Modal.TotalDisplay)

	recommend := s.api.Calls(http.MethodPost, "/api/matching/recommend")
	require.Len(t, recommend, 1)
	assert.Equal(t, "Bearer "+token, recommend[0].Authorization)

	orders := s.api.Calls(http.MethodPost, "/api/orders")
	require.Len(t, orders, 1)
	var orderIn models.CreateOrderIn
	require.NoError(t, orders[0].JSON(&orderIn))
	assert.Equal(t, "m2", orderIn.ModelID)
	assert.Equal(t, models.PackagePremium, orderIn.PackageType)
	assert.Equal(t, int64(100000), orderIn.TotalPrice)

	payments := s.api.Calls(http.MethodPost, "/api/payments")
	require.Len(t, payments, 1)
	var paymentIn models.CreatePaymentIn
	require.NoError(t, payments[0].JSON(&paymentIn))
	assert.Equal(t, models.CreatePaymentIn{OrderID: "order-1", PaymentMethod: "card", Amount: 100000}, paymentIn)
	assert.Empty(t, s.incidents.incidents)
}

func TestBookingPaymentFailure(t *testing.T) {
	s := setupTestServer(t)
	mockRecommendations(s)
	s.api.JSON(http.MethodPost, "/api/orders", http.StatusCreated, models.OrderCreated{ID: "order-1", OrderNumber: "ORD-1"})
	s.api.JSON(http.MethodPost, "/api/payments", http.StatusBadRequest, map[string]string{"detail": "카드 승인이 거절되었습니다."})
	token := test.GenerateUserToken("brand-1", models.RoleBrand)

	view := startWizard(t, s, token)
	base := "/booking/" + view.ID
	require.Equal(t, http.StatusOK, s.serve(test.NewJSONTokenRequest(http.MethodPost, base+"/concept", token, ConceptIn{Concept: "캐주얼 여름"})).Code)
	require.Equal(t, http.StatusOK, s.serve(test.NewJSONTokenRequest(http.MethodPost, base+"/model", token, SelectModelIn{ModelID: "m1"})).Code)

	rec := s.serve(test.NewJSONTokenRequest(http.MethodPost, base+"/package", token, PackageIn{PackageType: models.PackageStandard}))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	var payload struct {
		Error string       `json:"error"`
		View  booking.View `json:"view"`
	}
	decode(t, rec, &payload)
	assert.Equal(t, "카드 승인이 거절되었습니다.", payload.Error)
	require.NotNil(t, payload.View.Modal)
	assert.Equal(t, booking.ModalError, payload.View.Modal.Kind)
	assert.Nil(t, payload.View.Receipt)

	require.Len(t, s.incidents.incidents, 1)
	assert.Equal(t, "order-1", s.incidents.incidents[0].OrderID)
	assert.Equal(t, int64(50000), s.incidents.incidents[0].Amount)
}

func TestBookingValidation(t *testing.T) {
	s := setupTestServer(t)
	mockRecommendations(s)
	token := test.GenerateUserToken("brand-1", models.RoleBrand)
	view := startWizard(t, s, token)
	base := "/booking/" + view.ID

	rec := s.serve(test.NewJSONTokenRequest(http.MethodPost, base+"/concept", token, ConceptIn{Concept: "  "}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := map[string]string{}
	decode(t, rec, &payload)
	assert.Equal(t, "concept", payload["field"])

	rec = s.serve(test.NewJSONTokenRequest(http.MethodPost, base+"/step", token, StepIn{Step: 2}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.serve(test.NewJSONTokenRequest(http.MethodPost, base+"/model", token, SelectModelIn{ModelID: "m1"}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.serve(test.NewJSONTokenRequest(http.MethodPut, base+"/package", token, PackageIn{PackageType: "gold"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, s.api.Requests())
}

func TestBookingIsBrandOnly(t *testing.T) {
	s := setupTestServer(t)

	rec := s.serve(test.NewJSONAuthRequest(http.MethodPost, "/booking", "creator-1", models.RoleCreator, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnknownWizard(t *testing.T) {
	s := setupTestServer(t)
	token := test.GenerateUserToken("brand-1", models.RoleBrand)

	rec := s.serve(test.NewJSONTokenRequest(http.MethodGet, "/booking/nope", token, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	view := startWizard(t, s, token)
	rec = s.serve(test.NewJSONTokenRequest(http.MethodDelete, "/booking/"+view.ID, token, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.serve(test.NewJSONTokenRequest(http.MethodGet, "/booking/"+view.ID, token, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReferenceUploadURL(t *testing.T) {
	s := setupTestServer(t)

	rec := s.serve(test.NewJSONAuthRequest(http.MethodPost, "/booking/references", "brand-1", models.RoleBrand, ReferenceUploadIn{FileName: "mood.png"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out ReferenceUploadOut
	decode(t, rec, &out)
	assert.Contains(t, out.Key, "references/brand-1/")
	assert.Contains(t, out.Key, "mood.png")
	assert.Equal(t, "https://fakebucketurl.com/upload/"+out.Key, out.UploadURL)
	assert.Equal(t, "https://fakebucketurl.com/"+out.Key, out.FileURL)
}
