package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slotbook/internal/availability/service"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/period"
	"slotbook/pkg/timeslots"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type mockAvailabilityService struct {
	getAvailabilityFunc func(ctx context.Context, businessID string, q service.Query) (*model.Availability, error)
}

func (m *mockAvailabilityService) GetAvailability(ctx context.Context, businessID string, q service.Query) (*model.Availability, error) {
	return m.getAvailabilityFunc(ctx, businessID, q)
}

func (m *mockAvailabilityService) Evaluate(context.Context, *model.Business, *timeslots.Configuration, period.Period) (*service.Evaluation, error) {
	return nil, nil
}

func (m *mockAvailabilityService) LoadBusiness(context.Context, string) (*model.Business, error) {
	return nil, nil
}

func newRouter(svc service.AvailabilityService) *httprouter.Router {
	router := httprouter.New()
	NewAvailabilityHandler(svc, logger.New(logger.Config{Output: io.Discard})).RegisterRoutes(router)
	return router
}

func TestGetAvailability_PassesQuery(t *testing.T) {
	var gotID string
	var gotQuery service.Query
	svc := &mockAvailabilityService{
		getAvailabilityFunc: func(_ context.Context, businessID string, q service.Query) (*model.Availability, error) {
			gotID, gotQuery = businessID, q
			return &model.Availability{BusinessID: businessID, Slots: []model.TimeSlot{{StartAt: 1, EndAt: 2, Duration: 60}}}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses/b1/availability?duration=60&start=2024-03-11&end=2024-03-12", nil)
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	want := service.Query{Duration: 60, Start: "2024-03-11", End: "2024-03-12"}
	if gotID != "b1" || gotQuery != want {
		t.Errorf("service called with %q %+v", gotID, gotQuery)
	}

	var body struct {
		Data model.Availability `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Slots) != 1 {
		t.Errorf("expected one slot in response, got %v", body.Data.Slots)
	}
}

func TestGetAvailability_BadDuration(t *testing.T) {
	svc := &mockAvailabilityService{
		getAvailabilityFunc: func(context.Context, string, service.Query) (*model.Availability, error) {
			t.Error("service must not be called")
			return nil, nil
		},
	}

	for _, q := range []string{"", "?duration=abc", "?duration=0", "?duration=-15"} {
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/businesses/b1/availability"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestGetAvailability_ServiceError(t *testing.T) {
	svc := &mockAvailabilityService{
		getAvailabilityFunc: func(context.Context, string, service.Query) (*model.Availability, error) {
			return nil, apperrors.NotFoundWithID("Business", "b1")
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/businesses/b1/availability?duration=30", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
