package catering_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-catering/internal/auth"
	"ms-catering/internal/catering/badge"
	"ms-catering/internal/catering/catering_api"
	"ms-catering/internal/catering/db"
	"ms-catering/internal/catering/service"
	"ms-catering/internal/models"
)

func setupRouter(t *testing.T) (http.Handler, *db.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Event)(nil),
		(*models.MealSlot)(nil),
		(*models.VolunteerProfile)(nil),
		(*models.ArtistProfile)(nil),
		(*models.VolunteerSelection)(nil),
		(*models.ArtistSelection)(nil),
		(*models.Order)(nil),
		(*models.OrderItem)(nil),
		(*models.OrderItemOption)(nil),
		(*models.TierMealGrant)(nil),
		(*models.OptionMealGrant)(nil),
		(*models.MealGrant)(nil),
	} {
		require.NoError(t, bunDB.ResetModel(ctx, model))
	}
	t.Cleanup(func() { bunDB.Close() })

	database := &db.DB{Bun: bunDB}
	svc := service.NewCateringService(database, nil, nil, nil)
	handler := catering_api.NewHandler(svc, badge.NewGenerator("test-secret"), nil)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		r.Route("/catering", func(r chi.Router) {
			r.Get("/volunteers/{volunteerID}/meals", handler.ListVolunteerMeals)
			r.Get("/artists/{artistID}/meals", handler.ListArtistMeals)
			r.Patch("/selections/{kind}/{selectionID}", handler.UpdateSelection)
			r.Get("/entitlements/{kind}/{id}/badge", handler.EntitlementBadge)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireStaff)
				r.Get("/events/{eventID}/meals", handler.ListEventSlots)
				r.Patch("/meals/{mealID}", handler.UpdateSlot)
				r.Post("/validate", handler.ValidateEntitlement)
				r.Post("/validate/badge", handler.ValidateBadge)
				r.Delete("/validate/{kind}/{id}", handler.UnvalidateEntitlement)
				r.Get("/meals/{mealID}/stats", handler.MealStats)
				r.Get("/events/{eventID}/report/{date}", handler.DayReport)
			})
		})
	})
	return r, database
}

func seedEventAndVolunteer(t *testing.T, d *db.DB) {
	t.Helper()
	ctx := context.Background()
	event := models.Event{
		ID:        "event-1",
		Name:      "Summer Festival",
		StartDate: time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.July, 11, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Now(),
	}
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	require.NoError(t, err)

	volunteer := models.VolunteerProfile{
		ID:             "vol-1",
		EventID:        "event-1",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Status:         models.ParticipantAccepted,
		EventAvailable: true,
	}
	_, err = d.Bun.NewInsert().Model(&volunteer).Exec(ctx)
	require.NoError(t, err)
}

func doRequest(router http.Handler, method, path string, body interface{}, userID string, staff bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set(auth.HeaderUserID, userID)
	}
	if staff {
		req.Header.Set(auth.HeaderStaff, "true")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListVolunteerMealsRequiresIdentity(t *testing.T) {
	router, d := setupRouter(t)
	seedEventAndVolunteer(t, d)

	rec := doRequest(router, http.MethodGet, "/catering/volunteers/vol-1/meals", nil, "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Another participant may not read this list.
	rec = doRequest(router, http.MethodGet, "/catering/volunteers/vol-1/meals", nil, "vol-2", false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The volunteer reads their own list.
	rec = doRequest(router, http.MethodGet, "/catering/volunteers/vol-1/meals", nil, "vol-1", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                    `json:"success"`
		Data    []service.SelectionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 6)
}

func TestListEventSlotsRequiresStaff(t *testing.T) {
	router, d := setupRouter(t)
	seedEventAndVolunteer(t, d)

	rec := doRequest(router, http.MethodGet, "/catering/events/event-1/meals", nil, "vol-1", false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(router, http.MethodGet, "/catering/events/event-1/meals", nil, "staff-1", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateEndpointMapsErrors(t *testing.T) {
	router, d := setupRouter(t)
	seedEventAndVolunteer(t, d)

	// Materialize the volunteer's selections.
	rec := doRequest(router, http.MethodGet, "/catering/volunteers/vol-1/meals", nil, "vol-1", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Data []service.SelectionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.NotEmpty(t, listResp.Data)
	selectionID := listResp.Data[0].SelectionID

	body := map[string]string{"kind": "volunteer", "id": selectionID}
	rec = doRequest(router, http.MethodPost, "/catering/validate", body, "staff-1", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Second scan: expected rejection, 400.
	rec = doRequest(router, http.MethodPost, "/catering/validate", body, "staff-1", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown selection: 404.
	rec = doRequest(router, http.MethodPost, "/catering/validate", map[string]string{"kind": "volunteer", "id": "missing"}, "staff-1", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Ineligible ticket: 403.
	ctx := context.Background()
	order := models.Order{ID: "order-1", EventID: "event-1", Status: models.OrderProcessed, CreatedAt: time.Now()}
	_, err := d.Bun.NewInsert().Model(&order).Exec(ctx)
	require.NoError(t, err)
	item := models.OrderItem{ID: "item-1", OrderID: "order-1", TierID: "tier-basic", State: models.ItemValid}
	_, err = d.Bun.NewInsert().Model(&item).Exec(ctx)
	require.NoError(t, err)

	rec = doRequest(router, http.MethodPost, "/catering/validate",
		map[string]string{"kind": "participant", "id": "item-1", "meal_id": listResp.Data[0].MealID}, "staff-1", true)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Missing kind/id: 400 before any lookup.
	rec = doRequest(router, http.MethodPost, "/catering/validate", map[string]string{"kind": "volunteer"}, "staff-1", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateBadgeFlow(t *testing.T) {
	router, d := setupRouter(t)
	seedEventAndVolunteer(t, d)

	rec := doRequest(router, http.MethodGet, "/catering/volunteers/vol-1/meals", nil, "vol-1", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Data []service.SelectionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.NotEmpty(t, listResp.Data)

	g := badge.NewGenerator("test-secret")
	encrypted, err := g.Encrypt(badge.Payload{
		Kind:          service.KindVolunteer,
		EntitlementID: listResp.Data[0].SelectionID,
		MealID:        listResp.Data[0].MealID,
	})
	require.NoError(t, err)

	rec = doRequest(router, http.MethodPost, "/catering/validate/badge",
		map[string]string{"encrypted_badge": encrypted}, "staff-1", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A badge encrypted under a different key is rejected as invalid input.
	foreign, err := badge.NewGenerator("other-secret").Encrypt(badge.Payload{
		Kind:          service.KindVolunteer,
		EntitlementID: "sel-x",
	})
	require.NoError(t, err)
	rec = doRequest(router, http.MethodPost, "/catering/validate/badge",
		map[string]string{"encrypted_badge": foreign}, "staff-1", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntitlementBadgeReturnsPNG(t *testing.T) {
	router, d := setupRouter(t)
	seedEventAndVolunteer(t, d)

	rec := doRequest(router, http.MethodGet, "/catering/entitlements/volunteer/sel-1/badge", nil, "vol-1", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = doRequest(router, http.MethodGet, "/catering/entitlements/vendor/sel-1/badge", nil, "vol-1", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

}

func TestDayReportDateParsing(t *testing.T) {
	router, d := setupRouter(t)
	seedEventAndVolunteer(t, d)

	rec := doRequest(router, http.MethodGet, "/catering/events/event-1/report/2026-07-10", nil, "staff-1", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/catering/events/event-1/report/july-10", nil, "staff-1", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

}

func TestUpdateSelectionOwnership(t *testing.T) {
	router, d := setupRouter(t)
	seedEventAndVolunteer(t, d)

	rec := doRequest(router, http.MethodGet, "/catering/volunteers/vol-1/meals", nil, "vol-1", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Data []service.SelectionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.NotEmpty(t, listResp.Data)

	path := fmt.Sprintf("/catering/selections/volunteer/%s", listResp.Data[0].SelectionID)
	body := map[string]interface{}{"accepted": false}

	// Someone else's selection.
	rec = doRequest(router, http.MethodPatch, path, body, "vol-2", false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner opts out.
	rec = doRequest(router, http.MethodPatch, path, body, "vol-1", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Staff may toggle anyone's.
	rec = doRequest(router, http.MethodPatch, path, map[string]interface{}{"accepted": true}, "staff-1", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateSlotEndpoint(t *testing.T) {
	router, d := setupRouter(t)
	seedEventAndVolunteer(t, d)

	rec := doRequest(router, http.MethodGet, "/catering/events/event-1/meals", nil, "staff-1", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Data []models.MealSlot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.NotEmpty(t, listResp.Data)

	path := fmt.Sprintf("/catering/meals/%s", listResp.Data[0].ID)
	rec = doRequest(router, http.MethodPatch, path, map[string]interface{}{"enabled": false}, "staff-1", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPatch, path, map[string]interface{}{"phases": []string{"BUILD"}}, "staff-1", true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(router, http.MethodPatch, "/catering/meals/missing", map[string]interface{}{"enabled": true}, "staff-1", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
