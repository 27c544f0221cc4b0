package waitlist

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gymflow/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiResponse struct {
	Success          bool              `json:"success"`
	Data             json.RawMessage   `json:"data"`
	Message          string            `json:"message"`
	Error            string            `json:"error"`
	Details          json.RawMessage   `json:"details"`
	ProcessedEntries []json.RawMessage `json:"processed_entries"`
}

func setupRouter(f *fixture, orgScope uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	if orgScope != uuid.Nil {
		api.Use(func(c *gin.Context) {
			c.Set(middleware.ContextOrganizationID, orgScope)
			c.Next()
		})
	}
	SetupWaitlistRoutes(api, NewController(f.service, zap.NewNop()))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, target string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestWaitlistEndpointsEndToEnd(t *testing.T) {
	f := setupFixture(t)
	router := setupRouter(f, uuid.Nil)
	schedule := f.newSchedule(t, 10, 10, true)
	client := f.newClient(t, "xavier")

	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/class-waitlist", map[string]interface{}{
		"organization_id": f.orgID.String(),
		"schedule_id":     schedule.ID.String(),
		"client_id":       client.ID.String(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, resp.Success)

	var created WaitlistEntry
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, 1, created.Position)
	assert.True(t, created.AutoBook)
	require.NotNil(t, created.Client)
	assert.Equal(t, "xavier", created.Client.FirstName)

	f.setBookings(t, schedule.ID, 9)

	w, resp = doRequest(t, router, http.MethodPatch, "/api/v1/class-waitlist?schedule_id="+schedule.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Processed 1 waitlist entries", resp.Message)

	var processed []ProcessedEntry
	require.NoError(t, json.Unmarshal(resp.Data, &processed))
	require.Len(t, processed, 1)
	require.NotNil(t, processed[0].Booking)
	assert.Equal(t, client.ID, processed[0].Booking.ClientID)

	w, resp = doRequest(t, router, http.MethodGet,
		"/api/v1/class-waitlist?organization_id="+f.orgID.String()+"&schedule_id="+schedule.ID.String()+"&status=waiting", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var waiting []WaitlistEntry
	require.NoError(t, json.Unmarshal(resp.Data, &waiting))
	assert.Empty(t, waiting)
}

func TestAddEndpointErrors(t *testing.T) {
	f := setupFixture(t)
	router := setupRouter(f, uuid.Nil)
	open := f.newSchedule(t, 5, 1, true)
	client := f.newClient(t, "eve")

	w, resp := doRequest(t, router, http.MethodPost, "/api/v1/class-waitlist", map[string]interface{}{
		"organization_id": f.orgID.String(),
		"schedule_id":     open.ID.String(),
		"client_id":       client.ID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Class still has available spots", resp.Error)

	w, resp = doRequest(t, router, http.MethodPost, "/api/v1/class-waitlist", map[string]interface{}{
		"organization_id": f.orgID.String(),
		"schedule_id":     uuid.NewString(),
		"client_id":       client.ID.String(),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Class not found", resp.Error)

	w, resp = doRequest(t, router, http.MethodPost, "/api/v1/class-waitlist", map[string]interface{}{
		"organization_id": "nope",
		"schedule_id":     open.ID.String(),
		"client_id":       client.ID.String(),
		"priority_score":  -2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", resp.Error)
	assert.Contains(t, string(resp.Details), "organization_id")
	assert.Contains(t, string(resp.Details), "priority_score")

	w, resp = doRequest(t, router, http.MethodPost, "/api/v1/class-waitlist", map[string]interface{}{
		"organization_id": f.orgID.String(),
		"schedule_id":     open.ID.String(),
		"client_id":       client.ID.String(),
		"expires_at":      "tomorrow",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", resp.Error)
}

func TestListEndpointRequiresOrganization(t *testing.T) {
	f := setupFixture(t)
	router := setupRouter(f, uuid.Nil)

	w, resp := doRequest(t, router, http.MethodGet, "/api/v1/class-waitlist", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(resp.Details), "organization_id")

	w, _ = doRequest(t, router, http.MethodGet, "/api/v1/class-waitlist?organization_id="+f.orgID.String()+"&status=pending", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	f := setupFixture(t)
	router := setupRouter(f, uuid.Nil)
	schedule := f.newSchedule(t, 1, 1, true)
	first := f.join(t, schedule, f.newClient(t, "first"), 0, true)
	second := f.join(t, schedule, f.newClient(t, "second"), 0, true)

	w, _ := doRequest(t, router, http.MethodDelete, "/api/v1/class-waitlist", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := doRequest(t, router, http.MethodDelete, "/api/v1/class-waitlist?waitlist_id="+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Waitlist entry not found", resp.Error)

	w, resp = doRequest(t, router, http.MethodDelete, "/api/v1/class-waitlist?waitlist_id="+first.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.ProcessedEntries)
	assert.Empty(t, resp.ProcessedEntries)
	assert.Contains(t, w.Body.String(), `"processed_entries":[]`)

	assert.Equal(t, 1, f.reload(t, second.ID).Position)
}

func TestUpdateEndpoint(t *testing.T) {
	f := setupFixture(t)
	router := setupRouter(f, uuid.Nil)
	schedule := f.newSchedule(t, 1, 1, true)
	entry := f.join(t, schedule, f.newClient(t, "ursula"), 0, true)

	w, resp := doRequest(t, router, http.MethodPut, "/api/v1/class-waitlist", map[string]interface{}{
		"waitlist_id":    entry.ID.String(),
		"priority_score": 8,
		"auto_book":      false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated WaitlistEntry
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, 8, updated.PriorityScore)
	assert.False(t, updated.AutoBook)

	w, _ = doRequest(t, router, http.MethodPut, "/api/v1/class-waitlist", map[string]interface{}{
		"waitlist_id": entry.ID.String(),
		"status":      "cancelled",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessEndpointReadsBody(t *testing.T) {
	f := setupFixture(t)
	router := setupRouter(f, uuid.Nil)
	schedule := f.newSchedule(t, 1, 1, true)

	w, resp := doRequest(t, router, http.MethodPatch, "/api/v1/class-waitlist", map[string]string{
		"schedule_id": schedule.ID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Processed 0 waitlist entries", resp.Message)

	w, _ = doRequest(t, router, http.MethodPatch, "/api/v1/class-waitlist", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	f := setupFixture(t)
	router := setupRouter(f, uuid.Nil)
	schedule := f.newSchedule(t, 1, 1, true)
	f.join(t, schedule, f.newClient(t, "stan"), 0, true)

	w, resp := doRequest(t, router, http.MethodGet,
		"/api/v1/class-waitlist/stats?organization_id="+f.orgID.String()+"&schedule_id="+schedule.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats WaitlistStatsResponse
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.EqualValues(t, 1, stats.WaitingCount)
	assert.Equal(t, 1, stats.MaxCapacity)
}

func TestOrganizationScopeFromToken(t *testing.T) {
	f := setupFixture(t)
	schedule := f.newSchedule(t, 1, 1, true)
	entry := f.join(t, schedule, f.newClient(t, "mallory"), 0, true)

	router := setupRouter(f, uuid.New())

	w, resp := doRequest(t, router, http.MethodGet, "/api/v1/class-waitlist?organization_id="+f.orgID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied for this organization", resp.Error)

	w, _ = doRequest(t, router, http.MethodDelete, "/api/v1/class-waitlist?waitlist_id="+entry.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doRequest(t, router, http.MethodPatch, "/api/v1/class-waitlist?schedule_id="+schedule.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	own := setupRouter(f, f.orgID)
	w, _ = doRequest(t, own, http.MethodGet, "/api/v1/class-waitlist?organization_id="+f.orgID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
