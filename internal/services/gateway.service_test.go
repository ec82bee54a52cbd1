package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linecheck/config"
	"linecheck/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatewayFixture(t *testing.T, handler http.HandlerFunc) *GatewayService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds := NewCredentialService(config.Config{OpsAPIToken: "test-token"})
	gateway, err := NewGatewayService(config.Config{OpsAPIURL: server.URL}, creds)
	require.NoError(t, err)

	return gateway
}

func TestNewGatewayServiceRequiresURL(t *testing.T) {
	creds := NewCredentialService(config.Config{})
	_, err := NewGatewayService(config.Config{}, creds)
	require.Error(t, err)
}

func TestFetchItems(t *testing.T) {
	items := []models.ChecklistItem{
		{ID: "a", Label: "Check fryer oil", IsRequired: true, ShiftType: models.ShiftOpening, Order: 1},
		{ID: "b", Label: "Stock napkins", ShiftType: models.ShiftOpening, Order: 2},
	}

	gateway := newGatewayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/checklist-items", r.URL.Path)
		assert.Equal(t, "opening", r.URL.Query().Get("type"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(items))
	})

	got, err := gateway.FetchItems(context.Background(), models.ShiftOpening)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestFetchCompletions(t *testing.T) {
	completedAt := time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC)
	completions := []models.ChecklistCompletion{
		{
			ID:          "c1",
			Type:        models.ShiftClosing,
			Items:       []models.CompletionItem{{ID: "a", IsCompleted: true}},
			CompletedBy: models.CompletedBy{ID: "u1", Name: "Sam"},
			CompletedAt: completedAt,
		},
	}

	gateway := newGatewayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/checklist-completions", r.URL.Path)
		assert.Equal(t, "closing", r.URL.Query().Get("type"))
		assert.Equal(t, "2024-03-10", r.URL.Query().Get("startDate"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(completions))
	})

	got, err := gateway.FetchCompletions(context.Background(), models.ShiftClosing, "2024-03-10")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
	assert.True(t, got[0].CompletedAt.Equal(completedAt))
}

func TestSubmitCompletion(t *testing.T) {
	gateway := newGatewayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/checklist-completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "opening", body["type"])
		assert.Equal(t, true, body["forcePartialSave"])
		assert.Len(t, body["items"], 2)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(models.ChecklistCompletion{
			ID:   "c2",
			Type: models.ShiftOpening,
		}))
	})

	completion, err := gateway.SubmitCompletion(
		context.Background(),
		models.ShiftOpening,
		models.CompletionSubmission{
			Items: []models.CompletionItem{
				{ID: "a", IsCompleted: true},
				{ID: "b", IsCompleted: false},
			},
			ForcePartialSave: true,
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "c2", completion.ID)
}

func TestGatewayErrorOnFailureStatus(t *testing.T) {
	gateway := newGatewayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := gateway.FetchItems(context.Background(), models.ShiftOpening)
	require.Error(t, err)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Equal(t, http.StatusUnauthorized, gatewayErr.StatusCode)
}

func TestGatewayErrorOnTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	creds := NewCredentialService(config.Config{})
	gateway, err := NewGatewayService(config.Config{OpsAPIURL: server.URL}, creds)
	require.NoError(t, err)

	_, err = gateway.FetchItems(context.Background(), models.ShiftOpening)
	require.Error(t, err)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Zero(t, gatewayErr.StatusCode)
}

func TestGatewayErrorOnMalformedResponse(t *testing.T) {
	gateway := newGatewayFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := gateway.FetchItems(context.Background(), models.ShiftOpening)
	require.Error(t, err)

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
}
