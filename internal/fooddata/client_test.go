package fooddata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
)

func newFDCServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/foods/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req searchRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "apple", req.Query)
		assert.Equal(t, 2, req.PageSize)
		assert.Equal(t, DefaultDataTypes, req.DataType)

		_, _ = w.Write([]byte(`{"totalHits": 2, "foods": [
			{"fdcId": 1, "description": "Apple", "dataType": "Foundation"},
			{"fdcId": 2, "description": "Apple juice", "dataType": "Branded", "brandOwner": "Acme"}
		]}`))
	})
	mux.HandleFunc("/food/171688", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(mockFoodPayload))
	})
	mux.HandleFunc("/food/500", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/food/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SearchFoods(t *testing.T) {
	srv := newFDCServer(t)
	c := NewClient(srv.URL+"/", "test-key", time.Second)

	foods, err := c.SearchFoods(context.Background(), "apple", 2)
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, FoodSummary{FdcID: "1", Description: "Apple", DataType: "Foundation"}, foods[0])
	assert.Equal(t, "Acme", foods[1].BrandOwner)
}

func TestClient_GetFood(t *testing.T) {
	srv := newFDCServer(t)
	c := NewClient(srv.URL, "test-key", time.Second)

	food, err := c.GetFood(context.Background(), "171688")
	require.NoError(t, err)
	assert.Equal(t, "171688", food.FdcID)
	assert.Equal(t, "Apples, raw, with skin", food.Description)
	assert.Equal(t, 100.0, food.ServingSize)
	assert.Equal(t, "g", food.ServingSizeUnit)
	assert.Equal(t, 52.0, food.Nutrients().Calories)
}

func TestClient_Errors(t *testing.T) {
	srv := newFDCServer(t)

	t.Run("missing key", func(t *testing.T) {
		c := NewClient(srv.URL, "", time.Second)
		_, err := c.SearchFoods(context.Background(), "apple", 2)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		_, err = c.GetFood(context.Background(), "171688")
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("upstream status", func(t *testing.T) {
		c := NewClient(srv.URL, "test-key", time.Second)
		_, err := c.GetFood(context.Background(), "500")
		assert.ErrorContains(t, err, "status 500")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})

	t.Run("unreachable", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "test-key", time.Second)
		_, err := c.SearchFoods(context.Background(), "apple", 2)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})

	t.Run("timeout", func(t *testing.T) {
		c := NewClient(srv.URL, "test-key", 50*time.Millisecond)
		_, err := c.GetFood(context.Background(), "slow")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))
	})
}
