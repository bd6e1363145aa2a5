package garageadmin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deuxfleurs-fr/garage-operator/internal/garageadmin"
)

func TestCreateBucket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bucket", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "abc123"})
	}))
	defer server.Close()

	client := garageadmin.NewClient(server.URL, "test-token")
	id, err := client.CreateBucket(context.Background(), "default.my-bucket")
	assert.NoError(t, err)
	assert.Equal(t, "abc123", id)
}

func TestGetBucketNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"bucket not found"}`))
	}))
	defer server.Close()

	client := garageadmin.NewClient(server.URL, "test-token")
	_, err := client.GetBucket(context.Background(), "missing-id", "")
	assert.Error(t, err)
	assert.True(t, garageadmin.IsNotFound(err))
}

func TestDeleteKeyConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "some-key", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"key still granted on a bucket"}`))
	}))
	defer server.Close()

	client := garageadmin.NewClient(server.URL, "test-token")
	err := client.DeleteKey(context.Background(), "some-key")
	assert.Error(t, err)
	assert.True(t, garageadmin.IsConflict(err))
}

func TestApplyLayoutReturnsVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Assignments []garageadmin.LayoutAssignment `json:"assignments"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Assignments, 1)
		_ = json.NewEncoder(w).Encode(map[string]int64{"version": 2})
	}))
	defer server.Close()

	client := garageadmin.NewClient(server.URL, "test-token")
	capacity := uint64(10 * 1024 * 1024 * 1024)
	version, err := client.ApplyLayout(context.Background(), []garageadmin.LayoutAssignment{
		{ID: "node-1", Zone: "default", Capacity: &capacity, Tags: []string{}},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), version)
}
