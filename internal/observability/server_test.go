package observability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotViewReflectsRecordedStatus(t *testing.T) {
	snapshot := NewSnapshot(time.Now())
	snapshot.Record("Bucket", KindStatus{
		Name:               "my-bucket",
		Namespace:          "default",
		ObservedGeneration: 3,
		LastReconciledAt:   time.Now(),
	})

	view := snapshot.View()
	if assert.Len(t, view.Bucket, 1) {
		assert.Equal(t, "my-bucket", view.Bucket[0].Name)
		assert.Equal(t, int64(3), view.Bucket[0].ObservedGeneration)
	}
	assert.Empty(t, view.Garage)
	assert.Empty(t, view.AccessKey)
}

func TestMetricsEndpointServesPrometheusText(t *testing.T) {
	snapshot := NewSnapshot(time.Now())
	server := httptest.NewServer(newMux(snapshot))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestHealthEndpointReturnsOK(t *testing.T) {
	snapshot := NewSnapshot(time.Now())
	server := httptest.NewServer(newMux(snapshot))
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRootEndpointReturnsSnapshotView(t *testing.T) {
	snapshot := NewSnapshot(time.Now())
	snapshot.Record("Garage", KindStatus{Name: "cluster", Namespace: "default"})
	server := httptest.NewServer(newMux(snapshot))
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// spec.md §6: GET / -> {garage: [...], bucket: [...], accesskey: [...]}.
	var raw map[string]json.RawMessage
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Contains(t, raw, "garage")
	assert.Contains(t, raw, "bucket")
	assert.Contains(t, raw, "accesskey")

	var garageEntries []KindStatus
	assert.NoError(t, json.Unmarshal(raw["garage"], &garageEntries))
	if assert.Len(t, garageEntries, 1) {
		assert.Equal(t, "cluster", garageEntries[0].Name)
	}
}
