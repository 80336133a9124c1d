package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-client/internal/testutil"
)

func TestHealth_ReturnsOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	Health(w, req)

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertHeader(t, w, "Content-Type", "application/json")

	var response map[string]string
	err := json.NewDecoder(w.Body).Decode(&response)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, response["status"], "ok")
}

func TestHealthCheckResult_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(HealthCheckResult{Status: "up"})
	testutil.AssertNoError(t, err)

	jsonStr := string(data)
	testutil.AssertNotContains(t, jsonStr, "latency_ms")
	testutil.AssertNotContains(t, jsonStr, "error")
	testutil.AssertNotContains(t, jsonStr, "metadata")
}

type readyResponse struct {
	Status string                       `json:"status"`
	Checks map[string]HealthCheckResult `json:"checks"`
}

func TestReady(t *testing.T) {
	up := func(context.Context) (map[string]any, error) {
		return map[string]any{"driver": "memory"}, nil
	}
	down := func(context.Context) (map[string]any, error) {
		return nil, errors.New("connection refused")
	}

	t.Run("all_checks_up", func(t *testing.T) {
		w := httptest.NewRecorder()
		Ready(map[string]Check{"storage": up, "rabbitmq": up})(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		testutil.AssertStatusCode(t, w, http.StatusOK)
		resp := testutil.DecodeJSON[readyResponse](t, w)
		testutil.AssertEqual(t, resp.Status, "ready")
		testutil.AssertEqual(t, resp.Checks["storage"].Status, "up")
		testutil.AssertEqual(t, resp.Checks["storage"].Metadata["driver"], any("memory"))
	})

	t.Run("one_check_down", func(t *testing.T) {
		w := httptest.NewRecorder()
		Ready(map[string]Check{"storage": up, "remote": down})(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		testutil.AssertStatusCode(t, w, http.StatusServiceUnavailable)
		resp := testutil.DecodeJSON[readyResponse](t, w)
		testutil.AssertEqual(t, resp.Status, "not_ready")
		testutil.AssertEqual(t, resp.Checks["remote"].Status, "down")
		testutil.AssertEqual(t, resp.Checks["remote"].Error, "connection refused")
	})

	t.Run("no_checks_is_ready", func(t *testing.T) {
		w := httptest.NewRecorder()
		Ready(nil)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		testutil.AssertStatusCode(t, w, http.StatusOK)
	})
}

// Benchmark health endpoint
func BenchmarkHealth(b *testing.B) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		Health(w, req)
	}
}
