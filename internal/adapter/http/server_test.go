package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/http"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUpdater struct {
	readyErr   error
	triggerErr error
	result     domain.UpdateResult
	calls      int
}

func (m *mockUpdater) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockUpdater) Trigger(_ context.Context) (domain.Invocation, domain.UpdateResult, error) {
	m.calls++
	inv := domain.Invocation{Sequence: uint64(m.calls), RunID: "run-" + fmt.Sprint(m.calls)}
	if m.triggerErr != nil {
		return inv, domain.UpdateResult{}, m.triggerErr
	}
	return inv, m.result, nil
}

type fixedConditions struct {
	snap pipeline.Snapshot
}

func (f fixedConditions) Snapshot() pipeline.Snapshot { return f.snap }

func sampleResult() domain.UpdateResult {
	return domain.UpdateResult{
		Current: domain.CurrentWeather{
			Temperature:   domain.Measured(27.5),
			Precipitation: domain.Measured(35),
			Humidity:      domain.Measured(88),
			WindSpeed:     domain.Unknown(),
		},
		Tide:          domain.TideSnapshot{CurrentHeight: domain.Measured(2.5), CurrentStatus: "enchente"},
		Risk:          domain.Score(domain.Measured(35), domain.Measured(2.5)),
		WeatherOrigin: domain.OriginCache,
		TideOrigin:    domain.OriginLive,
		Notes:         []string{domain.NoteCachedWeather},
		Timestamp:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestServer(updater *mockUpdater, snap pipeline.Snapshot) *httpadapter.Server {
	return httpadapter.NewServer(":0", updater, fixedConditions{snap: snap}, slog.Default())
}

func serve(srv *httpadapter.Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(&mockUpdater{}, pipeline.Snapshot{}), http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(&mockUpdater{}, pipeline.Snapshot{}), http.MethodGet, "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	updater := &mockUpdater{readyErr: errors.New("no update has completed yet")}
	rec := serve(newTestServer(updater, pipeline.Snapshot{}), http.MethodGet, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no update has completed yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(&mockUpdater{}, pipeline.Snapshot{}), http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestConditions_NoDataYet(t *testing.T) {
	snap := pipeline.Snapshot{LastFailure: "update failed: no data available"}
	rec := serve(newTestServer(&mockUpdater{}, snap), http.MethodGet, "/api/v1/conditions")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no data yet", body["status"])
	assert.Equal(t, "update failed: no data available", body["error"])
}

func TestConditions_ReturnsLatestResult(t *testing.T) {
	result := sampleResult()
	snap := pipeline.Snapshot{Invocation: domain.Invocation{Sequence: 4, RunID: "abc"}, Result: &result}
	rec := serve(newTestServer(&mockUpdater{}, snap), http.MethodGet, "/api/v1/conditions")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Invocation domain.Invocation   `json:"invocation"`
		Result     domain.UpdateResult `json:"result"`
		StatusNote string              `json:"status_note"`
		Reasons    []string            `json:"display_reasons"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(4), body.Invocation.Sequence)
	assert.Equal(t, domain.RiskHigh, body.Result.Risk.Level)
	assert.Equal(t, domain.Measured(35), body.Result.Current.Precipitation)
	assert.False(t, body.Result.Current.WindSpeed.Known, "unknown values travel as null")
	assert.Equal(t, "(cached data)", body.StatusNote)
	assert.Equal(t, []string{"heavy rain: 35mm", "high tide: 2.5m", "rain+tide combination"}, body.Reasons)
}

func TestRefresh_TriggersUpdate(t *testing.T) {
	updater := &mockUpdater{result: sampleResult()}
	rec := serve(newTestServer(updater, pipeline.Snapshot{}), http.MethodPost, "/api/v1/refresh")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, updater.calls)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "(cached data)", body["status_note"])
}

func TestRefresh_Failure(t *testing.T) {
	updater := &mockUpdater{triggerErr: pipeline.ErrUpdateFailed}
	rec := serve(newTestServer(updater, pipeline.Snapshot{}), http.MethodPost, "/api/v1/refresh")

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed", body["status"])
	assert.Contains(t, body["error"], "no data available")
}

func TestRefresh_RejectsGet(t *testing.T) {
	updater := &mockUpdater{}
	rec := serve(newTestServer(updater, pipeline.Snapshot{}), http.MethodGet, "/api/v1/refresh")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Zero(t, updater.calls)
}
