package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/sheetorders/internal/config"
	"github.com/JonMunkholm/sheetorders/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	result   *core.RunResult
	err      error
	records  []core.RunRecord
	trigger  string
	gotLimit int
}

func (f *fakeService) Execute(ctx context.Context) (*core.RunResult, error) {
	f.trigger = core.TriggerFromContext(ctx)
	return f.result, f.err
}

func (f *fakeService) History(limit int) []core.RunRecord {
	f.gotLimit = limit
	return f.records
}

func (f *fakeService) Lookup(runID string) (core.RunRecord, error) {
	for _, r := range f.records {
		if r.Result != nil && r.Result.RunID == runID {
			return r, nil
		}
	}
	return core.RunRecord{}, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
}

func (f *fakeService) RunStatus() core.RunGateStatus {
	return core.RunGateStatus{Waiting: 2}
}

func newTestServer(svc RunService, sec config.SecurityConfig) *Server {
	return NewServer(svc, &config.Config{
		Server:   config.ServerConfig{Port: 8080},
		Security: sec,
	})
}

func do(t *testing.T, s *Server, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeService{}, config.SecurityConfig{})

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Run.Running)
	assert.Nil(t, body.Run.Since)
	assert.Equal(t, 2, body.Run.Waiting)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestTriggerRun_Success(t *testing.T) {
	svc := &fakeService{result: &core.RunResult{
		RunID:          "run-1",
		RowsExamined:   3,
		MarkersWritten: 3,
		Orders:         []core.OrderPayload{{ID: "A1", Total: "1234.56", SourceRow: 2}},
	}}
	s := newTestServer(svc, config.SecurityConfig{})

	rec := do(t, s, http.MethodPost, "/api/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.TriggerHTTP, svc.trigger)

	var body core.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "1234.56", body.Orders[0].Total)
	assert.Contains(t, rec.Body.String(), `"source_row":2`)
}

func TestTriggerRun_Errors(t *testing.T) {
	tests := []struct {
		name       string
		result     *core.RunResult
		err        error
		wantStatus int
		wantCode   string
	}{
		{"run already active", nil, core.ErrRunInProgress, http.StatusTooManyRequests, "RUN001"},
		{"source unavailable", &core.RunResult{RunID: "run-2"},
			fmt.Errorf("%w: read rows: boom", core.ErrSourceUnavailable), http.StatusServiceUnavailable, "SRC004"},
		{"flush failed", &core.RunResult{RunID: "run-3"},
			fmt.Errorf("flush markers: %w", fmt.Errorf("write denied")), http.StatusInternalServerError, "WRT001"},
		{"timed out", &core.RunResult{RunID: "run-4"},
			fmt.Errorf("run cancelled after 100 rows: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "RUN003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeService{result: tt.result, err: tt.err}, config.SecurityConfig{})

			rec := do(t, s, http.MethodPost, "/api/runs", nil)
			require.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.result != nil {
				assert.Equal(t, tt.result.RunID, body.RunID)
			}
			if tt.wantStatus == http.StatusTooManyRequests {
				assert.Equal(t, "30", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestTriggerRun_APIKey(t *testing.T) {
	svc := &fakeService{result: &core.RunResult{RunID: "run-1"}}
	s := newTestServer(svc, config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}})

	rec := do(t, s, http.MethodPost, "/api/runs", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/runs", http.Header{"X-Api-Key": {"wrong"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/runs", http.Header{"X-Api-Key": {"secret"}})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Reads stay open.
	rec = do(t, s, http.MethodGet, "/api/runs", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListRuns(t *testing.T) {
	svc := &fakeService{records: []core.RunRecord{
		{Result: &core.RunResult{RunID: "run-2"}, Trigger: core.TriggerScheduler},
		{Result: &core.RunResult{RunID: "run-1"}, Error: "boom", Code: "ERR000"},
	}}
	s := newTestServer(svc, config.SecurityConfig{})

	rec := do(t, s, http.MethodGet, "/api/runs?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.gotLimit)

	var body RunListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 2)
	assert.Equal(t, "run-2", body.Runs[0].Result.RunID)
	assert.Equal(t, "ERR000", body.Runs[1].Code)

	do(t, s, http.MethodGet, "/api/runs?limit=abc", nil)
	assert.Equal(t, defaultHistoryLimit, svc.gotLimit)
}

func TestListRuns_EmptyIsArray(t *testing.T) {
	s := newTestServer(&fakeService{}, config.SecurityConfig{})

	rec := do(t, s, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs":[]}`, rec.Body.String())
}

func TestGetRun(t *testing.T) {
	svc := &fakeService{records: []core.RunRecord{{Result: &core.RunResult{RunID: "run-1"}}}}
	s := newTestServer(svc, config.SecurityConfig{})

	rec := do(t, s, http.MethodGet, "/api/runs/run-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"runId":"run-1"`))

	rec = do(t, s, http.MethodGet, "/api/runs/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RUN004", body.Code)
}

func TestServiceSatisfiesRunService(t *testing.T) {
	var _ RunService = (*core.Service)(nil)
}
