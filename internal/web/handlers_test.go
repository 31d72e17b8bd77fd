package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hquan/babytrack/internal/application/tracker"
	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/util"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	require.NoError(t, util.InitializeTimeProvider("UTC"))

	app, err := tracker.NewOrchestrator(&tracker.Config{
		DataDir:       t.TempDir(),
		Listen:        "127.0.0.1:0",
		BabyName:      "June",
		InsightSource: "canned",
	})
	require.NoError(t, err)
	return NewServer(app, false)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestAppendEntryArmsSchedule(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/entries", `{"type":"bottle","amount":4}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var entry model.LogEntry
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &entry))
	assert.NotEmpty(t, entry.Id)
	assert.Equal(t, model.EntryBottle, entry.Type)
	require.NotNil(t, entry.Amount)
	assert.Equal(t, 4.0, *entry.Amount)

	// Logging a feeding schedules the next one
	w = doJSON(t, s, http.MethodGet, "/api/schedule", "")
	require.Equal(t, http.StatusOK, w.Code)

	var schedule struct {
		NextFeedingAt *int64             `json:"nextFeedingAt"`
		AlertVisible  bool               `json:"alertVisible"`
		Phase         model.SchedulePhase `json:"phase"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &schedule))
	require.NotNil(t, schedule.NextFeedingAt)
	assert.False(t, schedule.AlertVisible)
	assert.Equal(t, model.PhaseArmed, schedule.Phase)
}

func TestAppendEntryRejectsUnknownType(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/entries", `{"type":"snack"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEntriesWithLimit(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/entries", `{"type":"diaper_wet"}`)
	doJSON(t, s, http.MethodPost, "/api/entries", `{"type":"diaper_dirty"}`)
	doJSON(t, s, http.MethodPost, "/api/entries", `{"type":"bottle"}`)

	w := doJSON(t, s, http.MethodGet, "/api/entries?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []model.LogEntry
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	// Newest first
	assert.Equal(t, model.EntryBottle, entries[0].Type)

	w = doJSON(t, s, http.MethodGet, "/api/entries?limit=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndRemoveAreSilentForUnknownIds(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPatch, "/api/entries/nope", `{"amount":2}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/entries/nope", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUpdateAmount(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/entries", `{"type":"bottle","amount":3}`)
	var entry model.LogEntry
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &entry))

	w = doJSON(t, s, http.MethodPatch, "/api/entries/"+entry.Id, `{"amount":5.5}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/entries", "")
	var entries []model.LogEntry
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Amount)
	assert.Equal(t, 5.5, *entries[0].Amount)
}

func TestSummary(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/entries", `{"type":"breast_left","duration":12}`)

	w := doJSON(t, s, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Breast (left)")
}

func TestSetScheduleByClockTime(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/schedule", `{"hour":23,"minute":59}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/schedule", `{"hour":24,"minute":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/schedule", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustAndClearSchedule(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/schedule/adjust", `{"deltaMinutes":30}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nextFeedingAt")

	w = doJSON(t, s, http.MethodDelete, "/api/schedule", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/schedule", "")
	var schedule struct {
		NextFeedingAt *int64 `json:"nextFeedingAt"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &schedule))
	assert.Nil(t, schedule.NextFeedingAt)
}

func TestDismissAlert(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/schedule/dismiss", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTimerLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/timers/sleep/start", "")
	require.Equal(t, http.StatusCreated, w.Code)

	// Second start reports the running session instead of restarting it
	w = doJSON(t, s, http.MethodPost, "/api/timers/sleep/start", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/timers", "")
	require.Equal(t, http.StatusOK, w.Code)
	var active []model.ActiveTimer
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &active))
	require.Len(t, active, 1)
	assert.Equal(t, model.EntrySleep, active[0].Type)

	w = doJSON(t, s, http.MethodPost, "/api/timers/sleep/stop", "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/timers/sleep/stop", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimerRejectsNonTimedType(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/timers/bottle/start", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInsightSlotLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/insights", "")
	assert.Equal(t, http.StatusNoContent, w.Code, "nothing requested yet")

	w = doJSON(t, s, http.MethodPost, "/api/insights", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "summary")

	w = doJSON(t, s, http.MethodGet, "/api/insights", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "updatedAt")
}

func TestParse(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/parse", `{"text":"bottle 4 oz"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bottle"`)

	w = doJSON(t, s, http.MethodPost, "/api/parse", `{"text":"nothing to see"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/parse", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestServer(t)

	// Falls back to the configured name before anything was stored
	w := doJSON(t, s, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "June")

	w = doJSON(t, s, http.MethodPut, "/api/profile", `{"name":"Junie","photoUri":"data:image/png;base64,AAAA"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/profile", "")
	var profile model.Profile
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Junie", profile.Name)
	assert.Equal(t, "data:image/png;base64,AAAA", profile.PhotoURI)
}

func TestSetPermission(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPut, "/api/permission", `{"state":"granted"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodPut, "/api/permission", `{"state":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
