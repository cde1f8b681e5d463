package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/auth"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
)

func claimsWith(scopes ...string) *auth.Claims {
	scopeSet := make(map[string]struct{}, len(scopes))
	for _, scope := range scopes {
		scopeSet[scope] = struct{}{}
	}
	return &auth.Claims{
		Subject:   "tester",
		ClubID:    "club-1",
		Scopes:    scopeSet,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func authorized(req *http.Request, claims *auth.Claims) *http.Request {
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestRecordActivitySuccess(t *testing.T) {
	records := &mockRecords{}
	service := domain.NewService(records, &mockLedger{})
	handler := NewHandler(service, &mockRunner{})

	body := `{
		"athlete_id": 7,
		"activity_id": 42,
		"athlete_name": "Marcelo",
		"activity_type": "Ride",
		"date_time": "6:19 PM on Tuesday, November 15, 2022",
		"moving_time": "30:00",
		"link": "https://www.strava.com/activities/42"
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(body))
	req = authorized(req, claimsWith(auth.ScopeActivitiesWrite))

	rr := httptest.NewRecorder()
	handler.recordActivity(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp RecordActivityResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ActivityID != 42 || resp.Replay {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(records.created) != 1 {
		t.Fatalf("expected 1 created record got %d", len(records.created))
	}
	if records.created[0].MovingTime == nil || *records.created[0].MovingTime != 30*time.Minute {
		t.Fatalf("expected parsed moving time, got %+v", records.created[0].MovingTime)
	}
}

func TestRecordActivityReplayReturnsOK(t *testing.T) {
	at := time.Date(2022, time.November, 15, 18, 19, 0, 0, time.UTC)
	records := &mockRecords{existing: &domain.ActivityRecord{AthleteID: 7, ActivityID: 42, DateTime: &at}}
	service := domain.NewService(records, &mockLedger{})
	handler := NewHandler(service, &mockRunner{})

	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(`{"athlete_id":7,"activity_id":42}`))
	req = authorized(req, claimsWith(auth.ScopeActivitiesWrite))

	rr := httptest.NewRecorder()
	handler.recordActivity(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp RecordActivityResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Replay {
		t.Fatal("expected idempotent_replay true")
	}
}

func TestRecordActivityRejectsMalformedDuration(t *testing.T) {
	service := domain.NewService(&mockRecords{}, &mockLedger{})
	handler := NewHandler(service, &mockRunner{})

	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(`{"athlete_id":7,"activity_id":42,"moving_time":"abc"}`))
	req = authorized(req, claimsWith(auth.ScopeActivitiesWrite))

	rr := httptest.NewRecorder()
	handler.recordActivity(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRecordActivityRequiresWriteScope(t *testing.T) {
	service := domain.NewService(&mockRecords{}, &mockLedger{})
	handler := NewHandler(service, &mockRunner{})

	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(`{"athlete_id":7,"activity_id":42}`))
	req = authorized(req, claimsWith(auth.ScopeActivitiesRead))

	rr := httptest.NewRecorder()
	handler.recordActivity(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestGetActivityNotFound(t *testing.T) {
	service := domain.NewService(&mockRecords{}, &mockLedger{})
	handler := NewHandler(service, &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/v1/activities/7/42", nil)
	req = authorized(req, claimsWith(auth.ScopeActivitiesRead))

	rr := httptest.NewRecorder()
	handler.activityByID(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestListActivitiesRequiresAthleteID(t *testing.T) {
	service := domain.NewService(&mockRecords{}, &mockLedger{})
	handler := NewHandler(service, &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	req = authorized(req, claimsWith(auth.ScopeActivitiesRead))

	rr := httptest.NewRecorder()
	handler.listActivities(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestScoreRunsTriggersRecompute(t *testing.T) {
	service := domain.NewService(&mockRecords{}, &mockLedger{})
	runner := &mockRunner{run: domain.ScoreRun{
		RunID:       "run-1",
		ClubID:      "club-1",
		Records:     4,
		Entries:     7,
		TotalPoints: 317,
		ComputedAt:  time.Now().UTC(),
	}}
	handler := NewHandler(service, runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/score-runs", nil)
	req = authorized(req, claimsWith(auth.ScopeScoresWrite))

	rr := httptest.NewRecorder()
	handler.scoreRuns(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}
	if runner.club != "club-1" {
		t.Fatalf("expected run for club-1, got %q", runner.club)
	}

	var resp ScoreRunResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RunID != "run-1" || resp.TotalPoints != 317 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestScoreRunsReportsFailure(t *testing.T) {
	service := domain.NewService(&mockRecords{}, &mockLedger{})
	runner := &mockRunner{err: errors.New("snapshot unavailable")}
	handler := NewHandler(service, runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/score-runs", nil)
	req = authorized(req, claimsWith(auth.ScopeScoresWrite))

	rr := httptest.NewRecorder()
	handler.scoreRuns(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
}

func TestPointsByAthlete(t *testing.T) {
	ledger := &mockLedger{entries: []domain.PointEntry{
		{AthleteID: 7, DateTime: time.Date(2022, time.November, 15, 0, 0, 0, 0, time.UTC), RaisedPoints: "Atividade x", Points: 30},
		{AthleteID: 7, DateTime: time.Date(2022, time.November, 16, 0, 0, 0, 0, time.UTC), RaisedPoints: "Evento bônus no dia 2022-11-30", Points: 100},
	}}
	service := domain.NewService(&mockRecords{}, ledger)
	handler := NewHandler(service, &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/v1/points?athlete_id=7", nil)
	req = authorized(req, claimsWith(auth.ScopeScoresRead))

	rr := httptest.NewRecorder()
	handler.points(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp PointsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 130 {
		t.Fatalf("expected total 130 got %v", resp.Total)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("expected 2 entries got %d", len(resp.Entries))
	}
}

func TestLeaderboardRanksRows(t *testing.T) {
	ledger := &mockLedger{board: []domain.LeaderboardRow{
		{AthleteID: 2, AthleteName: "Ana", Points: 540, Entries: 9},
		{AthleteID: 7, AthleteName: "Marcelo", Points: 130, Entries: 2},
	}}
	service := domain.NewService(&mockRecords{}, ledger)
	handler := NewHandler(service, &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil)
	req = authorized(req, claimsWith(auth.ScopeScoresRead))

	rr := httptest.NewRecorder()
	handler.leaderboard(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp LeaderboardResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(resp.Rows))
	}
	if resp.Rows[0].Rank != 1 || resp.Rows[0].AthleteID != 2 {
		t.Fatalf("unexpected first row %+v", resp.Rows[0])
	}
	if resp.Rows[1].Rank != 2 {
		t.Fatalf("unexpected second row %+v", resp.Rows[1])
	}
}

func TestUnauthorizedWithoutClaims(t *testing.T) {
	service := domain.NewService(&mockRecords{}, &mockLedger{})
	handler := NewHandler(service, &mockRunner{})

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil)
	rr := httptest.NewRecorder()
	handler.leaderboard(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

type mockRecords struct {
	existing *domain.ActivityRecord
	created  []domain.ActivityRecord
}

func (m *mockRecords) FindByActivity(ctx context.Context, clubID string, athleteID, activityID int64) (*domain.ActivityRecord, error) {
	if m.existing != nil && m.existing.AthleteID == athleteID && m.existing.ActivityID == activityID {
		return m.existing, nil
	}
	return nil, nil
}

func (m *mockRecords) Create(ctx context.Context, clubID string, record domain.ActivityRecord) error {
	m.created = append(m.created, record)
	return nil
}

func (m *mockRecords) ListByAthlete(ctx context.Context, clubID string, athleteID int64, cursor *domain.Cursor, limit int) ([]domain.ActivityRecord, *domain.Cursor, error) {
	return nil, nil, nil
}

func (m *mockRecords) Snapshot(ctx context.Context, clubID string) ([]domain.ActivityRecord, error) {
	return nil, nil
}

type mockLedger struct {
	entries []domain.PointEntry
	board   []domain.LeaderboardRow
}

func (m *mockLedger) Replace(ctx context.Context, run domain.ScoreRun, entries []domain.PointEntry) error {
	return nil
}

func (m *mockLedger) ListByAthlete(ctx context.Context, clubID string, athleteID int64) ([]domain.PointEntry, error) {
	return m.entries, nil
}

func (m *mockLedger) Leaderboard(ctx context.Context, clubID string) ([]domain.LeaderboardRow, error) {
	return m.board, nil
}

type mockRunner struct {
	club string
	run  domain.ScoreRun
	err  error
}

func (m *mockRunner) Run(ctx context.Context, clubID string) (domain.ScoreRun, error) {
	m.club = clubID
	if m.err != nil {
		return domain.ScoreRun{}, m.err
	}
	return m.run, nil
}
