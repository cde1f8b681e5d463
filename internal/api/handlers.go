// Package api exposes HTTP handlers for the club points service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/auth"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/calendar"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/domain"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/persistence"
)

// ScoreRunner triggers a full ledger recompute for a club.
type ScoreRunner interface {
	Run(ctx context.Context, clubID string) (domain.ScoreRun, error)
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	runner  ScoreRunner
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, runner ScoreRunner) *Handler {
	return &Handler{service: service, runner: runner}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/score-runs", h.scoreRuns)
	mux.HandleFunc("/v1/points", h.points)
	mux.HandleFunc("/v1/leaderboard", h.leaderboard)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.recordActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "expected /v1/activities/{athlete_id}/{activity_id}")
		return
	}

	athleteID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid athlete id")
		return
	}
	activityID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid activity id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getActivity(w, r, athleteID, activityID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) recordActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeActivitiesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope activities:write required")
		return
	}

	var req RecordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	record, replay, err := h.service.RecordActivity(r.Context(), domain.RecordActivityInput{
		ClubID:       claims.ClubID,
		AthleteID:    req.AthleteID,
		ActivityID:   req.ActivityID,
		AthleteName:  req.AthleteName,
		ActivityType: req.ActivityType,
		ActivityName: req.ActivityName,
		Location:     req.Location,
		Link:         req.Link,
		DateTime:     req.DateTime,
		MovingTime:   req.MovingTime,
		ElapsedTime:  req.ElapsedTime,
		Duration:     req.Duration,
		Calories:     req.Calories,
		Distance:     req.Distance,
		Elevation:    req.Elevation,
		Pace:         req.Pace,
	})
	if err != nil {
		if errors.Is(err, calendar.ErrMalformedDuration) || errors.Is(err, calendar.ErrMalformedTimestamp) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := RecordActivityResponse{
		AthleteID:  record.AthleteID,
		ActivityID: record.ActivityID,
		Replay:     replay,
	}

	status := http.StatusAccepted
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, athleteID, activityID int64) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeActivitiesRead) && !claims.HasScope(auth.ScopeActivitiesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope activities:read required")
		return
	}

	record, err := h.service.GetActivity(r.Context(), claims.ClubID, athleteID, activityID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "activity record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toActivityView(*record))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeActivitiesRead) && !claims.HasScope(auth.ScopeActivitiesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope activities:read required")
		return
	}

	rawAthlete := r.URL.Query().Get("athlete_id")
	if rawAthlete == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing athlete_id parameter")
		return
	}
	athleteID, err := strconv.ParseInt(rawAthlete, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid athlete_id parameter")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursorToken := r.URL.Query().Get("cursor")
	cursor, err := persistence.DecodeCursor(cursorToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	records, next, err := h.service.ListActivitiesByAthlete(r.Context(), claims.ClubID, athleteID, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ActivityView, 0, len(records))
	for _, record := range records {
		items = append(items, toActivityView(record))
	}

	resp := ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) scoreRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeScoresWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope scores:write required")
		return
	}

	run, err := h.runner.Run(r.Context(), claims.ClubID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, ScoreRunResponse{
		RunID:       run.RunID,
		Records:     run.Records,
		Entries:     run.Entries,
		TotalPoints: run.TotalPoints,
		ComputedAt:  run.ComputedAt,
	})
}

func (h *Handler) points(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeScoresRead) && !claims.HasScope(auth.ScopeScoresWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope scores:read required")
		return
	}

	rawAthlete := r.URL.Query().Get("athlete_id")
	if rawAthlete == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing athlete_id parameter")
		return
	}
	athleteID, err := strconv.ParseInt(rawAthlete, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid athlete_id parameter")
		return
	}

	entries, err := h.service.PointsByAthlete(r.Context(), claims.ClubID, athleteID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	views := make([]PointEntryView, 0, len(entries))
	total := 0.0
	for _, entry := range entries {
		views = append(views, PointEntryView{
			AthleteID:    entry.AthleteID,
			DateTime:     entry.DateTime,
			RaisedPoints: entry.RaisedPoints,
			Points:       entry.Points,
		})
		total += entry.Points
	}

	writeJSON(w, http.StatusOK, PointsResponse{
		AthleteID: athleteID,
		Total:     total,
		Entries:   views,
	})
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeScoresRead) && !claims.HasScope(auth.ScopeScoresWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope scores:read required")
		return
	}

	rows, err := h.service.Leaderboard(r.Context(), claims.ClubID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	views := make([]LeaderboardView, 0, len(rows))
	for i, row := range rows {
		views = append(views, LeaderboardView{
			Rank:        i + 1,
			AthleteID:   row.AthleteID,
			AthleteName: row.AthleteName,
			Points:      row.Points,
			Entries:     row.Entries,
		})
	}

	writeJSON(w, http.StatusOK, LeaderboardResponse{Rows: views})
}

// RecordActivityRequest is the payload for POST /v1/activities. Duration and
// timestamp fields arrive as the scraper collected them, still in page string
// form.
type RecordActivityRequest struct {
	AthleteID    int64  `json:"athlete_id"`
	ActivityID   int64  `json:"activity_id"`
	AthleteName  string `json:"athlete_name"`
	ActivityType string `json:"activity_type"`
	ActivityName string `json:"activity_name"`
	Location     string `json:"location"`
	Link         string `json:"link"`
	DateTime     string `json:"date_time"`
	MovingTime   string `json:"moving_time"`
	ElapsedTime  string `json:"elapsed_time"`
	Duration     string `json:"duration"`
	Calories     string `json:"calories"`
	Distance     string `json:"distance"`
	Elevation    string `json:"elevation"`
	Pace         string `json:"pace"`
}

// Validate ensures request correctness.
func (r RecordActivityRequest) Validate() error {
	if r.AthleteID <= 0 {
		return errors.New("athlete_id must be > 0")
	}
	if r.ActivityID <= 0 {
		return errors.New("activity_id must be > 0")
	}
	return nil
}

// RecordActivityResponse describes the response body for record ingestion.
type RecordActivityResponse struct {
	AthleteID  int64 `json:"athlete_id"`
	ActivityID int64 `json:"activity_id"`
	Replay     bool  `json:"idempotent_replay"`
}

// ActivityView exposes full details about one activity record.
type ActivityView struct {
	AthleteID    int64      `json:"athlete_id"`
	ActivityID   int64      `json:"activity_id"`
	AthleteName  string     `json:"athlete_name,omitempty"`
	ActivityType string     `json:"activity_type,omitempty"`
	ActivityName string     `json:"activity_name,omitempty"`
	Location     string     `json:"location,omitempty"`
	Link         string     `json:"link,omitempty"`
	DateTime     *time.Time `json:"date_time,omitempty"`
	Week         string     `json:"week,omitempty"`
	MovingTime   string     `json:"moving_time,omitempty"`
	ElapsedTime  string     `json:"elapsed_time,omitempty"`
	Duration     string     `json:"duration,omitempty"`
	Calories     *float64   `json:"calories,omitempty"`
	Distance     *float64   `json:"distance,omitempty"`
	Elevation    *float64   `json:"elevation,omitempty"`
	Pace         string     `json:"pace,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ScoreRunResponse summarises a completed scoring run.
type ScoreRunResponse struct {
	RunID       string    `json:"run_id"`
	Records     int       `json:"records"`
	Entries     int       `json:"entries"`
	TotalPoints float64   `json:"total_points"`
	ComputedAt  time.Time `json:"computed_at"`
}

// PointEntryView is one ledger row in API form.
type PointEntryView struct {
	AthleteID    int64     `json:"athlete_id"`
	DateTime     time.Time `json:"date_time"`
	RaisedPoints string    `json:"raised_points"`
	Points       float64   `json:"points"`
}

// PointsResponse packages one athlete's ledger.
type PointsResponse struct {
	AthleteID int64            `json:"athlete_id"`
	Total     float64          `json:"total"`
	Entries   []PointEntryView `json:"entries"`
}

// LeaderboardView is one ranked leaderboard row.
type LeaderboardView struct {
	Rank        int     `json:"rank"`
	AthleteID   int64   `json:"athlete_id"`
	AthleteName string  `json:"athlete_name,omitempty"`
	Points      float64 `json:"points"`
	Entries     int     `json:"entries"`
}

// LeaderboardResponse packages the ranked rows.
type LeaderboardResponse struct {
	Rows []LeaderboardView `json:"rows"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(record domain.ActivityRecord) ActivityView {
	view := ActivityView{
		AthleteID:    record.AthleteID,
		ActivityID:   record.ActivityID,
		AthleteName:  record.AthleteName,
		ActivityType: record.ActivityType,
		ActivityName: record.ActivityName,
		Location:     record.Location,
		Link:         record.Link,
		DateTime:     record.DateTime,
		Week:         record.Week(),
		Pace:         record.Pace,
		Calories:     record.Calories,
		Distance:     record.Distance,
		Elevation:    record.Elevation,
		UpdatedAt:    record.UpdatedAt,
	}
	if record.MovingTime != nil {
		view.MovingTime = calendar.FormatClock(*record.MovingTime)
	}
	if record.ElapsedTime != nil {
		view.ElapsedTime = calendar.FormatClock(*record.ElapsedTime)
	}
	if record.Duration != nil {
		view.Duration = calendar.FormatClock(*record.Duration)
	}
	return view
}
