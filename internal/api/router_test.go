package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/featherlab/rankline/internal/config"
	"github.com/featherlab/rankline/internal/events"
	"github.com/featherlab/rankline/internal/feed"
	"github.com/featherlab/rankline/internal/scoring"
	"github.com/featherlab/rankline/internal/store"
)

// Mocks

type mockStore struct {
	runs    map[uuid.UUID]*store.RankingRun
	presets map[uuid.UUID]*store.WeightPreset
}

func newMockStore() *mockStore {
	return &mockStore{
		runs:    make(map[uuid.UUID]*store.RankingRun),
		presets: make(map[uuid.UUID]*store.WeightPreset),
	}
}

func (m *mockStore) CreateRun(_ context.Context, r *store.RankingRun) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.runs[r.ID] = r
	return nil
}
func (m *mockStore) GetRun(_ context.Context, id uuid.UUID) (*store.RankingRun, error) {
	return m.runs[id], nil
}
func (m *mockStore) ListRuns(_ context.Context, _ store.RunFilter) ([]*store.RankingRun, error) {
	var out []*store.RankingRun
	for _, r := range m.runs {
		out = append(out, r)
	}
	return out, nil
}
func (m *mockStore) DeleteRun(_ context.Context, id uuid.UUID) error {
	delete(m.runs, id)
	return nil
}
func (m *mockStore) CreatePreset(_ context.Context, p *store.WeightPreset) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.presets[p.ID] = p
	return nil
}
func (m *mockStore) GetPreset(_ context.Context, id uuid.UUID) (*store.WeightPreset, error) {
	return m.presets[id], nil
}
func (m *mockStore) ListPresets(_ context.Context) ([]*store.WeightPreset, error) {
	var out []*store.WeightPreset
	for _, p := range m.presets {
		out = append(out, p)
	}
	return out, nil
}
func (m *mockStore) UpdatePreset(_ context.Context, p *store.WeightPreset) error {
	p.UpdatedAt = time.Now()
	m.presets[p.ID] = p
	return nil
}
func (m *mockStore) DeletePreset(_ context.Context, id uuid.UUID) error {
	delete(m.presets, id)
	return nil
}
func (m *mockStore) Close() error { return nil }

type mockEvents struct {
	published []string
}

func (m *mockEvents) Publish(subject string, _ interface{}) error {
	m.published = append(m.published, subject)
	return nil
}
func (m *mockEvents) Subscribe(_ string, _ func(string, []byte)) error { return nil }
func (m *mockEvents) Close()                                           {}

func testRouter(t *testing.T, s store.Store, e events.Client) http.Handler {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Server.AdminToken = "secret"
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewRouter(s, e, cfg, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyze(t *testing.T) {
	router := testRouter(t, newMockStore(), &mockEvents{})

	w := doJSON(t, router, "POST", "/api/v1/analyze", AnalyzeRequest{
		Post: feed.PostInput{
			Content:       "Just shipped something new! What do you think?",
			Media:         feed.MediaImage,
			AuthorType:    feed.AuthorVerified,
			FollowerCount: 50000,
		},
	})

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalyzeResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.HeatScore, 0.0)
	assert.LessOrEqual(t, resp.HeatScore, 100.0)
	assert.NotEmpty(t, resp.HeatLevel)
	assert.GreaterOrEqual(t, resp.WeightedScore, 0.0)
}

func TestAnalyzeRejectsBadWeights(t *testing.T) {
	router := testRouter(t, newMockStore(), &mockEvents{})

	bad := scoring.DefaultWeights()
	bad.AuthorDiversityDecay = 5
	w := doJSON(t, router, "POST", "/api/v1/analyze", AnalyzeRequest{
		Post:    feed.PostInput{Content: "x"},
		Weights: &bad,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRankScenarioPersistsAndPublishes(t *testing.T) {
	ms := newMockStore()
	me := &mockEvents{}
	router := testRouter(t, ms, me)

	w := doJSON(t, router, "POST", "/api/v1/rank", RankRequest{Scenario: "for_you"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RankResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 50, resp.Result.InitialCount)
	assert.NotEmpty(t, resp.Result.Steps)
	assert.Len(t, ms.runs, 1)
	assert.Contains(t, me.published, events.SubjectRunCompleted)
}

func TestRankRequiresScenarioOrCandidates(t *testing.T) {
	router := testRouter(t, newMockStore(), &mockEvents{})

	w := doJSON(t, router, "POST", "/api/v1/rank", RankRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "POST", "/api/v1/rank", RankRequest{Scenario: "unknown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRankWithoutPersist(t *testing.T) {
	ms := newMockStore()
	router := testRouter(t, ms, &mockEvents{})

	persist := false
	w := doJSON(t, router, "POST", "/api/v1/rank", RankRequest{Scenario: "trending", Persist: &persist})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ms.runs)
}

func TestRunsLifecycle(t *testing.T) {
	ms := newMockStore()
	router := testRouter(t, ms, &mockEvents{})

	w := doJSON(t, router, "POST", "/api/v1/rank", RankRequest{Scenario: "following_feed"})
	assert.Equal(t, http.StatusOK, w.Code)
	var resp RankResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, router, "GET", "/api/v1/runs/"+resp.RunID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/runs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Delete requires the admin token.
	req := httptest.NewRequest("DELETE", "/api/v1/runs/"+resp.RunID, nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)

	req = httptest.NewRequest("DELETE", "/api/v1/runs/"+resp.RunID, nil)
	req.Header.Set("Authorization", "Bearer secret")
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNoContent, w2.Code)
	assert.Empty(t, ms.runs)
}

func TestPresetsCRUD(t *testing.T) {
	ms := newMockStore()
	me := &mockEvents{}
	router := testRouter(t, ms, me)

	w := doJSON(t, router, "POST", "/api/v1/presets", PresetRequest{
		Name:    "engagement-heavy",
		Weights: scoring.DefaultWeights(),
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var preset store.WeightPreset
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &preset))
	assert.Equal(t, "engagement-heavy", preset.Name)
	assert.Contains(t, me.published, events.SubjectPresetChanged)

	updated := scoring.DefaultWeights()
	updated.Favorite = 3.0
	w = doJSON(t, router, "PUT", "/api/v1/presets/"+preset.ID.String(), PresetRequest{
		Name:    "engagement-heavier",
		Weights: updated,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, ms.presets[preset.ID].Weights.Favorite)

	w = doJSON(t, router, "GET", "/api/v1/presets", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/api/v1/presets", PresetRequest{Weights: scoring.DefaultWeights()})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing name")
}

func TestCatalogEndpoints(t *testing.T) {
	router := testRouter(t, newMockStore(), &mockEvents{})

	for _, path := range []string{
		"/api/v1/scenarios",
		"/api/v1/filters",
		"/api/v1/scorers",
		"/api/v1/weights/default",
	} {
		w := doJSON(t, router, "GET", path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Body.Bytes(), path)
	}
}

func TestStoreRoutesUnavailableWithoutStore(t *testing.T) {
	router := testRouter(t, nil, &mockEvents{})

	w := doJSON(t, router, "GET", "/api/v1/runs", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// Ranking still works, it just skips persistence.
	w = doJSON(t, router, "POST", "/api/v1/rank", RankRequest{Scenario: "for_you"})
	assert.Equal(t, http.StatusOK, w.Code)
	var resp RankResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.RunID)
}

func TestHealthAndMetrics(t *testing.T) {
	router := NewMetricsRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
