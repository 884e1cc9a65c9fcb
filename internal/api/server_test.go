package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-transfers/internal/cache"
	"github.com/albapepper/scoracle-transfers/internal/config"
	"github.com/albapepper/scoracle-transfers/internal/db"
)

// fakeRow scans a canned value into the first destination.
type fakeRow struct {
	value any
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	switch d := dest[0].(type) {
	case *[]byte:
		*d = r.value.([]byte)
	case *int:
		*d = r.value.(int)
	case *[]int:
		*d = r.value.([]int)
	default:
		return errors.New("unsupported scan target")
	}
	return nil
}

type call struct {
	sql  string
	args []any
}

type fakeDB struct {
	mu    sync.Mutex
	rows  map[string]fakeRow
	calls []call
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{sql, args})
	row, ok := f.rows[sql]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return row
}

func testConfig() *config.Config {
	return &config.Config{
		CORSAllowOrigins:  []string{"http://localhost:3000"},
		RateLimitEnabled:  false,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

func serve(t *testing.T, h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	fdb := &fakeDB{rows: map[string]fakeRow{db.StmtHealthCheck: {value: 1}}}
	router := NewRouter(fdb, cache.New(true), testConfig())

	rec := serve(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))

	rec = serve(t, router, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"connected"`)

	fdb.rows[db.StmtHealthCheck] = fakeRow{err: errors.New("connection refused")}
	rec = serve(t, router, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(t, router, http.MethodGet, "/health/cache", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active_keys"`)
}

func TestDocsHiddenInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "development"
	rec := serve(t, NewRouter(&fakeDB{}, cache.New(true), cfg), http.MethodGet, "/docs/index.html", nil)
	assert.NotEqual(t, http.StatusNotFound, rec.Code)

	cfg.Environment = "production"
	rec = serve(t, NewRouter(&fakeDB{}, cache.New(true), cfg), http.MethodGet, "/docs/index.html", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeagues(t *testing.T) {
	router := NewRouter(&fakeDB{}, cache.New(true), testConfig())

	rec := serve(t, router, http.MethodGet, "/api/v1/leagues", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var leagues []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leagues))
	require.Len(t, leagues, len(config.LeagueRegistry))
	assert.Equal(t, "bundesliga", leagues[0]["slug"])
}

func TestLeagueSeasons(t *testing.T) {
	fdb := &fakeDB{rows: map[string]fakeRow{db.StmtLeagueSeasons: {value: []int{2022, 2023}}}}
	router := NewRouter(fdb, cache.New(true), testConfig())

	rec := serve(t, router, http.MethodGet, "/api/v1/leagues/serie-a/seasons", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"league":"serie-a","seasons":[2022,2023]}`, rec.Body.String())
	assert.Equal(t, []any{"IT1"}, fdb.calls[0].args)
}

func TestTransfersCachingAndETag(t *testing.T) {
	body := []byte(`[{"club":"Acme FC","movement":"in"}]`)
	fdb := &fakeDB{rows: map[string]fakeRow{db.StmtTransfers: {value: body}}}
	router := NewRouter(fdb, cache.New(true), testConfig())

	rec := serve(t, router, http.MethodGet, "/api/v1/transfers/premier-league/2010?window=summer&movement=in", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, string(body), rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	require.Len(t, fdb.calls, 1)
	assert.Equal(t, []any{"GB1", 2010, "summer", nil, "in"}, fdb.calls[0].args)

	rec = serve(t, router, http.MethodGet, "/api/v1/transfers/premier-league/2010?window=s&movement=in", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"), "short window code shares the cache entry")

	rec = serve(t, router, http.MethodGet, "/api/v1/transfers/premier-league/2010?window=summer&movement=in",
		http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Len(t, fdb.calls, 1, "cached responses do not query")
}

func TestTransfersEmptySeason(t *testing.T) {
	router := NewRouter(&fakeDB{}, cache.New(false), testConfig())

	rec := serve(t, router, http.MethodGet, "/api/v1/transfers/laliga/1995/clubs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTransfersValidation(t *testing.T) {
	router := NewRouter(&fakeDB{}, cache.New(true), testConfig())

	tests := []struct {
		target string
		status int
		code   string
	}{
		{"/api/v1/transfers/mls/2020", http.StatusNotFound, "UNKNOWN_LEAGUE"},
		{"/api/v1/transfers/premier-league/1980", http.StatusBadRequest, "INVALID_SEASON"},
		{"/api/v1/transfers/premier-league/20x0", http.StatusBadRequest, "INVALID_SEASON"},
		{"/api/v1/transfers/premier-league/2020?window=spring", http.StatusBadRequest, "INVALID_WINDOW"},
		{"/api/v1/transfers/premier-league/2020?movement=sideways", http.StatusBadRequest, "INVALID_MOVEMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(t, router, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, rec.Code)

			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RateLimitMiddleware(2, time.Hour)(next)

	// Burst is half the window allowance.
	rec := serve(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
}
