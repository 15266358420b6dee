package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/kaosnet/visibility/ephemeris"
	"github.com/kaosnet/visibility/metrics"
	"github.com/kaosnet/visibility/orchestrator"
	"github.com/kaosnet/visibility/store"
)

// emptySource is an EphemerisSource with no satellites, enough to exercise
// routing/validation without a real database.
type emptySource struct{}

func (emptySource) SegmentContaining(context.Context, int64, float64) (*ephemeris.OrbitSegment, error) {
	return nil, nil
}
func (emptySource) SamplesOf(context.Context, int64) ([]ephemeris.OrbitSample, error) { return nil, nil }
func (emptySource) Satellite(context.Context, int64) (*ephemeris.Satellite, error)     { return nil, nil }
func (emptySource) ListSatellites(context.Context) ([]ephemeris.Satellite, error)      { return nil, nil }

// fakeCache is an in-memory store.CacheStore, standing in for the
// GORM-backed production Cache so GetCached's real cache-miss path (rather
// than a nil-pointer panic caught by Recoverer) is what gets exercised.
type fakeCache struct {
	mu   sync.Mutex
	rows map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{rows: make(map[string][]byte)} }

func (c *fakeCache) Put(_ context.Context, _ string, payload []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := "fake-id-" + strconv.Itoa(len(c.rows))
	c.rows[id] = payload
	return id, nil
}

func (c *fakeCache) Get(_ context.Context, id string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.rows[id]
	if !ok {
		return nil, store.ErrCacheMiss
	}
	return payload, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(testWriter{t})
	orch := orchestrator.New(emptySource{}, newFakeCache(), 60, ephemeris.Cubic, log, nil)
	return NewRouter(orch, log, metrics.New(prometheus.NewRegistry()))
}

func TestRouter_UnknownRoute_Returns404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRouter_WrongMethod_Returns405(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/visibility/search", nil)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRouter_MalformedBody_Returns422(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/visibility/search", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestRouter_UnknownSearchID_Returns404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search/does-not-exist", nil)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
