package router

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lintang-b-s/osmgraph/pkg/engine"
	"github.com/lintang-b-s/osmgraph/pkg/geo"
	"github.com/lintang-b-s/osmgraph/pkg/http/usecases"
	"github.com/lintang-b-s/osmgraph/pkg/osmparser"
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/lintang-b-s/osmgraph/pkg/spatialindex"
	"github.com/lintang-b-s/osmgraph/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decimicro(deg float64) int64 {
	return int64(math.Round(deg * 10_000_000))
}

// N1(0,0) - N2(0,1) - N3(0,2) on way 1, an isolated road 4-5, and a building relation.
func testStore(t *testing.T) *osmstore.Store {
	t.Helper()
	records := []osmstore.Record{
		&osmstore.Node{ID: 1, Lat: 0, Lon: 0},
		&osmstore.Node{ID: 2, Lat: 0, Lon: decimicro(1)},
		&osmstore.Node{ID: 3, Lat: 0, Lon: decimicro(2)},
		&osmstore.Node{ID: 4, Lat: decimicro(5), Lon: decimicro(5)},
		&osmstore.Node{ID: 5, Lat: decimicro(5), Lon: decimicro(5.01)},
		&osmstore.Way{ID: 1, Nodes: []int64{1, 2, 3}, Tags: osmstore.Tags{"highway": "primary"}},
		&osmstore.Way{ID: 2, Nodes: []int64{4, 5}, Tags: osmstore.Tags{"highway": "residential"}},
		&osmstore.Relation{ID: 100, Members: []osmstore.Member{
			{Type: osmstore.WayMember, Ref: 1, Role: "outer"},
			{Type: osmstore.NodeMember, Ref: 4, Role: "label"},
		}, Tags: osmstore.Tags{"type": "route"}},
	}
	store, err := osmstore.BuildFromFeed(osmstore.NewSliceFeed(records...), zap.NewNop())
	require.NoError(t, err)
	return store
}

func testHandler(t *testing.T, httpCfg util.HTTPConfig) http.Handler {
	t.Helper()
	log := zap.NewNop()
	store := testStore(t)
	graph, _ := osmparser.NewGraphBuilder("highway", log).Build(store)
	rt := spatialindex.NewRtree()
	rt.Build(graph, 0.5, log)

	cfg := util.DefaultConfig()
	cfg.HTTP = httpCfg
	e, err := engine.NewEngine(graph, rt, store, cfg, log)
	require.NoError(t, err)

	return NewAPI(log).Handler(httpCfg,
		usecases.NewRoutingService(log, e),
		usecases.NewGeometryService(log, e))
}

func defaultHTTPConfig() util.HTTPConfig {
	return util.HTTPConfig{Port: 6060, Timeout: time.Minute}
}

type apiResponse struct {
	Data  json.RawMessage   `json:"data"`
	Error map[string]string `json:"error"`
}

func doRequest(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var resp apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestComputeRoutes(t *testing.T) {
	h := testHandler(t, defaultHTTPConfig())
	d1 := geo.CalculateHaversineDistanceMeters(0, 0, 0, 1)
	d2 := geo.CalculateHaversineDistanceMeters(0, 1, 0, 2)

	testCases := []struct {
		name       string
		query      string
		wantStatus int
		wantDist   float64
		wantNodes  []int64
	}{
		{
			name:       "three node line",
			query:      "origin_lat=0&origin_lon=0&destination_lat=0&destination_lon=2",
			wantStatus: http.StatusOK,
			wantDist:   d1 + d2,
			wantNodes:  []int64{1, 2, 3},
		},
		{
			name:       "same vertex",
			query:      "origin_lat=0&origin_lon=1.0001&destination_lat=0.0001&destination_lon=1",
			wantStatus: http.StatusOK,
			wantDist:   0,
			wantNodes:  []int64{2},
		},
		{
			name:       "disconnected",
			query:      "origin_lat=0&origin_lon=0&destination_lat=5&destination_lon=5",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing parameter",
			query:      "origin_lat=0&origin_lon=0&destination_lat=0",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "latitude out of range",
			query:      "origin_lat=91&origin_lon=0&destination_lat=0&destination_lon=2",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/computeRoutes?"+tc.query, nil))
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantStatus != http.StatusOK {
				assert.NotEmpty(t, resp.Error["message"])
				return
			}

			var data struct {
				Path     string  `json:"path"`
				Distance float64 `json:"distance"`
				Nodes    []int64 `json:"nodes"`
				Ways     []int64 `json:"ways"`
			}
			require.NoError(t, json.Unmarshal(resp.Data, &data))
			assert.InDelta(t, tc.wantDist, data.Distance, 1e-6)
			assert.Equal(t, tc.wantNodes, data.Nodes)
			assert.NotEmpty(t, data.Path)
		})
	}
}

func TestNearest(t *testing.T) {
	h := testHandler(t, defaultHTTPConfig())

	rec, resp := doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/nearest?lat=0.001&lon=1.002", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Vertex   uint32  `json:"vertex"`
		OsmID    int64   `json:"osm_id"`
		Lat      float64 `json:"lat"`
		Lon      float64 `json:"lon"`
		Distance float64 `json:"distance"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, int64(2), data.OsmID)
	assert.InDelta(t, 1.0, data.Lon, 1e-9)
	assert.Greater(t, data.Distance, 0.0)

	rec, _ = doRequest(t, h, httptest.NewRequest(http.MethodGet, "/api/nearest?lat=abc&lon=1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComputeRoutesBatch(t *testing.T) {
	h := testHandler(t, defaultHTTPConfig())

	body := `{"routes":[
		{"origin_lat":0,"origin_lon":0,"destination_lat":0,"destination_lon":2},
		{"origin_lat":0,"origin_lon":0,"destination_lat":5,"destination_lon":5}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/computeRoutes/batch", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec, resp := doRequest(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var items []struct {
		Route *struct {
			Nodes []int64 `json:"nodes"`
		} `json:"route"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Route)
	assert.Equal(t, []int64{1, 2, 3}, items[0].Route.Nodes)
	assert.Nil(t, items[1].Route)
	assert.NotEmpty(t, items[1].Error)

	t.Run("rejects non json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/computeRoutes/batch", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/computeRoutes/batch", bytes.NewBufferString(`{"routes":[]}`))
		req.Header.Set("Content-Type", "application/json")
		rec, _ := doRequest(t, h, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGeometryRoutes(t *testing.T) {
	h := testHandler(t, defaultHTTPConfig())

	testCases := []struct {
		name       string
		target     string
		wantStatus int
		wantType   string
	}{
		{name: "relation", target: "/api/relations/100/geometry", wantStatus: http.StatusOK, wantType: "LineString"},
		{name: "way", target: "/api/ways/2/geometry", wantStatus: http.StatusOK, wantType: "LineString"},
		{name: "unknown relation", target: "/api/relations/7/geometry", wantStatus: http.StatusNotFound},
		{name: "bad id", target: "/api/ways/abc/geometry", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := doRequest(t, h, httptest.NewRequest(http.MethodGet, tc.target, nil))
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantStatus != http.StatusOK {
				return
			}
			var feature struct {
				Type     string `json:"type"`
				Geometry struct {
					Type string `json:"type"`
				} `json:"geometry"`
				Properties map[string]interface{} `json:"properties"`
			}
			require.NoError(t, json.Unmarshal(resp.Data, &feature))
			assert.Equal(t, "Feature", feature.Type)
			assert.Equal(t, tc.wantType, feature.Geometry.Type)
		})
	}
}

func TestHealthzAndRateLimit(t *testing.T) {
	cfg := defaultHTTPConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 2
	h := testHandler(t, cfg)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nearest?lat=0&lon=0", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nearest?lat=0&lon=0", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// heartbeat runs before the limiter
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRealIP(t *testing.T) {
	testCases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "10.0.0.1"}, want: "10.0.0.1"},
		{name: "x-forwarded-for first entry", headers: map[string]string{"X-Forwarded-For": "10.0.0.2, 10.0.0.3"}, want: "10.0.0.2"},
		{name: "invalid ip ignored", headers: map[string]string{"X-Real-IP": "nope"}, want: "192.0.2.1:1234"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			h := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tc.want, got)
		})
	}
}
