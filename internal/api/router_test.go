package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/chronomap-backend-go/internal/config"
	"github.com/jengzang/chronomap-backend-go/internal/handler"
	"github.com/jengzang/chronomap-backend-go/internal/popup"
	"github.com/jengzang/chronomap-backend-go/internal/service"
	"github.com/jengzang/chronomap-backend-go/internal/state"
	"github.com/jengzang/chronomap-backend-go/internal/wiki"
)

const testSecret = "test-secret"

func writeDataset(t *testing.T, records []map[string]interface{}) string {
	t.Helper()
	raw, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func testDataset(t *testing.T) string {
	t.Helper()
	records := []map[string]interface{}{
		{
			"label":  "Fall of the Bastille",
			"date":   map[string]string{"point_in_time": "1789-07-14"},
			"coords": map[string]float64{"lat": 48.8532, "lon": 2.3692},
		},
		{
			"label":     "Coronation of Napoleon",
			"date":      map[string]string{"point_in_time": "1804-12-02"},
			"coords":    map[string]float64{"lat": 48.8530, "lon": 2.3694},
			"wikipedia": "https://en.wikipedia.org/wiki/Coronation_of_Napoleon",
		},
		{
			"label":  "Meiji Restoration",
			"date":   map[string]string{"point_in_time": "1868"},
			"coords": map[string]float64{"lat": 35.68, "lon": 139.69},
		},
	}
	return writeDataset(t, records)
}

func testRouter(t *testing.T, wikiURL string) *gin.Engine {
	return testRouterWithDataset(t, wikiURL, testDataset(t))
}

func testRouterWithDataset(t *testing.T, wikiURL, datasetPath string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:     testSecret,
		DatasetSource: datasetPath,
		PopupTTL:      time.Minute,
	}

	appState := state.New()
	dataset := service.NewDatasetService(appState, nil, cfg.DatasetSource)
	require.NoError(t, dataset.Reload(context.Background()))

	client := wiki.NewClient(wiki.Options{BaseURL: wikiURL})
	summaries := service.NewSummaryService(nil, client, nil, time.Hour)
	popups := service.NewPopupService(popup.NewStore(cfg.PopupTTL), dataset, summaries, nil)

	return SetupRouter(cfg, Handlers{
		Features:  handler.NewFeatureHandler(dataset),
		Popups:    handler.NewPopupHandler(popups),
		Summaries: handler.NewSummaryHandler(summaries),
		Admin:     handler.NewAdminHandler(dataset),
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter(t, "http://unused.invalid")
	w, body := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestFeaturesEndpoint(t *testing.T) {
	r := testRouter(t, "http://unused.invalid")
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/features", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FeatureCollection", body["type"])
	assert.Len(t, body["features"], 3)
}

func TestClustersEndpoint(t *testing.T) {
	r := testRouter(t, "http://unused.invalid")

	// the two Paris events cluster at low zoom
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/clusters?zoom=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])

	// past the cluster cutoff every point is unclustered
	w, body = doJSON(t, r, http.MethodGet, "/api/v1/clusters?zoom=16", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["count"])
}

func TestClusterExpansionFlow(t *testing.T) {
	r := testRouter(t, "http://unused.invalid")

	_, body := doJSON(t, r, http.MethodGet, "/api/v1/clusters?zoom=3", nil)
	data := body["data"].(map[string]interface{})
	nodes := data["nodes"].([]interface{})

	var clusterID float64
	found := false
	for _, n := range nodes {
		props := n.(map[string]interface{})["properties"].(map[string]interface{})
		if props["cluster"] == true {
			clusterID = props["cluster_id"].(float64)
			found = true
		}
	}
	require.True(t, found, "expected a cluster node at zoom 3")

	w, body := doJSON(t, r, http.MethodGet,
		"/api/v1/clusters/"+jsonNumber(clusterID)+"/expansion", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exp := body["data"].(map[string]interface{})
	assert.InDelta(t, 48.853, exp["lat"].(float64), 0.01)

	w, body = doJSON(t, r, http.MethodGet,
		"/api/v1/clusters/"+jsonNumber(clusterID)+"/leaves", nil)
	require.Equal(t, http.StatusOK, w.Code)
	leavesData := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), leavesData["count"])
}

func jsonNumber(v float64) string {
	raw, _ := json.Marshal(uint32(v))
	return string(raw)
}

func TestUnknownClusterIs404(t *testing.T) {
	r := testRouter(t, "http://unused.invalid")
	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/clusters/999999/expansion", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPopupFlowWithFailingUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	r := testRouter(t, upstream.URL)

	open, _ := json.Marshal(map[string]interface{}{"lat": 48.8530, "lon": 2.3694, "zoom": 17})
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/popups", open)
	require.Equal(t, http.StatusOK, w.Code)
	sess := body["data"].(map[string]interface{})
	id := sess["id"].(string)

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/popups/"+id+"/pages/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := body["data"].(map[string]interface{})
	assert.Equal(t, "rendered", page["state"])

	// upstream failure degrades to a bare outbound link
	summary := page["summary"].(map[string]interface{})
	assert.Equal(t, true, summary["degraded"])
	assert.Equal(t, "https://en.wikipedia.org/wiki/Coronation_of_Napoleon", summary["page_url"])

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/popups/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPopupOpensOnEquator(t *testing.T) {
	r := testRouterWithDataset(t, "http://unused.invalid", writeDataset(t, []map[string]interface{}{
		{"label": "Gulf of Guinea survey", "coords": map[string]float64{"lat": 0, "lon": 6.73}},
	}))

	// lat 0 is a valid coordinate, not an absent field
	open, _ := json.Marshal(map[string]interface{}{"lat": 0, "lon": 6.73, "zoom": 17})
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/popups", open)
	require.Equal(t, http.StatusOK, w.Code)
	sess := body["data"].(map[string]interface{})
	assert.Len(t, sess["features"], 1)
}

func TestPopupHonorsZoomZero(t *testing.T) {
	r := testRouterWithDataset(t, "http://unused.invalid", writeDataset(t, []map[string]interface{}{
		{"label": "Near", "coords": map[string]float64{"lat": 0, "lon": 6.73}},
		{"label": "Also near at zoom 0", "coords": map[string]float64{"lat": 1, "lon": 6.73}},
	}))

	// at zoom 0 the pixel radius spans both points; remapping to a deep
	// zoom default would match neither
	open, _ := json.Marshal(map[string]interface{}{"lat": 0.5, "lon": 6.73, "zoom": 0})
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/popups", open)
	require.Equal(t, http.StatusOK, w.Code)
	sess := body["data"].(map[string]interface{})
	assert.Len(t, sess["features"], 2)
}

func TestPopupRejectsMissingCoordinates(t *testing.T) {
	r := testRouter(t, "http://unused.invalid")

	open, _ := json.Marshal(map[string]interface{}{"lat": 48.8530, "zoom": 17})
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/popups", open)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPopupLinklessPage(t *testing.T) {
	r := testRouter(t, "http://unused.invalid")

	open, _ := json.Marshal(map[string]interface{}{"lat": 35.68, "lon": 139.69, "zoom": 17})
	w, body := doJSON(t, r, http.MethodPost, "/api/v1/popups", open)
	require.Equal(t, http.StatusOK, w.Code)
	id := body["data"].(map[string]interface{})["id"].(string)

	w, body = doJSON(t, r, http.MethodGet, "/api/v1/popups/"+id+"/pages/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := body["data"].(map[string]interface{})
	assert.Equal(t, "Meiji Restoration", page["title"])
	assert.Equal(t, "1868", page["date"])
	_, hasSummary := page["summary"]
	assert.False(t, hasSummary)
}

func TestSummaryProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Apollo 11", "extract": "First Moon landing."}`))
	}))
	defer upstream.Close()

	r := testRouter(t, upstream.URL)
	w, body := doJSON(t, r, http.MethodGet, "/api/v1/summary/Apollo_11", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Apollo 11", data["title"])
}

func TestAdminReloadRequiresToken(t *testing.T) {
	r := testRouter(t, "http://unused.invalid")

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/admin/reload", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
