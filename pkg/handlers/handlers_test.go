package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnavshah/duty-scheduler-go/internal/config"
	"github.com/arnavshah/duty-scheduler-go/internal/logger"
	"github.com/arnavshah/duty-scheduler-go/internal/metrics"
	"github.com/arnavshah/duty-scheduler-go/pkg/auth"
	"github.com/arnavshah/duty-scheduler-go/pkg/database"
	"github.com/arnavshah/duty-scheduler-go/pkg/models"
)

const rosterCSV = `ID,Class,Student,Family,Status,Onduty check #
1,B3A,Amy Chen,Wei Chen,Active,101
2,B4A,Ben Wu,Jun Wu,Active,102
3,B5A,Cal Li,Hao Li,Active,103
4,B6A,Dee Ng,Sam Ng,Active,104
`

const arrangementText = `#AM=3,5

@2030-09-07
#AM
Amy Chen (B3A)
`

type testServer struct {
	router  *gin.Engine
	handler *Handler
	reg     *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.PasswordCost = bcrypt.MinCost

	cfg := config.Default()
	cfg.Auth.JWTSecret = "jwt"
	cfg.Auth.APIMasterSecret = "master"
	db, err := database.InitDB(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	require.NoError(t, auth.EnsureAdminExists(db, "admin", "pw", nil))

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPromRecorder(reg)
	require.NoError(t, err)
	h := New(db, cfg, rec, nil)
	r, err := NewRouter(h, reg)
	require.NoError(t, err)
	return &testServer{router: r, handler: h, reg: reg}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) adminToken(t *testing.T) string {
	w := s.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["access_token"].(string)
}

func (s *testServer) apiKey(t *testing.T, limit int) string {
	w := s.do(t, http.MethodPost, "/admin/keys", s.adminToken(t), gin.H{"name": "office", "rate_limit": limit})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["key"].(string)
}

func jsonRoster() []models.Registration {
	return []models.Registration{
		{ID: "1", Class: "B3A", Student: "Amy Chen", Father: "Wei Chen", Status: "Active", DutyCheckNumber: "101"},
		{ID: "2", Class: "B4A", Student: "Ben Wu", Father: "Jun Wu", Status: "Active", DutyCheckNumber: "102"},
		{ID: "3", Class: "B5A", Student: "Cal Li", Father: "Hao Li", Status: "Active", DutyCheckNumber: "103"},
		{ID: "4", Class: "B6A", Student: "Dee Ng", Father: "Sam Ng", Status: "Active", DutyCheckNumber: "104"},
	}
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Version, decode(t, w)["version"])
}

func TestAdminPage(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/admin", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Parent-on-Duty Scheduler")
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/admin/keys", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestKeyManagement(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)
	key := s.apiKey(t, 0)

	w := s.do(t, http.MethodGet, "/admin/keys", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), key, "full keys are never listed")
	keys := decode(t, w)["keys"].([]any)
	require.Len(t, keys, 1)
	k := keys[0].(map[string]any)
	assert.Equal(t, auth.KeyPreview(key), k["key_preview"])
	assert.Equal(t, 10000.0, k["rate_limit"])

	w = s.do(t, http.MethodPut, "/admin/keys/1", token, gin.H{"rate_limit": 5})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPut, "/admin/keys/99", token, gin.H{"rate_limit": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/admin/keys/1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/admin/keys/1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFillJSON(t *testing.T) {
	s := newTestServer(t)
	key := s.apiKey(t, 0)
	var logs bytes.Buffer
	s.handler.Log = logger.NewWithWriter("api", &logs, zerolog.DebugLevel)

	w := s.do(t, http.MethodPost, "/api/fill/json", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/api/fill/json", "office.forged", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/fill/json", key, models.FillInput{
		Roster:      jsonRoster(),
		Arrangement: arrangementText,
		After:       "2030-09-01",
		Seed:        7,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.FillResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 3, resp.Assigned)
	assert.Equal(t, 3, resp.Pools["AM"])
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, 4, strings.Count(resp.Arrangement, "(B"))
	assert.Equal(t, 4, resp.Fairness.Families)
	assert.Contains(t, logs.String(), `"run_id":"`+resp.RunID+`"`)

	w = s.do(t, http.MethodGet, "/api/usage", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	totals := decode(t, w)["totals"].(map[string]any)
	assert.Equal(t, 1.0, totals["requests"])
	assert.Equal(t, 1.0, totals["duties"])
	assert.Equal(t, 3.0, totals["students"])
}

func TestFillJSONFailure(t *testing.T) {
	s := newTestServer(t)
	key := s.apiKey(t, 0)

	w := s.do(t, http.MethodPost, "/api/fill/json", key, models.FillInput{
		Roster:      jsonRoster(),
		Arrangement: "#AM=1,2\n\n@2030-09-07\n#AM\n",
		After:       "2030-09-01",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["error"], "average duty size outside range")
	assert.NotContains(t, body, "arrangement")

	w = s.do(t, http.MethodPost, "/api/fill/json", key, models.FillInput{
		Roster: jsonRoster(), Arrangement: arrangementText, After: "09/01/2030",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mw := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Contains(t, mw.Body.String(), `duty_fill_runs_total{outcome="error",source="api"} 1`)
}

func TestFillMultipart(t *testing.T) {
	s := newTestServer(t)
	key := s.apiKey(t, 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("roster_file", "roster.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(rosterCSV))
	require.NoError(t, err)
	fw, err = mw.CreateFormFile("arrangement_file", "pod.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(arrangementText))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("after", "2030-09-01"))
	require.NoError(t, mw.WriteField("seed", "3"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/fill", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+key)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.FillResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Assigned)
	assert.True(t, strings.HasPrefix(resp.Arrangement, "#AM=3,5\n\n@2030-09-07\n#AM\nAmy Chen (B3A)\n"))
}

func TestFillMultipartStoredRoster(t *testing.T) {
	s := newTestServer(t)
	key := s.apiKey(t, 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("arrangement_file", "pod.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(arrangementText))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("after", "2030-09-01"))
	require.NoError(t, mw.Close())
	body := buf.Bytes()

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/fill", bytes.NewReader(body))
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+key)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusBadRequest, w.Code, "no roster stored yet")

	_, err = database.ImportRoster(s.handler.DB, jsonRoster())
	require.NoError(t, err)
	w = send()
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestValidate(t *testing.T) {
	s := newTestServer(t)
	key := s.apiKey(t, 0)

	w := s.do(t, http.MethodPost, "/api/validate", key, models.FillInput{
		Roster:      jsonRoster(),
		Arrangement: arrangementText,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["valid"])
	stats := body["stats"].(map[string]any)
	assert.Equal(t, 1.0, stats["duty_count"])
	assert.Equal(t, 1.0, stats["assigned_count"])
	assert.Equal(t, 4.0, stats["family_count"])

	w = s.do(t, http.MethodPost, "/api/validate", key, models.FillInput{
		Roster:      jsonRoster(),
		Arrangement: "#AM=3\n@2030-09-07\n#AM\nNobody Here (B3A)\n",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, false, body["valid"])
	assert.Contains(t, body["error"], "Nobody Here")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t)
	key := s.apiKey(t, 1)
	input := models.FillInput{Roster: jsonRoster(), Arrangement: arrangementText, After: "2030-09-01"}

	w := s.do(t, http.MethodPost, "/api/fill/json", key, input)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/fill/json", key, input)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
