package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/fuel-planner/internal/blob"
	"github.com/fdg312/fuel-planner/internal/config"
	"github.com/fdg312/fuel-planner/internal/storage/memory"
)

const generateBody = `{"athlete":{"age":14,"sex":"male","height_cm":168,"weight_kg":56.5,"goal":"lean, high-energy performance","halal":true},"week_start":"2025-11-16","competition_start":"2025-11-19"}`

func newTestServer(cfg *config.Config) *httptest.Server {
	if cfg.PlanDefaultOwner == "" {
		cfg.PlanDefaultOwner = "default"
	}
	srv := NewWithDeps(cfg, memory.New(), blob.NewMemoryStore())
	return httptest.NewServer(srv.Handler())
}

func doJSON(t *testing.T, method, url, token, body string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestHealthz(t *testing.T) {
	srv := NewWithDeps(&config.Config{Port: 8080}, memory.New(), blob.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" || resp["storage"] != "memory" {
		t.Errorf("healthz = %v", resp)
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := NewWithDeps(&config.Config{Port: 8080}, memory.New(), blob.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestPlanLifecycleWithoutAuth(t *testing.T) {
	ts := newTestServer(&config.Config{AuthMode: config.AuthModeNone})
	defer ts.Close()

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/plans/generate", "", generateBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status = %d, body = %s", resp.StatusCode, body)
	}
	var generated struct {
		Plan  json.RawMessage   `json:"plan"`
		Taper []json.RawMessage `json:"taper"`
	}
	if err := json.Unmarshal(body, &generated); err != nil {
		t.Fatalf("decode generate: %v", err)
	}
	if len(generated.Taper) != 7 {
		t.Fatalf("taper days = %d", len(generated.Taper))
	}

	put := `{"plan":` + string(generated.Plan) + `}`
	if resp, body := doJSON(t, http.MethodPut, ts.URL+"/v1/plan", "", put); resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/plan/grocery", "", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"Baked salmon or sardines"`)) {
		t.Fatalf("grocery status = %d, body = %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/v1/exports", "", `{"format":"ics"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("export status = %d, body = %s", resp.StatusCode, body)
	}
	var export struct {
		DownloadURL string `json:"download_url"`
	}
	json.Unmarshal(body, &export)

	resp, body = doJSON(t, http.MethodGet, export.DownloadURL, "", "")
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(body, []byte("BEGIN:VCALENDAR")) {
		t.Fatalf("download status = %d, body prefix = %q", resp.StatusCode, body[:min(len(body), 20)])
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(&config.Config{
		AuthMode:      config.AuthModeDev,
		AuthRequired:  true,
		JWTSecret:     "test-secret",
		JWTIssuer:     "fuel-planner",
		JWTTTLMinutes: 60,
	})
	defer ts.Close()

	if resp, _ := doJSON(t, http.MethodGet, ts.URL+"/v1/plan", "", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous GET /v1/plan status = %d, want 401", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodGet, ts.URL+"/v1/catalog/macros", "", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("catalog should stay public, got %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/auth/dev", "", `{"user_id":"athlete-1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dev auth status = %d, body = %s", resp.StatusCode, body)
	}
	var token struct {
		AccessToken string `json:"access_token"`
	}
	json.Unmarshal(body, &token)

	if resp, _ := doJSON(t, http.MethodGet, ts.URL+"/v1/plan", token.AccessToken, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("authorized GET /v1/plan status = %d, want 404 before save", resp.StatusCode)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(&config.Config{})
	defer ts.Close()

	if resp, _ := doJSON(t, http.MethodPatch, ts.URL+"/v1/plan", "", "{}"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("PATCH /v1/plan status = %d", resp.StatusCode)
	}
}
