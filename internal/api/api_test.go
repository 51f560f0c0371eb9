package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/dealdesk/internal/auth"
	"github.com/mmynk/dealdesk/internal/ratelimit"
	"github.com/mmynk/dealdesk/internal/storage/sqlite"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "test-password-123"
)

// setupTestServer builds the full API over a temp database and returns
// a cookie-jar client that is already logged in.
func setupTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "dealdesk-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sessions := auth.NewSessionManager("test-secret-key-32-bytes-long!!!", time.Hour, store)
	admin := auth.NewAdminVerifier(testEmail, testPassword, "")
	a := New(store, sessions, admin, ratelimit.New())

	server := httptest.NewServer(a.Routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	resp := postJSON(t, client, server.URL+"/api/auth/login", map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}

	return server, client
}

func postJSON(t *testing.T, client *http.Client, url string, body any, forwardedFor string) *http.Response {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, body, forwardedFor)
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, forwardedFor string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestLogin(t *testing.T) {
	server, _ := setupTestServer(t)
	plain := &http.Client{}

	t.Run("wrong password and wrong email return the same error", func(t *testing.T) {
		wrongPass := postJSON(t, plain, server.URL+"/api/auth/login", map[string]string{
			"email": testEmail, "password": "nope",
		}, "10.0.0.1")
		wrongEmail := postJSON(t, plain, server.URL+"/api/auth/login", map[string]string{
			"email": "nope@example.com", "password": testPassword,
		}, "10.0.0.1")

		if wrongPass.StatusCode != http.StatusUnauthorized || wrongEmail.StatusCode != http.StatusUnauthorized {
			t.Fatalf("statuses = %d, %d, want 401, 401", wrongPass.StatusCode, wrongEmail.StatusCode)
		}
		bodyPass, _ := io.ReadAll(wrongPass.Body)
		bodyEmail, _ := io.ReadAll(wrongEmail.Body)
		wrongPass.Body.Close()
		wrongEmail.Body.Close()
		if !bytes.Equal(bodyPass, bodyEmail) {
			t.Errorf("error bodies differ: %s vs %s", bodyPass, bodyEmail)
		}
	})

	t.Run("missing fields are a validation error", func(t *testing.T) {
		resp := postJSON(t, plain, server.URL+"/api/auth/login", map[string]string{"email": testEmail}, "10.0.0.2")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("throttled after five attempts from one client", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			resp := postJSON(t, plain, server.URL+"/api/auth/login", map[string]string{
				"email": testEmail, "password": "wrong",
			}, "10.9.9.9")
			resp.Body.Close()
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("attempt %d: status = %d, want 401", i+1, resp.StatusCode)
			}
		}

		resp := postJSON(t, plain, server.URL+"/api/auth/login", map[string]string{
			"email": testEmail, "password": testPassword,
		}, "10.9.9.9")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("6th attempt: status = %d, want 429", resp.StatusCode)
		}
		if resp.Header.Get("Retry-After") == "" {
			t.Error("expected Retry-After header on 429")
		}

		// A different client is unaffected.
		other := postJSON(t, plain, server.URL+"/api/auth/login", map[string]string{
			"email": testEmail, "password": testPassword,
		}, "10.9.9.10")
		other.Body.Close()
		if other.StatusCode != http.StatusOK {
			t.Errorf("other client: status = %d, want 200", other.StatusCode)
		}
	})

	t.Run("login only accepts POST", func(t *testing.T) {
		resp := doJSON(t, plain, http.MethodGet, server.URL+"/api/auth/login", nil, "10.0.0.3")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", resp.StatusCode)
		}
	})
}

func TestSessionGate(t *testing.T) {
	server, client := setupTestServer(t)

	t.Run("no cookie is rejected", func(t *testing.T) {
		resp := doJSON(t, &http.Client{}, http.MethodGet, server.URL+"/api/pipelines", nil, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("logged-in client passes", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodGet, server.URL+"/api/auth/me", nil, "")
		body := decodeBody[map[string]string](t, resp)
		if body["email"] != testEmail {
			t.Errorf("me email = %q, want %q", body["email"], testEmail)
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		resp := postJSON(t, client, server.URL+"/api/auth/logout", nil, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("logout status = %d", resp.StatusCode)
		}
		resp = doJSON(t, client, http.MethodGet, server.URL+"/api/pipelines", nil, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status after logout = %d, want 401", resp.StatusCode)
		}
	})
}

func TestPipelineWorkflow(t *testing.T) {
	server, client := setupTestServer(t)

	// Create a board.
	resp := postJSON(t, client, server.URL+"/api/pipelines", map[string]string{
		"name": "Sales", "entity_type": "client",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create pipeline status = %d", resp.StatusCode)
	}
	pipeline := decodeBody[pipelineResponse](t, resp)

	// Three cards in "New", one with no amount.
	for i, amount := range []any{"100.50", 200, nil} {
		body := map[string]any{"title": fmt.Sprintf("deal %d", i), "stage": "New"}
		if amount != nil {
			body["amount"] = amount
		}
		resp := postJSON(t, client, server.URL+"/api/pipelines/"+pipeline.ID+"/cards", body, "")
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create card %d status = %d", i, resp.StatusCode)
		}
		resp.Body.Close()
	}

	t.Run("stats sum amounts with nil as zero", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodGet, server.URL+"/api/pipelines/"+pipeline.ID, nil, "")
		detail := decodeBody[pipelineDetailResponse](t, resp)
		if detail.CardCount != 3 {
			t.Errorf("card count = %d, want 3", detail.CardCount)
		}
		if detail.TotalAmount != 300.50 {
			t.Errorf("total = %v, want 300.50", detail.TotalAmount)
		}
		if len(detail.Stages) != 1 || detail.Stages[0].Name != "New" {
			t.Errorf("stages = %+v, want single New column", detail.Stages)
		}
	})

	t.Run("string and number amounts both coerce", func(t *testing.T) {
		bad := postJSON(t, client, server.URL+"/api/pipelines/"+pipeline.ID+"/cards", map[string]any{
			"title": "bad", "stage": "New", "amount": "not-a-number",
		}, "")
		defer bad.Body.Close()
		if bad.StatusCode != http.StatusBadRequest {
			t.Errorf("invalid amount status = %d, want 400", bad.StatusCode)
		}
	})

	t.Run("rename recolors the whole column", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodPut, server.URL+"/api/pipelines/"+pipeline.ID+"/stages", map[string]string{
			"old_stage": "New", "new_stage": "Contacted", "new_color": "#00FF00",
		}, "")
		body := decodeBody[map[string]any](t, resp)
		if body["cards_updated"].(float64) != 3 {
			t.Errorf("cards_updated = %v, want 3", body["cards_updated"])
		}

		detailResp := doJSON(t, client, http.MethodGet, server.URL+"/api/pipelines/"+pipeline.ID, nil, "")
		detail := decodeBody[pipelineDetailResponse](t, detailResp)
		for _, c := range detail.Cards {
			if c.Stage != "Contacted" || c.StageColor != "#00FF00" {
				t.Errorf("card %s not renamed: %q/%q", c.ID, c.Stage, c.StageColor)
			}
		}
	})

	t.Run("virtual stage create persists nothing", func(t *testing.T) {
		resp := postJSON(t, client, server.URL+"/api/pipelines/"+pipeline.ID+"/stages", map[string]string{
			"stage_name": "Imaginary",
		}, "")
		stage := decodeBody[stageResponse](t, resp)
		if stage.Color != DefaultStageColor {
			t.Errorf("default color = %q, want %q", stage.Color, DefaultStageColor)
		}

		detailResp := doJSON(t, client, http.MethodGet, server.URL+"/api/pipelines/"+pipeline.ID, nil, "")
		detail := decodeBody[pipelineDetailResponse](t, detailResp)
		for _, s := range detail.Stages {
			if s.Name == "Imaginary" {
				t.Error("virtual stage leaked into persisted state")
			}
		}
	})

	t.Run("delete stage with cards is rejected", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodDelete, server.URL+"/api/pipelines/"+pipeline.ID+"/stages?stage=Contacted", nil, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
		body := decodeBody[map[string]string](t, resp)
		if body["error"] != "cannot delete a column with cards" {
			t.Errorf("error = %q", body["error"])
		}
	})

	t.Run("delete empty stage succeeds", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodDelete, server.URL+"/api/pipelines/"+pipeline.ID+"/stages?stage=Empty", nil, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("stage operations on unknown pipeline are 404", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodPut, server.URL+"/api/pipelines/nonexistent/stages", map[string]string{
			"old_stage": "A", "new_stage": "B", "new_color": "#fff",
		}, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("delete pipeline cascades", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodDelete, server.URL+"/api/pipelines/"+pipeline.ID, nil, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("delete status = %d", resp.StatusCode)
		}
		resp = doJSON(t, client, http.MethodGet, server.URL+"/api/pipelines/"+pipeline.ID, nil, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status after delete = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("pipelines only allow GET and POST", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodPut, server.URL+"/api/pipelines", nil, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", resp.StatusCode)
		}
	})
}

func TestFinance(t *testing.T) {
	server, client := setupTestServer(t)

	t.Run("settings default on first read", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodGet, server.URL+"/api/finances/settings", nil, "")
		settings := decodeBody[settingsResponse](t, resp)
		if settings.CorporateTaxPercent != 25 {
			t.Errorf("corporate tax = %v, want 25", settings.CorporateTaxPercent)
		}
		if settings.DividendTaxPercent != nil {
			t.Errorf("dividend tax = %v, want null", settings.DividendTaxPercent)
		}
	})

	t.Run("absent percent stays null after update", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodPut, server.URL+"/api/finances/settings", map[string]any{
			"corporate_tax_percent": "19",
		}, "")
		settings := decodeBody[settingsResponse](t, resp)
		if settings.CorporateTaxPercent != 19 {
			t.Errorf("corporate tax = %v, want 19", settings.CorporateTaxPercent)
		}
		if settings.DividendTaxPercent != nil {
			t.Errorf("dividend tax = %v, want null", settings.DividendTaxPercent)
		}
	})

	t.Run("salary month filter", func(t *testing.T) {
		resp := postJSON(t, client, server.URL+"/api/finances/salaries", map[string]any{
			"employee": "Ada", "amount": "5000", "paid_at": "2024-02-15",
		}, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create salary status = %d", resp.StatusCode)
		}

		feb := doJSON(t, client, http.MethodGet, server.URL+"/api/finances/salaries?month=2024-02", nil, "")
		if got := decodeBody[[]salaryResponse](t, feb); len(got) != 1 {
			t.Errorf("February = %d records, want 1", len(got))
		}
		mar := doJSON(t, client, http.MethodGet, server.URL+"/api/finances/salaries?month=2024-03", nil, "")
		if got := decodeBody[[]salaryResponse](t, mar); len(got) != 0 {
			t.Errorf("March = %d records, want 0", len(got))
		}
		bad := doJSON(t, client, http.MethodGet, server.URL+"/api/finances/salaries?month=2024-13", nil, "")
		bad.Body.Close()
		if bad.StatusCode != http.StatusBadRequest {
			t.Errorf("invalid month status = %d, want 400", bad.StatusCode)
		}
	})

	t.Run("missing tags default to empty list", func(t *testing.T) {
		resp := postJSON(t, client, server.URL+"/api/finances/salaries", map[string]any{
			"employee": "Grace", "amount": 7000, "paid_at": "2024-04-01",
		}, "")
		salary := decodeBody[salaryResponse](t, resp)
		if salary.Tags == nil || len(salary.Tags) != 0 {
			t.Errorf("tags = %v, want []", salary.Tags)
		}
	})

	t.Run("fixed expense due_day validation", func(t *testing.T) {
		resp := postJSON(t, client, server.URL+"/api/finances/fixed", map[string]any{
			"name": "Rent", "amount": "1200", "due_day": 42,
		}, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestHealth(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doJSON(t, &http.Client{}, http.MethodGet, server.URL+"/api/health", nil, "")
	body := decodeBody[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("health status = %q, want ok", body["status"])
	}
}
