//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:3001")

func TestSystem_E2E_Cart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	username := getenv("E2E_USERNAME", "yellowleopard753")
	password := getenv("E2E_PASSWORD", "jonjon")

	var token string
	doJSON(t, http.MethodPost, baseURL+"/api/login", map[string]any{
		"username": username,
		"password": password,
	}, &token, 200)
	if len(token) != 16 {
		t.Fatalf("unexpected token %q", token)
	}

	var again string
	doJSON(t, http.MethodPost, baseURL+"/api/login", map[string]any{
		"username": username,
		"password": password,
	}, &again, 200)
	if again != token {
		t.Fatalf("relogin issued a new token: %q != %q", again, token)
	}

	var products []map[string]any
	doJSON(t, http.MethodGet, baseURL+"/api/products", nil, &products, 200)
	if len(products) == 0 {
		t.Fatalf("expected non-empty products")
	}

	pid, _ := products[0]["id"].(string)
	if pid == "" {
		t.Fatalf("product id missing in response: %#v", products[0])
	}

	var before []map[string]any
	doJSON(t, http.MethodGet, cartURL(token, ""), nil, &before, 200)
	for _, l := range before {
		if l["id"] == pid {
			doJSON(t, http.MethodDelete, cartURL(token, "/"+url.PathEscape(pid)), nil, nil, 200)
		}
	}

	var lines []map[string]any
	doJSON(t, http.MethodPost, cartURL(token, ""), map[string]any{"id": pid}, &lines, 200)
	doJSON(t, http.MethodPost, cartURL(token, ""), map[string]any{"id": pid}, nil, 405)
	doJSON(t, http.MethodPut, cartURL(token, "/"+url.PathEscape(pid)), map[string]any{"quantity": 3}, &lines, 200)

	var got []map[string]any
	doJSON(t, http.MethodGet, cartURL(token, ""), nil, &got, 200)
	found := false
	for _, l := range got {
		if l["id"] == pid {
			found = true
			if q, _ := l["quantity"].(float64); q != 3 {
				t.Fatalf("quantity=%v want 3", l["quantity"])
			}
		}
	}
	if !found {
		t.Fatalf("product %s missing from cart: %#v", pid, got)
	}

	if os.Getenv("E2E_RESTART_SHOP") == "1" {
		restartShopContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")
		// sessions live in memory only
		doJSON(t, http.MethodGet, cartURL(token, ""), nil, nil, 401)
	}
}

func cartURL(token, suffix string) string {
	return baseURL + "/api/me/cart" + suffix + "?accessToken=" + url.QueryEscape(token)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
