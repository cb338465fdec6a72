package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ShadesStore/internal/auth"
	"ShadesStore/internal/cart"
	"ShadesStore/internal/catalog"
)

type stubResolver map[string]string

func (s stubResolver) Resolve(_ context.Context, token string) (auth.Session, error) {
	u, ok := s[token]
	if !ok {
		return auth.Session{}, auth.ErrUnauthorized
	}
	return auth.Session{Username: u, Token: token}, nil
}

func newCartRouter(t *testing.T) http.Handler {
	t.Helper()

	cat := catalog.NewMemStore(nil, []catalog.Product{
		{ID: "1", CategoryID: "1", Name: "Superglasses"},
		{ID: "2", CategoryID: "1", Name: "Black Sunglasses"},
	})
	s := &cart.Server{
		Manager:  cart.NewManager(cart.NewMemStore(nil), cat, nil),
		Resolver: stubResolver{"tok-a": "alice", "tok-b": "bob"},
		Log:      zap.NewNop(),
	}

	r := chi.NewRouter()
	r.Route("/api/me/cart", s.Routes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeLines(t *testing.T, rec *httptest.ResponseRecorder) []cart.Line {
	t.Helper()
	var lines []cart.Line
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines), rec.Body.String())
	return lines
}

func TestCartHTTP_RequiresToken(t *testing.T) {
	h := newCartRouter(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/me/cart", ""},
		{http.MethodGet, "/api/me/cart?accessToken=bogus", ""},
		{http.MethodPost, "/api/me/cart", `{"id":"1"}`},
		{http.MethodPut, "/api/me/cart/1", `{"quantity":2}`},
		{http.MethodDelete, "/api/me/cart/1", ""},
	} {
		rec := do(t, h, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCartHTTP_Flow(t *testing.T) {
	h := newCartRouter(t)
	const q = "?accessToken=tok-a"

	rec := do(t, h, http.MethodGet, "/api/me/cart"+q, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/me/cart/1"+q, `{"quantity":2}`)
	assert.Equal(t, http.StatusForbidden, rec.Code, "update on empty cart")

	rec = do(t, h, http.MethodDelete, "/api/me/cart/1"+q, "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "remove on empty cart")

	rec = do(t, h, http.MethodPost, "/api/me/cart"+q, `{"id":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	lines := decodeLines(t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, "1", lines[0].ID)
	assert.Equal(t, 1, lines[0].Quantity)

	rec = do(t, h, http.MethodPost, "/api/me/cart"+q, `{"id":"1"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "duplicate add")

	rec = do(t, h, http.MethodPost, "/api/me/cart"+q, `{"id":"404"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown product")

	rec = do(t, h, http.MethodPost, "/api/me/cart"+q, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing id")

	rec = do(t, h, http.MethodPut, "/api/me/cart/1"+q, `{"quantity":0}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/me/cart/1"+q, `{"quantity":-3}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/me/cart/2"+q, `{"quantity":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "update of a line not in cart")

	rec = do(t, h, http.MethodPut, "/api/me/cart/1"+q, `{"quantity":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	lines = decodeLines(t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	rec = do(t, h, http.MethodDelete, "/api/me/cart/2"+q, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/me/cart/1"+q, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeLines(t, rec))

	rec = do(t, h, http.MethodGet, "/api/me/cart?accessToken=tok-b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String(), "other user's cart untouched")
}

func TestCartHTTP_LineJSONInlinesProduct(t *testing.T) {
	h := newCartRouter(t)

	rec := do(t, h, http.MethodPost, "/api/me/cart?accessToken=tok-a", `{"id":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "2", raw[0]["id"])
	assert.Equal(t, "1", raw[0]["categoryId"])
	assert.Equal(t, "Black Sunglasses", raw[0]["name"])
	assert.EqualValues(t, 1, raw[0]["quantity"])
}

func TestCartHTTP_UpdateBodies(t *testing.T) {
	tests := []struct {
		name   string
		seeded bool
		body   string
		status int
	}{
		{name: "empty cart, no body", body: "", status: http.StatusForbidden},
		{name: "empty cart, quantity as string", body: `{"quantity":"2"}`, status: http.StatusForbidden},
		{name: "empty cart, broken json", body: `{"quantity":`, status: http.StatusForbidden},
		{name: "no body", seeded: true, body: "", status: http.StatusMethodNotAllowed},
		{name: "quantity as string", seeded: true, body: `{"quantity":"2"}`, status: http.StatusMethodNotAllowed},
		{name: "fractional quantity", seeded: true, body: `{"quantity":1.5}`, status: http.StatusMethodNotAllowed},
		{name: "extra fields ignored", seeded: true, body: `{"quantity":3,"note":"gift"}`, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCartRouter(t)
			const q = "?accessToken=tok-a"

			if tt.seeded {
				rec := do(t, h, http.MethodPost, "/api/me/cart"+q, `{"id":"1"}`)
				require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			}

			rec := do(t, h, http.MethodPut, "/api/me/cart/1"+q, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			if tt.status == http.StatusOK {
				lines := decodeLines(t, rec)
				require.Len(t, lines, 1)
				assert.Equal(t, 3, lines[0].Quantity)
			}
		})
	}
}

func TestCartHTTP_AddBodies(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		wantID string
	}{
		{name: "id with product object", body: `{"id":"1","product":{"id":"1"}}`, status: http.StatusOK, wantID: "1"},
		{name: "extra quantity field", body: `{"id":"2","quantity":1}`, status: http.StatusOK, wantID: "2"},
		{name: "product object only", body: `{"product":{"id":"2","name":"Black Sunglasses"}}`, status: http.StatusOK, wantID: "2"},
		{name: "id wins over product", body: `{"id":"1","product":{"id":"2"}}`, status: http.StatusOK, wantID: "1"},
		{name: "no body", body: "", status: http.StatusBadRequest},
		{name: "broken json", body: `{"id":`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCartRouter(t)

			rec := do(t, h, http.MethodPost, "/api/me/cart?accessToken=tok-a", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			if tt.wantID != "" {
				lines := decodeLines(t, rec)
				require.Len(t, lines, 1)
				assert.Equal(t, tt.wantID, lines[0].ID)
				assert.Equal(t, 1, lines[0].Quantity)
			}
		})
	}
}
