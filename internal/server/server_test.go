package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inovacc/cookbook/internal/gateway"
	"github.com/inovacc/cookbook/internal/model"
	"github.com/inovacc/cookbook/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()

	st, err := store.NewBolt(filepath.Join(t.TempDir(), "server.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := New(DefaultConfig(), st, WithClock(func() time.Time { return fixedNow }))

	return srv, st
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func TestListRecipes_EmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/recipes", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateRecipe(t *testing.T) {
	srv, st := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/recipe",
		`{"recipename":"Pancakes","servings":4,"rating":3,"ingredients":[{"amount":2,"measurement":"cups","name":"flour"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[model.Recipe](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Pancakes", created.Name)
	assert.Equal(t, "2024.03.09 14:05:06", created.CreatedDate)
	assert.Equal(t, created.CreatedDate, created.LastUpdatedDate)

	stored, err := st.Get(created.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, stored.Servings, 0)
	assert.Len(t, stored.Ingredients, 1)
}

func TestCreateRecipe_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"missing name", `{"servings":2}`, []string{"recipename"}},
		{"blank name", `{"recipename":"   "}`, []string{"recipename"}},
		{"rating too high", `{"recipename":"Soup","rating":6}`, []string{"rating"}},
		{"negative times", `{"recipename":"Soup","preptime":-1,"cooktime":-2}`, []string{"preptime", "cooktime"}},
		{"client id", `{"_id":"abc","recipename":"Soup"}`, []string{"_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodPost, "/api/recipe", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decode[errorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.fields, resp.InvalidFields)
		})
	}
}

func TestCreateRecipe_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/recipe", `{"recipename":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed recipe")
}

func TestUpdateRecipe_KeepsCreatedDate(t *testing.T) {
	srv, st := newTestServer(t)

	created, err := st.Create(model.Recipe{Name: "Soup", CreatedDate: "2020.01.01 00:00:00"})
	require.NoError(t, err)

	rec := do(t, srv.Handler(), http.MethodPut, "/api/recipe/"+created.ID, `{"recipename":"Tomato soup","rating":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decode[model.Recipe](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Tomato soup", updated.Name)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "2020.01.01 00:00:00", updated.CreatedDate)
	assert.Equal(t, "2024.03.09 14:05:06", updated.LastUpdatedDate)
}

func TestRecipeNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			body := ""
			if method == http.MethodPut {
				body = `{"recipename":"x"}`
			}

			rec := do(t, srv.Handler(), method, "/api/recipe/missing", body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestDeleteRecipe(t *testing.T) {
	srv, st := newTestServer(t)

	created, err := st.Create(model.Recipe{Name: "Bread"})
	require.NoError(t, err)

	rec := do(t, srv.Handler(), http.MethodDelete, "/api/recipe/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	_, err = st.Get(created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	do(t, srv.Handler(), http.MethodGet, "/api/recipes", "")
	do(t, srv.Handler(), http.MethodGet, "/api/recipe/abc", "")

	rec = do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `cookbook_http_requests_total{method="GET",route="/api/recipes",status="200"} 1`)
	assert.Contains(t, body, `route="/api/recipe/{id}",status="404"`)
	assert.NotContains(t, body, `route="/api/recipe/abc"`)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/recipe/abc", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// The gateway's HTTP client and this server must agree on paths, payloads
// and the error envelope.
func TestSearchRecipes(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, name := range []string{"Apple pie", "Bread", "Crab apple jelly"} {
		rec := do(t, h, http.MethodPost, "/api/recipe", `{"recipename":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodPost, "/api/recipe/search", `{"recipename":"APPLE"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	found := decode[[]model.Recipe](t, rec)
	require.Len(t, found, 2)
	assert.Equal(t, "Apple pie", found[0].Name)
	assert.Equal(t, "Crab apple jelly", found[1].Name)

	rec = do(t, h, http.MethodPost, "/api/recipe/search", `{"recipename":"soup"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/recipe/search", `{"recipename":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"recipename"}, decode[errorResponse](t, rec).InvalidFields)

	rec = do(t, h, http.MethodPost, "/api/recipe/search", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGatewayRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	gw := gateway.NewHTTPClient(ts.URL)

	require.NoError(t, gw.Create(ctx, model.Recipe{Name: "Pancakes", Servings: 2}))

	all, err := gw.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	id := all[0].ID
	require.NotEmpty(t, id)

	require.NoError(t, gw.Update(ctx, id, all[0].WithRating(4)))

	found, err := gw.Search(ctx, "pan")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)

	got, err := gw.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, all[0].CreatedDate, got.CreatedDate)

	err = gw.Create(ctx, model.Recipe{})
	require.Error(t, err)
	assert.True(t, gateway.IsRejected(err))

	var rejected *gateway.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, []string{"recipename"}, rejected.Fields)

	require.NoError(t, gw.Delete(ctx, id))

	err = gw.Delete(ctx, id)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- srv.Serve(ctx, listener) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/health")
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
