package receipts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/receiptly/dashboard/internal/dashboard"
	"github.com/receiptly/dashboard/internal/upstream"
	"github.com/receiptly/dashboard/internal/view"
)

func routerHarness(t *testing.T, api http.HandlerFunc) (http.Handler, *dashboard.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := upstream.NewClient(srv.URL, upstream.StaticTokenSource("tok"), silentLogger())
	cache := dashboard.NewCache(rdb, time.Minute)
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("template engine: %v", err)
	}
	h := NewHandler(silentLogger(), NewEditor(client), cache, engine)

	router := chi.NewRouter()
	router.Route("/receipts", h.MountRoutes)
	return router, cache
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleUpdateFieldRejectsInvalid(t *testing.T) {
	router, cache := routerHarness(t, func(w http.ResponseWriter, r *http.Request) {
		receiptResponse(w)
	})
	before, _ := cache.Version(context.Background())

	rec := postForm(router, "/receipts/7/field", url.Values{"field": {FieldDate}, "value": {"not-a-date"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	after, _ := cache.Version(context.Background())
	if after != before {
		t.Fatal("rejected edit must not bump the cache")
	}
}

func TestHandleUpdateFieldBumpsCache(t *testing.T) {
	router, cache := routerHarness(t, func(w http.ResponseWriter, r *http.Request) {
		receiptResponse(w)
	})
	before, _ := cache.Version(context.Background())

	rec := postForm(router, "/receipts/7/field", url.Values{"field": {FieldStoreName}, "value": {"Aldi"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	after, _ := cache.Version(context.Background())
	if after != before+1 {
		t.Fatalf("cache version %d -> %d, want a single bump", before, after)
	}
}

func TestHandleUpdateItemPrice(t *testing.T) {
	router, _ := routerHarness(t, func(w http.ResponseWriter, r *http.Request) {
		receiptResponse(w)
	})

	rec := postForm(router, "/receipts/7/items/0/price", url.Values{"price": {"12.99"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = postForm(router, "/receipts/7/items/0/price", url.Values{"price": {"-1"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("negative price status = %d, want 422", rec.Code)
	}
}

func TestHandleShowBadID(t *testing.T) {
	router, _ := routerHarness(t, func(w http.ResponseWriter, r *http.Request) {
		receiptResponse(w)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/receipts/abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
