package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/pkg/cache"
)

func quoteServer(t *testing.T, hits *atomic.Int64, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/quote" {
			t.Errorf("path = %s, want /quote", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") == "" {
			t.Error("missing symbol query param")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchParsesQuote(t *testing.T) {
	var hits atomic.Int64
	srv := quoteServer(t, &hits,
		`{"symbol":"AAPL","name":"Apple Inc.","price":231.5,"change":2.1,"changePercent":0.92,"volume":51234000,"pe":35.2}`)
	defer srv.Close()

	c := New(srv.URL, "test-key", time.Second)
	q, err := c.Fetch(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if q.Symbol != "AAPL" || q.Price != 231.5 {
		t.Errorf("quote = %s/%v, want AAPL/231.5", q.Symbol, q.Price)
	}
	if q.LastUpdated.IsZero() {
		t.Error("LastUpdated not defaulted")
	}
}

func TestFetchRejectsNonPositivePrice(t *testing.T) {
	var hits atomic.Int64
	srv := quoteServer(t, &hits, `{"symbol":"NOPE","price":0}`)
	defer srv.Close()

	c := New(srv.URL, "test-key", time.Second)
	if _, err := c.Fetch(context.Background(), "NOPE"); err == nil {
		t.Fatal("no error for zero price")
	}
}

func TestFetchRejectsEmptySymbol(t *testing.T) {
	c := New("http://unused", "k", time.Second)
	if _, err := c.Fetch(context.Background(), ""); err == nil {
		t.Fatal("no error for empty symbol")
	}
}

func TestFetchUsesCache(t *testing.T) {
	var hits atomic.Int64
	srv := quoteServer(t, &hits, `{"symbol":"AAPL","price":100}`)
	defer srv.Close()

	mc := cache.NewMemoryCache()
	defer mc.Close()
	c := New(srv.URL, "test-key", time.Second, WithCache(mc, 10*time.Second))

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background(), "AAPL"); err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1 (cache should absorb repeats)", hits.Load())
	}
}

func TestFetchErrorOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", time.Second)
	if _, err := c.Fetch(context.Background(), "AAPL"); err == nil {
		t.Fatal("no error for 502 response")
	}
}
