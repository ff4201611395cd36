package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limitedRouter(l *RateLimiter, max int, w time.Duration, withUser string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", func(c *gin.Context) {
		if withUser != "" {
			c.Set(CtxUserID, withUser)
		}
		c.Next()
	}, l.Middleware(max, w), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return r
}

func doGet(r http.Handler) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_InProcess(t *testing.T) {
	l := NewRateLimiter(nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	r := limitedRouter(l, 2, time.Minute, "")

	for i := 0; i < 2; i++ {
		if code := doGet(r); code != 200 {
			t.Fatalf("request %d: expected 200 got %d", i, code)
		}
	}
	if code := doGet(r); code != 429 {
		t.Fatalf("expected 429 got %d", code)
	}

	now = now.Add(2 * time.Minute)
	if code := doGet(r); code != 200 {
		t.Fatalf("expected window reset, got %d", code)
	}
}

func TestRateLimiter_KeyedByUser(t *testing.T) {
	l := NewRateLimiter(nil)
	alice := limitedRouter(l, 1, time.Minute, "alice")
	bob := limitedRouter(l, 1, time.Minute, "bob")

	if doGet(alice) != 200 || doGet(bob) != 200 {
		t.Fatalf("first request per user must pass")
	}
	if doGet(alice) != 429 {
		t.Fatalf("alice should be limited")
	}
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRateLimitIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	pass := os.Getenv("REDIS_PASSWORD")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			db = n
		}
	}

	rdb := ConnectRedis(addr, pass, db)
	if rdb == nil {
		t.Fatalf("redis at %s did not answer", addr)
	}
	defer rdb.Close()

	// small window for test
	w := 2 * time.Second
	max := 2

	srv := httptest.NewServer(limitedRouter(NewRateLimiter(rdb), max, w, "rl-test-"+strconv.FormatInt(time.Now().UnixNano(), 10)))
	defer srv.Close()

	client := &http.Client{}

	// do max allowed requests
	for i := 0; i < max; i++ {
		res, err := client.Get(srv.URL + "/test")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != 200 {
			t.Fatalf("expected 200 got %d", res.StatusCode)
		}
	}

	// next request should be blocked
	res, err := client.Get(srv.URL + "/test")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != 429 {
		t.Fatalf("expected 429 got %d", res.StatusCode)
	}
}
