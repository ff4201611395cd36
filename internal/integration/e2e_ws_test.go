package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	redis "github.com/redis/go-redis/v9"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	httpserver "github.com/mohitdudhat22/Task-Management-App/internal/http"
	"github.com/mohitdudhat22/Task-Management-App/internal/repository"
	"github.com/mohitdudhat22/Task-Management-App/internal/service"
	"github.com/mohitdudhat22/Task-Management-App/internal/ws"
)

func TestE2E_WS_TaskEvents(t *testing.T) {
	pool := connectDB(t)
	service.InitJWT("test-secret")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ur := repository.NewUserRepository(pool)
	admin := createUser(t, ur, "userA", domain.RoleAdmin)
	member := createUser(t, ur, "userB", domain.RoleUser)

	tokenA, err := service.GenerateJWT(domain.Identity{UserID: admin.ID, Role: admin.Role})
	if err != nil {
		t.Fatalf("gen token A: %v", err)
	}
	tokenB, err := service.GenerateJWT(domain.Identity{UserID: member.ID, Role: member.Role})
	if err != nil {
		t.Fatalf("gen token B: %v", err)
	}

	hub := ws.NewHub()
	defer hub.Close()

	// Route events through Redis when it is available, like production does.
	var publisher service.Publisher = hub
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		relay := ws.NewRedisRelay(rdb, "e2e-task-events", hub)
		go relay.Run(ctx)
		select {
		case <-relay.Ready():
		case <-time.After(3 * time.Second):
			t.Fatalf("relay did not subscribe")
		}
		publisher = relay
	}

	audit := service.NewAuditService(repository.NewAuditRepository(pool))
	tasks := service.NewTaskService(repository.NewTaskRepository(pool), ur, publisher, service.WithAuditor(audit))

	// start server with real routes
	gin.SetMode(gin.TestMode)
	r := gin.New()
	httpserver.RegisterRoutes(r, httpserver.Deps{Tasks: tasks, Audit: audit, Hub: hub, Version: "e2e"})
	ts := httptest.NewServer(r)
	defer ts.Close()

	dial := func(token string) *websocket.Conn {
		url := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?token=" + token
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		return conn
	}
	connA := dial(tokenA)
	defer connA.Close()
	connB := dial(tokenB)
	defer connB.Close()

	// start a single reader goroutine per connection to avoid concurrent ReadMessage calls
	startReader := func(conn *websocket.Conn) chan ws.Frame {
		out := make(chan ws.Frame, 16)
		go func() {
			defer close(out)
			for {
				var f ws.Frame
				if err := conn.ReadJSON(&f); err != nil {
					return
				}
				out <- f
			}
		}()
		return out
	}
	chA := startReader(connA)
	chB := startReader(connB)

	waitFor := func(ch chan ws.Frame, event string) ws.Frame {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case f, ok := <-ch:
				if !ok {
					t.Fatalf("connection closed waiting for %s", event)
				}
				if f.Event == event {
					return f
				}
			case <-deadline:
				t.Fatalf("timeout waiting for %s", event)
			}
		}
	}

	waitFor(chA, ws.MsgReady)
	waitFor(chB, ws.MsgReady)

	call := func(token, method, path string, body any) (int, []byte) {
		t.Helper()
		b, _ := json.Marshal(body)
		req, _ := http.NewRequest(method, ts.URL+path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		defer res.Body.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(res.Body)
		return res.StatusCode, buf.Bytes()
	}

	code, body := call(tokenA, http.MethodPost, "/api/create", map[string]any{"title": "e2e task", "assignedTo": member.ID})
	if code != http.StatusCreated {
		t.Fatalf("create: %d %s", code, body)
	}
	var task domain.Task
	if err := json.Unmarshal(body, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if f := waitFor(chB, domain.WireTaskCreated); !bytes.Contains(f.Data, []byte(task.ID)) {
		t.Fatalf("B got the wrong task: %s", f.Data)
	}

	code, body = call(tokenB, http.MethodPut, "/api/edit/"+task.ID, map[string]any{"status": "pending", "version": 1})
	if code != http.StatusOK {
		t.Fatalf("edit: %d %s", code, body)
	}
	var updated domain.Task
	if err := json.Unmarshal(waitFor(chA, domain.WireTaskUpdated).Data, &updated); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if updated.Status != domain.StatusPending || updated.Version != 2 {
		t.Fatalf("A got stale update: %+v", updated)
	}

	if code, _ := call(tokenB, http.MethodPut, "/api/edit/"+task.ID, map[string]any{"title": "late", "version": 1}); code != http.StatusConflict {
		t.Fatalf("expected 409 for a stale version, got %d", code)
	}

	if code, body := call(tokenB, http.MethodDelete, "/api/delete/"+task.ID, nil); code != http.StatusOK {
		t.Fatalf("delete: %d %s", code, body)
	}
	var gone domain.DeletedTask
	if err := json.Unmarshal(waitFor(chA, domain.WireTaskDeleted).Data, &gone); err != nil {
		t.Fatalf("decode delete: %v", err)
	}
	if gone.ID != task.ID || gone.Status != domain.StatusPending {
		t.Fatalf("unexpected delete payload %+v", gone)
	}

	logs, err := audit.GetUserAuditLogs(ctx, member.ID, 10)
	if err != nil {
		t.Fatalf("audit logs: %v", err)
	}
	if len(logs) < 2 {
		t.Fatalf("expected edit and delete audit entries, got %d", len(logs))
	}
}
