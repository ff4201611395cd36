package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/mohitdudhat22/Task-Management-App/internal/client"
	"github.com/mohitdudhat22/Task-Management-App/internal/db"
	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
	"github.com/mohitdudhat22/Task-Management-App/internal/repository"
	"github.com/mohitdudhat22/Task-Management-App/internal/service"
	"github.com/mohitdudhat22/Task-Management-App/internal/ws"
)

// Runs against a live server: an admin creates and deletes a task for a
// second user, who must see both events on the socket.
func main() {
	_ = godotenv.Load()
	logger.Init("debug", false)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	service.InitJWT(os.Getenv("JWT_SECRET"))

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "http://127.0.0.1:" + port

	ctx := context.Background()
	pool := db.MustConnect(ctx, dsn)
	defer pool.Close()

	ur := repository.NewUserRepository(pool)
	admin := ensureUser(ctx, ur, "smokeA", domain.RoleAdmin)
	member := ensureUser(ctx, ur, "smokeB", domain.RoleUser)

	tokenA, err := service.GenerateJWT(domain.Identity{UserID: admin.ID, Role: admin.Role})
	if err != nil {
		logger.Fatal("gen token A", "error", err)
	}
	tokenB, err := service.GenerateJWT(domain.Identity{UserID: member.ID, Role: member.Role})
	if err != nil {
		logger.Fatal("gen token B", "error", err)
	}

	connB, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, tokenB), nil)
	if err != nil {
		logger.Fatal("dial B", "error", err)
	}
	defer connB.Close()

	if f := readFrame(connB); f.Event != ws.MsgReady {
		logger.Fatal("expected ready frame", "got", f.Event)
	}

	api := client.NewAPI(base, tokenA)
	task, err := api.CreateTask(ctx, domain.TaskInput{Title: "smoke task", AssignedTo: member.ID})
	if err != nil {
		logger.Fatal("create task", "error", err)
	}
	f := readFrame(connB)
	logger.Info("B got", "event", f.Event, "data", string(f.Data))

	if err := api.DeleteTask(ctx, task.ID); err != nil {
		logger.Fatal("delete task", "error", err)
	}
	f = readFrame(connB)
	logger.Info("B got", "event", f.Event, "data", string(f.Data))

	logger.Info("smoke test finished")
}

func ensureUser(ctx context.Context, ur *repository.UserRepository, name string, role domain.Role) *domain.User {
	u, err := ur.GetByName(ctx, name)
	if err == nil {
		return u
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		logger.Fatal("lookup user", "name", name, "error", err)
	}
	u = &domain.User{Name: name, Email: name + "@example.com", Role: role}
	if err := ur.Create(ctx, u); err != nil {
		logger.Fatal("create user", "name", name, "error", err)
	}
	return u
}

func readFrame(conn *websocket.Conn) ws.Frame {
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var f ws.Frame
	if err := conn.ReadJSON(&f); err != nil {
		logger.Fatal("read frame", "error", err)
	}
	return f
}
