package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mohitdudhat22/Task-Management-App/internal/db"
	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"
	"github.com/mohitdudhat22/Task-Management-App/internal/repository"
	"github.com/mohitdudhat22/Task-Management-App/internal/service"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	name := flag.String("name", "testuser", "user name")
	email := flag.String("email", "", "email, defaults to <name>@example.com")
	password := flag.String("password", "", "password, optional")
	role := flag.String("role", string(domain.RoleUser), "user or admin")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	// expects DATABASE_URL and JWT_SECRET
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	service.InitJWT(os.Getenv("JWT_SECRET"))

	ctx := context.Background()
	pool := db.MustConnect(ctx, dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)

	u, err := repo.GetByName(ctx, *name)
	switch {
	case err == nil:
		logger.Info("user already exists", "id", u.ID, "name", u.Name)
	case errors.Is(err, domain.ErrUserNotFound):
		u = &domain.User{Name: *name, Email: *email, Role: domain.Role(*role)}
		if u.Email == "" {
			u.Email = *name + "@example.com"
		}
		if *password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
			if err != nil {
				logger.Fatal("hash password", "error", err)
			}
			u.PasswordHash = string(hash)
		}
		if err := repo.Create(ctx, u); err != nil {
			logger.Fatal("create user failed", "error", err)
		}
		logger.Info("user created", "id", u.ID, "name", u.Name, "role", u.Role)
	default:
		logger.Fatal("lookup user failed", "error", err)
	}

	token, err := service.GenerateJWT(domain.Identity{UserID: u.ID, Role: u.Role})
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
