package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserExists = errors.New("user already exists")

const userColumns = `u.id::text, u.name, u.email, u.password_hash, u.role, u.created_at,
	COALESCE(array_agg(ut.task_id::text ORDER BY ut.task_id) FILTER (WHERE ut.task_id IS NOT NULL), '{}')`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if !u.Role.Valid() {
		u.Role = domain.RoleUser
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id::text, created_at`,
		u.Name,
		u.Email,
		u.PasswordHash,
		string(u.Role),
	).Scan(&u.ID, &u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrUserExists, u.Name)
	}
	u.Tasks = []string{}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN user_tasks ut ON ut.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id`, uid)
	return scanUser(row, id)
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN user_tasks ut ON ut.user_id = u.id
		WHERE u.name = $1
		GROUP BY u.id`, name)
	return scanUser(row, name)
}

// List returns every user with the ids of the tasks linked to them.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN user_tasks ut ON ut.user_id = u.id
		GROUP BY u.id
		ORDER BY u.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows, "")
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func scanUser(row pgx.Row, ref string) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.Tasks)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, ref)
	}
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
