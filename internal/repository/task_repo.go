package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id::text, title, description, status, priority, due_date,
	assigned_by::text, assigned_to::text, is_assigned_by_admin, version, created_at, updated_at`

type TaskRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db, now: time.Now}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertTask(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateBatch inserts all tasks in one transaction. Either every row is
// written or none is.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, t := range tasks {
		if err := insertTask(ctx, tx, t); err != nil {
			return fmt.Errorf("insert %q: %w", t.Title, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, tid)
	return scanTask(row, id)
}

// ListByOwner returns the tasks an admin assigned, or the tasks assigned to a
// regular user, oldest first.
func (r *TaskRepository) ListByOwner(ctx context.Context, userID string, role domain.Role) ([]*domain.Task, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []*domain.Task{}, nil
	}

	column := "assigned_to"
	if role == domain.RoleAdmin {
		column = "assigned_by"
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+column+` = $1 ORDER BY created_at, id`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows, "")
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// Update locks the row, applies the patch with domain validation and writes
// the result back.
func (r *TaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, tid), id)
	if err != nil {
		return nil, err
	}
	if err := t.Apply(patch, r.now().UTC()); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5,
		    version = $6, updated_at = $7
		WHERE id = $8`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate,
		t.Version, t.UpdatedAt, tid,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the task and returns it as it was.
func (r *TaskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	row := r.db.QueryRow(ctx, `DELETE FROM tasks WHERE id = $1 RETURNING `+taskColumns, tid)
	return scanTask(row, id)
}

// Assign moves the task to userID and records assignedBy as the assigning admin.
func (r *TaskRepository) Assign(ctx context.Context, taskID, userID, assignedBy string) (*domain.Task, error) {
	tid, err := uuid.Parse(taskID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	by, err := uuid.Parse(assignedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, assignedBy)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, tid), taskID); err != nil {
		return nil, err
	}

	t, err := scanTask(tx.QueryRow(ctx, `
		UPDATE tasks
		SET assigned_to = $1, assigned_by = $2, is_assigned_by_admin = true,
		    version = version + 1, updated_at = $3
		WHERE id = $4
		RETURNING `+taskColumns,
		uid, by, r.now().UTC(), tid,
	), taskID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_tasks WHERE task_id = $1`, tid); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO user_tasks (user_id, task_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, uid, tid); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Stats aggregates counts over every task. Tasks created since today and in
// the seven days before it are reported separately.
func (r *TaskRepository) Stats(ctx context.Context, now, today time.Time, top int) (*domain.TaskStats, error) {
	stats := domain.NewTaskStats()
	weekAgo := today.Add(-7 * 24 * time.Hour)

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, err
	}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE due_date < $1 AND status <> 'completed'),
		       COUNT(*) FILTER (WHERE created_at >= $2),
		       COUNT(*) FILTER (WHERE created_at >= $3)
		FROM tasks`, now, today, weekAgo,
	).Scan(&stats.TotalTasks, &stats.Overdue, &stats.CreatedToday, &stats.CreatedWeek)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT status, priority, COUNT(*) FROM tasks GROUP BY status, priority`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			status, priority string
			n                int64
		)
		if err := rows.Scan(&status, &priority, &n); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByStatus[domain.Status(status)] += n
		stats.ByPriority[domain.Priority(priority)] += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT u.id::text, u.name, COUNT(*) AS open
		FROM tasks t
		JOIN users u ON u.id = t.assigned_to
		WHERE t.status <> 'completed'
		GROUP BY u.id, u.name
		ORDER BY open DESC, u.name
		LIMIT $1`, top)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.AssigneeLoad
		if err := rows.Scan(&l.UserID, &l.Name, &l.Open); err != nil {
			return nil, err
		}
		stats.TopAssignees = append(stats.TopAssignees, l)
	}
	return stats, rows.Err()
}

func insertTask(ctx context.Context, tx pgx.Tx, t *domain.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	by, err := uuid.Parse(t.AssignedBy)
	if err != nil {
		return fmt.Errorf("%w: invalid assignedBy %q", domain.ErrValidation, t.AssignedBy)
	}
	var to *uuid.UUID
	if t.AssignedTo != nil {
		id, err := uuid.Parse(*t.AssignedTo)
		if err != nil {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, *t.AssignedTo)
		}
		to = &id
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date,
		                   assigned_by, assigned_to, is_assigned_by_admin, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.MustParse(t.ID), t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate,
		by, to, t.AssignedByAdmin, t.Version, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if to != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO user_tasks (user_id, task_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			*to, uuid.MustParse(t.ID))
	}
	return err
}

func scanTask(row pgx.Row, id string) (*domain.Task, error) {
	var (
		t        domain.Task
		status   string
		priority string
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&priority,
		&t.DueDate,
		&t.AssignedBy,
		&t.AssignedTo,
		&t.AssignedByAdmin,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	return &t, nil
}
