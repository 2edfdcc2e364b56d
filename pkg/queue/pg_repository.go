package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, queue, task_type, task_name, payload, status, priority,
	retry_count, max_retries, scheduled_at, locked_until, locked_by,
	processed_at, error, created_at`

// PostgresRepository implements the enqueuer, worker, and scheduler
// repository interfaces on PostgreSQL. ClaimTask uses FOR UPDATE SKIP
// LOCKED so concurrent workers never double-claim a task, and expired
// locks are reclaimed at claim time rather than by a background sweeper.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a repository backed by pool. The tasks and
// tasks_dlq tables come from the bundled migrations.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, queue, task_type, task_name, payload, status,
			priority, retry_count, max_retries, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		task.ID, task.Queue, task.TaskType, task.TaskName, task.Payload,
		task.Status, task.Priority, task.RetryCount, task.MaxRetries,
		task.ScheduledAt, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	row := r.pool.QueryRow(ctx, `
		WITH next_task AS (
			SELECT id
			FROM tasks
			WHERE queue = ANY($1)
			  AND scheduled_at <= now()
			  AND (status = 'pending' OR (status = 'processing' AND locked_until < now()))
			ORDER BY priority DESC, scheduled_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE tasks
		SET status = 'processing', locked_by = $2, locked_until = $3
		FROM next_task
		WHERE tasks.id = next_task.id
		RETURNING tasks.id, tasks.queue, tasks.task_type, tasks.task_name,
			tasks.payload, tasks.status, tasks.priority, tasks.retry_count,
			tasks.max_retries, tasks.scheduled_at, tasks.locked_until,
			tasks.locked_by, tasks.processed_at, tasks.error, tasks.created_at`,
		queues, workerID, time.Now().Add(lockDuration),
	)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoTaskToClaim
		}
		return nil, fmt.Errorf("claim task: %w", err)
	}
	return task, nil
}

func (r *PostgresRepository) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET status = 'completed', processed_at = now(), locked_until = NULL, locked_by = NULL
		WHERE id = $1 AND status = 'processing'`,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}
	return nil
}

func (r *PostgresRepository) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET retry_count = retry_count + 1,
			error = $2,
			locked_until = NULL,
			locked_by = NULL,
			status = CASE WHEN retry_count + 1 >= max_retries
				THEN 'failed' ELSE 'pending' END,
			scheduled_at = CASE WHEN retry_count + 1 >= max_retries
				THEN scheduled_at ELSE now() + (retry_count + 1) * interval '30 seconds' END
		WHERE id = $1 AND status = 'processing'`,
		taskID, errorMsg,
	)
	if err != nil {
		return fmt.Errorf("fail task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}
	return nil
}

func (r *PostgresRepository) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO tasks_dlq (id, task_id, queue, task_type, task_name,
				payload, priority, error, retry_count, failed_at, created_at)
			SELECT gen_random_uuid(), id, queue, task_type, task_name,
				payload, priority, coalesce(error, ''), retry_count, now(), now()
			FROM tasks
			WHERE id = $1`,
			taskID,
		)
		if err != nil {
			return fmt.Errorf("copy task to DLQ: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("task %s not found", taskID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID); err != nil {
			return fmt.Errorf("delete task after DLQ copy: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) ExtendLock(ctx context.Context, taskID uuid.UUID, duration time.Duration) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET locked_until = $2
		WHERE id = $1 AND status = 'processing'`,
		taskID, time.Now().Add(duration),
	)
	if err != nil {
		return fmt.Errorf("extend lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}
	return nil
}

func (r *PostgresRepository) GetPendingTaskByName(ctx context.Context, taskName string) (*Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE task_name = $1 AND status = 'pending'
		ORDER BY scheduled_at
		LIMIT 1`,
		taskName,
	)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending task by name: %w", err)
	}
	return task, nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.Queue, &t.TaskType, &t.TaskName, &t.Payload, &t.Status,
		&t.Priority, &t.RetryCount, &t.MaxRetries, &t.ScheduledAt,
		&t.LockedUntil, &t.LockedBy, &t.ProcessedAt, &t.Error, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
