package queue_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/queue"
)

type MockWorkerRepository struct {
	mock.Mock
}

func (m *MockWorkerRepository) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*queue.Task, error) {
	args := m.Called(ctx, workerID, queues, lockDuration)
	if task := args.Get(0); task != nil {
		return task.(*queue.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWorkerRepository) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockWorkerRepository) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, taskID, errorMsg)
	return args.Error(0)
}

func (m *MockWorkerRepository) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockWorkerRepository) ExtendLock(ctx context.Context, taskID uuid.UUID, duration time.Duration) error {
	args := m.Called(ctx, taskID, duration)
	return args.Error(0)
}

func newTestTask(name string, retryCount, maxRetries int8) *queue.Task {
	return &queue.Task{
		ID:          uuid.New(),
		Queue:       queue.DefaultQueueName,
		TaskType:    queue.TaskTypeOneTime,
		TaskName:    name,
		Payload:     []byte(`{}`),
		Status:      queue.TaskStatusProcessing,
		Priority:    queue.PriorityDefault,
		RetryCount:  retryCount,
		MaxRetries:  maxRetries,
		ScheduledAt: time.Now(),
		CreatedAt:   time.Now(),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, done <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestNewWorker(t *testing.T) {
	t.Parallel()

	t.Run("requires a repository", func(t *testing.T) {
		t.Parallel()

		_, err := queue.NewWorker(nil)
		require.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("creates with options", func(t *testing.T) {
		t.Parallel()

		worker, err := queue.NewWorker(new(MockWorkerRepository),
			queue.WithQueues("campaigns", "emails"),
			queue.WithPullInterval(time.Second),
			queue.WithLockTimeout(time.Minute),
			queue.WithMaxConcurrentTasks(4),
			queue.WithWorkerLogger(quietLogger()),
		)
		require.NoError(t, err)
		require.NotNil(t, worker)
	})
}

func TestWorker_Start(t *testing.T) {
	t.Parallel()

	t.Run("refuses to start without handlers", func(t *testing.T) {
		t.Parallel()

		worker, err := queue.NewWorker(new(MockWorkerRepository),
			queue.WithWorkerLogger(quietLogger()))
		require.NoError(t, err)

		err = worker.Start(context.Background())
		require.ErrorIs(t, err, queue.ErrNoHandlers)
	})

	t.Run("refuses a second start", func(t *testing.T) {
		t.Parallel()

		repo := new(MockWorkerRepository)
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, queue.ErrNoTaskToClaim).Maybe()

		worker, err := queue.NewWorker(repo, queue.WithWorkerLogger(quietLogger()))
		require.NoError(t, err)
		require.NoError(t, worker.RegisterHandler(queue.NewTaskHandler(func(ctx context.Context, p sendCampaign) error {
			return nil
		})))

		require.NoError(t, worker.Start(context.Background()))
		t.Cleanup(func() { _ = worker.Stop() })

		err = worker.Start(context.Background())
		require.Error(t, err)
	})

	t.Run("stop before start fails", func(t *testing.T) {
		t.Parallel()

		worker, err := queue.NewWorker(new(MockWorkerRepository),
			queue.WithWorkerLogger(quietLogger()))
		require.NoError(t, err)

		require.Error(t, worker.Stop())
	})
}

func TestWorker_ProcessTask(t *testing.T) {
	t.Parallel()

	t.Run("completes a successful task", func(t *testing.T) {
		t.Parallel()

		task := newTestTask("queue_test.sendCampaign", 0, 3)
		handled := make(chan struct{})
		completed := make(chan struct{})

		repo := new(MockWorkerRepository)
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(task, nil).Once()
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, queue.ErrNoTaskToClaim).Maybe()
		repo.On("CompleteTask", mock.Anything, task.ID).
			Run(func(args mock.Arguments) { close(completed) }).
			Return(nil).Once()

		worker, err := queue.NewWorker(repo,
			queue.WithPullInterval(10*time.Millisecond),
			queue.WithWorkerLogger(quietLogger()))
		require.NoError(t, err)

		handler := queue.NewTaskHandler(func(ctx context.Context, p sendCampaign) error {
			close(handled)
			return nil
		})
		require.NoError(t, worker.RegisterHandler(handler))

		require.NoError(t, worker.Start(context.Background()))
		waitFor(t, handled, "handler invocation")
		waitFor(t, completed, "task completion")
		require.NoError(t, worker.Stop())

		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "FailTask", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("records a failure and leaves retries to the repository", func(t *testing.T) {
		t.Parallel()

		task := newTestTask("queue_test.sendCampaign", 0, 3)
		failed := make(chan struct{})

		repo := new(MockWorkerRepository)
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(task, nil).Once()
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, queue.ErrNoTaskToClaim).Maybe()
		repo.On("FailTask", mock.Anything, task.ID, "smtp down").
			Run(func(args mock.Arguments) { close(failed) }).
			Return(nil).Once()

		worker, err := queue.NewWorker(repo,
			queue.WithPullInterval(10*time.Millisecond),
			queue.WithWorkerLogger(quietLogger()))
		require.NoError(t, err)

		handler := queue.NewTaskHandler(func(ctx context.Context, p sendCampaign) error {
			return errors.New("smtp down")
		})
		require.NoError(t, worker.RegisterHandler(handler))

		require.NoError(t, worker.Start(context.Background()))
		waitFor(t, failed, "failure recording")
		require.NoError(t, worker.Stop())

		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "MoveToDLQ", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CompleteTask", mock.Anything, mock.Anything)
	})

	t.Run("moves a task to the DLQ after the final retry", func(t *testing.T) {
		t.Parallel()

		task := newTestTask("queue_test.sendCampaign", 3, 3)
		moved := make(chan struct{})

		repo := new(MockWorkerRepository)
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(task, nil).Once()
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, queue.ErrNoTaskToClaim).Maybe()
		repo.On("FailTask", mock.Anything, task.ID, "smtp down").Return(nil).Once()
		repo.On("MoveToDLQ", mock.Anything, task.ID).
			Run(func(args mock.Arguments) { close(moved) }).
			Return(nil).Once()

		worker, err := queue.NewWorker(repo,
			queue.WithPullInterval(10*time.Millisecond),
			queue.WithWorkerLogger(quietLogger()))
		require.NoError(t, err)

		handler := queue.NewTaskHandler(func(ctx context.Context, p sendCampaign) error {
			return errors.New("smtp down")
		})
		require.NoError(t, worker.RegisterHandler(handler))

		require.NoError(t, worker.Start(context.Background()))
		waitFor(t, moved, "move to DLQ")
		require.NoError(t, worker.Stop())

		repo.AssertExpectations(t)
	})

	t.Run("recovers from a panicking handler", func(t *testing.T) {
		t.Parallel()

		task := newTestTask("queue_test.sendCampaign", 0, 3)
		failed := make(chan struct{})

		repo := new(MockWorkerRepository)
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(task, nil).Once()
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, queue.ErrNoTaskToClaim).Maybe()
		repo.On("FailTask", mock.Anything, task.ID, mock.MatchedBy(func(msg string) bool {
			return msg == "panic in handler: template exploded"
		})).Run(func(args mock.Arguments) { close(failed) }).Return(nil).Once()

		worker, err := queue.NewWorker(repo,
			queue.WithPullInterval(10*time.Millisecond),
			queue.WithWorkerLogger(quietLogger()))
		require.NoError(t, err)

		handler := queue.NewTaskHandler(func(ctx context.Context, p sendCampaign) error {
			panic("template exploded")
		})
		require.NoError(t, worker.RegisterHandler(handler))

		require.NoError(t, worker.Start(context.Background()))
		waitFor(t, failed, "panic failure recording")
		require.NoError(t, worker.Stop())

		repo.AssertExpectations(t)
	})

	t.Run("sends unroutable tasks to the DLQ", func(t *testing.T) {
		t.Parallel()

		task := newTestTask("ghost.task", 0, 3)
		moved := make(chan struct{})

		repo := new(MockWorkerRepository)
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(task, nil).Once()
		repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, queue.ErrNoTaskToClaim).Maybe()
		repo.On("FailTask", mock.Anything, task.ID, "no handler registered for task type: ghost.task").
			Return(nil).Once()
		repo.On("MoveToDLQ", mock.Anything, task.ID).
			Run(func(args mock.Arguments) { close(moved) }).
			Return(nil).Once()

		worker, err := queue.NewWorker(repo,
			queue.WithPullInterval(10*time.Millisecond),
			queue.WithWorkerLogger(quietLogger()))
		require.NoError(t, err)

		handler := queue.NewTaskHandler(func(ctx context.Context, p sendCampaign) error {
			return nil
		})
		require.NoError(t, worker.RegisterHandler(handler))

		require.NoError(t, worker.Start(context.Background()))
		waitFor(t, moved, "unroutable task discard")
		require.NoError(t, worker.Stop())

		repo.AssertExpectations(t)
	})
}

func TestWorker_Run(t *testing.T) {
	t.Parallel()

	repo := new(MockWorkerRepository)
	repo.On("ClaimTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, queue.ErrNoTaskToClaim).Maybe()

	worker, err := queue.NewWorker(repo,
		queue.WithPullInterval(10*time.Millisecond),
		queue.WithWorkerLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, worker.RegisterHandler(queue.NewTaskHandler(func(ctx context.Context, p sendCampaign) error {
		return nil
	})))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx)() }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker.Run did not return after context cancellation")
	}
}

func TestWorker_ExtendLock(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	repo := new(MockWorkerRepository)
	repo.On("ExtendLock", mock.Anything, taskID, time.Minute).Return(nil).Once()

	worker, err := queue.NewWorker(repo, queue.WithWorkerLogger(quietLogger()))
	require.NoError(t, err)

	require.NoError(t, worker.ExtendLock(context.Background(), taskID, time.Minute))
	repo.AssertExpectations(t)
}
