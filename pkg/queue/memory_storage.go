package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// retryBackoffStep spaces retries 30s, 60s, 90s apart so persistent
// failures do not hammer the handler.
const retryBackoffStep = 30 * time.Second

// MemoryStorage implements every queue repository interface in process
// memory. Meant for tests and local development; production uses
// PostgresRepository.
type MemoryStorage struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*Task
	dlq   map[uuid.UUID]*DeadLetter

	byQueue  map[string][]uuid.UUID
	byStatus map[TaskStatus][]uuid.UUID

	lockTicker *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryStorage returns storage with a background sweeper that releases
// locks left behind by crashed workers.
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		tasks:    make(map[uuid.UUID]*Task),
		dlq:      make(map[uuid.UUID]*DeadLetter),
		byQueue:  make(map[string][]uuid.UUID),
		byStatus: make(map[TaskStatus][]uuid.UUID),
		done:     make(chan struct{}),
	}

	ms.lockTicker = time.NewTicker(time.Second)
	go ms.expireLocksLoop()

	return ms
}

// Close stops the lock sweeper. Safe to call multiple times.
func (ms *MemoryStorage) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.done)
		ms.lockTicker.Stop()
	})
	return nil
}

func (ms *MemoryStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}

	taskCopy := *task
	ms.tasks[task.ID] = &taskCopy
	ms.byQueue[task.Queue] = append(ms.byQueue[task.Queue], task.ID)
	ms.byStatus[task.Status] = append(ms.byStatus[task.Status], task.ID)

	return nil
}

func (ms *MemoryStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()

	// Highest priority wins; earliest scheduled time breaks ties.
	var best *Task
	for _, taskID := range ms.byStatus[TaskStatusPending] {
		task := ms.tasks[taskID]
		if !slices.Contains(queues, task.Queue) {
			continue
		}
		if task.ScheduledAt.After(now) {
			continue
		}
		if best == nil ||
			task.Priority > best.Priority ||
			(task.Priority == best.Priority && task.ScheduledAt.Before(best.ScheduledAt)) {
			best = task
		}
	}
	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID

	ms.moveStatusIndex(best.ID, TaskStatusPending, TaskStatusProcessing)

	taskCopy := *best
	return &taskCopy, nil
}

func (ms *MemoryStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %s not found", taskID)
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}

	now := time.Now()
	task.Status = TaskStatusCompleted
	task.ProcessedAt = &now
	task.LockedUntil = nil
	task.LockedBy = nil

	ms.moveStatusIndex(taskID, TaskStatusProcessing, TaskStatusCompleted)
	return nil
}

func (ms *MemoryStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %s not found", taskID)
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}

	task.RetryCount++
	task.Error = &errorMsg
	task.LockedUntil = nil
	task.LockedBy = nil

	if task.RetryCount >= task.MaxRetries {
		task.Status = TaskStatusFailed
		ms.moveStatusIndex(taskID, TaskStatusProcessing, TaskStatusFailed)
	} else {
		task.Status = TaskStatusPending
		task.ScheduledAt = time.Now().Add(time.Duration(task.RetryCount) * retryBackoffStep)
		ms.moveStatusIndex(taskID, TaskStatusProcessing, TaskStatusPending)
	}

	return nil
}

func (ms *MemoryStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %s not found", taskID)
	}

	entry := &DeadLetter{
		ID:         uuid.New(),
		TaskID:     task.ID,
		Queue:      task.Queue,
		TaskType:   task.TaskType,
		TaskName:   task.TaskName,
		Payload:    task.Payload,
		Priority:   task.Priority,
		RetryCount: task.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  time.Now(),
	}
	if task.Error != nil {
		entry.Error = *task.Error
	}
	ms.dlq[entry.ID] = entry

	removeFromIndex(ms.byStatus, task.Status, taskID)
	removeFromIndex(ms.byQueue, task.Queue, taskID)
	delete(ms.tasks, taskID)

	return nil
}

func (ms *MemoryStorage) ExtendLock(ctx context.Context, taskID uuid.UUID, duration time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[taskID]
	if !exists {
		return fmt.Errorf("task %s not found", taskID)
	}
	if task.Status != TaskStatusProcessing {
		return fmt.Errorf("task %s is not in processing state", taskID)
	}

	lockUntil := time.Now().Add(duration)
	task.LockedUntil = &lockUntil
	return nil
}

func (ms *MemoryStorage) GetPendingTaskByName(ctx context.Context, taskName string) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, taskID := range ms.byStatus[TaskStatusPending] {
		task := ms.tasks[taskID]
		if task.TaskName == taskName {
			taskCopy := *task
			return &taskCopy, nil
		}
	}
	return nil, nil
}

// DeadLetters returns a snapshot of the dead letter queue, for tests.
func (ms *MemoryStorage) DeadLetters() []*DeadLetter {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entries := make([]*DeadLetter, 0, len(ms.dlq))
	for _, entry := range ms.dlq {
		entryCopy := *entry
		entries = append(entries, &entryCopy)
	}
	return entries
}

func (ms *MemoryStorage) moveStatusIndex(taskID uuid.UUID, from, to TaskStatus) {
	removeFromIndex(ms.byStatus, from, taskID)
	ms.byStatus[to] = append(ms.byStatus[to], taskID)
}

func removeFromIndex[K comparable](index map[K][]uuid.UUID, key K, taskID uuid.UUID) {
	index[key] = slices.DeleteFunc(index[key], func(id uuid.UUID) bool { return id == taskID })
}

// expireLocksLoop recovers tasks claimed by workers that died without
// completing them. Without it those tasks would stay locked forever.
func (ms *MemoryStorage) expireLocksLoop() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.expireLocks()
		case <-ms.done:
			return
		}
	}
}

func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Collect first; moveStatusIndex mutates the slice being ranged.
	now := time.Now()
	var expired []uuid.UUID
	for _, taskID := range ms.byStatus[TaskStatusProcessing] {
		task := ms.tasks[taskID]
		if task.LockedUntil != nil && task.LockedUntil.Before(now) {
			expired = append(expired, taskID)
		}
	}

	for _, taskID := range expired {
		task := ms.tasks[taskID]
		task.Status = TaskStatusPending
		task.LockedUntil = nil
		task.LockedBy = nil
		ms.moveStatusIndex(taskID, TaskStatusProcessing, TaskStatusPending)
	}
}
