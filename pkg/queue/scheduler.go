package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SchedulerRepository is the storage contract for periodic task creation.
type SchedulerRepository interface {
	CreateTask(ctx context.Context, task *Task) error

	// GetPendingTaskByName returns a pending task with the given name, or
	// (nil, nil) when none exists. Keeps the scheduler from stacking
	// duplicate instances of the same periodic task.
	GetPendingTaskByName(ctx context.Context, taskName string) (*Task, error)
}

// Scheduler materializes periodic tasks into the queue on their schedule.
// Workers pick them up like any other task.
type Scheduler struct {
	repo     SchedulerRepository
	tasks    map[string]*periodicTask
	mu       sync.RWMutex
	interval time.Duration
	logger   *slog.Logger
}

type periodicTask struct {
	name            string
	schedule        Schedule
	queue           string
	priority        Priority
	maxRetries      int8
	lastScheduledAt *time.Time
}

// NewScheduler returns a scheduler checking for due tasks every 30 seconds
// by default.
func NewScheduler(repo SchedulerRepository, opts ...SchedulerOption) (*Scheduler, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &schedulerOptions{
		checkInterval: 30 * time.Second,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Scheduler{
		repo:     repo,
		tasks:    make(map[string]*periodicTask),
		interval: options.checkInterval,
		logger:   options.logger,
	}, nil
}

// AddTask registers a periodic task under a unique name.
func (s *Scheduler) AddTask(name string, schedule Schedule, opts ...SchedulerTaskOption) error {
	taskOpts := &schedulerTaskOptions{
		queue:      DefaultQueueName,
		priority:   PriorityDefault,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(taskOpts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[name]; exists {
		return ErrTaskAlreadyRegistered
	}

	s.tasks[name] = &periodicTask{
		name:       name,
		schedule:   schedule,
		queue:      taskOpts.queue,
		priority:   taskOpts.priority,
		maxRetries: taskOpts.maxRetries,
	}

	s.logger.Info("registered periodic task",
		slog.String("task_name", name),
		slog.String("schedule", schedule.String()))

	return nil
}

// RemoveTask unregisters a periodic task.
func (s *Scheduler) RemoveTask(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, name)

	s.logger.Info("removed periodic task", slog.String("task_name", name))
}

// ListTasks returns the names of all registered periodic tasks.
func (s *Scheduler) ListTasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	return names
}

// Start blocks, creating due tasks until ctx is canceled. It checks once
// immediately so freshly deployed schedules do not wait a full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.RLock()
	taskCount := len(s.tasks)
	s.mu.RUnlock()
	if taskCount == 0 {
		return ErrSchedulerNotConfigured
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.checkTasks(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.checkTasks(ctx)
		}
	}
}

// Run adapts the scheduler to an errgroup.Group.
func (s *Scheduler) Run(ctx context.Context) func() error {
	return func() error {
		if err := s.Start(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	}
}

func (s *Scheduler) checkTasks(ctx context.Context) {
	s.mu.RLock()
	tasks := make([]*periodicTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	s.mu.RUnlock()

	now := time.Now()
	for _, task := range tasks {
		if err := s.scheduleIfDue(ctx, task, now); err != nil {
			s.logger.Error("failed to schedule task",
				slog.String("task_name", task.name),
				slog.String("error", err.Error()))
		}
	}
}

func (s *Scheduler) scheduleIfDue(ctx context.Context, task *periodicTask, now time.Time) error {
	var nextRun time.Time
	if task.lastScheduledAt == nil {
		nextRun = task.schedule.Next(now)
	} else {
		nextRun = task.schedule.Next(*task.lastScheduledAt)
		if nextRun.After(now) {
			return nil
		}
	}

	// An instance may already be pending from a previous process or a
	// scheduler replica; adopt it instead of creating a duplicate.
	existing, err := s.repo.GetPendingTaskByName(ctx, task.name)
	if err == nil && existing != nil {
		s.rememberScheduled(task.name, existing.ScheduledAt)
		return nil
	}

	if err := s.createTask(ctx, task, nextRun); err != nil {
		return fmt.Errorf("create periodic task: %w", err)
	}
	s.rememberScheduled(task.name, nextRun)

	s.logger.Info("created periodic task",
		slog.String("task_name", task.name),
		slog.Time("scheduled_for", nextRun))

	return nil
}

func (s *Scheduler) rememberScheduled(taskName string, scheduledAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[taskName]; ok {
		t.lastScheduledAt = &scheduledAt
	}
}

func (s *Scheduler) createTask(ctx context.Context, task *periodicTask, scheduledAt time.Time) error {
	return s.repo.CreateTask(ctx, &Task{
		ID:          uuid.New(),
		Queue:       task.queue,
		TaskType:    TaskTypePeriodic,
		TaskName:    task.name,
		Status:      TaskStatusPending,
		Priority:    task.priority,
		MaxRetries:  task.maxRetries,
		ScheduledAt: scheduledAt,
		CreatedAt:   time.Now(),
	})
}
