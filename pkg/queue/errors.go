package queue

import "errors"

var (
	// ErrRepositoryNil is returned when a nil repository is provided.
	ErrRepositoryNil = errors.New("repository cannot be nil")

	// ErrPayloadNil is returned when enqueueing a nil payload.
	ErrPayloadNil = errors.New("payload cannot be nil")

	// ErrInvalidPriority is returned when priority falls outside 0-100.
	ErrInvalidPriority = errors.New("priority must be between 0 and 100")

	// ErrNoTaskToClaim signals an empty queue; workers treat it as a normal
	// idle tick, not a failure.
	ErrNoTaskToClaim = errors.New("no task available to claim")

	// ErrHandlerNotFound is returned when no handler matches a task name.
	ErrHandlerNotFound = errors.New("no handler registered for task type")

	// ErrNoHandlers is returned when a worker starts without handlers.
	ErrNoHandlers = errors.New("no task handlers registered")

	// ErrTaskAlreadyRegistered is returned for duplicate periodic task names.
	ErrTaskAlreadyRegistered = errors.New("task already registered")

	// ErrSchedulerNotConfigured is returned when a scheduler starts with no
	// registered tasks.
	ErrSchedulerNotConfigured = errors.New("scheduler has no registered tasks")
)
