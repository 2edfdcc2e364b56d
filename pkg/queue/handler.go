package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type (
	// Handler processes tasks matched by Name.
	Handler interface {
		Name() string
		Handle(ctx context.Context, payload json.RawMessage) error
	}

	// TaskHandlerFunc handles a typed payload.
	TaskHandlerFunc[T any] func(ctx context.Context, payload T) error

	// PeriodicTaskHandlerFunc handles a scheduler-created task, which
	// carries no payload.
	PeriodicTaskHandlerFunc func(ctx context.Context) error
)

// NewTaskHandler wraps a typed handler function. The task name is derived
// from the payload type, so enqueueing a value of T routes to this handler
// without explicit registration keys.
func NewTaskHandler[T any](handler TaskHandlerFunc[T]) Handler {
	var payload T
	return &taskHandler[T]{
		name:    payloadTypeName(payload),
		handler: handler,
	}
}

// NewPeriodicTaskHandler wraps a payload-free handler under an explicit
// name matching the scheduler registration.
func NewPeriodicTaskHandler(name string, handler PeriodicTaskHandlerFunc) Handler {
	return &periodicHandler{name: name, handler: handler}
}

type taskHandler[T any] struct {
	name    string
	handler TaskHandlerFunc[T]
}

func (h *taskHandler[T]) Name() string { return h.name }

func (h *taskHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return err
	}
	return h.handler(ctx, t)
}

type periodicHandler struct {
	name    string
	handler PeriodicTaskHandlerFunc
}

func (h *periodicHandler) Name() string { return h.name }

func (h *periodicHandler) Handle(ctx context.Context, _ json.RawMessage) error {
	return h.handler(ctx)
}

// payloadTypeName returns the qualified struct name of v, e.g.
// "campaigns.SendCampaign", so payload types double as routing keys.
func payloadTypeName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
