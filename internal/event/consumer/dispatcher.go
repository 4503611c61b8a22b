package consumer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskflow/internal/event"
	"taskflow/internal/validator"
)

// DefaultHandlerTimeout bounds a single handler invocation.
const DefaultHandlerTimeout = 10 * time.Second

// Outcome classifies what happened to one raw message.
type Outcome int

const (
	// OutcomeHandled means a handler ran and returned nil.
	OutcomeHandled Outcome = iota
	// OutcomeUnhandled means the envelope was valid but its type has no handler.
	OutcomeUnhandled
	// OutcomeMalformed means the message was not a well-formed envelope.
	OutcomeMalformed
	// OutcomeFailed means the handler returned an error or panicked.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "handled"
	case OutcomeUnhandled:
		return "unhandled"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes the processing of one raw message.
type Result struct {
	EventID string
	Type    event.Type
	Outcome Outcome
	Err     error
}

// Dispatcher turns raw transport messages into handler invocations. It never
// returns an error: every failure is contained and reported in the Result.
type Dispatcher interface {
	Process(ctx context.Context, raw []byte) Result
}

// Router is the base Dispatcher. It decodes each message and routes it by
// event type onto an event.Handler.
type Router struct {
	handler event.Handler
	logger  *zap.Logger
	timeout time.Duration
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithHandlerTimeout bounds each handler call. Zero disables the bound.
func WithHandlerTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		r.timeout = d
	}
}

func NewRouter(handler event.Handler, logger *zap.Logger, opts ...RouterOption) (*Router, error) {
	r := Router{
		handler: handler,
		logger:  logger,
		timeout: DefaultHandlerTimeout,
	}

	for _, opt := range opts {
		opt(&r)
	}

	if err := validator.Validate("router", r.handler, r.logger); err != nil {
		return nil, fmt.Errorf("failed to validate router deps: %w", err)
	}

	r.logger = r.logger.Named("router")

	return &r, nil
}

// Process implements Dispatcher.
func (r *Router) Process(ctx context.Context, raw []byte) (res Result) {
	e, err := event.Decode(raw)
	if err != nil {
		r.logger.Error("could not decode event message", zap.Int("bytes", len(raw)), zap.Error(err))
		return Result{Outcome: OutcomeMalformed, Err: err}
	}

	res = Result{EventID: e.ID, Type: e.Type}
	logger := r.logger.With(zap.String("eventType", e.Type.String()), zap.String("eventId", e.ID))
	logger.Info("event received")

	var handle func(context.Context, event.Payload) error
	switch e.Type {
	case event.TaskCreated:
		handle = r.handler.TaskCreated
	case event.TaskUpdated:
		handle = r.handler.TaskUpdated
	case event.TaskCompleted:
		handle = r.handler.TaskCompleted
	default:
		logger.Warn("no handler found for event type")
		res.Outcome = OutcomeUnhandled
		return res
	}

	if err := r.invoke(ctx, handle, e.Payload); err != nil {
		logger.Error("error processing event", zap.Error(err))
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	res.Outcome = OutcomeHandled
	return res
}

// invoke runs one handler and converts a panic into an error so it cannot
// unwind into the consume loop.
func (r *Router) invoke(ctx context.Context, handle func(context.Context, event.Payload) error, payload event.Payload) (err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()

	return handle(ctx, payload)
}
