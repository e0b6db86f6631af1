package events

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

const (
	CommentCreated  = "comment.created"
	RatingSubmitted = "rating.submitted"
	CourseDeleted   = "course.deleted"
)

// Broker message headers set by every publisher.
const (
	HeaderType = "Portal-Event-Type"
	HeaderKey  = "Portal-Event-Key"
)

// Event is a notification that a write happened. It is published after the write commits.
type Event struct {
	Type       string    `json:"type"`
	CourseID   int64     `json:"course_id"`
	UserID     int64     `json:"user_id,omitempty"`
	ObjectID   int64     `json:"object_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Key partitions events by course.
func (e Event) Key() string {
	return e.Type + ":" + strconv.FormatInt(e.CourseID, 10)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// PublishTimeout bounds how long a request waits on the broker.
const PublishTimeout = 3 * time.Second

// Dispatcher emits events without ever failing the caller; errors are logged.
type Dispatcher struct {
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	timeout   time.Duration
}

func NewDispatcher(publisher Publisher, logger *slog.Logger) *Dispatcher {
	if publisher == nil {
		publisher = Noop{}
	}
	return &Dispatcher{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		timeout:   PublishTimeout,
	}
}

func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}

	pubCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.publisher.Publish(pubCtx, event); err != nil {
		d.logger.WarnContext(ctx, "failed to publish activity event",
			"type", event.Type,
			"course_id", event.CourseID,
			"error", err,
		)
	}
}

func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.publisher.Close()
}
