package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events    []Event
	err       error
	closed    bool
	deadlines []time.Time
}

func (p *recordingPublisher) Publish(ctx context.Context, event Event) error {
	p.events = append(p.events, event)
	if deadline, ok := ctx.Deadline(); ok {
		p.deadlines = append(p.deadlines, deadline)
	}
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

type publisherFunc func(ctx context.Context, event Event) error

func (f publisherFunc) Publish(ctx context.Context, event Event) error { return f(ctx, event) }
func (publisherFunc) Close() error                                     { return nil }

func TestDispatcher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("stamps occurred_at", func(t *testing.T) {
		pub := &recordingPublisher{}
		d := NewDispatcher(pub, logger)
		fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		d.now = func() time.Time { return fixed }

		d.Emit(context.Background(), Event{Type: CommentCreated, CourseID: 7, UserID: 3, ObjectID: 11})

		require.Len(t, pub.events, 1)
		assert.Equal(t, fixed, pub.events[0].OccurredAt)
		assert.Equal(t, "comment.created:7", pub.events[0].Key())
	})

	t.Run("publish failure is swallowed", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker down")}
		d := NewDispatcher(pub, logger)

		assert.NotPanics(t, func() {
			d.Emit(context.Background(), Event{Type: RatingSubmitted, CourseID: 1})
		})
		assert.Len(t, pub.events, 1)
	})

	t.Run("publish runs under a deadline", func(t *testing.T) {
		pub := &recordingPublisher{}
		d := NewDispatcher(pub, logger)
		d.timeout = time.Second

		before := time.Now()
		d.Emit(context.Background(), Event{Type: CommentCreated, CourseID: 1})

		require.Len(t, pub.deadlines, 1)
		assert.WithinDuration(t, before.Add(time.Second), pub.deadlines[0], 500*time.Millisecond)
	})

	t.Run("slow publisher is cut off", func(t *testing.T) {
		var got error
		pub := publisherFunc(func(ctx context.Context, _ Event) error {
			<-ctx.Done()
			got = ctx.Err()
			return got
		})
		d := NewDispatcher(pub, logger)
		d.timeout = 20 * time.Millisecond

		start := time.Now()
		d.Emit(context.Background(), Event{Type: RatingSubmitted, CourseID: 1})

		assert.ErrorIs(t, got, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("nil publisher falls back to noop", func(t *testing.T) {
		d := NewDispatcher(nil, logger)
		d.Emit(context.Background(), Event{Type: CourseDeleted, CourseID: 2})
		assert.NoError(t, d.Close())
	})

	t.Run("nil dispatcher is inert", func(t *testing.T) {
		var d *Dispatcher
		d.Emit(context.Background(), Event{Type: CourseDeleted})
		assert.NoError(t, d.Close())
	})

	t.Run("close reaches publisher", func(t *testing.T) {
		pub := &recordingPublisher{}
		require.NoError(t, NewDispatcher(pub, logger).Close())
		assert.True(t, pub.closed)
	})
}
