package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/events"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stalledProducer blocks every send until release is closed.
type stalledProducer struct {
	sarama.SyncProducer
	release chan struct{}
}

func (s *stalledProducer) SendMessage(*sarama.ProducerMessage) (int32, int64, error) {
	<-s.release
	return 0, 0, nil
}

func TestProducer_Publish(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sends JSON event", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, NewConfig())
		mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var got events.Event
			if err := json.Unmarshal(val, &got); err != nil {
				return err
			}
			if got.Type != events.RatingSubmitted || got.CourseID != 5 || got.UserID != 9 {
				return errors.New("unexpected event payload")
			}
			return nil
		})

		p := NewWithSyncProducer(mock, "portal-activity", logger, metrics.NewMock())
		err := p.Publish(context.Background(), events.Event{Type: events.RatingSubmitted, CourseID: 5, UserID: 9})
		require.NoError(t, err)
		require.NoError(t, p.Close())
	})

	t.Run("returns broker error", func(t *testing.T) {
		mock := mocks.NewSyncProducer(t, NewConfig())
		mock.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

		p := NewWithSyncProducer(mock, "portal-activity", logger, metrics.NewMock())
		err := p.Publish(context.Background(), events.Event{Type: events.CommentCreated, CourseID: 1})
		assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
		require.NoError(t, p.Close())
	})

	t.Run("gives up at context deadline", func(t *testing.T) {
		stalled := &stalledProducer{release: make(chan struct{})}
		t.Cleanup(func() { close(stalled.release) })

		p := NewWithSyncProducer(stalled, "portal-activity", logger, metrics.NewMock())
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := p.Publish(ctx, events.Event{Type: events.CourseDeleted, CourseID: 3})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}
