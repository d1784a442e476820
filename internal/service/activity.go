package service

import (
	"context"
	"log/slog"
	"time"

	"safetyshare/internal/domain"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type ActivityNotifier interface {
	NotifyActivity(ctx context.Context, userID uuid.UUID, kind string)
}

type ActivityEventQueue interface {
	Enqueue(ctx context.Context, event domain.ActivityEvent) error
}

// queueActivityNotifier pushes reputation events onto redis without holding up
// the caller. The enqueue runs in its own goroutine with a fresh timeout so a
// finished request context cannot cancel it.
type queueActivityNotifier struct {
	queue  ActivityEventQueue
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewActivityNotifier(queue ActivityEventQueue, clock clockwork.Clock, logger *slog.Logger) ActivityNotifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &queueActivityNotifier{queue: queue, clock: clock, logger: logger}
}

func (n *queueActivityNotifier) NotifyActivity(_ context.Context, userID uuid.UUID, kind string) {
	event := domain.ActivityEvent{
		UserID:     userID,
		Kind:       domain.ActivityKind(kind),
		OccurredAt: n.clock.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := n.queue.Enqueue(ctx, event); err != nil {
			n.logger.Warn("activity enqueue failed",
				slog.String("user_id", userID.String()),
				slog.String("kind", kind),
				slog.Any("error", err),
			)
		}
	}()
}

// NoopActivityNotifier is used when the reputation pipeline is disabled.
type NoopActivityNotifier struct{}

func (NoopActivityNotifier) NotifyActivity(context.Context, uuid.UUID, string) {}
