package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"safetyshare/internal/config"
	"safetyshare/internal/domain"
	"safetyshare/pkg/e"
)

type BroadcastQueue interface {
	BRPop(ctx context.Context, timeout time.Duration) (domain.AlertBroadcast, error)
}

// Broadcaster drains the alert queue and POSTs each batch to the notification
// webhook. It is the only component that talks to the external transport, so a
// slow webhook never touches detection latency.
type Broadcaster struct {
	logger *slog.Logger
	cfg    config.BroadcastConfig
	queue  BroadcastQueue
	http   *http.Client
}

func NewBroadcaster(logger *slog.Logger, cfg config.BroadcastConfig, queue BroadcastQueue) *Broadcaster {
	return &Broadcaster{
		logger: logger,
		cfg:    cfg,
		queue:  queue,
		http:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (b *Broadcaster) Run(ctx context.Context) {
	b.logger.Info("broadcaster STARTED", slog.String("url", b.cfg.WebhookURL))

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("broadcaster STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		payload, err := b.queue.BRPop(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, e.ErrAlertQueueEmpty) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			b.logger.Error("BRPop failed", slog.Any("error", err))
			time.Sleep(500 * time.Millisecond)
			continue
		}

		b.logger.Info("sending alert broadcast",
			slog.String("user_id", payload.UserID.String()),
			slog.Int("alerts", len(payload.Alerts)),
		)
		b.sendWithRetry(ctx, payload)
	}
}

func (b *Broadcaster) sendWithRetry(ctx context.Context, p domain.AlertBroadcast) {
	const maxRetries = 3

	body, err := json.Marshal(p)
	if err != nil {
		b.logger.Error("marshal broadcast payload failed", slog.String("error", err.Error()))
		return
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			b.logger.Info("stop retries due to context cancel")
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.WebhookURL, bytes.NewReader(body))
		if err != nil {
			b.logger.Error("create broadcast request failed", slog.String("error", err.Error()))
			return
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := b.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}

		reason := "unknown"
		if err != nil {
			reason = err.Error()
		} else if resp != nil {
			reason = resp.Status
		}

		b.logger.Warn("broadcast failed",
			slog.Int("attempt", attempt),
			slog.String("url", b.cfg.WebhookURL),
			slog.String("reason", reason),
		)

		time.Sleep(time.Duration(attempt) * time.Second)
	}
}
