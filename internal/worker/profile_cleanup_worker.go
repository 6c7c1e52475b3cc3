package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"finquest-server/internal/model"
	"finquest-server/internal/platform/rabbitmq"
)

type ProfileRemover interface {
	Remove(path string) error
}

// ProfileReferences reports how many users still point at a profile path.
type ProfileReferences interface {
	CountByProfile(ctx context.Context, path string) (int64, error)
}

// ProfileCleanupWorker consumes user events and deletes the profile image
// of removed users. Uploads share a file when their base names match, so a
// file still referenced by another user is kept.
type ProfileCleanupWorker struct {
	conn      *amqp.Connection
	profiles  ProfileRemover
	refs      ProfileReferences
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewProfileCleanupWorker(
	conn *amqp.Connection,
	profiles ProfileRemover,
	refs ProfileReferences,
	queueName string,
	logger *slog.Logger,
) *ProfileCleanupWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileCleanupWorker{
		conn:      conn,
		profiles:  profiles,
		refs:      refs,
		queueName: queueName,
		logger:    logger.With("component", "profile_cleanup_worker"),
	}
}

func (w *ProfileCleanupWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.Error("handle user event failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info("worker started", "queue", w.queueName)
	return nil
}

func (w *ProfileCleanupWorker) handle(ctx context.Context, body []byte) error {
	var event model.UserEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode user event failed: %w", err)
	}

	switch event.Type {
	case model.EventUserDeleted:
		if event.Profile == "" {
			return nil
		}
		refs, err := w.refs.CountByProfile(ctx, event.Profile)
		if err != nil {
			return fmt.Errorf("count profile references of user %d failed: %w", event.UserID, err)
		}
		if refs > 0 {
			w.logger.Info("profile kept, still referenced", "user_id", event.UserID, "path", event.Profile, "references", refs)
			return nil
		}
		if err := w.profiles.Remove(event.Profile); err != nil {
			return fmt.Errorf("remove profile of user %d failed: %w", event.UserID, err)
		}
		w.logger.Info("profile removed", "user_id", event.UserID, "path", event.Profile)
	default:
		w.logger.Debug("user event ignored", "type", event.Type, "user_id", event.UserID)
	}
	return nil
}

func (w *ProfileCleanupWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
