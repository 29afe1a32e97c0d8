package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chitfund-backend/internal/domain/notification"
)

// RedisNotifier publishes scheme events on a pub/sub channel for the
// dashboards to pick up, and logs each one.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisNotifier(rdb *redis.Client, channel string, log *zap.Logger) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel, log: log}
}

func (n *RedisNotifier) Notify(ctx context.Context, e notification.Event) error {
	n.log.Info("scheme_notification",
		zap.String("scheme_id", e.SchemeID),
		zap.String("type", e.Type),
		zap.String("to", e.To),
		zap.String("message", e.Message),
	)
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, payload).Err()
}

// LogNotifier only logs; used when no channel is configured.
type LogNotifier struct{ log *zap.Logger }

func NewLogNotifier(log *zap.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) Notify(_ context.Context, e notification.Event) error {
	n.log.Info("scheme_notification",
		zap.String("scheme_id", e.SchemeID),
		zap.String("type", e.Type),
		zap.String("to", e.To),
		zap.String("message", e.Message),
	)
	return nil
}
