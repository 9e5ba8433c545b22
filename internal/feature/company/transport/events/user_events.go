// Package events はユーザーディレクトリから届くイベントを購読し、companyフィーチャーに反映します。
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel はユーザー削除イベントの既定チャンネル名です。
const DefaultChannel = "users.deleted"

// UserDetacher はユーザー削除時に企業からの参照を外すユースケースです。
// Goの慣例に従い、インターフェースは利用者側で定義します。
type UserDetacher interface {
	DetachUser(ctx context.Context, userID uint) ([]string, error)
}

// UserDeletedMessage はユーザー削除イベントのペイロードです。
type UserDeletedMessage struct {
	UserID uint `json:"user_id"`
}

// ChannelFromEnv は USER_EVENTS_CHANNEL を返します。未設定の場合は DefaultChannel です。
func ChannelFromEnv() string {
	if ch := os.Getenv("USER_EVENTS_CHANNEL"); ch != "" {
		return ch
	}
	return DefaultChannel
}

// Subscriber はRedis Pub/Subでユーザー削除イベントを受信します。
type Subscriber struct {
	rdb        *redis.Client
	channel    string
	uc         UserDetacher
	newBackOff func() backoff.BackOff
}

// NewSubscriber は Subscriber を生成します。channel が空の場合は DefaultChannel を使用します。
func NewSubscriber(rdb *redis.Client, channel string, uc UserDetacher) *Subscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Subscriber{
		rdb:     rdb,
		channel: channel,
		uc:      uc,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			bo.MaxInterval = 30 * time.Second
			bo.MaxElapsedTime = 0 // ctx がキャンセルされるまで再接続を続ける
			return bo
		},
	}
}

// Run は ctx がキャンセルされるまでイベントを受信し続けます。
// 購読が切れた場合は指数バックオフで再購読します。ctx のキャンセルによる終了時は nil を返します。
func (s *Subscriber) Run(ctx context.Context) error {
	bo := backoff.WithContext(s.newBackOff(), ctx)

	err := backoff.RetryNotify(func() error {
		err := s.listen(ctx, bo)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}, bo, func(err error, next time.Duration) {
		slog.Warn("user events subscription lost; retrying", "channel", s.channel, "error", err, "retry_in", next)
	})

	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Subscriber) listen(ctx context.Context, bo backoff.BackOff) error {
	pubsub := s.rdb.Subscribe(ctx, s.channel)
	defer func() { _ = pubsub.Close() }()

	// 購読の確立を待つ
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	bo.Reset()
	slog.Info("subscribed to user events", "channel", s.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("events: subscription channel closed")
			}
			s.handle(ctx, msg.Payload)
		}
	}
}

// handle は1件のイベントを処理します。不正なイベントと処理失敗はログに残して破棄します。
func (s *Subscriber) handle(ctx context.Context, payload string) {
	var m UserDeletedMessage
	if err := json.Unmarshal([]byte(payload), &m); err != nil || m.UserID == 0 {
		slog.Warn("ignoring malformed user event", "channel", s.channel, "payload", payload, "error", err)
		return
	}

	changed, err := s.uc.DetachUser(ctx, m.UserID)
	if err != nil {
		slog.Error("failed to detach deleted user", "user_id", m.UserID, "error", err)
		return
	}
	slog.Info("deleted user detached from companies", "user_id", m.UserID, "companies", changed)
}
