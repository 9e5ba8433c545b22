// Package ratelimiter は外部サービス呼び出しの頻度を制限します。
package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter は、外部API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	// Wait は呼び出しが許可されるまで待機します。ctx が先に終了した場合はそのエラーを返します。
	Wait(ctx context.Context) error
}

// RateLimiter は interval あたり limit 回までの呼び出しを許可します。
// 複数のゴルーチンから同時に使用できます。
type RateLimiter struct {
	l *rate.Limiter
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter は新しい RateLimiter を生成します。limit 回まではバーストで許可します。
// limit が1未満の場合は1として扱います。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RateLimiter{l: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit)}
}

// PerSecond は1秒あたりに許可される呼び出し回数を返します。
func (rl *RateLimiter) PerSecond() float64 {
	return float64(rl.l.Limit())
}

// Wait は上限に達していれば次の枠が空くまで待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.l.Wait(ctx)
}

// Unlimited は待機しない Limiter です。
type Unlimited struct{}

// Wait は ctx が終了していなければ即座に nil を返します。
func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
