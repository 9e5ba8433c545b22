package cache

import (
	"log/slog"
	"os"
	"time"
)

// TTLFromEnv は環境変数 key を time.ParseDuration 形式（例: "5m"）で読み取ります。
// 未設定・不正値・0以下の場合は fallback を返します。
func TTLFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid cache TTL; using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}
