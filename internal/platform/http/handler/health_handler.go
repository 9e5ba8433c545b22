// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// readinessTimeout は依存先1件あたりの疎通確認の上限時間です。
const readinessTimeout = 2 * time.Second

// Health はサービスの生存確認用 /healthz エンドポイントを処理します。
// 依存先には触れず、プロセスが応答できることだけを示します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Check は依存先1件分の疎通確認です。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Readiness は /readyz エンドポイントのハンドラーを返します。
// すべての Check が成功すれば 200、1件でも失敗すれば失敗した依存先名とともに 503 を返します。
func Readiness(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		failed := map[string]string{}
		for _, chk := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
			err := chk.Ping(ctx)
			cancel()
			if err != nil {
				slog.Warn("readiness check failed", "component", chk.Name, "error", err)
				failed[chk.Name] = err.Error()
			}
		}

		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
