package userdirectory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"company_backend/internal/feature/company/usecase"
	"company_backend/internal/shared/ratelimiter"
)

// Client はユーザーディレクトリサービスにユーザーの存在を問い合わせる UserDirectory 実装です。
// GET {BaseURL}/users/{id} が 200 なら存在、404 なら存在しないと判定します。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

// ClientがUserDirectoryを実装していることをコンパイル時に検証します。
var _ usecase.UserDirectory = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientを生成します。
// cfg.RateLimit が正の場合、1秒あたりの問い合わせ回数を制限します。
func NewClient(cfg Config, client *http.Client) *Client {
	var limiter ratelimiter.Limiter = ratelimiter.Unlimited{}
	if cfg.RateLimit > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.RateLimit, time.Second)
	}
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// Missing は ids のうちディレクトリに存在しないものを入力順で返します。
// 200/404 以外のステータスはエラーとして扱います。
func (c *Client) Missing(ctx context.Context, ids []uint) ([]uint, error) {
	var missing []uint
	for _, id := range ids {
		ok, err := c.exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (c *Client) exists(ctx context.Context, id uint) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	u := fmt.Sprintf("%s/users/%s", c.cfg.BaseURL, url.PathEscape(strconv.FormatUint(uint64(id), 10)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer func() {
		// 接続を再利用できるようボディを読み切る
		_, _ = io.Copy(io.Discard, res.Body)
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("userdirectory: GET /users/%d: http %d", id, res.StatusCode)
	}
}
