// Package http は外部サービス呼び出し用のHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はユーザーディレクトリなど外部サービス呼び出し用のHTTPクライアントを作成します。
//
// 同一ホストへの短いリクエストが続く前提で、ホスト単位のアイドル接続を多めに保持します。
// http.DefaultClient にはタイムアウトがないため、常にこのクライアントを使用すること。
// timeout はリクエスト全体（接続・ヘッダー受信・ボディ読み取り）の上限です。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
