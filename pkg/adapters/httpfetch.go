package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultFetchTimeout は参照画像取得の既定タイムアウトです。
	DefaultFetchTimeout = 30 * time.Second

	// maxFetchBytes は 1 参照あたりのダウンロード上限です（検証前の防壁）。
	maxFetchBytes = 20 * 1024 * 1024
)

// HTTPFetcher は HTTPClient の最小実装です。まわりに httpkit のクライアントが
// ある環境ではそちらを注入できます。CLI など単体で動く場面の既定実装です。
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher は HTTPFetcher を初期化します。timeout が 0 以下なら既定値を使います。
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// FetchBytes は URL の内容を取得して返します。2xx 以外はエラーです。
func (f *HTTPFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFetchBytes {
		return nil, fmt.Errorf("応答が大き過ぎます (上限 %d bytes)", maxFetchBytes)
	}
	return data, nil
}
