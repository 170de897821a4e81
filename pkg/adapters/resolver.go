package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/doufang-kit/pkg/apperr"
	"github.com/shouni/doufang-kit/pkg/imgutil"
)

const (
	// DefaultCacheTTL は取得済み参照画像のキャッシュ既定寿命です。
	DefaultCacheTTL = 10 * time.Minute

	cacheKeyReference = "reference_dataurl:"

	maxReferenceSizeMB = 10
)

// HTTPClient は http(s) 参照の取得に使う窓口です。
// httpkit.ClientInterface がこれを満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// RemoteReader は gs:// 参照の取得に使う窓口です。
// remoteio.InputReader がこれを満たします。
type RemoteReader interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// 上記の窓口が各ライブラリの公開インターフェースの部分集合であることを保証します。
var (
	_ HTTPClient   = (httpkit.ClientInterface)(nil)
	_ RemoteReader = (remoteio.InputReader)(nil)
)

// ImageCacher は画像データのキャッシュ操作を抽象化するインターフェースです。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// ReferenceResolver は様々な形式の参照画像（data URL / http(s) URL / gs:// URI /
// ローカルパス）を、ペイロードビルダーが受け付ける正規の data URL へ解決します。
type ReferenceResolver struct {
	httpClient HTTPClient
	reader     RemoteReader
	cache      ImageCacher
	cacheTTL   time.Duration
}

// NewReferenceResolver は依存関係を注入して ReferenceResolver を初期化します。
// すべての依存は nil を許容し、欠けている依存に対応するスキームの参照だけが
// 解決時にエラーになります（data URL とローカルパスは常に扱えます）。
func NewReferenceResolver(httpClient HTTPClient, reader RemoteReader, cache ImageCacher, cacheTTL time.Duration) *ReferenceResolver {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &ReferenceResolver{
		httpClient: httpClient,
		reader:     reader,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// Resolve は参照指定ひとつを data URL へ解決します。
// 既に data URL の場合は検証の上そのまま返します。
func (r *ReferenceResolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("参照画像の指定が空です")
	}

	if strings.HasPrefix(ref, "data:") {
		if imgutil.ParseDataURL(ref) == nil {
			return "", apperr.InvalidImageFormat(fmt.Errorf("data URL として解釈できません"))
		}
		return ref, nil
	}

	if r.cache != nil {
		if cached, found := r.cache.Get(cacheKeyReference + ref); found {
			if dataURL, ok := cached.(string); ok {
				return dataURL, nil
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "ref", ref, "type", fmt.Sprintf("%T", cached))
		}
	}

	data, err := r.fetchBytes(ctx, ref)
	if err != nil {
		return "", err
	}

	if err := imgutil.ValidateImage(data, maxReferenceSizeMB); err != nil {
		return "", apperr.InvalidImageFormat(err)
	}

	dataURL, err := imgutil.CompressToDataURL(data, imgutil.DefaultMaxUploadKB, imgutil.DefaultMaxDimension)
	if err != nil {
		return "", apperr.InvalidImageFormat(err)
	}

	if r.cache != nil {
		r.cache.Set(cacheKeyReference+ref, dataURL, r.cacheTTL)
	}
	return dataURL, nil
}

// ResolveAll は複数の参照指定を順序を保って解決します。
// 解決に失敗したものは警告を出して読み飛ばし、残りで続行します。
func (r *ReferenceResolver) ResolveAll(ctx context.Context, refs []string) []string {
	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		dataURL, err := r.Resolve(ctx, ref)
		if err != nil {
			slog.WarnContext(ctx, "参照画像の解決に失敗しました。読み飛ばして続行します", "ref", ref, "error", err)
			continue
		}
		resolved = append(resolved, dataURL)
	}
	return resolved
}

func (r *ReferenceResolver) fetchBytes(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "gs://"):
		if r.reader == nil {
			return nil, fmt.Errorf("gs:// 参照を扱うリーダーが構成されていません: %s", ref)
		}
		rc, err := r.reader.Open(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("リモートストレージからの取得に失敗しました: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)

	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		if r.httpClient == nil {
			return nil, fmt.Errorf("http(s) 参照を扱うクライアントが構成されていません: %s", ref)
		}
		// SSRF対策のバリデーション
		if safe, err := isSafeURL(ref); !safe || err != nil {
			return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
		}
		return r.httpClient.FetchBytes(ctx, ref)

	default:
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("ローカルファイルの読み込みに失敗しました: %w", err)
		}
		return data, nil
	}
}

// isSafeURL は SSRF 対策として URL を検証します。
// 名前解決されたすべての IP アドレスに対してプライベート IP チェックを行います。
func isSafeURL(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP

	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("ホスト '%s' の名前解決に失敗しました: %w", host, err)
		}
		ips = resolvedIPs
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("IPが見つかりません")
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}
