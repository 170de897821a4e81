package adapters

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/doufang-kit/pkg/apperr"
	"github.com/shouni/doufang-kit/pkg/imgutil"
)

func TestNewReferenceResolver(t *testing.T) {
	t.Run("依存もキャッシュも無しで初期化できる", func(t *testing.T) {
		r := NewReferenceResolver(nil, nil, nil, 0)
		require.NotNil(t, r)
		assert.Equal(t, DefaultCacheTTL, r.cacheTTL)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("data URLはそのまま通す", func(t *testing.T) {
		httpClient := &mockHTTPClient{}
		reader := &mockReader{}
		r := NewReferenceResolver(httpClient, reader, nil, time.Hour)

		in := "data:image/png;base64,iVBORw0KGgo="
		got, err := r.Resolve(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, in, got)
		assert.Zero(t, httpClient.calls, "data URL で通信してはいけないのだ")
		assert.Zero(t, reader.calls)
	})

	t.Run("壊れたdata URLはINVALID_IMAGE_FORMAT", func(t *testing.T) {
		r := NewReferenceResolver(&mockHTTPClient{}, &mockReader{}, nil, time.Hour)

		_, err := r.Resolve(ctx, "data:image/png;base64")

		var appErr *apperr.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.CodeInvalidImageFormat, appErr.Code)
	})

	t.Run("ローカルファイルはdata URLに変換される", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ref.png")
		require.NoError(t, os.WriteFile(path, createDummyPNG(t, 32, 32), 0o600))

		// ローカルパスと data URL は依存ゼロでも扱える
		r := NewReferenceResolver(nil, nil, nil, time.Hour)

		got, err := r.Resolve(ctx, path)

		require.NoError(t, err)
		parsed := imgutil.ParseDataURL(got)
		require.NotNil(t, parsed, "well-formed data URL であるべきなのだ")
		assert.Equal(t, "image/jpeg", parsed.MimeType)
	})

	t.Run("gs URIはリーダー経由で取得される", func(t *testing.T) {
		pngData := createDummyPNG(t, 16, 16)
		reader := &mockReader{
			openFunc: func(ctx context.Context, uri string) (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(pngData)), nil
			},
		}
		r := NewReferenceResolver(&mockHTTPClient{}, reader, nil, time.Hour)

		got, err := r.Resolve(ctx, "gs://bucket/ref.png")

		require.NoError(t, err)
		assert.Equal(t, 1, reader.calls)
		assert.True(t, strings.HasPrefix(got, "data:image/"))
	})

	t.Run("リーダー未構成のgs URIは明確なエラーになる", func(t *testing.T) {
		r := NewReferenceResolver(&mockHTTPClient{}, nil, nil, time.Hour)

		_, err := r.Resolve(ctx, "gs://bucket/ref.png")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "gs://")
	})

	t.Run("クライアント未構成のhttp URLは明確なエラーになる", func(t *testing.T) {
		r := NewReferenceResolver(nil, &mockReader{}, nil, time.Hour)

		_, err := r.Resolve(ctx, "http://203.0.113.10/ref.png")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "http")
	})

	t.Run("httpはSSRFガードを通ってから取得される", func(t *testing.T) {
		pngData := createDummyPNG(t, 16, 16)
		httpClient := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return pngData, nil
			},
		}
		r := NewReferenceResolver(httpClient, &mockReader{}, nil, time.Hour)

		// グローバルIP直指定なら名前解決なしで判定できる
		got, err := r.Resolve(ctx, "http://203.0.113.10/ref.png")

		require.NoError(t, err)
		assert.Equal(t, 1, httpClient.calls)
		assert.NotNil(t, imgutil.ParseDataURL(got))
	})

	t.Run("プライベートIPへのhttpはブロックされる", func(t *testing.T) {
		httpClient := &mockHTTPClient{}
		r := NewReferenceResolver(httpClient, &mockReader{}, nil, time.Hour)

		_, err := r.Resolve(ctx, "http://127.0.0.1/evil.png")

		require.Error(t, err)
		assert.Zero(t, httpClient.calls, "ブロック時は通信してはいけないのだ")
	})

	t.Run("画像でないペイロードはINVALID_IMAGE_FORMAT", func(t *testing.T) {
		httpClient := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte("this is not an image"), nil
			},
		}
		r := NewReferenceResolver(httpClient, &mockReader{}, nil, time.Hour)

		_, err := r.Resolve(ctx, "http://203.0.113.10/ref.txt")

		var appErr *apperr.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.CodeInvalidImageFormat, appErr.Code)
	})

	t.Run("二回目はキャッシュから返る", func(t *testing.T) {
		pngData := createDummyPNG(t, 16, 16)
		httpClient := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return pngData, nil
			},
		}
		cache := newMockCache()
		r := NewReferenceResolver(httpClient, &mockReader{}, cache, time.Hour)

		first, err := r.Resolve(ctx, "http://203.0.113.10/ref.png")
		require.NoError(t, err)

		second, err := r.Resolve(ctx, "http://203.0.113.10/ref.png")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, httpClient.calls, "二回目は通信をスキップすべきなのだ")
	})

	t.Run("空指定はエラー", func(t *testing.T) {
		r := NewReferenceResolver(&mockHTTPClient{}, &mockReader{}, nil, time.Hour)
		_, err := r.Resolve(ctx, "   ")
		assert.Error(t, err)
	})
}

func TestResolveAll(t *testing.T) {
	ctx := context.Background()

	t.Run("失敗した参照は読み飛ばして順序を保つ", func(t *testing.T) {
		pngData := createDummyPNG(t, 16, 16)
		reader := &mockReader{
			openFunc: func(ctx context.Context, uri string) (io.ReadCloser, error) {
				if strings.Contains(uri, "broken") {
					return nil, errors.New("object not found")
				}
				return io.NopCloser(bytes.NewReader(pngData)), nil
			},
		}
		r := NewReferenceResolver(&mockHTTPClient{}, reader, nil, time.Hour)

		passthrough := "data:image/png;base64,iVBORw0KGgo="
		got := r.ResolveAll(ctx, []string{
			passthrough,
			"gs://bucket/broken.png",
			"gs://bucket/ok.png",
		})

		require.Len(t, got, 2)
		assert.Equal(t, passthrough, got[0])
		assert.True(t, strings.HasPrefix(got[1], "data:image/"))
	})

	t.Run("CLIと同じ構成(httpのみ)でローカルとdata URLを解決できる", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ref.png")
		require.NoError(t, os.WriteFile(path, createDummyPNG(t, 16, 16), 0o600))

		r := NewReferenceResolver(NewHTTPFetcher(time.Second), nil, nil, 0)

		passthrough := "data:image/png;base64,iVBORw0KGgo="
		got := r.ResolveAll(context.Background(), []string{passthrough, path})

		require.Len(t, got, 2)
		assert.Equal(t, passthrough, got[0])
		assert.NotNil(t, imgutil.ParseDataURL(got[1]))
	})

	t.Run("空スライスは空で返る", func(t *testing.T) {
		r := NewReferenceResolver(&mockHTTPClient{}, &mockReader{}, nil, time.Hour)
		assert.Empty(t, r.ResolveAll(ctx, nil))
	})
}
