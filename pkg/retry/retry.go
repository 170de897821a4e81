// Package retry は非同期操作を有界の指数バックオフで包みます。
// リトライ可否の判定は分類器 (apperr) の出力を使い、
// 生エラーからステータスを二重に導出することはしません。
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/shouni/doufang-kit/pkg/apperr"
)

const (
	// DefaultMaxAttempts は既定の試行回数です（初回を含む）。
	DefaultMaxAttempts = 3
	// DefaultInitialDelay は初回バックオフです。以降 2 倍ずつ伸びます（ジッターなし）。
	DefaultInitialDelay = time.Second
)

// Operation は 1 回分の試行です。分類前のエラーを返して構いません。
type Operation[T any] func(ctx context.Context) (T, error)

// Do は op を最大 maxAttempts 回実行します。失敗はまず分類し、
// 429 を除く 4xx（クライアント起因）は即座に返します。
// バックオフ待機は ctx で中断可能で、中断時は CANCELLED として返します。
func Do[T any](ctx context.Context, op Operation[T], maxAttempts int, initialDelay time.Duration) (T, error) {
	var zero T
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}

	var lastErr *apperr.AppError
	delay := initialDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		classified := apperr.Classify(err, "retry")
		lastErr = classified

		if !retryable(classified) {
			return zero, classified
		}
		if attempt == maxAttempts-1 {
			break
		}

		slog.Info("バックオフ後に再試行します",
			"attempt", attempt+1, "max_attempts", maxAttempts,
			"delay", delay, "code", classified.Code)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, apperr.Cancelled(ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}

	return zero, lastErr
}

// retryable は分類済みエラーのステータスで判定します。
// 429 以外の 4xx は再試行しません（INVALID_REQUEST / PERMISSION_DENIED /
// BILLING_REQUIRED / INVALID_IMAGE_FORMAT が該当）。取り消しも対象外です。
func retryable(e *apperr.AppError) bool {
	if e.Code == apperr.CodeCancelled {
		return false
	}
	status := e.HTTPStatus()
	if status >= 400 && status < 500 && status != 429 {
		return false
	}
	return true
}
