package apperr

import (
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// Classify は生の失敗値をちょうど 1 つの AppError に写します。
// 判定は先勝ちです: メッセージが複数のパターンに合致し得るため、順序に意味があります。
// すでに分類済みのエラーはそのまま返します。決して panic しません。
func Classify(err error, context string) *AppError {
	if err == nil {
		return nil
	}

	var classified *AppError
	if errors.As(err, &classified) {
		return classified
	}

	slog.Warn("API呼び出しが失敗しました", "context", context, "error", err)

	status, msg := extract(err)

	switch {
	case status == 400 || strings.Contains(msg, "400") || strings.Contains(msg, "INVALID_ARGUMENT"):
		if containsAny(msg, "image", "format", "mime") {
			return newAppError(err, CodeInvalidImageFormat, msgInvalidImageFormat, true, 400)
		}
		return newAppError(err, CodeInvalidRequest, msgInvalidRequest, true, 400)

	case status == 403 || strings.Contains(msg, "403") || strings.Contains(msg, "Permission Denied"):
		if containsAny(msg, "Paid API Key", "billing") {
			return newAppError(err, CodeBillingRequired, msgBillingRequired, true, 403)
		}
		return newAppError(err, CodePermissionDenied, msgPermissionDenied, true, 403)

	case status == 429 || strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return newAppError(err, CodeRateLimit, msgRateLimit, true, 429)

	case status == 500 || status == 503 || strings.Contains(msg, "overloaded"):
		return newAppError(err, CodeServerError, msgServerError, true, statusOr(status, 500))

	case containsAny(msg, "network", "fetch"):
		return newAppError(err, CodeNetworkError, msgNetworkError, true, 0)

	default:
		return newAppError(err, CodeUnknown, msgUnknown, false, status)
	}
}

// extract は SDK の例外階層を仮定せず、構造的にステータスとメッセージを取り出します。
// genai.APIError 以外の値は不透明な失敗として扱われます。
func extract(err error) (status int, msg string) {
	msg = err.Error()

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Code
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
		if apiErr.Status != "" {
			msg = msg + " " + apiErr.Status
		}
	}
	return status, msg
}

func newAppError(original error, code Code, userMessage string, recoverable bool, status int) *AppError {
	return &AppError{
		Message:     original.Error(),
		Code:        code,
		UserMessage: userMessage,
		Recoverable: recoverable,
		Status:      status,
		Original:    original,
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func statusOr(status, fallback int) int {
	if status != 0 {
		return status
	}
	return fallback
}
