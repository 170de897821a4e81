// Package apperr は生成 API の雑多な失敗を、UI/CLI が分岐できる
// 固定のエラー種別へ正規化します。
package apperr

// Code はプログラム分岐用の機械可読コードです。
// UserMessage（表示用文言）とは役割が異なるため、混用してはいけません。
type Code string

const (
	CodeInvalidImageFormat Code = "INVALID_IMAGE_FORMAT"
	CodeInvalidRequest     Code = "INVALID_REQUEST"
	CodeBillingRequired    Code = "BILLING_REQUIRED"
	CodePermissionDenied   Code = "PERMISSION_DENIED"
	CodeRateLimit          Code = "RATE_LIMIT"
	CodeServerError        Code = "SERVER_ERROR"
	CodeNetworkError       Code = "NETWORK_ERROR"
	CodeUnknown            Code = "UNKNOWN_ERROR"

	// 以下は分類器ではなく Generation Client 自身が発行する状態です。
	CodeCancelled       Code = "CANCELLED"
	CodeNoImageReturned Code = "NO_IMAGE_RETURNED"
	CodeMissingKey      Code = "MISSING_KEY"
)

// AppError は分類済みエラーです。Code は機械分岐用、UserMessage は表示用で、
// Original には分類前のエラーを保持します（errors.Is / errors.As で辿れます）。
type AppError struct {
	Message     string
	Code        Code
	UserMessage string
	Recoverable bool
	Status      int
	Original    error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code)
}

func (e *AppError) Unwrap() error { return e.Original }

// HTTPStatus は分類時に把握できた HTTP 相当のステータスを返します。
// 不明な場合は 0 です。リトライ可否の判定はこの値を使います。
func (e *AppError) HTTPStatus() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// 表示用文言。UI はこれをそのまま出します。
const (
	msgInvalidImageFormat = "圖片格式不支援，請嘗試其他圖片（建議使用 JPG 或 PNG）"
	msgInvalidRequest     = "請求格式不正確，請檢查設置"
	msgBillingRequired    = "此功能需要付費 API Key，請在設置中切換到免費模型或啟用付費帳戶"
	msgPermissionDenied   = "API Key 無效或沒有權限，請檢查設置"
	msgRateLimit          = "請求過於頻繁，請稍後再試"
	msgServerError        = "服務器暫時無法處理請求，請稍後再試"
	msgNetworkError       = "網路連線錯誤，請檢查網路連線"
	msgUnknown            = "發生未知錯誤，請稍後再試"
	msgCancelled          = "請求已取消"
	msgNoImageReturned    = "模型未回傳圖片，請稍後再試"
	msgMissingKey         = "缺少 API Key，請在設置中配置您的 Gemini API Key"
)

// Cancelled は CANCELLED 状態のエラーを組み立てます。
func Cancelled(original error) *AppError {
	return &AppError{
		Message:     "request cancelled",
		Code:        CodeCancelled,
		UserMessage: msgCancelled,
		Recoverable: false,
		Original:    original,
	}
}

// NoImageReturned は上流モデルが inline データを返さなかった契約違反です。
// トランスポート障害の分類とは区別されます。
func NoImageReturned() *AppError {
	return &AppError{
		Message:     "no image generated in the response",
		Code:        CodeNoImageReturned,
		UserMessage: msgNoImageReturned,
		Recoverable: true,
	}
}

// InvalidImageFormat は参照画像をローカル検証で受理できなかったときに返します。
// API からの 400 応答とは別経路ですが、UI から見える種別は同じです。
func InvalidImageFormat(original error) *AppError {
	return &AppError{
		Message:     "unsupported reference image",
		Code:        CodeInvalidImageFormat,
		UserMessage: msgInvalidImageFormat,
		Recoverable: false,
		Status:      400,
		Original:    original,
	}
}

// MissingKey は API キーが解決できなかったときに、通信前に返すエラーです。
func MissingKey() *AppError {
	return &AppError{
		Message:     "API key is missing",
		Code:        CodeMissingKey,
		UserMessage: msgMissingKey,
		Recoverable: false,
		Status:      401,
	}
}
