package domain

import "fmt"

// 画像生成モデルの識別子です。
// Flash は既定の 1K 固定モデル、Pro は 1K/2K/4K を選択できる上位モデルです。
const (
	ModelFlashImage = "gemini-2.5-flash-image"
	ModelProImage   = "gemini-3-pro-image-preview"

	// ModelPromptText は祝福フレーズと画像プロンプトを生成するテキストモデルです。
	ModelPromptText = "gemini-3-flash-preview"
)

// ImageSize は出力解像度のプリセットです。
type ImageSize string

const (
	Size1K ImageSize = "1K"
	Size2K ImageSize = "2K"
	Size4K ImageSize = "4K"
)

// ValidSize は文字列が定義済みの解像度プリセットかを判定します。
func ValidSize(s string) bool {
	switch ImageSize(s) {
	case Size1K, Size2K, Size4K:
		return true
	}
	return false
}

// SupportedSizes はモデルごとに許容される解像度の一覧を返します。
// 最終的な合否判定はサーバー側にあるため、これはあくまでクライアント側の目安です。
func SupportedSizes(model string) []ImageSize {
	if model == ModelProImage {
		return []ImageSize{Size1K, Size2K, Size4K}
	}
	return []ImageSize{Size1K}
}

// ValidateModelSize はモデルと解像度の組み合わせを事前検証します。
// Flash は 1K のみ対応です。
func ValidateModelSize(model string, size ImageSize) error {
	for _, s := range SupportedSizes(model) {
		if s == size {
			return nil
		}
	}
	return fmt.Errorf("モデル %s は解像度 %s に対応していません", model, size)
}

// BlessingResult はテキスト生成呼び出しの成果物です。
// ImagePrompt はそのまま画像生成呼び出しの入力になります。
type BlessingResult struct {
	BlessingPhrase string `json:"blessingPhrase"`
	ImagePrompt    string `json:"imagePrompt"`
	Analysis       string `json:"analysis,omitempty"`
}

// PromptRequest は祝福フレーズ＋画像プロンプト生成の要求です。
// ReferenceImages は data URL 文字列の順序付きリストで、先頭が主たる参照になります。
type PromptRequest struct {
	Keyword         string
	APIKey          string
	ReferenceImages []string
	Customization   *CustomizationOptions
}

// ImageRequest は画像生成の要求です。
// Prompt には BlessingResult.ImagePrompt を渡します。
type ImageRequest struct {
	Prompt          string
	APIKey          string
	Model           string
	ImageSize       ImageSize
	ReferenceImages []string
}

// Settings は UI / CLI が永続化するユーザー設定です。
// コアには値渡しされるだけで、コア自身がストレージを触ることはありません。
type Settings struct {
	APIKey     string    `json:"apiKey"`
	ImageModel string    `json:"imageModel"`
	ImageSize  ImageSize `json:"imageSize"`
}

// DefaultSettings は初回起動時の既定値です（無料の Flash モデル、1K）。
func DefaultSettings() Settings {
	return Settings{
		ImageModel: ModelFlashImage,
		ImageSize:  Size1K,
	}
}
