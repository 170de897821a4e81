package imgutil

import (
	"fmt"
	"regexp"
)

// ImageData は data URL から取り出した MIME タイプと base64 ペイロードです。
type ImageData struct {
	MimeType   string
	Base64Data string
}

var dataURLPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

// ParseDataURL は `data:<mime>;base64,<payload>` 形式の文字列を分解します。
// 形式に合致しない場合は例外を投げず nil を返すため、呼び出し側は
// 既定のフォールバック（image/jpeg 扱い等）を適用できます。
func ParseDataURL(s string) *ImageData {
	m := dataURLPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return &ImageData{
		MimeType:   m[1],
		Base64Data: m[2],
	}
}

// ToDataURL は MIME タイプと base64 ペイロードから data URL を組み立てます。
// ParseDataURL と往復で一致します。
func ToDataURL(mimeType, base64Data string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)
}
