// Package prompt はキーワード・参照画像・カスタマイズを
// Gemini へ送る順序付きパーツ列とシステム指示へ組み立てます。
package prompt

import (
	"encoding/base64"
	"log/slog"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/doufang-kit/pkg/domain"
	"github.com/shouni/doufang-kit/pkg/imgutil"
)

// Request は組み立て済みのペイロードです。Parts の順序は画像→テキストで固定です。
type Request struct {
	Parts             []*genai.Part
	SystemInstruction string
}

var dataURLPrefix = regexp.MustCompile(`^data:image/[^;]+;base64,`)

// BuildPromptRequest は祝福フレーズ生成呼び出しのペイロードを組み立てます。
// 参照画像は入力順に inlineData パーツとなり、最後にテキストパーツが 1 つ付きます。
// 同じ入力からは必ずバイト単位で同一のパーツ列が得られます。
func BuildPromptRequest(keyword string, referenceImages []string, opts *domain.CustomizationOptions) Request {
	parts := imageParts(referenceImages)

	var text, system string
	if len(parts) > 0 {
		text = ReferenceAnalysisPrompt(keyword, opts)
		system = SystemPromptWithReference(opts.Mode())
	} else {
		text = SimpleInputPrompt(keyword, opts)
		if opts != nil {
			system = SystemPromptWithCustomization(opts)
		} else {
			system = SystemPromptBase
		}
	}

	parts = append(parts, &genai.Part{Text: strings.TrimSpace(text)})
	return Request{Parts: parts, SystemInstruction: system}
}

// BuildImageRequest は画像生成呼び出しのペイロードを組み立てます。
// 参照画像がある場合は同じ inlineData パーツを再添付し（画像モデルにもピクセルを見せる）、
// 承認済みプロンプトを補強文で包みます。
func BuildImageRequest(imagePrompt string, referenceImages []string) []*genai.Part {
	parts := imageParts(referenceImages)
	hasRefs := len(parts) > 0

	if hasRefs {
		parts = append(parts, &genai.Part{Text: ImageReinforcement(imagePrompt, true)})
	} else {
		parts = append(parts, &genai.Part{Text: imagePrompt})
	}
	return parts
}

// imageParts は data URL の列を inlineData パーツへ変換します。
// パースできない参照画像はこの段階では致命傷にしません:
// MIME を image/jpeg とみなし、data: プレフィックスだけ防御的に剥がします。
// base64 として復号できないものはスキップします（警告ログのみ）。
func imageParts(referenceImages []string) []*genai.Part {
	parts := make([]*genai.Part, 0, len(referenceImages))

	for _, dataURL := range referenceImages {
		mimeType := "image/jpeg"
		payload := dataURLPrefix.ReplaceAllString(dataURL, "")

		if parsed := imgutil.ParseDataURL(dataURL); parsed != nil {
			mimeType = parsed.MimeType
			payload = parsed.Base64Data
		}

		if payload == "" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			slog.Warn("参照画像の base64 復号に失敗したためスキップします", "error", err)
			continue
		}

		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: mimeType,
				Data:     raw,
			},
		})
	}
	return parts
}
