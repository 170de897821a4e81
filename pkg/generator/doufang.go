// Package generator は斗方生成の 2 段階パイプライン
// （祝福フレーズ＋画像プロンプト生成 → 画像生成）を司ります。
package generator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/doufang-kit/pkg/apperr"
	"github.com/shouni/doufang-kit/pkg/domain"
	"github.com/shouni/doufang-kit/pkg/imgutil"
	"github.com/shouni/doufang-kit/pkg/prompt"
	"github.com/shouni/doufang-kit/pkg/retry"
)

// DoufangGenerator は 2 つの公開操作を提供する統合クライアントです。
// 呼び出し間で共有する可変状態は持たないため、並行呼び出しは安全です。
// ただし 1 つの生成フローの中では、画像生成は必ずプロンプト生成の完了後に
// 呼び出してください（ImagePrompt が入力になるため）。
type DoufangGenerator struct {
	factory      ClientFactory
	maxAttempts  int
	initialDelay time.Duration
}

// NewDoufangGenerator は DoufangGenerator を初期化するのだ。
func NewDoufangGenerator(factory ClientFactory) (*DoufangGenerator, error) {
	if factory == nil {
		return nil, fmt.Errorf("factory (ClientFactory) is required")
	}
	return &DoufangGenerator{
		factory:      factory,
		maxAttempts:  retry.DefaultMaxAttempts,
		initialDelay: retry.DefaultInitialDelay,
	}, nil
}

// blessingSchema は構造化出力のスキーマです。モデルは散文を返せません。
var blessingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"blessingPhrase": {Type: genai.TypeString},
		"imagePrompt":    {Type: genai.TypeString},
		"analysis":       {Type: genai.TypeString},
	},
	Required: []string{"blessingPhrase", "imagePrompt"},
}

// GenerateBlessingAndPrompt はキーワードから四字の祝福フレーズと
// 詳細な英語の画像プロンプトを生成します。
// API キーが解決できない場合は通信前に MISSING_KEY で失敗します。
func (g *DoufangGenerator) GenerateBlessingAndPrompt(ctx context.Context, req domain.PromptRequest) (*domain.BlessingResult, error) {
	apiKey := ResolveAPIKey(req.APIKey)
	if apiKey == "" {
		return nil, apperr.MissingKey()
	}

	return retry.Do(ctx, func(ctx context.Context) (*domain.BlessingResult, error) {
		ai, err := g.factory(ctx, apiKey)
		if err != nil {
			return nil, err
		}

		if ctx.Err() != nil {
			return nil, apperr.Cancelled(ctx.Err())
		}

		built := prompt.BuildPromptRequest(req.Keyword, req.ReferenceImages, req.Customization)
		cfg := &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: built.SystemInstruction}}},
			ResponseMIMEType:  "application/json",
			ResponseSchema:    blessingSchema,
		}

		resp, err := ai.GenerateContent(ctx, domain.ModelPromptText,
			[]*genai.Content{{Role: genai.RoleUser, Parts: built.Parts}}, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperr.Cancelled(ctx.Err())
			}
			return nil, apperr.Classify(err, "GenerateBlessingAndPrompt")
		}

		// 取り消し後の応答を成果物として扱ってはいけない
		if ctx.Err() != nil {
			return nil, apperr.Cancelled(ctx.Err())
		}

		text := responseText(resp)
		if text == "" {
			return nil, fmt.Errorf("Geminiから空の応答が返りました")
		}

		var result domain.BlessingResult
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			return nil, apperr.Classify(fmt.Errorf("構造化応答の解析に失敗しました: %w", err), "GenerateBlessingAndPrompt")
		}

		slog.Info("祝福フレーズを生成しました", "blessing_phrase", result.BlessingPhrase)
		return &result, nil
	}, g.maxAttempts, g.initialDelay)
}

// GenerateImageFromPrompt は承認済みプロンプトを菱形斗方の画像に描画し、
// data URL 文字列として返します。
// モデルと解像度の最終的な合否はサーバー側が判定するため、
// ここでは拒否された場合に是正方法を UserMessage に補います。
func (g *DoufangGenerator) GenerateImageFromPrompt(ctx context.Context, req domain.ImageRequest) (string, error) {
	apiKey := ResolveAPIKey(req.APIKey)
	if apiKey == "" {
		return "", apperr.MissingKey()
	}

	model := req.Model
	if model == "" {
		model = domain.ModelFlashImage
	}
	size := req.ImageSize
	if size == "" {
		size = domain.Size1K
	}

	return retry.Do(ctx, func(ctx context.Context) (string, error) {
		ai, err := g.factory(ctx, apiKey)
		if err != nil {
			return "", err
		}

		if ctx.Err() != nil {
			return "", apperr.Cancelled(ctx.Err())
		}

		parts := prompt.BuildImageRequest(req.Prompt, req.ReferenceImages)
		cfg := imageGenConfig(model, size)

		resp, err := ai.GenerateContent(ctx, model,
			[]*genai.Content{{Role: genai.RoleUser, Parts: parts}}, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return "", apperr.Cancelled(ctx.Err())
			}
			return "", enrichSizeError(apperr.Classify(err, "GenerateImageFromPrompt"), model, size)
		}

		if ctx.Err() != nil {
			return "", apperr.Cancelled(ctx.Err())
		}

		dataURL, ok := firstInlineImage(resp)
		if !ok {
			return "", apperr.NoImageReturned()
		}
		return dataURL, nil
	}, g.maxAttempts, g.initialDelay)
}

// imageGenConfig はモデル別の生成設定を組み立てます。
// imageConfig を付けられるのは Pro 系のみで、Flash に送ると即拒否されるため、
// Flash では設定オブジェクトごと省略します（値を変えるのではなく存在させない）。
func imageGenConfig(model string, size domain.ImageSize) *genai.GenerateContentConfig {
	if model != domain.ModelProImage {
		return nil
	}
	return &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: "1:1",
			ImageSize:   string(size),
		},
	}
}

// enrichSizeError はモデル／解像度の不整合による拒否に、具体的な是正方法を補います。
func enrichSizeError(e *apperr.AppError, model string, size domain.ImageSize) *apperr.AppError {
	if e.Code != apperr.CodeInvalidRequest {
		return e
	}
	if model == domain.ModelFlashImage && size != domain.Size1K {
		e.UserMessage = "Flash 模型不支援自訂圖片大小設定，僅支援預設 1K (1024×1024) 解析度。如需更高解析度，請使用 Pro 模型。"
	} else if size == domain.Size4K {
		e.UserMessage = "4K 解析度可能不被此模型或您的 API 方案支援，請嘗試 2K 或 1K。"
	}
	return e
}

// responseText は最初の候補のテキストパーツを連結します。
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// firstInlineImage は応答パーツから最初の inline バイナリを探し、
// data URL として再組み立てします。
func firstInlineImage(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		encoded := base64.StdEncoding.EncodeToString(part.InlineData.Data)
		return imgutil.ToDataURL(mimeType, encoded), true
	}
	return "", false
}
