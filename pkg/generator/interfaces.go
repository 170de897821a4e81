package generator

import (
	"context"

	"google.golang.org/genai"
)

// GenerativeModel は生成エンドポイントとの通信窓口です。
// 本番実装は genai.Client の薄いラッパーで、テストではモックに差し替えます。
type GenerativeModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory は API キーから通信クライアントを構築します。
// キーは呼び出しごとに解決されるため（ユーザー指定 > 環境変数）、
// クライアントも呼び出し単位で作られます。横断する状態は持ちません。
type ClientFactory func(ctx context.Context, apiKey string) (GenerativeModel, error)
