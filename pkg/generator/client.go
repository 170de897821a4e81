package generator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// genaiClient は genai.Client を GenerativeModel に適合させる薄いラッパーです。
type genaiClient struct {
	client *genai.Client
}

func (c *genaiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// NewGenaiClientFactory は Gemini API に接続する既定のファクトリーを返します。
func NewGenaiClientFactory() ClientFactory {
	return func(ctx context.Context, apiKey string) (GenerativeModel, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("genaiクライアントの構築に失敗しました: %w", err)
		}
		return &genaiClient{client: client}, nil
	}
}

// apiKeyEnvVars は環境変数からのキー解決順です。
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "API_KEY", "GOOGLE_GENAI_API_KEY"}

// ResolveAPIKey は明示キーを優先し、無ければ環境変数を順に参照します。
// どこにも無ければ空文字列を返します（呼び出し側が MISSING_KEY にします）。
func ResolveAPIKey(explicit string) string {
	if key := strings.TrimSpace(explicit); key != "" {
		return key
	}
	for _, name := range apiKeyEnvVars {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key
		}
	}
	return ""
}
