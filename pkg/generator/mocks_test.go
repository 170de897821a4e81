package generator

import (
	"context"

	"google.golang.org/genai"
)

// --- Mocks ---

type mockModel struct {
	generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	calls        int
}

func (m *mockModel) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, model, contents, config)
	}
	return &genai.GenerateContentResponse{}, nil
}

func factoryOf(m GenerativeModel) ClientFactory {
	return func(ctx context.Context, apiKey string) (GenerativeModel, error) {
		return m, nil
	}
}

// textResponse は最初の候補にテキストパーツ 1 つを持つ応答を作るのだ
func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

// imageResponse は inline バイナリ 1 つを持つ応答を作るのだ
func imageResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "some accompanying text"},
					{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
				},
			},
		}},
	}
}
