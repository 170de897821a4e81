package prompt

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/doufang-kit/pkg/domain"
	"github.com/shouni/doufang-kit/pkg/imgutil"
)

func pngDataURL(payload string) string {
	return imgutil.ToDataURL("image/png", base64.StdEncoding.EncodeToString([]byte(payload)))
}

func TestBuildPromptRequest_NoReference(t *testing.T) {
	req := BuildPromptRequest("財富", nil, nil)

	require.Len(t, req.Parts, 1)
	assert.Contains(t, req.Parts[0].Text, "財富")
	assert.Nil(t, req.Parts[0].InlineData)

	// ベースのシステム指示には菱形と 2x2 グリッドの指定が含まれるのだ
	assert.Contains(t, req.SystemInstruction, "diamond")
	assert.Contains(t, req.SystemInstruction, "2x2")
	assert.Contains(t, req.SystemInstruction, "blessingPhrase")
	assert.Contains(t, req.SystemInstruction, "imagePrompt")
}

func TestBuildPromptRequest_ImagesComeFirst(t *testing.T) {
	refs := []string{pngDataURL("first"), pngDataURL("second")}
	req := BuildPromptRequest("平安", refs, nil)

	require.Len(t, req.Parts, 3)
	require.NotNil(t, req.Parts[0].InlineData)
	require.NotNil(t, req.Parts[1].InlineData)
	assert.Equal(t, []byte("first"), req.Parts[0].InlineData.Data)
	assert.Equal(t, []byte("second"), req.Parts[1].InlineData.Data)
	assert.Equal(t, "image/png", req.Parts[0].InlineData.MIMEType)

	// 末尾はちょうど 1 つのテキストパーツ
	last := req.Parts[2]
	assert.Nil(t, last.InlineData)
	assert.Contains(t, last.Text, "平安")
	assert.Contains(t, last.Text, "for EACH reference image")
}

func TestBuildPromptRequest_MalformedReferenceFallback(t *testing.T) {
	// data URL として不正でも、この段階では落とさず image/jpeg として扱うのだ
	naked := base64.StdEncoding.EncodeToString([]byte("raw-bytes"))
	req := BuildPromptRequest("如意", []string{naked}, nil)

	require.Len(t, req.Parts, 2)
	require.NotNil(t, req.Parts[0].InlineData)
	assert.Equal(t, "image/jpeg", req.Parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("raw-bytes"), req.Parts[0].InlineData.Data)
}

func TestBuildPromptRequest_UndecodableReferenceIsSkipped(t *testing.T) {
	req := BuildPromptRequest("如意", []string{"data:image/png;base64,%%%%"}, nil)

	// 復号不能な画像はスキップし、テキストパーツだけが残る
	require.Len(t, req.Parts, 1)
	assert.Nil(t, req.Parts[0].InlineData)
}

func TestBuildPromptRequest_ReferenceModes(t *testing.T) {
	refs := []string{pngDataURL("img")}

	t.Run("preserve では色彩発明の禁止文言が入るのだ", func(t *testing.T) {
		opts := &domain.CustomizationOptions{ReferenceImageMode: domain.ModePreserve}
		req := BuildPromptRequest("財富", refs, opts)

		assert.Contains(t, req.SystemInstruction, "Do NOT invent new color schemes")
		assert.NotContains(t, req.SystemInstruction, "different pose")
	})

	t.Run("reimagine では different pose を要求し、preserve の禁止文言は消えるのだ", func(t *testing.T) {
		opts := &domain.CustomizationOptions{ReferenceImageMode: domain.ModeReimagine}
		req := BuildPromptRequest("財富", refs, opts)

		assert.Contains(t, req.SystemInstruction, "different pose")
		assert.Contains(t, req.SystemInstruction, "the same subject, doing something different")
		assert.NotContains(t, req.SystemInstruction, "Do NOT invent new color schemes")

		last := req.Parts[len(req.Parts)-1]
		assert.Contains(t, last.Text, "different pose")
		assert.NotContains(t, last.Text, "Do NOT invent new color schemes")
	})

	t.Run("モード未指定は preserve に倒れるのだ", func(t *testing.T) {
		req := BuildPromptRequest("財富", refs, nil)
		assert.Contains(t, req.SystemInstruction, "Do NOT invent new color schemes")
	})
}

func TestBuildPromptRequest_CustomBlessingPhraseVerbatim(t *testing.T) {
	opts := domain.DefaultCustomization()
	opts.CustomBlessingPhrase = "萬事如意"

	t.Run("参照画像ありの分析プロンプトに原文で入るのだ", func(t *testing.T) {
		req := BuildPromptRequest("如意", []string{pngDataURL("x")}, opts)
		text := req.Parts[len(req.Parts)-1].Text

		assert.Contains(t, text, "萬事如意")
		assert.Contains(t, text, "use it verbatim as the calligraphy text")
	})

	t.Run("参照画像なしでも制約として入るのだ", func(t *testing.T) {
		req := BuildPromptRequest("如意", nil, opts)
		assert.Contains(t, req.Parts[0].Text, "萬事如意")
		assert.Contains(t, req.SystemInstruction, "萬事如意")
	})
}

func TestBuildPromptRequest_CustomizationConstraints(t *testing.T) {
	opts := domain.DefaultCustomization()
	opts.SetArtStyle(domain.ArtCustom)
	opts.CustomArtStyle = "ukiyo-e woodblock"
	opts.VisualLayout = domain.LayoutSubjectSurround

	req := BuildPromptRequest("學業", nil, opts)

	assert.Contains(t, req.SystemInstruction, "ukiyo-e woodblock")
	assert.Contains(t, req.SystemInstruction, "classic-red-gold")
	assert.Contains(t, req.SystemInstruction, "subject-surround")
}

func TestBuildPromptRequest_Idempotent(t *testing.T) {
	// 同じ入力からはバイト単位で同一のパーツ列とシステム指示が得られるのだ
	refs := []string{pngDataURL("a"), pngDataURL("b")}
	opts := domain.DefaultCustomization()
	opts.CustomBlessingPhrase = "花好月圓"

	first := BuildPromptRequest("愛情", refs, opts)
	second := BuildPromptRequest("愛情", refs, opts)

	require.Equal(t, first.SystemInstruction, second.SystemInstruction)
	require.Len(t, second.Parts, len(first.Parts))
	for i := range first.Parts {
		assert.Equal(t, first.Parts[i].Text, second.Parts[i].Text)
		if first.Parts[i].InlineData != nil {
			require.NotNil(t, second.Parts[i].InlineData)
			assert.Equal(t, first.Parts[i].InlineData.Data, second.Parts[i].InlineData.Data)
			assert.Equal(t, first.Parts[i].InlineData.MIMEType, second.Parts[i].InlineData.MIMEType)
		}
	}
}

func TestBuildImageRequest(t *testing.T) {
	t.Run("参照画像なしはプロンプトをそのまま使うのだ", func(t *testing.T) {
		parts := BuildImageRequest("A diamond-shaped Doufang ...", nil)

		require.Len(t, parts, 1)
		assert.Equal(t, "A diamond-shaped Doufang ...", parts[0].Text)
	})

	t.Run("参照画像ありはピクセル再添付と補強文で包むのだ", func(t *testing.T) {
		parts := BuildImageRequest("base prompt", []string{pngDataURL("ref")})

		require.Len(t, parts, 2)
		require.NotNil(t, parts[0].InlineData)

		text := parts[1].Text
		assert.True(t, strings.HasPrefix(text, "base prompt"))
		assert.Contains(t, text, "90-95%")
		assert.Contains(t, text, "2-5%")
		assert.Contains(t, text, "visual style guide")
	})
}
