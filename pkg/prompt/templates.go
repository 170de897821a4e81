package prompt

import (
	"fmt"
	"strings"

	"github.com/shouni/doufang-kit/pkg/domain"
)

// 3 つのシステムプロンプトは同じ不変条件を共有します:
// キーワード→四字熟語の変換表、45 度回転した菱形と中央 2x2 グリッド、
// 菱形境界内への厳格な収容、書と装飾の相互非遮蔽、JSON 限定の出力封筒。

const themeTable = `Step 1: Understand the meaning and blessing intention of the keyword, then decide the final 4-character Chinese blessing phrase:
- Wealth -> e.g., 招財進寶, 富貴吉祥
- Health -> e.g., 龍馬精神, 延年益壽
- Career/Success -> e.g., 大展宏圖, 步步高升
- Peace/Harmony -> e.g., 平安喜樂, 歲歲平安
- Love -> e.g., 永結同心, 花好月圓
- Study -> e.g., 金榜題名, 學業有成
- General luck -> e.g., 吉祥如意, 鴻運當頭
- If the user input itself is already a suitable 4-character phrase (e.g. 馬上發財), you may use it directly. Otherwise upgrade it into an elegant, culturally appropriate phrase.`

const compositionRules = `ARTWORK SPECIFICATIONS (DOUFANG FORMAT):
- Shape: a perfect diamond-shaped "Doufang" (a square rotated 45 degrees), centered in a 1:1 frame.
- Calligraphy layout: the 4-character blessing phrase MUST be arranged in a balanced, centered 2x2 square grid inside the diamond.
- Strict containment: EVERY visual element (calligraphy, decorations, subjects, textures) must stay inside the diamond boundary. Nothing may spill over onto the background outside the diamond.
- Non-obscuring layering: decorative and subject elements must frame the calligraphy, never cover it; the calligraphy must never cover key subject elements either.
- The entire diamond is fully visible inside the frame, not cropped, not touching any edge.`

const qualityRules = `QUALITY AND PROHIBITIONS:
- The Chinese characters must be clear, correct, readable. No malformed or deformed strokes, no typo.
- No Western typography, no cartoon aesthetics, no watermark, no modern UI junk.
- No excessive blank margins around the diamond.
- Ultra high detail, masterpiece, professional artwork, 1:1 aspect ratio.`

const outputEnvelope = `OUTPUT FORMAT (JSON ONLY):
Return only a JSON object with this structure:
{
  "blessingPhrase": "The chosen 4-character phrase",
  "analysis": "(optional) What you extracted or decided",
  "imagePrompt": "A highly detailed English image generation prompt (about 150-250 words) following all instructions above. It must describe the diamond shape and the 2x2 calligraphy grid explicitly."
}`

// SystemPromptBase は参照画像もカスタマイズも無いときのシステム指示です。
var SystemPromptBase = strings.Join([]string{
	`You are a professional Chinese New Year couplet and calligraphy art designer.

Your task is to generate a high-end, printable Chinese New Year "Doufang" (diamond-shaped) couplet artwork prompt based on ONE keyword provided by the user.`,
	themeTable,
	`Step 2: Generate the artwork prompt with the following visual style:
A diamond-shaped Chinese New Year "Doufang" couplet on antique gold-flecked red Xuan paper.
Central theme: bold, powerful, energetic traditional Chinese ink wash calligraphy of the final 4-character blessing phrase.
Around the calligraphy: symbolic elements that visually represent the user's keyword, painted in traditional Chinese ink painting style (for example: horse, dragon, pine tree, crane, gold ingots, clouds, mountains, sun, plum blossoms).
Material & texture: real Xuan paper texture, gold flecks, red rice paper, visible paper fibers, natural ink diffusion, subtle embossed gold foil details.
Color theme: deep Chinese red, gold, black ink, warm highlights.
Lighting: soft studio lighting, gentle glow on gold details, museum-quality artwork.`,
	compositionRules,
	qualityRules,
	outputEnvelope,
}, "\n\n")

const preserveDoctrine = `REFERENCE MODE: PRESERVE (strict visual DNA lock)
The generated artwork must remain visually indistinguishable in style, color palette, subject and material from EVERY reference image provided.
- Do NOT invent new color schemes. Use only the palette visible in the references.
- Do NOT substitute the artistic style. If the reference is 3D render, stay 3D render; if ink wash, stay ink wash.
- Keep the same subject, the same materials and the same texture treatment.
- Adapt the references to the Doufang format without changing their visual identity.`

const reimagineDoctrine = `REFERENCE MODE: REIMAGINE (same DNA, new composition)
Keep the exact same subject, artistic style and material treatment as the reference images, but compose a materially different image:
- The subject must appear in a clearly different pose, viewed from a different angle, in a different arrangement within the diamond.
- A viewer must recognize the same subject, doing something different.
- Colors and style stay faithful to the references; only pose, angle and composition change.`

// SystemPromptWithReference は参照画像があるときのシステム指示です。
// mode によって preserve / reimagine のドクトリンを切り替えます。
func SystemPromptWithReference(mode domain.ReferenceImageMode) string {
	doctrine := preserveDoctrine
	if mode == domain.ModeReimagine {
		doctrine = reimagineDoctrine
	}

	return strings.Join([]string{
		`You are a professional Chinese New Year Doufang (diamond-shaped couplet) designer and calligrapher.

CORE MISSION:
Analyze the provided REFERENCE IMAGE(S) and a KEYWORD to create a unique, high-end Chinese New Year Doufang. The reference images are your PRIMARY visual guide. When several references are provided, the first one carries the primary visual DNA.`,
		themeTable,
		`REFERENCE IMAGE DNA EXTRACTION (CRITICAL):
For each reference image, extract its Visual DNA:
1. Primary Subject: the main character, animal, or object.
2. Artistic Style: 3D render, minimalist line art, thick oil painting, cyberpunk, traditional ink, etc.
3. Color Palette: the dominant colors beyond the standard red/gold.
4. Patterns & Textures: specific motifs, materials and surface treatments.`,
		doctrine,
		compositionRules,
		qualityRules,
		outputEnvelope,
	}, "\n\n")
}

// SystemPromptWithCustomization は参照画像なし・カスタマイズありのシステム指示です。
func SystemPromptWithCustomization(opts *domain.CustomizationOptions) string {
	return strings.Join([]string{
		`You are a professional Chinese New Year couplet and calligraphy art designer.

Your task is to generate a high-end, printable Chinese New Year "Doufang" (diamond-shaped) couplet artwork prompt based on ONE keyword and the user's style customization below. The customization constraints are mandatory, not suggestions.`,
		themeTable,
		customizationBlock(opts),
		compositionRules,
		qualityRules,
		outputEnvelope,
	}, "\n\n")
}

// customizationBlock はカスタマイズ項目を箇条書きの制約に直列化します。
// 同じ入力からは必ず同じ文字列が得られます。
func customizationBlock(opts *domain.CustomizationOptions) string {
	if opts == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("USER CUSTOMIZATION CONSTRAINTS:")

	if v := opts.EffectiveArtStyle(); v != "" {
		fmt.Fprintf(&b, "\n- Art style: %s", v)
	}
	if v := opts.EffectiveColorTheme(); v != "" {
		fmt.Fprintf(&b, "\n- Color theme: %s", v)
	}
	if v := opts.EffectiveCalligraphyStyle(); v != "" {
		fmt.Fprintf(&b, "\n- Calligraphy style: %s", v)
	}
	if v := opts.EffectiveDecorationLevel(); v != "" {
		fmt.Fprintf(&b, "\n- Decoration level: %s", v)
	}
	if opts.VisualLayout != "" {
		fmt.Fprintf(&b, "\n- Visual layout strategy: %s", opts.VisualLayout)
	}
	if opts.CustomBlessingPhrase != "" {
		fmt.Fprintf(&b, "\n- Blessing phrase: 「%s」 — use it verbatim as the calligraphy text. Do not replace, translate or re-pick the phrase.", opts.CustomBlessingPhrase)
	}
	if opts.CustomStyleDescription != "" {
		fmt.Fprintf(&b, "\n- Additional style notes: %s", opts.CustomStyleDescription)
	}

	return b.String()
}

// ReferenceAnalysisPrompt は参照画像がある場合の末尾テキストパートです。
// 画像ごとの DNA 列挙とモード別の融合規則、カスタマイズ制約を畳み込みます。
func ReferenceAnalysisPrompt(keyword string, opts *domain.CustomizationOptions) string {
	mode := opts.Mode()

	var b strings.Builder
	fmt.Fprintf(&b, "User input keyword: 「%s」\n\n", keyword)

	b.WriteString(`CRITICAL INSTRUCTION: Reference image(s) have been provided above. Analyze them in detail and generate a prompt that directly uses their visual content.

STEP-BY-STEP ANALYSIS REQUIRED — for EACH reference image, enumerate:
1. Subject: the main character, figure or object, and what it is doing.
2. Style: the artistic technique (ink wash, 3D render, illustration, oil painting, ...).
3. Color: the palette, tones and contrast levels.
4. Composition: how elements are arranged, where the visual weight sits.
5. Texture: material and surface characteristics (paper grain, brushwork, gloss, ...).`)

	b.WriteString("\n\nFUSION RULE:\n")
	if mode == domain.ModeReimagine {
		b.WriteString(`Recreate the exact same subject, style and material from the references, but in a clearly different pose, angle and composition. A viewer should recognize the same subject, doing something different inside the diamond.`)
	} else {
		b.WriteString(`The output must stay visually indistinguishable in style, color, subject and material from every reference image. Do NOT invent new color schemes, do NOT substitute the artistic style, do NOT swap the subject.`)
	}

	fmt.Fprintf(&b, "\n\nBlend the keyword (%s) with the references' visual identity, adapted to the diamond-shaped Doufang with the 2x2 calligraphy grid.", keyword)

	if block := customizationBlock(opts); block != "" {
		b.WriteString("\n\n")
		b.WriteString(block)
	}

	return b.String()
}

// SimpleInputPrompt は参照画像なしのテキストパートです。
func SimpleInputPrompt(keyword string, opts *domain.CustomizationOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User input keyword: 「%s」", keyword)

	if block := customizationBlock(opts); block != "" {
		b.WriteString("\n\n")
		b.WriteString(block)
	}
	return b.String()
}

// ImageReinforcement は画像生成呼び出しで承認済みプロンプトを包む短い補強文です。
// プロンプトの作り直しはせず、収容と充填率の要件だけを念押しします。
func ImageReinforcement(basePrompt string, hasReferences bool) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString(`

COMPOSITION REINFORCEMENT:
- The diamond-shaped Doufang should occupy about 90-95% of the frame, leaving only a 2-5% margin on each side.
- Every element stays strictly inside the diamond boundary; the background outside the diamond stays clean.
- The 4 characters remain in a centered 2x2 grid, unobscured.`)

	if hasReferences {
		b.WriteString(`

Note: the reference image(s) provided above are the visual style guide. Follow the style, color palette, and artistic approach described in the prompt, which was generated from these references.`)
	}
	return b.String()
}
