package domain

// StyleCustom はプリセットの代わりに自由入力を使うことを示す番兵値です。
// いずれかのプリセット項目がこの値のときだけ、対になる Custom* テキストを参照します。
const StyleCustom = "custom"

// ArtStyle は斗方全体の画風プリセットです。
type ArtStyle string

const (
	ArtTraditional  ArtStyle = "traditional"
	ArtModern       ArtStyle = "modern"
	ArtMinimalist   ArtStyle = "minimalist"
	ArtLuxurious    ArtStyle = "luxurious"
	ArtVintage      ArtStyle = "vintage"
	ArtContemporary ArtStyle = "contemporary"
	ArtAbstract     ArtStyle = "abstract"
	ArtRealistic    ArtStyle = "realistic"
	ArtCustom       ArtStyle = StyleCustom
)

// ColorTheme は配色プリセットです。
type ColorTheme string

const (
	ColorClassicRedGold ColorTheme = "classic-red-gold"
	ColorElegantSubtle  ColorTheme = "elegant-subtle"
	ColorVibrantRich    ColorTheme = "vibrant-rich"
	ColorMonochrome     ColorTheme = "monochrome"
	ColorPastelSoft     ColorTheme = "pastel-soft"
	ColorDeepMysterious ColorTheme = "deep-mysterious"
	ColorWarmEarth      ColorTheme = "warm-earth"
	ColorCoolBlue       ColorTheme = "cool-blue"
	ColorCustom         ColorTheme = StyleCustom
)

// CalligraphyStyle は中央の四文字に使う書体プリセットです。
type CalligraphyStyle string

const (
	CalligraphyKaishu   CalligraphyStyle = "kaishu"
	CalligraphyXingshu  CalligraphyStyle = "xingshu"
	CalligraphyCaoshu   CalligraphyStyle = "caoshu"
	CalligraphyLishu    CalligraphyStyle = "lishu"
	CalligraphyZhuanshu CalligraphyStyle = "zhuanshu"
	CalligraphyWeibei   CalligraphyStyle = "weibei"
	CalligraphyCustom   CalligraphyStyle = StyleCustom
)

// DecorationLevel は書を取り囲む装飾の密度です。
type DecorationLevel string

const (
	DecorationMinimal     DecorationLevel = "minimal"
	DecorationModerate    DecorationLevel = "moderate"
	DecorationRich        DecorationLevel = "rich"
	DecorationExtravagant DecorationLevel = "extravagant"
	DecorationCustom      DecorationLevel = StyleCustom
)

// VisualLayout は主題と書の構図戦略です。
type VisualLayout string

const (
	LayoutClassicCenter   VisualLayout = "classic-center"
	LayoutSubjectSurround VisualLayout = "subject-surround"
	LayoutSubjectBackdrop VisualLayout = "subject-backdrop"
	LayoutCornerAccents   VisualLayout = "corner-accents"
)

// ReferenceImageMode は参照画像の視覚的 DNA をどの厳密さで踏襲するかです。
type ReferenceImageMode string

const (
	// ModePreserve は画風・配色・主題・質感を参照画像から一切変えないモードです。
	ModePreserve ReferenceImageMode = "preserve"
	// ModeReimagine は同じ主題・画風のまま、ポーズや構図だけを作り直すモードです。
	ModeReimagine ReferenceImageMode = "reimagine"
)

// CustomizationOptions はユーザーが選択したスタイル構成です。
// プリセット項目が StyleCustom のときだけ、対になる Custom* テキストが有効になります。
// 排他性はセッターで強制します: プリセットを custom 以外へ戻すと古い自由入力は破棄されます。
type CustomizationOptions struct {
	ArtStyle         ArtStyle         `json:"artStyle"`
	ColorTheme       ColorTheme       `json:"colorTheme"`
	CalligraphyStyle CalligraphyStyle `json:"calligraphyStyle"`
	DecorationLevel  DecorationLevel  `json:"decorationLevel"`

	CustomArtStyle         string `json:"customArtStyle,omitempty"`
	CustomColorTheme       string `json:"customColorTheme,omitempty"`
	CustomCalligraphyStyle string `json:"customCalligraphyStyle,omitempty"`
	CustomDecorationLevel  string `json:"customDecorationLevel,omitempty"`

	// CustomBlessingPhrase が指定された場合、4〜8 文字の漢字をそのまま書の本文に使います。
	CustomBlessingPhrase   string `json:"customBlessingPhrase,omitempty"`
	CustomStyleDescription string `json:"customStyleDescription,omitempty"`

	VisualLayout       VisualLayout       `json:"visualLayout,omitempty"`
	ReferenceImageMode ReferenceImageMode `json:"referenceImageMode,omitempty"`
}

// DefaultCustomization は UI の初期状態と同じ構成を返します。
func DefaultCustomization() *CustomizationOptions {
	return &CustomizationOptions{
		ArtStyle:         ArtTraditional,
		ColorTheme:       ColorClassicRedGold,
		CalligraphyStyle: CalligraphyKaishu,
		DecorationLevel:  DecorationModerate,
	}
}

// SetArtStyle はプリセットを切り替えます。custom 以外を選ぶと自由入力を消去します。
func (c *CustomizationOptions) SetArtStyle(s ArtStyle) {
	c.ArtStyle = s
	if s != ArtCustom {
		c.CustomArtStyle = ""
	}
}

// SetColorTheme はプリセットを切り替えます。custom 以外を選ぶと自由入力を消去します。
func (c *CustomizationOptions) SetColorTheme(s ColorTheme) {
	c.ColorTheme = s
	if s != ColorCustom {
		c.CustomColorTheme = ""
	}
}

// SetCalligraphyStyle はプリセットを切り替えます。custom 以外を選ぶと自由入力を消去します。
func (c *CustomizationOptions) SetCalligraphyStyle(s CalligraphyStyle) {
	c.CalligraphyStyle = s
	if s != CalligraphyCustom {
		c.CustomCalligraphyStyle = ""
	}
}

// SetDecorationLevel はプリセットを切り替えます。custom 以外を選ぶと自由入力を消去します。
func (c *CustomizationOptions) SetDecorationLevel(s DecorationLevel) {
	c.DecorationLevel = s
	if s != DecorationCustom {
		c.CustomDecorationLevel = ""
	}
}

// Mode は参照画像モードを返します。未指定は preserve 扱いです。
func (c *CustomizationOptions) Mode() ReferenceImageMode {
	if c == nil || c.ReferenceImageMode == "" {
		return ModePreserve
	}
	return c.ReferenceImageMode
}

// EffectiveArtStyle はプロンプトに埋め込む画風の記述を返します。
// プリセットが custom のときだけ自由入力を採用します（古い入力が残っていても無視）。
func (c *CustomizationOptions) EffectiveArtStyle() string {
	if c.ArtStyle == ArtCustom && c.CustomArtStyle != "" {
		return c.CustomArtStyle
	}
	if c.ArtStyle == ArtCustom {
		return ""
	}
	return string(c.ArtStyle)
}

// EffectiveColorTheme はプロンプトに埋め込む配色の記述を返します。
func (c *CustomizationOptions) EffectiveColorTheme() string {
	if c.ColorTheme == ColorCustom && c.CustomColorTheme != "" {
		return c.CustomColorTheme
	}
	if c.ColorTheme == ColorCustom {
		return ""
	}
	return string(c.ColorTheme)
}

// EffectiveCalligraphyStyle はプロンプトに埋め込む書体の記述を返します。
func (c *CustomizationOptions) EffectiveCalligraphyStyle() string {
	if c.CalligraphyStyle == CalligraphyCustom && c.CustomCalligraphyStyle != "" {
		return c.CustomCalligraphyStyle
	}
	if c.CalligraphyStyle == CalligraphyCustom {
		return ""
	}
	return string(c.CalligraphyStyle)
}

// EffectiveDecorationLevel はプロンプトに埋め込む装飾密度の記述を返します。
func (c *CustomizationOptions) EffectiveDecorationLevel() string {
	if c.DecorationLevel == DecorationCustom && c.CustomDecorationLevel != "" {
		return c.CustomDecorationLevel
	}
	if c.DecorationLevel == DecorationCustom {
		return ""
	}
	return string(c.DecorationLevel)
}
