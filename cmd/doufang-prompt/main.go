// doufang-prompt はキーワード（と任意の参照画像）から、斗方作品用の
// 祝福フレーズと画像生成プロンプトを JSON で出力するコマンドです。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shouni/doufang-kit/pkg/adapters"
	"github.com/shouni/doufang-kit/pkg/apperr"
	"github.com/shouni/doufang-kit/pkg/domain"
	"github.com/shouni/doufang-kit/pkg/generator"
	"github.com/shouni/doufang-kit/pkg/settings"
)

var version = "dev"

type refList []string

func (r *refList) String() string { return strings.Join(*r, ",") }

func (r *refList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	// .env.local を優先する（godotenv は既存の値を上書きしない）
	_ = godotenv.Load(".env.local", ".env")

	var (
		refs         refList
		apiKey       = flag.String("api-key", "", "Gemini API キー（未指定時は設定ファイルと環境変数から解決）")
		settingsPath = flag.String("settings", "", "設定ファイルのパス（既定: ユーザー設定ディレクトリ）")
		artStyle     = flag.String("art-style", "", "画風プリセット (traditional/modern/minimalist/luxurious/vintage/contemporary/abstract/realistic/custom)")
		colorTheme   = flag.String("color-theme", "", "配色プリセット (classic-red-gold/elegant-subtle/vibrant-rich/monochrome/pastel-soft/deep-mysterious/warm-earth/cool-blue/custom)")
		calligraphy  = flag.String("calligraphy", "", "書体プリセット (kaishu/xingshu/caoshu/lishu/zhuanshu/weibei/custom)")
		decoration   = flag.String("decoration", "", "装飾密度プリセット (minimal/moderate/rich/extravagant/custom)")
		layout       = flag.String("layout", "", "構図プリセット (classic-center/subject-surround/subject-backdrop/corner-accents)")
		refMode      = flag.String("ref-mode", "", "参照画像の扱い (preserve/reimagine)")
		blessing     = flag.String("blessing", "", "祝福フレーズを固定する（4〜8 文字の漢字）")
		styleDesc    = flag.String("style-desc", "", "自由記述のスタイル指定")
		verbose      = flag.Bool("v", false, "詳細ログを出力する")
		showVersion  = flag.Bool("version", false, "バージョンを表示して終了する")
	)
	flag.Var(&refs, "ref", "参照画像（ローカルパス / http(s) URL / data URL、繰り返し指定可）")
	flag.Parse()

	if *showVersion {
		fmt.Println("doufang-prompt", version)
		return
	}

	setupLogger(*verbose)

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "使い方: doufang-prompt [flags] <キーワード>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	keyword := flag.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, keyword, refs, *apiKey, *settingsPath, customizationFromFlags(
		*artStyle, *colorTheme, *calligraphy, *decoration, *layout, *refMode, *blessing, *styleDesc,
	)); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, keyword string, refs []string, apiKey, settingsPath string, opts *domain.CustomizationOptions) error {
	store, err := settings.NewStore(settingsPath)
	if err != nil {
		return err
	}
	saved := store.Load()

	if apiKey == "" {
		apiKey = saved.APIKey
	}

	resolver := adapters.NewReferenceResolver(adapters.NewHTTPFetcher(0), nil, nil, 0)
	dataURLs := resolver.ResolveAll(ctx, refs)

	gen, err := generator.NewDoufangGenerator(generator.NewGenaiClientFactory())
	if err != nil {
		return err
	}

	result, err := gen.GenerateBlessingAndPrompt(ctx, domain.PromptRequest{
		Keyword:         keyword,
		APIKey:          apiKey,
		ReferenceImages: dataURLs,
		Customization:   opts,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func customizationFromFlags(artStyle, colorTheme, calligraphy, decoration, layout, refMode, blessing, styleDesc string) *domain.CustomizationOptions {
	if artStyle == "" && colorTheme == "" && calligraphy == "" && decoration == "" &&
		layout == "" && refMode == "" && blessing == "" && styleDesc == "" {
		return nil
	}

	opts := domain.DefaultCustomization()
	if artStyle != "" {
		opts.SetArtStyle(domain.ArtStyle(artStyle))
	}
	if colorTheme != "" {
		opts.SetColorTheme(domain.ColorTheme(colorTheme))
	}
	if calligraphy != "" {
		opts.SetCalligraphyStyle(domain.CalligraphyStyle(calligraphy))
	}
	if decoration != "" {
		opts.SetDecorationLevel(domain.DecorationLevel(decoration))
	}
	opts.VisualLayout = domain.VisualLayout(layout)
	opts.ReferenceImageMode = domain.ReferenceImageMode(refMode)
	opts.CustomBlessingPhrase = blessing
	opts.CustomStyleDescription = styleDesc
	return opts
}

func setupLogger(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// userMessage は分類済みエラーなら表示用文言を、それ以外は素のエラーを返します。
func userMessage(err error) string {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) && appErr.UserMessage != "" {
		return appErr.UserMessage
	}
	return err.Error()
}
