// doufang-image は画像プロンプトから斗方作品の画像を生成し、
// PNG/JPEG ファイルとして保存するコマンドです。
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shouni/doufang-kit/pkg/adapters"
	"github.com/shouni/doufang-kit/pkg/apperr"
	"github.com/shouni/doufang-kit/pkg/domain"
	"github.com/shouni/doufang-kit/pkg/generator"
	"github.com/shouni/doufang-kit/pkg/imgutil"
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
	_ = godotenv.Load(".env.local", ".env")

	var (
		refs         refList
		apiKey       = flag.String("api-key", "", "Gemini API キー（未指定時は設定ファイルと環境変数から解決）")
		settingsPath = flag.String("settings", "", "設定ファイルのパス（既定: ユーザー設定ディレクトリ）")
		model        = flag.String("model", "", "画像生成モデル (flash/pro、既定は設定ファイルの値)")
		size         = flag.String("size", "", "解像度 (1K/2K/4K、Pro モデルのみ 2K/4K 対応)")
		outPath      = flag.String("out", "doufang.png", "出力ファイルのパス")
		verbose      = flag.Bool("v", false, "詳細ログを出力する")
		showVersion  = flag.Bool("version", false, "バージョンを表示して終了する")
	)
	flag.Var(&refs, "ref", "参照画像（ローカルパス / http(s) URL / data URL、繰り返し指定可）")
	flag.Parse()

	if *showVersion {
		fmt.Println("doufang-image", version)
		return
	}

	setupLogger(*verbose)

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "使い方: doufang-image [flags] <画像プロンプト>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	prompt := flag.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, prompt, refs, *apiKey, *settingsPath, *model, *size, *outPath); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, prompt string, refs []string, apiKey, settingsPath, modelFlag, sizeFlag, outPath string) error {
	store, err := settings.NewStore(settingsPath)
	if err != nil {
		return err
	}
	saved := store.Load()

	if apiKey == "" {
		apiKey = saved.APIKey
	}

	model, size, err := resolveModelAndSize(saved, modelFlag, sizeFlag)
	if err != nil {
		return err
	}

	resolver := adapters.NewReferenceResolver(adapters.NewHTTPFetcher(0), nil, nil, 0)
	dataURLs := resolver.ResolveAll(ctx, refs)

	gen, err := generator.NewDoufangGenerator(generator.NewGenaiClientFactory())
	if err != nil {
		return err
	}

	dataURL, err := gen.GenerateImageFromPrompt(ctx, domain.ImageRequest{
		Prompt:          prompt,
		APIKey:          apiKey,
		Model:           model,
		ImageSize:       size,
		ReferenceImages: dataURLs,
	})
	if err != nil {
		return err
	}

	return saveImage(dataURL, outPath)
}

// resolveModelAndSize はフラグと設定ファイルからモデルと解像度を確定し、
// API を呼ぶ前に組み合わせを検証します。
func resolveModelAndSize(saved domain.Settings, modelFlag, sizeFlag string) (string, domain.ImageSize, error) {
	model := saved.ImageModel
	switch modelFlag {
	case "":
	case "flash":
		model = domain.ModelFlashImage
	case "pro":
		model = domain.ModelProImage
	default:
		model = modelFlag
	}

	size := saved.ImageSize
	if sizeFlag != "" {
		if !domain.ValidSize(sizeFlag) {
			return "", "", fmt.Errorf("不明な解像度です: %s (1K/2K/4K のいずれか)", sizeFlag)
		}
		size = domain.ImageSize(sizeFlag)
	}

	if err := domain.ValidateModelSize(model, size); err != nil {
		return "", "", fmt.Errorf("%w。-model pro を指定するか、-size 1K をお試しください", err)
	}
	return model, size, nil
}

const jpegSaveQuality = 90

// saveImage は data URL を出力ファイルへ書き出します。
// モデルは PNG を返すことが多いため、拡張子が .jpg / .jpeg のときは変換します。
func saveImage(dataURL, outPath string) error {
	parsed := imgutil.ParseDataURL(dataURL)
	if parsed == nil {
		return fmt.Errorf("生成結果を画像として解釈できません")
	}
	data, err := base64.StdEncoding.DecodeString(parsed.Base64Data)
	if err != nil {
		return fmt.Errorf("生成結果のデコードに失敗しました: %w", err)
	}

	mimeType := parsed.MimeType
	if wantsJPEG(outPath) && mimeType != "image/jpeg" {
		converted, err := imgutil.CompressToJPEG(data, jpegSaveQuality)
		if err != nil {
			return fmt.Errorf("JPEGへの変換に失敗しました: %w", err)
		}
		data = converted
		mimeType = "image/jpeg"
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("画像の保存に失敗しました: %w", err)
	}
	fmt.Printf("saved %s (%s, %d bytes)\n", outPath, mimeType, len(data))
	return nil
}

func wantsJPEG(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jpg" || ext == ".jpeg"
}

func setupLogger(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func userMessage(err error) string {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) && appErr.UserMessage != "" {
		return appErr.UserMessage
	}
	return err.Error()
}
