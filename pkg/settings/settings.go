// Package settings はユーザー設定の JSON ファイル永続化を担当します。
// 読み込みは常に有効な設定を返し、壊れたファイルは既定値へ巻き戻します。
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shouni/doufang-kit/pkg/domain"
)

// DefaultFileName は既定の設定ファイル名です。
const DefaultFileName = "doufang-settings.json"

// Store は設定ファイルひとつを読み書きするストアです。
type Store struct {
	path string
}

// NewStore は指定パスのストアを生成します。空パスの場合は
// OS のユーザー設定ディレクトリ配下の既定位置を使います。
func NewStore(path string) (*Store, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("設定ディレクトリを特定できません: %w", err)
		}
		path = filepath.Join(dir, "doufang", DefaultFileName)
	}
	return &Store{path: path}, nil
}

// Path は永続化先の絶対または相対パスを返します。
func (s *Store) Path() string { return s.path }

// Load は設定を読み込みます。ファイルが無い場合は既定値を返します。
// 壊れたファイルは警告を出した上で既定値へ巻き戻し、エラーにはしません。
func (s *Store) Load() domain.Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("設定ファイルの読み込みに失敗しました。既定値で続行します", "path", s.path, "error", err)
		}
		return domain.DefaultSettings()
	}

	var loaded domain.Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		slog.Warn("設定ファイルが壊れています。既定値で続行します", "path", s.path, "error", err)
		return domain.DefaultSettings()
	}

	return normalize(loaded)
}

// Save は設定を JSON で書き出します。APIキーを含むため 0600 で保存します。
func (s *Store) Save(settings domain.Settings) error {
	settings = normalize(settings)

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("設定のシリアライズに失敗しました: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("設定ディレクトリの作成に失敗しました: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("設定ファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}

// normalize は未知のモデル名や不正なモデル・解像度の組み合わせを既定値へ丸めます。
func normalize(in domain.Settings) domain.Settings {
	defaults := domain.DefaultSettings()

	if in.ImageModel != domain.ModelFlashImage && in.ImageModel != domain.ModelProImage {
		in.ImageModel = defaults.ImageModel
	}
	if !domain.ValidSize(string(in.ImageSize)) {
		in.ImageSize = defaults.ImageSize
	}
	if err := domain.ValidateModelSize(in.ImageModel, in.ImageSize); err != nil {
		in.ImageSize = domain.Size1K
	}
	return in
}
