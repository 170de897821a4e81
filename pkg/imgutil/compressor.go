package imgutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// DefaultMaxUploadKB はアップロード前圧縮の既定サイズ上限です。
	DefaultMaxUploadKB = 500
	// DefaultMaxDimension は長辺の既定ピクセル上限です。
	DefaultMaxDimension = 1920

	initialJPEGQuality = 85
	minJPEGQuality     = 10
)

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CompressToDataURL は参照画像をペイロードビルダーへ渡せる大きさまで縮小し、
// data URL として返します。長辺を maxDimension 以下へ縮小した上で、
// maxSizeKB に収まるまで JPEG 品質を段階的に下げます。
func CompressToDataURL(data []byte, maxSizeKB, maxDimension int) (string, error) {
	if maxSizeKB <= 0 {
		maxSizeKB = DefaultMaxUploadKB
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	img = scaleDown(img, maxDimension)

	encoded, err := encodeWithinBudget(img, maxSizeKB)
	if err != nil {
		return "", err
	}
	return ToDataURL("image/jpeg", base64.StdEncoding.EncodeToString(encoded)), nil
}

// ValidateImage は参照画像として受け付けられるかを検証します。
// PNG / JPEG のみ許可し、maxSizeMB を超えるものは拒否します。
func ValidateImage(data []byte, maxSizeMB int) error {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if len(data) > maxSizeMB*1024*1024 {
		return fmt.Errorf("画像が大き過ぎます: %.2fMB (上限 %dMB)", float64(len(data))/(1024*1024), maxSizeMB)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("画像として解釈できません: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return fmt.Errorf("未対応の画像形式です: %s (PNG/JPEG のみ)", format)
	}
	return nil
}

func scaleDown(img image.Image, maxDimension int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDimension && h <= maxDimension {
		return img
	}

	if w > h {
		h = h * maxDimension / w
		w = maxDimension
	} else {
		w = w * maxDimension / h
		h = maxDimension
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeWithinBudget(img image.Image, maxSizeKB int) ([]byte, error) {
	quality := initialJPEGQuality
	for {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
		if buf.Len() <= maxSizeKB*1024 || quality <= minJPEGQuality {
			return buf.Bytes(), nil
		}

		// 実測サイズとの比率で次の品質を見積もる
		next := int(float64(quality) * float64(maxSizeKB*1024) / float64(buf.Len()))
		if next >= quality {
			next = quality - 10
		}
		if next < minJPEGQuality {
			next = minJPEGQuality
		}
		quality = next
	}
}
