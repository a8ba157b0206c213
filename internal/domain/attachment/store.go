package attachment

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Store はアップロードされた添付ファイルの保存先を表すインターフェース
type Store interface {
	// Store は content を衝突しない名前で保存し、取得用のパスを返す
	Store(ctx context.Context, originalName string, content io.Reader) (string, error)
}

const maxStemLength = 64

// GenerateName は保存用のファイル名を生成する
// UUIDv7（時刻順）と元ファイル名を slug 化したものを連結するため、同名の同時アップロードでも衝突しない
func GenerateName(originalName string) (string, error) {
	token, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("ファイル名トークンの生成に失敗: %w", err)
	}
	return token.String() + "-" + sanitize(originalName), nil
}

func sanitize(originalName string) string {
	base := path.Base(strings.ReplaceAll(originalName, `\`, "/"))
	ext := path.Ext(base)
	stem := slug.Make(strings.TrimSuffix(base, ext))
	if len(stem) > maxStemLength {
		stem = strings.Trim(stem[:maxStemLength], "-")
	}
	if stem == "" {
		stem = "file"
	}
	return stem + cleanExt(ext)
}

func cleanExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || b.Len() > 8 {
		return ""
	}
	return "." + b.String()
}
