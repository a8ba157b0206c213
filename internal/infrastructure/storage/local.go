package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sanosuguru/go-event-board/internal/domain/attachment"
)

// ErrOutsideStore は保存先の外を指すパスが渡されたことを表す
var ErrOutsideStore = errors.New("保存先の外を指すパスです")

// LocalStore はローカルファイルシステムに添付ファイルを保存する
type LocalStore struct {
	dir       string
	urlPrefix string
}

// NewLocalStore は dir に保存し、urlPrefix 配下の公開パスを返すストアを作成する
func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

// Dir は保存先ディレクトリを返す
func (s *LocalStore) Dir() string {
	return s.dir
}

// Store は content を一意な名前で保存し、公開パスを返す
func (s *LocalStore) Store(ctx context.Context, originalName string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// 保存先ディレクトリは書き込みの直前に作成する
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("保存先ディレクトリの作成に失敗: %w", err)
	}

	name, err := attachment.GenerateName(originalName)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.dir, name)
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("ファイル作成に失敗: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("ファイル書き込みに失敗: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("ファイルのクローズに失敗: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// Resolve は Store が返した公開パスをファイルシステム上のパスに変換する
func (s *LocalStore) Resolve(publicPath string) (string, error) {
	name, ok := strings.CutPrefix(publicPath, s.urlPrefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", fmt.Errorf("%w: %s", ErrOutsideStore, publicPath)
	}
	return filepath.Join(s.dir, name), nil
}

var _ attachment.Store = (*LocalStore)(nil)
