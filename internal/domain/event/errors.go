package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound   = errors.New("イベントが見つかりません")
	ErrInvalidFilter   = errors.New("filter は upcoming または previous を指定してください")
	ErrMissingFields   = errors.New("必須項目が不足しています")
	ErrInvalidID       = errors.New("イベントIDが不正です")
	ErrInvalidStatus   = errors.New("ステータスは accepted または declined を指定してください")
	ErrInvalidDateTime = errors.New("日付または時刻の形式が不正です")
	ErrAttachment      = errors.New("添付ファイルの保存に失敗しました")
	ErrPersistence     = errors.New("イベントの永続化に失敗しました")
)
