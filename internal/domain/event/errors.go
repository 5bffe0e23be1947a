package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound          = errors.New("イベントが見つかりません")
	ErrEventNameRequired      = errors.New("イベント名は必須です")
	ErrInvalidEventTime       = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrInvalidCapacity        = errors.New("キャパシティは0以上である必要があります")
	ErrEventNotDraft          = errors.New("下書き状態のイベントのみ公開できます")
	ErrEventNotPublished      = errors.New("公開済みのイベントではありません")
	ErrEventAlreadyCancelled  = errors.New("イベントは既に中止されています")
	ErrEventAlreadyCompleted  = errors.New("イベントは既に終了しています")
	ErrOptimisticLockConflict = errors.New("楽観的ロックの競合が発生しました")
)
