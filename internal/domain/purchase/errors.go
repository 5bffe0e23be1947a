package purchase

import "errors"

// Purchase ドメインのエラー定義
var (
	ErrPurchaseNotFound            = errors.New("購入が見つかりません")
	ErrPurchaseNotPending          = errors.New("決済待ちの購入ではありません")
	ErrPurchaseNotCompleted        = errors.New("決済完了済みの購入ではありません")
	ErrPurchaseAlreadyRefunded     = errors.New("購入は既に返金されています")
	ErrEventIDRequired             = errors.New("イベントIDは必須です")
	ErrTicketTypeIDRequired        = errors.New("チケット種別IDは必須です")
	ErrUserIDRequired              = errors.New("ユーザーIDは必須です")
	ErrIdempotencyKeyRequired      = errors.New("冪等性キーは必須です")
	ErrInvalidQuantity             = errors.New("購入枚数は1以上である必要があります")
	ErrIdempotencyKeyAlreadyExists = errors.New("冪等性キーが重複しています")
)
