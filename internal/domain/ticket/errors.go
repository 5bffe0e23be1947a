package ticket

import "errors"

// TicketType ドメインのエラー定義
var (
	ErrTicketTypeNotFound     = errors.New("チケット種別が見つかりません")
	ErrEventIDRequired        = errors.New("イベントIDは必須です")
	ErrTicketTypeNameRequired = errors.New("チケット種別名は必須です")
	ErrInvalidPrice           = errors.New("価格は0以上である必要があります")
	ErrInvalidQuantity        = errors.New("枚数は0以上である必要があります")
	ErrInvalidOrderLimits     = errors.New("購入数の上下限が不正です")
	ErrInvalidSalesWindow     = errors.New("販売終了は販売開始より後である必要があります")
	ErrInvalidSaleQuantity    = errors.New("販売数の増減は1以上である必要があります")
	ErrInsufficientInventory  = errors.New("在庫が不足しています")
	ErrOptimisticLockConflict = errors.New("楽観的ロックの競合が発生しました")
)
