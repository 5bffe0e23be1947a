package ticket

import "time"

// 購入数上下限が未指定の場合のデフォルト値
const (
	DefaultMinPerOrder = 1
	DefaultMaxPerOrder = 10
)

// TicketType はイベントのチケット種別（一般・VIPなど）を表す
type TicketType struct {
	ID            string
	EventID       string
	Name          string
	Price         int
	QuantityTotal int
	QuantitySold  int
	MinPerOrder   int
	MaxPerOrder   int
	SalesStart    *time.Time // nil の場合は販売開始の制限なし
	SalesEnd      *time.Time // nil の場合は販売終了の制限なし
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int // 楽観的ロック用
}

// NewTicketTypeParams はチケット種別作成時の入力
// 省略可能な項目は nil で表現し、デフォルト値の適用は NewTicketType に集約する
type NewTicketTypeParams struct {
	EventID       string
	Name          string
	Price         int
	QuantityTotal int
	MinPerOrder   *int
	MaxPerOrder   *int
	SalesStart    *time.Time
	SalesEnd      *time.Time
}

// NewTicketType は新しいチケット種別を作成する
// 未指定の購入数上下限にはここで一度だけデフォルト値を適用する
func NewTicketType(p NewTicketTypeParams) *TicketType {
	minPerOrder := DefaultMinPerOrder
	if p.MinPerOrder != nil {
		minPerOrder = *p.MinPerOrder
	}
	maxPerOrder := DefaultMaxPerOrder
	if p.MaxPerOrder != nil {
		maxPerOrder = *p.MaxPerOrder
	}
	now := time.Now()
	return &TicketType{
		EventID:       p.EventID,
		Name:          p.Name,
		Price:         p.Price,
		QuantityTotal: p.QuantityTotal,
		QuantitySold:  0,
		MinPerOrder:   minPerOrder,
		MaxPerOrder:   maxPerOrder,
		SalesStart:    p.SalesStart,
		SalesEnd:      p.SalesEnd,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       0,
	}
}

// QuantityAvailable は残り販売可能数を返す（負にはならない）
func (t *TicketType) QuantityAvailable() int {
	remaining := t.QuantityTotal - t.QuantitySold
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordSale は販売数を加算する
func (t *TicketType) RecordSale(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidSaleQuantity
	}
	if t.QuantitySold+quantity > t.QuantityTotal {
		return ErrInsufficientInventory
	}
	t.QuantitySold += quantity
	t.UpdatedAt = time.Now()
	return nil
}

// ReleaseSale は販売数を戻す（返金・決済失敗時）
func (t *TicketType) ReleaseSale(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidSaleQuantity
	}
	t.QuantitySold -= quantity
	if t.QuantitySold < 0 {
		t.QuantitySold = 0
	}
	t.UpdatedAt = time.Now()
	return nil
}

// Activate はチケット種別を販売対象にする
func (t *TicketType) Activate() {
	t.IsActive = true
	t.UpdatedAt = time.Now()
}

// Deactivate はチケット種別を管理者操作で販売停止にする
func (t *TicketType) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
}

// Validate はチケット種別の検証を行う
func (t *TicketType) Validate() error {
	if t.EventID == "" {
		return ErrEventIDRequired
	}
	if t.Name == "" {
		return ErrTicketTypeNameRequired
	}
	if t.Price < 0 {
		return ErrInvalidPrice
	}
	if t.QuantityTotal < 0 || t.QuantitySold < 0 {
		return ErrInvalidQuantity
	}
	if t.MinPerOrder < 1 || t.MaxPerOrder < 1 || t.MinPerOrder > t.MaxPerOrder {
		return ErrInvalidOrderLimits
	}
	if t.SalesStart != nil && t.SalesEnd != nil && t.SalesEnd.Before(*t.SalesStart) {
		return ErrInvalidSalesWindow
	}
	return nil
}
