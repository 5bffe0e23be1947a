package purchase

import "time"

// Status は購入の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// PendingExpiration は決済待ち購入の有効期限（デフォルト15分）
const PendingExpiration = 15 * time.Minute

// Purchase は購入エンティティを表す
// 決済自体は外部ゲートウェイで行われ、ここではその前後の状態を記録する
type Purchase struct {
	ID             string
	EventID        string
	TicketTypeID   string
	UserID         string
	Quantity       int
	UnitPrice      int
	TotalAmount    int
	Status         Status
	IdempotencyKey string
	PaymentRef     string // 外部決済ゲートウェイの取引参照
	ExpiresAt      time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPurchase は新しい購入を決済待ち状態で作成する
func NewPurchase(eventID, ticketTypeID, userID, idempotencyKey string, quantity, unitPrice int) *Purchase {
	now := time.Now()
	return &Purchase{
		EventID:        eventID,
		TicketTypeID:   ticketTypeID,
		UserID:         userID,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		TotalAmount:    unitPrice * quantity,
		Status:         StatusPending,
		IdempotencyKey: idempotencyKey,
		ExpiresAt:      now.Add(PendingExpiration),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsPending は決済待ちかを返す
func (p *Purchase) IsPending() bool {
	return p.Status == StatusPending
}

// IsExpired は決済待ちの有効期限が切れているかを返す
func (p *Purchase) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Complete は決済完了を記録する
func (p *Purchase) Complete(paymentRef string) error {
	if p.Status != StatusPending {
		return ErrPurchaseNotPending
	}
	now := time.Now()
	p.Status = StatusCompleted
	p.PaymentRef = paymentRef
	p.CompletedAt = &now
	p.UpdatedAt = now
	return nil
}

// Fail は決済失敗・期限切れを記録する
func (p *Purchase) Fail() error {
	if p.Status != StatusPending {
		return ErrPurchaseNotPending
	}
	p.Status = StatusFailed
	p.UpdatedAt = time.Now()
	return nil
}

// Refund は返金承認を記録する（決済完了済みのみ）
func (p *Purchase) Refund() error {
	if p.Status == StatusRefunded {
		return ErrPurchaseAlreadyRefunded
	}
	if p.Status != StatusCompleted {
		return ErrPurchaseNotCompleted
	}
	p.Status = StatusRefunded
	p.UpdatedAt = time.Now()
	return nil
}

// Validate は購入の検証を行う
func (p *Purchase) Validate() error {
	if p.EventID == "" {
		return ErrEventIDRequired
	}
	if p.TicketTypeID == "" {
		return ErrTicketTypeIDRequired
	}
	if p.UserID == "" {
		return ErrUserIDRequired
	}
	if p.IdempotencyKey == "" {
		return ErrIdempotencyKeyRequired
	}
	if p.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}
