package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/purchase"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/transaction"
)

type purchaseRow struct {
	ID             string     `db:"id"`
	EventID        string     `db:"event_id"`
	TicketTypeID   string     `db:"ticket_type_id"`
	UserID         string     `db:"user_id"`
	Quantity       int        `db:"quantity"`
	UnitPrice      int        `db:"unit_price"`
	TotalAmount    int        `db:"total_amount"`
	Status         string     `db:"status"`
	IdempotencyKey string     `db:"idempotency_key"`
	PaymentRef     *string    `db:"payment_ref"`
	ExpiresAt      time.Time  `db:"expires_at"`
	CompletedAt    *time.Time `db:"completed_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (r *purchaseRow) toEntity() *purchase.Purchase {
	var paymentRef string
	if r.PaymentRef != nil {
		paymentRef = *r.PaymentRef
	}
	return &purchase.Purchase{
		ID:             r.ID,
		EventID:        r.EventID,
		TicketTypeID:   r.TicketTypeID,
		UserID:         r.UserID,
		Quantity:       r.Quantity,
		UnitPrice:      r.UnitPrice,
		TotalAmount:    r.TotalAmount,
		Status:         purchase.Status(r.Status),
		IdempotencyKey: r.IdempotencyKey,
		PaymentRef:     paymentRef,
		ExpiresAt:      r.ExpiresAt,
		CompletedAt:    r.CompletedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

const purchaseColumns = `id, event_id, ticket_type_id, user_id, quantity, unit_price, total_amount, status, idempotency_key, payment_ref, expires_at, completed_at, created_at, updated_at`

// PurchaseRepository は購入リポジトリのPostgreSQL実装
type PurchaseRepository struct {
	db *sqlx.DB
}

// NewPurchaseRepository はPurchaseRepositoryを作成する
func NewPurchaseRepository(db *sqlx.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create はトランザクション内で新しい購入を作成する
func (r *PurchaseRepository) Create(ctx context.Context, tx transaction.Tx, p *purchase.Purchase) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("不正なトランザクション型です")
	}

	query := `
		INSERT INTO purchases (event_id, ticket_type_id, user_id, quantity, unit_price, total_amount, status, idempotency_key, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := sqlxTx.QueryRowContext(ctx, query,
		p.EventID, p.TicketTypeID, p.UserID, p.Quantity, p.UnitPrice, p.TotalAmount,
		string(p.Status), p.IdempotencyKey, p.ExpiresAt, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return purchase.ErrIdempotencyKeyAlreadyExists
		}
		return fmt.Errorf("購入作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから購入を取得する
func (r *PurchaseRepository) GetByID(ctx context.Context, id string) (*purchase.Purchase, error) {
	var row purchaseRow
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchase.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("購入取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIdempotencyKey は冪等性キーから購入を取得する
func (r *PurchaseRepository) GetByIdempotencyKey(ctx context.Context, key string) (*purchase.Purchase, error) {
	var row purchaseRow
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE idempotency_key = $1`
	if err := r.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchase.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("購入取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByUserID はユーザーの購入一覧を取得する
func (r *PurchaseRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*purchase.Purchase, error) {
	var rows []purchaseRow
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("購入一覧取得に失敗しました: %w", err)
	}

	result := make([]*purchase.Purchase, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

// Update はトランザクション内で購入を更新する
func (r *PurchaseRepository) Update(ctx context.Context, tx transaction.Tx, p *purchase.Purchase) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("不正なトランザクション型です")
	}

	var paymentRef *string
	if p.PaymentRef != "" {
		paymentRef = &p.PaymentRef
	}

	query := `UPDATE purchases SET status = $1, payment_ref = $2, completed_at = $3, updated_at = $4 WHERE id = $5`
	result, err := sqlxTx.ExecContext(ctx, query, string(p.Status), paymentRef, p.CompletedAt, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("購入更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return purchase.ErrPurchaseNotFound
	}
	return nil
}

// GetExpiredPending は有効期限切れの決済待ち購入を取得する
func (r *PurchaseRepository) GetExpiredPending(ctx context.Context) ([]*purchase.Purchase, error) {
	var rows []purchaseRow
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE status = 'pending' AND expires_at < NOW()`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("期限切れ購入取得に失敗しました: %w", err)
	}

	result := make([]*purchase.Purchase, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

// インターフェースを満たしているか確認
var _ purchase.Repository = (*PurchaseRepository)(nil)
