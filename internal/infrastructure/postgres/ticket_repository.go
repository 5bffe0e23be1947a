package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/transaction"
)

// ticketTypeRow はDBの行を表す構造体
type ticketTypeRow struct {
	ID            string     `db:"id"`
	EventID       string     `db:"event_id"`
	Name          string     `db:"name"`
	Price         int        `db:"price"`
	QuantityTotal int        `db:"quantity_total"`
	QuantitySold  int        `db:"quantity_sold"`
	MinPerOrder   int        `db:"min_per_order"`
	MaxPerOrder   int        `db:"max_per_order"`
	SalesStart    *time.Time `db:"sales_start"`
	SalesEnd      *time.Time `db:"sales_end"`
	IsActive      bool       `db:"is_active"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	Version       int        `db:"version"`
}

func (r *ticketTypeRow) toEntity() *ticket.TicketType {
	return &ticket.TicketType{
		ID:            r.ID,
		EventID:       r.EventID,
		Name:          r.Name,
		Price:         r.Price,
		QuantityTotal: r.QuantityTotal,
		QuantitySold:  r.QuantitySold,
		MinPerOrder:   r.MinPerOrder,
		MaxPerOrder:   r.MaxPerOrder,
		SalesStart:    r.SalesStart,
		SalesEnd:      r.SalesEnd,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Version:       r.Version,
	}
}

const ticketTypeColumns = `id, event_id, name, price, quantity_total, quantity_sold, min_per_order, max_per_order, sales_start, sales_end, is_active, created_at, updated_at, version`

// TicketTypeRepository はチケット種別リポジトリのPostgreSQL実装
type TicketTypeRepository struct {
	db *sqlx.DB
}

// NewTicketTypeRepository はTicketTypeRepositoryを作成する
func NewTicketTypeRepository(db *sqlx.DB) *TicketTypeRepository {
	return &TicketTypeRepository{db: db}
}

// Create は新しいチケット種別を作成する
func (r *TicketTypeRepository) Create(ctx context.Context, t *ticket.TicketType) error {
	query := `
		INSERT INTO ticket_types (event_id, name, price, quantity_total, quantity_sold, min_per_order, max_per_order, sales_start, sales_end, is_active, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		t.EventID, t.Name, t.Price, t.QuantityTotal, t.QuantitySold,
		t.MinPerOrder, t.MaxPerOrder, t.SalesStart, t.SalesEnd, t.IsActive,
		t.CreatedAt, t.UpdatedAt, t.Version,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("チケット種別作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからチケット種別を取得する
func (r *TicketTypeRepository) GetByID(ctx context.Context, id string) (*ticket.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1`

	var row ticketTypeRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("チケット種別取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByEventID はイベントのチケット種別一覧を作成順で取得する
func (r *TicketTypeRepository) GetByEventID(ctx context.Context, eventID string) ([]*ticket.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE event_id = $1 ORDER BY created_at ASC, id ASC`

	var rows []ticketTypeRow
	err := r.db.SelectContext(ctx, &rows, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("チケット種別一覧取得に失敗しました: %w", err)
	}

	types := make([]*ticket.TicketType, len(rows))
	for i, row := range rows {
		types[i] = row.toEntity()
	}
	return types, nil
}

// Update はチケット種別を更新する（楽観的ロック）
func (r *TicketTypeRepository) Update(ctx context.Context, t *ticket.TicketType) error {
	query := `
		UPDATE ticket_types
		SET name = $1, price = $2, quantity_total = $3, min_per_order = $4, max_per_order = $5,
		    sales_start = $6, sales_end = $7, is_active = $8, updated_at = $9, version = version + 1
		WHERE id = $10 AND version = $11
	`
	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Price, t.QuantityTotal, t.MinPerOrder, t.MaxPerOrder,
		t.SalesStart, t.SalesEnd, t.IsActive, time.Now(), t.ID, t.Version,
	)
	if err != nil {
		return fmt.Errorf("チケット種別更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return ticket.ErrTicketTypeNotFound
	}

	t.Version++
	return nil
}

// Delete はチケット種別を削除する
func (r *TicketTypeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ticket_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("チケット種別削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return ticket.ErrTicketTypeNotFound
	}
	return nil
}

// RecordSale はトランザクション内で販売数を加算する
// 在庫を超える加算はWHERE句で弾き、その場合 ErrInsufficientInventory を返す
func (r *TicketTypeRepository) RecordSale(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("不正なトランザクション型です")
	}

	query := `
		UPDATE ticket_types
		SET quantity_sold = quantity_sold + $2, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND quantity_sold + $2 <= quantity_total
	`
	result, err := sqlxTx.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("販売数の加算に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return ticket.ErrInsufficientInventory
	}
	return nil
}

// ReleaseSale はトランザクション内で販売数を戻す（0未満にはならない）
func (r *TicketTypeRepository) ReleaseSale(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("不正なトランザクション型です")
	}

	query := `
		UPDATE ticket_types
		SET quantity_sold = GREATEST(quantity_sold - $2, 0), updated_at = NOW(), version = version + 1
		WHERE id = $1
	`
	result, err := sqlxTx.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("販売数の解放に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return ticket.ErrTicketTypeNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ ticket.Repository = (*TicketTypeRepository)(nil)
