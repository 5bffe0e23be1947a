package ticket

import (
	"context"

	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/transaction"
)

// Repository はチケット種別リポジトリのインターフェース
type Repository interface {
	// Create は新しいチケット種別を作成する
	Create(ctx context.Context, t *TicketType) error

	// GetByID はIDからチケット種別を取得する
	GetByID(ctx context.Context, id string) (*TicketType, error)

	// GetByEventID はイベントのチケット種別一覧を作成順で取得する
	// 表示順は作成順であり、価格等でソートしない
	GetByEventID(ctx context.Context, eventID string) ([]*TicketType, error)

	// Update はチケット種別を更新する（楽観的ロック）
	Update(ctx context.Context, t *TicketType) error

	// Delete はチケット種別を削除する
	Delete(ctx context.Context, id string) error

	// RecordSale はトランザクション内で販売数を加算する
	// quantity_sold + quantity <= quantity_total をDB側で保証し、
	// 超過する場合は ErrInsufficientInventory を返す
	RecordSale(ctx context.Context, tx transaction.Tx, id string, quantity int) error

	// ReleaseSale はトランザクション内で販売数を戻す（0未満にはならない）
	ReleaseSale(ctx context.Context, tx transaction.Tx, id string, quantity int) error
}
