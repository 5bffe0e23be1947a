package purchase

import (
	"context"

	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/transaction"
)

// Repository は購入リポジトリのインターフェース
type Repository interface {
	// Create はトランザクション内で新しい購入を作成する
	Create(ctx context.Context, tx transaction.Tx, p *Purchase) error

	// GetByID はIDから購入を取得する
	GetByID(ctx context.Context, id string) (*Purchase, error)

	// GetByIdempotencyKey は冪等性キーから購入を取得する
	GetByIdempotencyKey(ctx context.Context, key string) (*Purchase, error)

	// GetByUserID はユーザーの購入一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Purchase, error)

	// Update はトランザクション内で購入を更新する
	Update(ctx context.Context, tx transaction.Tx, p *Purchase) error

	// GetExpiredPending は有効期限切れの決済待ち購入を取得する
	GetExpiredPending(ctx context.Context) ([]*Purchase, error)
}
