package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/availability"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/event"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/purchase"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/transaction"
	"github.com/Mwvndva/bybloshq-ticketing/internal/infrastructure/gateway"
	redisinfra "github.com/Mwvndva/bybloshq-ticketing/internal/infrastructure/redis"
	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/clock"
	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/logger"
	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/metrics"
)

// ErrEventNotPurchasable はイベント自体が購入不可の場合のエラー
var ErrEventNotPurchasable = errors.New("このイベントは現在購入できません")

// PaymentGateway は外部決済APIの抽象
type PaymentGateway interface {
	Charge(ctx context.Context, input gateway.ChargeInput) (*gateway.ChargeResult, error)
	Refund(ctx context.Context, input gateway.RefundInput) error
}

const (
	purchaseLockTTL        = 10 * time.Second
	purchaseLockRetries    = 3
	purchaseLockRetryDelay = 100 * time.Millisecond
)

type PurchaseService struct {
	txManager    transaction.Manager
	purchaseRepo purchase.Repository
	ticketRepo   ticket.Repository
	eventRepo    event.Repository
	lockManager  redisinfra.Locker
	gateway      PaymentGateway
	cache        redisinfra.AvailabilityCacheInterface
	clock        clock.Clock
	metrics      *metrics.Metrics
}

func NewPurchaseService(
	txManager transaction.Manager,
	pr purchase.Repository,
	tr ticket.Repository,
	er event.Repository,
	lm redisinfra.Locker,
	gw PaymentGateway,
	cache redisinfra.AvailabilityCacheInterface,
	clk clock.Clock,
	m *metrics.Metrics,
) *PurchaseService {
	return &PurchaseService{
		txManager:    txManager,
		purchaseRepo: pr,
		ticketRepo:   tr,
		eventRepo:    er,
		lockManager:  lm,
		gateway:      gw,
		cache:        cache,
		clock:        clk,
		metrics:      m,
	}
}

type CreatePurchaseInput struct {
	TicketTypeID   string
	UserID         string
	Quantity       int
	IdempotencyKey string
}

// CreatePurchase は購入フローの本体
// 事前チェック（評価関数）を通過した場合のみ、チケット種別の分散ロック下で
// 決済待ち購入を作成し、在庫を加算した上で外部決済を呼び出す。
// 決済失敗時は在庫を戻して失敗を記録する。外部決済の結果が常に正となる。
func (s *PurchaseService) CreatePurchase(ctx context.Context, input CreatePurchaseInput) (*purchase.Purchase, error) {
	// 冪等性チェック: 同一キーの購入が既にあればそれを返す
	existing, err := s.purchaseRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, purchase.ErrPurchaseNotFound) {
		return nil, fmt.Errorf("冪等性チェックに失敗: %w", err)
	}

	// チケット種別単位の分散ロック
	if s.lockManager != nil {
		acquireStart := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(ctx,
			"ticket_type:"+input.TicketTypeID,
			purchaseLockTTL, purchaseLockRetries, purchaseLockRetryDelay)
		s.observeLockDuration("acquire", err, time.Since(acquireStart))
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countPurchase("conflict")
				return nil, fmt.Errorf("このチケットは他のユーザーが処理中です")
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer func() {
			releaseStart := time.Now()
			releaseErr := lock.Release(ctx)
			s.observeLockDuration("release", releaseErr, time.Since(releaseStart))
		}()
	}

	t, err := s.ticketRepo.GetByID(ctx, input.TicketTypeID)
	if err != nil {
		return nil, err
	}
	e, err := s.eventRepo.GetByID(ctx, t.EventID)
	if err != nil {
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}

	// 事前チェック（ここでは在庫を変更しない）
	now := s.clock.Now()
	if err := availability.ValidatePurchaseRequest(t, input.Quantity, now); err != nil {
		var rej *availability.Rejection
		if errors.As(err, &rej) {
			s.countRejection(string(rej.Reason))
		}
		s.countPurchase("rejected")
		return nil, err
	}
	if !e.IsPublished() || !now.Before(e.EndAt) {
		s.countPurchase("rejected")
		return nil, ErrEventNotPurchasable
	}

	p := purchase.NewPurchase(e.ID, t.ID, input.UserID, input.IdempotencyKey, input.Quantity, t.Price)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// 決済待ち購入の作成と在庫加算を同一トランザクションで行う
	if err := s.withTx(ctx, func(tx transaction.Tx) error {
		if err := s.purchaseRepo.Create(ctx, tx, p); err != nil {
			return err
		}
		return s.ticketRepo.RecordSale(ctx, tx, t.ID, input.Quantity)
	}); err != nil {
		if errors.Is(err, ticket.ErrInsufficientInventory) {
			s.countPurchase("rejected")
		} else {
			s.countPurchase("error")
		}
		return nil, err
	}
	s.setPendingDelta(1)
	s.invalidateCache(ctx, e.ID)

	// 外部決済の実行（この結果が最終的な購入可否を決める）
	result, chargeErr := s.gateway.Charge(ctx, gateway.ChargeInput{
		PurchaseID:   p.ID,
		TicketTypeID: t.ID,
		UserID:       input.UserID,
		Quantity:     input.Quantity,
		Amount:       p.TotalAmount,
	})
	if chargeErr != nil {
		logger.Warn("決済に失敗したため在庫を解放",
			zap.String("purchase_id", p.ID),
			zap.Error(chargeErr),
		)
		if failErr := s.failPurchase(ctx, p); failErr != nil {
			logger.Error("決済失敗後の在庫解放に失敗", zap.String("purchase_id", p.ID), zap.Error(failErr))
		}
		s.invalidateCache(ctx, e.ID)
		s.countPurchase("declined")
		return nil, chargeErr
	}

	if err := p.Complete(result.PaymentRef); err != nil {
		return nil, err
	}
	if err := s.withTx(ctx, func(tx transaction.Tx) error {
		return s.purchaseRepo.Update(ctx, tx, p)
	}); err != nil {
		return nil, err
	}
	s.setPendingDelta(-1)
	s.countPurchase("completed")
	return p, nil
}

func (s *PurchaseService) GetPurchase(ctx context.Context, id string) (*purchase.Purchase, error) {
	return s.purchaseRepo.GetByID(ctx, id)
}

func (s *PurchaseService) GetUserPurchases(ctx context.Context, userID string, limit, offset int) ([]*purchase.Purchase, error) {
	return s.purchaseRepo.GetByUserID(ctx, userID, clampLimit(limit), clampOffset(offset))
}

// RefundPurchase は返金を承認し、外部決済へ返金指示を出して在庫を戻す
func (s *PurchaseService) RefundPurchase(ctx context.Context, id string) (*purchase.Purchase, error) {
	p, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Refund(); err != nil {
		return nil, err
	}

	if err := s.gateway.Refund(ctx, gateway.RefundInput{
		PaymentRef: p.PaymentRef,
		Amount:     p.TotalAmount,
	}); err != nil {
		return nil, fmt.Errorf("返金処理に失敗: %w", err)
	}

	if err := s.withTx(ctx, func(tx transaction.Tx) error {
		if err := s.purchaseRepo.Update(ctx, tx, p); err != nil {
			return err
		}
		return s.ticketRepo.ReleaseSale(ctx, tx, p.TicketTypeID, p.Quantity)
	}); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, p.EventID)
	return p, nil
}

// ExpirePendingPurchases は有効期限切れの決済待ち購入を失敗として記録し、
// 在庫を解放する。処理した件数を返す。
func (s *PurchaseService) ExpirePendingPurchases(ctx context.Context) (int, error) {
	expired, err := s.purchaseRepo.GetExpiredPending(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range expired {
		if err := s.failPurchase(ctx, p); err != nil {
			logger.Error("期限切れ購入の処理に失敗", zap.String("purchase_id", p.ID), zap.Error(err))
			continue
		}
		s.invalidateCache(ctx, p.EventID)
		count++
	}
	return count, nil
}

// failPurchase は購入を失敗として記録し、在庫を戻す
func (s *PurchaseService) failPurchase(ctx context.Context, p *purchase.Purchase) error {
	if err := p.Fail(); err != nil {
		return err
	}
	if err := s.withTx(ctx, func(tx transaction.Tx) error {
		if err := s.purchaseRepo.Update(ctx, tx, p); err != nil {
			return err
		}
		return s.ticketRepo.ReleaseSale(ctx, tx, p.TicketTypeID, p.Quantity)
	}); err != nil {
		return err
	}
	s.setPendingDelta(-1)
	return nil
}

// withTx はトランザクション境界のboilerplateをまとめる
func (s *PurchaseService) withTx(ctx context.Context, fn func(tx transaction.Tx) error) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

func (s *PurchaseService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, eventID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}

func (s *PurchaseService) countPurchase(status string) {
	if s.metrics != nil {
		s.metrics.PurchasesTotal.WithLabelValues(status).Inc()
	}
}

func (s *PurchaseService) observeLockDuration(operation string, err error, d time.Duration) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	s.metrics.DistributedLockDuration.WithLabelValues(operation, status).Observe(d.Seconds())
}

func (s *PurchaseService) countRejection(reason string) {
	if s.metrics != nil {
		s.metrics.PurchaseRejectionsTotal.WithLabelValues(reason).Inc()
	}
}

func (s *PurchaseService) setPendingDelta(delta float64) {
	if s.metrics != nil {
		s.metrics.PendingPurchases.Add(delta)
	}
}
