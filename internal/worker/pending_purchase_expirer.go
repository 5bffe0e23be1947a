package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/logger"
)

// PurchaseExpirer は期限切れの決済待ち購入を処理するインターフェース
type PurchaseExpirer interface {
	ExpirePendingPurchases(ctx context.Context) (int, error)
}

// PendingPurchaseExpirer は決済待ちのまま放置された購入を失敗として
// 記録し、在庫を解放するワーカー
type PendingPurchaseExpirer struct {
	purchaseService PurchaseExpirer
	interval        time.Duration
	stopCh          chan struct{}
	doneCh          chan struct{}
}

// NewPendingPurchaseExpirer は新しいワーカーを作成
func NewPendingPurchaseExpirer(ps PurchaseExpirer, interval time.Duration) *PendingPurchaseExpirer {
	return &PendingPurchaseExpirer{
		purchaseService: ps,
		interval:        interval,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

// Start はワーカーを開始
func (w *PendingPurchaseExpirer) Start(ctx context.Context) {
	logger.Info("期限切れ購入ワーカー開始", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れ購入ワーカー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("期限切れ購入ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.expire(ctx)
		}
	}
}

// Stop はワーカーを停止
func (w *PendingPurchaseExpirer) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// expire は期限切れ購入を処理する
func (w *PendingPurchaseExpirer) expire(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れ購入の処理開始")

	count, err := w.purchaseService.ExpirePendingPurchases(ctx)
	if err != nil {
		log.Error("期限切れ購入の処理失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れ購入を失敗として記録", zap.Int("count", count))
	} else {
		log.Debug("期限切れ購入なし")
	}
}
