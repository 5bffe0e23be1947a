package purchase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPurchase() *Purchase {
	return NewPurchase("event-123", "ticket-type-456", "user-789", "idem-abc", 2, 5000)
}

func TestNewPurchase(t *testing.T) {
	p := newTestPurchase()

	assert.Equal(t, "event-123", p.EventID)
	assert.Equal(t, "ticket-type-456", p.TicketTypeID)
	assert.Equal(t, "user-789", p.UserID)
	assert.Equal(t, "idem-abc", p.IdempotencyKey)
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, 5000, p.UnitPrice)
	assert.Equal(t, 10000, p.TotalAmount)
	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.IsPending())
	assert.Empty(t, p.PaymentRef)
	assert.Nil(t, p.CompletedAt)
	assert.WithinDuration(t, time.Now().Add(PendingExpiration), p.ExpiresAt, time.Second)
}

func TestPurchase_IsExpired(t *testing.T) {
	p := newTestPurchase()

	assert.False(t, p.IsExpired(p.ExpiresAt.Add(-time.Minute)))
	assert.True(t, p.IsExpired(p.ExpiresAt.Add(time.Minute)))
}

func TestPurchase_Complete(t *testing.T) {
	t.Run("決済待ちの購入を完了できる", func(t *testing.T) {
		p := newTestPurchase()

		err := p.Complete("pay_xyz")

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, p.Status)
		assert.Equal(t, "pay_xyz", p.PaymentRef)
		require.NotNil(t, p.CompletedAt)
	})

	t.Run("完了済みの購入は再完了できない", func(t *testing.T) {
		p := newTestPurchase()
		p.Status = StatusCompleted

		err := p.Complete("pay_xyz")

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPurchaseNotPending)
	})
}

func TestPurchase_Fail(t *testing.T) {
	t.Run("決済待ちの購入を失敗にできる", func(t *testing.T) {
		p := newTestPurchase()

		err := p.Fail()

		require.NoError(t, err)
		assert.Equal(t, StatusFailed, p.Status)
	})

	t.Run("完了済みの購入は失敗にできない", func(t *testing.T) {
		p := newTestPurchase()
		p.Status = StatusCompleted

		err := p.Fail()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPurchaseNotPending)
	})
}

func TestPurchase_Refund(t *testing.T) {
	t.Run("完了済みの購入を返金できる", func(t *testing.T) {
		p := newTestPurchase()
		p.Status = StatusCompleted

		err := p.Refund()

		require.NoError(t, err)
		assert.Equal(t, StatusRefunded, p.Status)
	})

	t.Run("返金済みの購入は再返金できない", func(t *testing.T) {
		p := newTestPurchase()
		p.Status = StatusRefunded

		err := p.Refund()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPurchaseAlreadyRefunded)
	})

	t.Run("決済待ちの購入は返金できない", func(t *testing.T) {
		p := newTestPurchase()

		err := p.Refund()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPurchaseNotCompleted)
	})
}

func TestPurchase_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(p *Purchase)
		expectedErr error
	}{
		{"有効な購入", func(p *Purchase) {}, nil},
		{"イベントID必須", func(p *Purchase) { p.EventID = "" }, ErrEventIDRequired},
		{"チケット種別ID必須", func(p *Purchase) { p.TicketTypeID = "" }, ErrTicketTypeIDRequired},
		{"ユーザーID必須", func(p *Purchase) { p.UserID = "" }, ErrUserIDRequired},
		{"冪等性キー必須", func(p *Purchase) { p.IdempotencyKey = "" }, ErrIdempotencyKeyRequired},
		{"枚数は1以上", func(p *Purchase) { p.Quantity = 0 }, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPurchase()
			tt.modify(p)

			err := p.Validate()

			if tt.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
		})
	}
}
