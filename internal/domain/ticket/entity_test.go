package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketType(t *testing.T) {
	t.Run("上下限未指定ならデフォルト値が適用される", func(t *testing.T) {
		tt := NewTicketType(NewTicketTypeParams{
			EventID:       "event-123",
			Name:          "一般",
			Price:         5000,
			QuantityTotal: 100,
		})

		assert.Equal(t, "event-123", tt.EventID)
		assert.Equal(t, "一般", tt.Name)
		assert.Equal(t, 5000, tt.Price)
		assert.Equal(t, 100, tt.QuantityTotal)
		assert.Equal(t, 0, tt.QuantitySold)
		assert.Equal(t, DefaultMinPerOrder, tt.MinPerOrder)
		assert.Equal(t, DefaultMaxPerOrder, tt.MaxPerOrder)
		assert.Nil(t, tt.SalesStart)
		assert.Nil(t, tt.SalesEnd)
		assert.True(t, tt.IsActive)
		assert.Equal(t, 0, tt.Version)
	})

	t.Run("指定された上下限がそのまま使われる", func(t *testing.T) {
		minPerOrder := 2
		maxPerOrder := 4

		tt := NewTicketType(NewTicketTypeParams{
			EventID:       "event-123",
			Name:          "VIP",
			Price:         20000,
			QuantityTotal: 20,
			MinPerOrder:   &minPerOrder,
			MaxPerOrder:   &maxPerOrder,
		})

		assert.Equal(t, 2, tt.MinPerOrder)
		assert.Equal(t, 4, tt.MaxPerOrder)
	})
}

func TestTicketType_QuantityAvailable(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		sold     int
		expected int
	}{
		{"在庫あり", 100, 30, 70},
		{"売り切れ", 100, 100, 0},
		{"販売数超過でも負にならない", 100, 105, 0},
		{"未販売", 50, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticketType := &TicketType{QuantityTotal: tt.total, QuantitySold: tt.sold}
			assert.Equal(t, tt.expected, ticketType.QuantityAvailable())
		})
	}
}

func TestTicketType_RecordSale(t *testing.T) {
	t.Run("在庫の範囲内なら販売数が加算される", func(t *testing.T) {
		ticketType := &TicketType{QuantityTotal: 100, QuantitySold: 95}

		err := ticketType.RecordSale(5)

		require.NoError(t, err)
		assert.Equal(t, 100, ticketType.QuantitySold)
	})

	t.Run("在庫を超える販売は拒否される", func(t *testing.T) {
		ticketType := &TicketType{QuantityTotal: 100, QuantitySold: 95}

		err := ticketType.RecordSale(6)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientInventory)
		assert.Equal(t, 95, ticketType.QuantitySold)
	})

	t.Run("0枚以下の販売は拒否される", func(t *testing.T) {
		ticketType := &TicketType{QuantityTotal: 100, QuantitySold: 10}

		err := ticketType.RecordSale(0)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSaleQuantity)
	})
}

func TestTicketType_ReleaseSale(t *testing.T) {
	t.Run("販売数が戻される", func(t *testing.T) {
		ticketType := &TicketType{QuantityTotal: 100, QuantitySold: 10}

		err := ticketType.ReleaseSale(3)

		require.NoError(t, err)
		assert.Equal(t, 7, ticketType.QuantitySold)
	})

	t.Run("販売数は0未満にならない", func(t *testing.T) {
		ticketType := &TicketType{QuantityTotal: 100, QuantitySold: 2}

		err := ticketType.ReleaseSale(5)

		require.NoError(t, err)
		assert.Equal(t, 0, ticketType.QuantitySold)
	})

	t.Run("0枚以下の解放は拒否される", func(t *testing.T) {
		ticketType := &TicketType{QuantityTotal: 100, QuantitySold: 10}

		err := ticketType.ReleaseSale(-1)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSaleQuantity)
	})
}

func TestTicketType_ActivateDeactivate(t *testing.T) {
	ticketType := NewTicketType(NewTicketTypeParams{
		EventID:       "event-123",
		Name:          "一般",
		Price:         5000,
		QuantityTotal: 100,
	})

	ticketType.Deactivate()
	assert.False(t, ticketType.IsActive)

	ticketType.Activate()
	assert.True(t, ticketType.IsActive)
}

func TestTicketType_Validate(t *testing.T) {
	salesStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	salesEnd := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		modify      func(tt *TicketType)
		expectedErr error
	}{
		{"有効なチケット種別", func(tt *TicketType) {}, nil},
		{"イベントID必須", func(tt *TicketType) { tt.EventID = "" }, ErrEventIDRequired},
		{"名前必須", func(tt *TicketType) { tt.Name = "" }, ErrTicketTypeNameRequired},
		{"価格は負にできない", func(tt *TicketType) { tt.Price = -1 }, ErrInvalidPrice},
		{"総数は負にできない", func(tt *TicketType) { tt.QuantityTotal = -1 }, ErrInvalidQuantity},
		{"下限が上限を超えられない", func(tt *TicketType) { tt.MinPerOrder = 5; tt.MaxPerOrder = 3 }, ErrInvalidOrderLimits},
		{"下限は1以上", func(tt *TicketType) { tt.MinPerOrder = 0 }, ErrInvalidOrderLimits},
		{"販売終了が開始より前にできない", func(tt *TicketType) {
			tt.SalesStart = &salesStart
			tt.SalesEnd = &salesEnd
		}, ErrInvalidSalesWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticketType := NewTicketType(NewTicketTypeParams{
				EventID:       "event-123",
				Name:          "一般",
				Price:         5000,
				QuantityTotal: 100,
			})
			tt.modify(ticketType)

			err := ticketType.Validate()

			if tt.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
		})
	}
}
