package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/availability"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/event"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/clock"
)

type ticketTestDeps struct {
	ticketRepo *MockTicketTypeRepository
	eventRepo  *MockEventRepository
	cache      *MockAvailabilityCache
	service    *TicketService
}

func newTicketTestDeps() *ticketTestDeps {
	ticketRepo := new(MockTicketTypeRepository)
	eventRepo := new(MockEventRepository)
	cache := new(MockAvailabilityCache)

	service := NewTicketService(ticketRepo, eventRepo, cache, clock.NewFixed(testNow))

	return &ticketTestDeps{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		cache:      cache,
		service:    service,
	}
}

func TestTicketService_CreateTicketType(t *testing.T) {
	t.Run("上下限未指定ならデフォルト値で作成される", func(t *testing.T) {
		deps := newTicketTestDeps()
		ctx := context.Background()

		deps.eventRepo.On("GetByID", ctx, "event-1").Return(publishedEvent(), nil)
		deps.ticketRepo.On("Create", ctx, mock.AnythingOfType("*ticket.TicketType")).Return(nil)
		deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

		created, err := deps.service.CreateTicketType(ctx, CreateTicketTypeInput{
			EventID:       "event-1",
			Name:          "一般",
			Price:         5000,
			QuantityTotal: 100,
		})

		require.NoError(t, err)
		assert.Equal(t, ticket.DefaultMinPerOrder, created.MinPerOrder)
		assert.Equal(t, ticket.DefaultMaxPerOrder, created.MaxPerOrder)
		assert.True(t, created.IsActive)
		deps.cache.AssertCalled(t, "Invalidate", ctx, "event-1")
	})

	t.Run("存在しないイベントには作成できない", func(t *testing.T) {
		deps := newTicketTestDeps()
		ctx := context.Background()

		deps.eventRepo.On("GetByID", ctx, "missing").Return(nil, event.ErrEventNotFound)

		_, err := deps.service.CreateTicketType(ctx, CreateTicketTypeInput{
			EventID:       "missing",
			Name:          "一般",
			Price:         5000,
			QuantityTotal: 100,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, event.ErrEventNotFound)
		deps.ticketRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("上下限が逆転していると作成できない", func(t *testing.T) {
		deps := newTicketTestDeps()
		ctx := context.Background()

		minPerOrder := 5
		maxPerOrder := 2
		deps.eventRepo.On("GetByID", ctx, "event-1").Return(publishedEvent(), nil)

		_, err := deps.service.CreateTicketType(ctx, CreateTicketTypeInput{
			EventID:       "event-1",
			Name:          "一般",
			Price:         5000,
			QuantityTotal: 100,
			MinPerOrder:   &minPerOrder,
			MaxPerOrder:   &maxPerOrder,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ticket.ErrInvalidOrderLimits)
	})
}

func TestTicketService_GetTicketTypeStatus(t *testing.T) {
	deps := newTicketTestDeps()
	ctx := context.Background()

	deps.ticketRepo.On("GetByID", ctx, "ticket-type-1").Return(onSaleTicketType(), nil)

	ticketType, status, err := deps.service.GetTicketTypeStatus(ctx, "ticket-type-1")

	require.NoError(t, err)
	assert.Equal(t, "ticket-type-1", ticketType.ID)
	assert.Equal(t, availability.KindAvailable, status.Kind)
	assert.Equal(t, 40, status.Remaining)
}

func TestTicketService_SetTicketTypeActive(t *testing.T) {
	deps := newTicketTestDeps()
	ctx := context.Background()

	ticketType := onSaleTicketType()
	deps.ticketRepo.On("GetByID", ctx, "ticket-type-1").Return(ticketType, nil)
	deps.ticketRepo.On("Update", ctx, ticketType).Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	updated, err := deps.service.SetTicketTypeActive(ctx, "ticket-type-1", false)

	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	// 無効化された種別は即座に販売不可として評価される
	status := availability.EvaluateTicketType(updated, testNow)
	assert.Equal(t, availability.KindInactive, status.Kind)
}

func TestTicketService_UpdateTicketType(t *testing.T) {
	deps := newTicketTestDeps()
	ctx := context.Background()

	ticketType := onSaleTicketType()
	deps.ticketRepo.On("GetByID", ctx, "ticket-type-1").Return(ticketType, nil)
	deps.ticketRepo.On("Update", ctx, ticketType).Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	maxPerOrder := 4
	salesEnd := testNow.Add(12 * time.Hour)
	updated, err := deps.service.UpdateTicketType(ctx, UpdateTicketTypeInput{
		ID:            "ticket-type-1",
		Name:          "早割",
		Price:         4000,
		QuantityTotal: 60,
		MaxPerOrder:   &maxPerOrder,
		SalesEnd:      &salesEnd,
	})

	require.NoError(t, err)
	assert.Equal(t, "早割", updated.Name)
	assert.Equal(t, 4000, updated.Price)
	assert.Equal(t, 4, updated.MaxPerOrder)
	require.NotNil(t, updated.SalesEnd)
	assert.Equal(t, salesEnd, *updated.SalesEnd)
}

func TestTicketService_DeleteTicketType(t *testing.T) {
	deps := newTicketTestDeps()
	ctx := context.Background()

	deps.ticketRepo.On("GetByID", ctx, "ticket-type-1").Return(onSaleTicketType(), nil)
	deps.ticketRepo.On("Delete", ctx, "ticket-type-1").Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	err := deps.service.DeleteTicketType(ctx, "ticket-type-1")

	require.NoError(t, err)
	deps.cache.AssertCalled(t, "Invalidate", ctx, "event-1")
}
