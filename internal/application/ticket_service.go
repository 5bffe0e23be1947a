package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/availability"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/event"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
	redisinfra "github.com/Mwvndva/bybloshq-ticketing/internal/infrastructure/redis"
	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/clock"
	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/logger"
)

type TicketService struct {
	ticketRepo ticket.Repository
	eventRepo  event.Repository
	cache      redisinfra.AvailabilityCacheInterface
	clock      clock.Clock
}

func NewTicketService(tr ticket.Repository, er event.Repository, cache redisinfra.AvailabilityCacheInterface, clk clock.Clock) *TicketService {
	return &TicketService{ticketRepo: tr, eventRepo: er, cache: cache, clock: clk}
}

type CreateTicketTypeInput struct {
	EventID       string
	Name          string
	Price         int
	QuantityTotal int
	MinPerOrder   *int
	MaxPerOrder   *int
	SalesStart    *time.Time
	SalesEnd      *time.Time
}

func (s *TicketService) CreateTicketType(ctx context.Context, input CreateTicketTypeInput) (*ticket.TicketType, error) {
	if _, err := s.eventRepo.GetByID(ctx, input.EventID); err != nil {
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	t := ticket.NewTicketType(ticket.NewTicketTypeParams{
		EventID:       input.EventID,
		Name:          input.Name,
		Price:         input.Price,
		QuantityTotal: input.QuantityTotal,
		MinPerOrder:   input.MinPerOrder,
		MaxPerOrder:   input.MaxPerOrder,
		SalesStart:    input.SalesStart,
		SalesEnd:      input.SalesEnd,
	})
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, input.EventID)
	return t, nil
}

func (s *TicketService) GetTicketType(ctx context.Context, id string) (*ticket.TicketType, error) {
	return s.ticketRepo.GetByID(ctx, id)
}

func (s *TicketService) GetTicketTypesByEvent(ctx context.Context, eventID string) ([]*ticket.TicketType, error) {
	return s.ticketRepo.GetByEventID(ctx, eventID)
}

// GetTicketTypeStatus はチケット種別1件の販売状態を現在時刻で判定する
func (s *TicketService) GetTicketTypeStatus(ctx context.Context, id string) (*ticket.TicketType, availability.TypeStatus, error) {
	t, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, availability.TypeStatus{}, err
	}
	return t, availability.EvaluateTicketType(t, s.clock.Now()), nil
}

type UpdateTicketTypeInput struct {
	ID            string
	Name          string
	Price         int
	QuantityTotal int
	MinPerOrder   *int
	MaxPerOrder   *int
	SalesStart    *time.Time
	SalesEnd      *time.Time
}

func (s *TicketService) UpdateTicketType(ctx context.Context, input UpdateTicketTypeInput) (*ticket.TicketType, error) {
	t, err := s.ticketRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	t.Name = input.Name
	t.Price = input.Price
	t.QuantityTotal = input.QuantityTotal
	if input.MinPerOrder != nil {
		t.MinPerOrder = *input.MinPerOrder
	}
	if input.MaxPerOrder != nil {
		t.MaxPerOrder = *input.MaxPerOrder
	}
	t.SalesStart = input.SalesStart
	t.SalesEnd = input.SalesEnd
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, t.EventID)
	return t, nil
}

// SetTicketTypeActive は販売中フラグを管理者操作で切り替える
func (s *TicketService) SetTicketTypeActive(ctx context.Context, id string, active bool) (*ticket.TicketType, error) {
	t, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		t.Activate()
	} else {
		t.Deactivate()
	}
	if err := s.ticketRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, t.EventID)
	return t, nil
}

func (s *TicketService) DeleteTicketType(ctx context.Context, id string) error {
	t, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ticketRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, t.EventID)
	return nil
}

func (s *TicketService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, eventID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}
