package application

import (
	"context"
	"errors"
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

const availabilityCacheTTL = 30 * time.Second

type EventService struct {
	eventRepo  event.Repository
	ticketRepo ticket.Repository
	cache      redisinfra.AvailabilityCacheInterface
	clock      clock.Clock
}

func NewEventService(er event.Repository, tr ticket.Repository, cache redisinfra.AvailabilityCacheInterface, clk clock.Clock) *EventService {
	return &EventService{eventRepo: er, ticketRepo: tr, cache: cache, clock: clk}
}

type CreateEventInput struct {
	Name        string
	Description string
	Venue       string
	StartAt     time.Time
	EndAt       time.Time
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewEvent(input.Name, input.Description, input.Venue, input.StartAt, input.EndAt)
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return e, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	return s.eventRepo.List(ctx, clampLimit(limit), clampOffset(offset))
}

func (s *EventService) ListPublishedEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	return s.eventRepo.ListPublished(ctx, clampLimit(limit), clampOffset(offset))
}

type UpdateEventInput struct {
	ID          string
	Name        string
	Description string
	Venue       string
	StartAt     time.Time
	EndAt       time.Time
}

func (s *EventService) UpdateEvent(ctx context.Context, input UpdateEventInput) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	e.Name = input.Name
	e.Description = input.Description
	e.Venue = input.Venue
	e.StartAt = input.StartAt
	e.EndAt = input.EndAt
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// PublishEvent はイベントを公開する
func (s *EventService) PublishEvent(ctx context.Context, id string) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.Publish(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// CancelEvent はイベントを中止する
func (s *EventService) CancelEvent(ctx context.Context, id string) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.Cancel(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, id)
	return e, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, id)
	return nil
}

// EventAvailabilityOutput は在庫集計の取得結果
type EventAvailabilityOutput struct {
	Event        *event.Event
	TicketTypes  []*ticket.TicketType
	Availability availability.EventAvailability
	Badge        string
	EvaluatedAt  time.Time
}

// GetEventAvailability はイベントと全チケット種別を読み込み、
// 現在時刻を注入して在庫集計を算出する
// チケット種別が1件も存在しない場合のみ、イベント側のレガシー集計カラムに
// フォールバックする（チケット種別の合計が常に優先）
func (s *EventService) GetEventAvailability(ctx context.Context, eventID string) (*EventAvailabilityOutput, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	types, err := s.ticketRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("チケット種別取得に失敗: %w", err)
	}

	now := s.clock.Now()
	avail := availability.EvaluateEvent(e, types, now)

	if len(types) == 0 && e.CapacityTotal > 0 {
		// レガシーイベント: 種別の行が無いのでイベント集計値から算出する
		logger.Warn("チケット種別が未登録のためイベント集計値から残数を算出",
			zap.String("event_id", eventID),
			zap.Int("capacity_total", e.CapacityTotal),
			zap.Int("capacity_sold", e.CapacitySold),
		)
		total := e.CapacityTotal - e.CapacitySold
		if total < 0 {
			total = 0
		}
		avail.TotalAvailable = total
		avail.IsPurchasable = e.IsPublished() && total > 0 && now.Before(e.EndAt)
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetTotalAvailable(ctx, eventID, avail.TotalAvailable, availabilityCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}

	return &EventAvailabilityOutput{
		Event:        e,
		TicketTypes:  types,
		Availability: avail,
		Badge:        availability.EventBadge(e, avail.TotalAvailable, now),
		EvaluatedAt:  now,
	}, nil
}

// CountAvailable はイベントの残数合計を返す（一覧表示向け、キャッシュ優先）
func (s *EventService) CountAvailable(ctx context.Context, eventID string) (int, error) {
	if s.cache != nil {
		total, err := s.cache.GetTotalAvailable(ctx, eventID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("event_id", eventID), zap.Int("total", total))
			return total, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	out, err := s.GetEventAvailability(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return out.Availability.TotalAvailable, nil
}

func (s *EventService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, eventID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
