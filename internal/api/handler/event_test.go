package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mwvndva/bybloshq-ticketing/internal/application"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/availability"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/event"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
)

// MockEventService はEventServiceInterfaceのモック
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) ListPublishedEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) PublishEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) CancelEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventService) GetEventAvailability(ctx context.Context, eventID string) (*application.EventAvailabilityOutput, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.EventAvailabilityOutput), args.Error(1)
}

func TestEventHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にイベントを作成できる", func(t *testing.T) {
		mockService := new(MockEventService)
		now := time.Now()
		expectedEvent := &event.Event{
			ID:          "event-123",
			Name:        "テストイベント",
			Description: "テスト説明",
			Venue:       "テスト会場",
			Status:      event.StatusDraft,
			StartAt:     now,
			EndAt:       now.Add(3 * time.Hour),
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		mockService.On("CreateEvent", mock.Anything, mock.AnythingOfType("application.CreateEventInput")).
			Return(expectedEvent, nil)

		handler := NewEventHandler(mockService)

		reqBody := `{
			"name": "テストイベント",
			"description": "テスト説明",
			"venue": "テスト会場",
			"start_at": "2025-12-31T18:00:00+09:00",
			"end_at": "2025-12-31T21:00:00+09:00"
		}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp EventResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "event-123", resp.ID)
		assert.Equal(t, "テストイベント", resp.Name)
		assert.Equal(t, "draft", resp.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("開始時刻の形式が不正な場合は400", func(t *testing.T) {
		mockService := new(MockEventService)
		handler := NewEventHandler(mockService)

		reqBody := `{"name": "テスト", "start_at": "not-a-time", "end_at": "2025-12-31T21:00:00+09:00"}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
	})
}

func TestEventHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("存在するイベントを取得できる", func(t *testing.T) {
		mockService := new(MockEventService)
		now := time.Now()
		mockService.On("GetEvent", mock.Anything, "event-123").Return(&event.Event{
			ID:      "event-123",
			Name:    "テストイベント",
			Status:  event.StatusPublished,
			StartAt: now,
			EndAt:   now.Add(3 * time.Hour),
		}, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events/event-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("存在しないイベントは404", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("GetEvent", mock.Anything, "missing").Return(nil, event.ErrEventNotFound)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events/missing", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEventHandler_Publish(t *testing.T) {
	e := NewTestEcho()

	t.Run("下書きイベントを公開できる", func(t *testing.T) {
		mockService := new(MockEventService)
		now := time.Now()
		mockService.On("PublishEvent", mock.Anything, "event-123").Return(&event.Event{
			ID:      "event-123",
			Name:    "テストイベント",
			Status:  event.StatusPublished,
			StartAt: now,
			EndAt:   now.Add(3 * time.Hour),
		}, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/events/event-123/publish", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		err := handler.Publish(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "published", resp.Status)
	})

	t.Run("公開済みイベントの再公開は409", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("PublishEvent", mock.Anything, "event-123").Return(nil, event.ErrEventNotDraft)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/events/event-123/publish", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		err := handler.Publish(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestEventHandler_Availability(t *testing.T) {
	e := NewTestEcho()

	t.Run("在庫集計を取得できる", func(t *testing.T) {
		mockService := new(MockEventService)
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		out := &application.EventAvailabilityOutput{
			Event: &event.Event{
				ID:      "event-123",
				Name:    "テストイベント",
				Status:  event.StatusPublished,
				StartAt: now.Add(48 * time.Hour),
				EndAt:   now.Add(72 * time.Hour),
			},
			TicketTypes: []*ticket.TicketType{
				{ID: "tt-1", Name: "一般"},
				{ID: "tt-2", Name: "VIP"},
			},
			Availability: availability.EventAvailability{
				TotalAvailable: 40,
				IsPurchasable:  true,
				PerType: []availability.TypeStatusEntry{
					{TicketTypeID: "tt-1", Status: availability.TypeStatus{Kind: availability.KindAvailable, Remaining: 40}},
					{TicketTypeID: "tt-2", Status: availability.TypeStatus{Kind: availability.KindSoldOut}},
				},
			},
			Badge:       "Upcoming",
			EvaluatedAt: now,
		}
		mockService.On("GetEventAvailability", mock.Anything, "event-123").Return(out, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events/event-123/availability", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-123")

		err := handler.Availability(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp EventAvailabilityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "event-123", resp.EventID)
		assert.Equal(t, 40, resp.TotalAvailable)
		assert.True(t, resp.IsPurchasable)
		assert.Equal(t, "Upcoming", resp.Badge)
		require.Len(t, resp.TicketTypes, 2)
		assert.Equal(t, "available", resp.TicketTypes[0].Status)
		assert.Equal(t, "On Sale", resp.TicketTypes[0].Label)
		assert.Equal(t, 40, resp.TicketTypes[0].Remaining)
		assert.Equal(t, "sold_out", resp.TicketTypes[1].Status)
		assert.Equal(t, "Sold Out", resp.TicketTypes[1].Label)
	})

	t.Run("存在しないイベントは404", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("GetEventAvailability", mock.Anything, "missing").Return(nil, event.ErrEventNotFound)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events/missing/availability", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := handler.Availability(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEventHandler_List(t *testing.T) {
	e := NewTestEcho()

	t.Run("published=trueで公開済みのみ取得する", func(t *testing.T) {
		mockService := new(MockEventService)
		now := time.Now()
		mockService.On("ListPublishedEvents", mock.Anything, 0, 0).Return([]*event.Event{
			{ID: "event-1", Name: "イベント1", Status: event.StatusPublished, StartAt: now, EndAt: now.Add(time.Hour)},
		}, nil)

		handler := NewEventHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/events?published=true", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.List(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertNotCalled(t, "ListEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}
