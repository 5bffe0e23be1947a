package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Mwvndva/bybloshq-ticketing/internal/application"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	Name        string `json:"name" validate:"required" example:"Summer Music Festival"`
	Description string `json:"description" example:"Annual open-air festival"`
	Venue       string `json:"venue" example:"Uhuru Gardens"`
	StartAt     string `json:"start_at" validate:"required" example:"2026-12-31T18:00:00+03:00"`
	EndAt       string `json:"end_at" validate:"required" example:"2026-12-31T23:00:00+03:00"`
}

type EventResponse struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name        string `json:"name" example:"Summer Music Festival"`
	Description string `json:"description" example:"Annual open-air festival"`
	Venue       string `json:"venue" example:"Uhuru Gardens"`
	Status      string `json:"status" example:"published"`
	StartAt     string `json:"start_at" example:"2026-12-31T18:00:00+03:00"`
	EndAt       string `json:"end_at" example:"2026-12-31T23:00:00+03:00"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Venue:       e.Venue,
		Status:      string(e.Status),
		StartAt:     e.StartAt.Format(time.RFC3339),
		EndAt:       e.EndAt.Format(time.RFC3339),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary イベントを作成
// @Description 新しいイベントを下書き状態で作成します
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "開始時刻の形式が不正です"})
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "終了時刻の形式が不正です"})
	}

	input := application.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		StartAt:     startAt,
		EndAt:       endAt,
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), input)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントを取得します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	e, err := h.eventService.GetEvent(c.Request().Context(), id)
	if err != nil {
		if err == event.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "イベントが見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary イベント一覧を取得
// @Description イベントの一覧を取得します（published=true で公開済みのみ）
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Param published query bool false "公開済みのみ"
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	var (
		events []*event.Event
		err    error
	)
	if c.QueryParam("published") == "true" {
		events, err = h.eventService.ListPublishedEvents(c.Request().Context(), limit, offset)
	} else {
		events, err = h.eventService.ListEvents(c.Request().Context(), limit, offset)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, responses)
}

// Update godoc
// @Summary イベントを更新
// @Description 指定IDのイベントを更新します
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body CreateEventRequest true "イベント情報"
// @Success 200 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "開始時刻の形式が不正です"})
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "終了時刻の形式が不正です"})
	}

	input := application.UpdateEventInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		StartAt:     startAt,
		EndAt:       endAt,
	}

	e, err := h.eventService.UpdateEvent(c.Request().Context(), input)
	if err != nil {
		if err == event.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "イベントが見つかりません"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Publish godoc
// @Summary イベントを公開
// @Description 下書きイベントを公開します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /events/{id}/publish [post]
func (h *EventHandler) Publish(c echo.Context) error {
	id := c.Param("id")
	e, err := h.eventService.PublishEvent(c.Request().Context(), id)
	if err != nil {
		switch err {
		case event.ErrEventNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "イベントが見つかりません"})
		case event.ErrEventNotDraft:
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Cancel godoc
// @Summary イベントを中止
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /events/{id}/cancel [post]
func (h *EventHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	e, err := h.eventService.CancelEvent(c.Request().Context(), id)
	if err != nil {
		switch err {
		case event.ErrEventNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": "イベントが見つかりません"})
		case event.ErrEventAlreadyCancelled, event.ErrEventAlreadyCompleted:
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary イベントを削除
// @Tags events
// @Param id path string true "イベントID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	err := h.eventService.DeleteEvent(c.Request().Context(), id)
	if err != nil {
		if err == event.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "イベントが見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

// TicketTypeStatusResponse は種別ごとの判定結果
type TicketTypeStatusResponse struct {
	TicketTypeID string `json:"ticket_type_id"`
	Status       string `json:"status" example:"available"`
	Label        string `json:"label" example:"On Sale"`
	Remaining    int    `json:"remaining,omitempty"`
}

// EventAvailabilityResponse はイベントの在庫集計レスポンス
type EventAvailabilityResponse struct {
	EventID        string                     `json:"event_id"`
	TotalAvailable int                        `json:"total_available"`
	IsPurchasable  bool                       `json:"is_purchasable"`
	Badge          string                     `json:"badge" example:"Upcoming"`
	TicketTypes    []TicketTypeStatusResponse `json:"ticket_types"`
	EvaluatedAt    string                     `json:"evaluated_at"`
}

// Availability godoc
// @Summary イベントの在庫集計を取得
// @Description チケット種別ごとの販売状態と残数合計を返します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventAvailabilityResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id}/availability [get]
func (h *EventHandler) Availability(c echo.Context) error {
	id := c.Param("id")
	out, err := h.eventService.GetEventAvailability(c.Request().Context(), id)
	if err != nil {
		if err == event.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "イベントが見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	perType := make([]TicketTypeStatusResponse, len(out.Availability.PerType))
	for i, entry := range out.Availability.PerType {
		perType[i] = TicketTypeStatusResponse{
			TicketTypeID: entry.TicketTypeID,
			Status:       string(entry.Status.Kind),
			Label:        entry.Status.Kind.Label(),
			Remaining:    entry.Status.Remaining,
		}
	}

	return c.JSON(http.StatusOK, EventAvailabilityResponse{
		EventID:        out.Event.ID,
		TotalAvailable: out.Availability.TotalAvailable,
		IsPurchasable:  out.Availability.IsPurchasable,
		Badge:          out.Badge,
		TicketTypes:    perType,
		EvaluatedAt:    out.EvaluatedAt.Format(time.RFC3339),
	})
}
