package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Mwvndva/bybloshq-ticketing/internal/application"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/event"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
)

type TicketHandler struct {
	ticketService TicketServiceInterface
}

func NewTicketHandler(ticketService TicketServiceInterface) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

type CreateTicketTypeRequest struct {
	Name          string  `json:"name" validate:"required" example:"VIP"`
	Price         int     `json:"price" validate:"gte=0" example:"5000"`
	QuantityTotal int     `json:"quantity_total" validate:"gte=0" example:"100"`
	MinPerOrder   *int    `json:"min_per_order,omitempty" example:"1"`
	MaxPerOrder   *int    `json:"max_per_order,omitempty" example:"10"`
	SalesStart    *string `json:"sales_start,omitempty" example:"2026-11-01T00:00:00+03:00"`
	SalesEnd      *string `json:"sales_end,omitempty" example:"2026-12-31T18:00:00+03:00"`
}

type TicketTypeResponse struct {
	ID                string  `json:"id"`
	EventID           string  `json:"event_id"`
	Name              string  `json:"name" example:"VIP"`
	Price             int     `json:"price" example:"5000"`
	QuantityTotal     int     `json:"quantity_total" example:"100"`
	QuantitySold      int     `json:"quantity_sold" example:"40"`
	QuantityAvailable int     `json:"quantity_available" example:"60"`
	MinPerOrder       int     `json:"min_per_order" example:"1"`
	MaxPerOrder       int     `json:"max_per_order" example:"10"`
	SalesStart        *string `json:"sales_start,omitempty"`
	SalesEnd          *string `json:"sales_end,omitempty"`
	IsActive          bool    `json:"is_active"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func toTicketTypeResponse(t *ticket.TicketType) *TicketTypeResponse {
	resp := &TicketTypeResponse{
		ID:                t.ID,
		EventID:           t.EventID,
		Name:              t.Name,
		Price:             t.Price,
		QuantityTotal:     t.QuantityTotal,
		QuantitySold:      t.QuantitySold,
		QuantityAvailable: t.QuantityAvailable(),
		MinPerOrder:       t.MinPerOrder,
		MaxPerOrder:       t.MaxPerOrder,
		IsActive:          t.IsActive,
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         t.UpdatedAt.Format(time.RFC3339),
	}
	if t.SalesStart != nil {
		s := t.SalesStart.Format(time.RFC3339)
		resp.SalesStart = &s
	}
	if t.SalesEnd != nil {
		s := t.SalesEnd.Format(time.RFC3339)
		resp.SalesEnd = &s
	}
	return resp
}

// parseOptionalTime はRFC3339の省略可能なタイムスタンプをパースする
func parseOptionalTime(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create godoc
// @Summary チケット種別を作成
// @Description イベントに新しいチケット種別を追加します
// @Tags ticket-types
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body CreateTicketTypeRequest true "チケット種別情報"
// @Success 201 {object} TicketTypeResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id}/ticket-types [post]
func (h *TicketHandler) Create(c echo.Context) error {
	eventID := c.Param("id")
	var req CreateTicketTypeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	salesStart, err := parseOptionalTime(req.SalesStart)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "販売開始の形式が不正です"})
	}
	salesEnd, err := parseOptionalTime(req.SalesEnd)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "販売終了の形式が不正です"})
	}

	t, err := h.ticketService.CreateTicketType(c.Request().Context(), application.CreateTicketTypeInput{
		EventID:       eventID,
		Name:          req.Name,
		Price:         req.Price,
		QuantityTotal: req.QuantityTotal,
		MinPerOrder:   req.MinPerOrder,
		MaxPerOrder:   req.MaxPerOrder,
		SalesStart:    salesStart,
		SalesEnd:      salesEnd,
	})
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "イベントが見つかりません"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, toTicketTypeResponse(t))
}

// ListByEvent godoc
// @Summary イベントのチケット種別一覧を取得
// @Tags ticket-types
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {array} TicketTypeResponse
// @Router /events/{id}/ticket-types [get]
func (h *TicketHandler) ListByEvent(c echo.Context) error {
	eventID := c.Param("id")
	types, err := h.ticketService.GetTicketTypesByEvent(c.Request().Context(), eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	responses := make([]*TicketTypeResponse, len(types))
	for i, t := range types {
		responses[i] = toTicketTypeResponse(t)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetByID godoc
// @Summary チケット種別を取得
// @Tags ticket-types
// @Produce json
// @Param id path string true "チケット種別ID"
// @Success 200 {object} TicketTypeResponse
// @Failure 404 {object} map[string]string
// @Router /ticket-types/{id} [get]
func (h *TicketHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	t, err := h.ticketService.GetTicketType(c.Request().Context(), id)
	if err != nil {
		if err == ticket.ErrTicketTypeNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "チケット種別が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toTicketTypeResponse(t))
}

// TicketTypeWithStatusResponse は種別情報と現在の販売状態
type TicketTypeWithStatusResponse struct {
	TicketType *TicketTypeResponse `json:"ticket_type"`
	Status     string              `json:"status" example:"available"`
	Label      string              `json:"label" example:"On Sale"`
	Remaining  int                 `json:"remaining,omitempty"`
}

// Status godoc
// @Summary チケット種別の販売状態を取得
// @Description 現在時刻での販売状態（販売中・開始前・終了・売り切れ・無効）を返します
// @Tags ticket-types
// @Produce json
// @Param id path string true "チケット種別ID"
// @Success 200 {object} TicketTypeWithStatusResponse
// @Failure 404 {object} map[string]string
// @Router /ticket-types/{id}/status [get]
func (h *TicketHandler) Status(c echo.Context) error {
	id := c.Param("id")
	t, st, err := h.ticketService.GetTicketTypeStatus(c.Request().Context(), id)
	if err != nil {
		if err == ticket.ErrTicketTypeNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "チケット種別が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, TicketTypeWithStatusResponse{
		TicketType: toTicketTypeResponse(t),
		Status:     string(st.Kind),
		Label:      st.Kind.Label(),
		Remaining:  st.Remaining,
	})
}

// Update godoc
// @Summary チケット種別を更新
// @Tags ticket-types
// @Accept json
// @Produce json
// @Param id path string true "チケット種別ID"
// @Param request body CreateTicketTypeRequest true "チケット種別情報"
// @Success 200 {object} TicketTypeResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /ticket-types/{id} [put]
func (h *TicketHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req CreateTicketTypeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	salesStart, err := parseOptionalTime(req.SalesStart)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "販売開始の形式が不正です"})
	}
	salesEnd, err := parseOptionalTime(req.SalesEnd)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "販売終了の形式が不正です"})
	}

	t, err := h.ticketService.UpdateTicketType(c.Request().Context(), application.UpdateTicketTypeInput{
		ID:            id,
		Name:          req.Name,
		Price:         req.Price,
		QuantityTotal: req.QuantityTotal,
		MinPerOrder:   req.MinPerOrder,
		MaxPerOrder:   req.MaxPerOrder,
		SalesStart:    salesStart,
		SalesEnd:      salesEnd,
	})
	if err != nil {
		if err == ticket.ErrTicketTypeNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "チケット種別が見つかりません"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toTicketTypeResponse(t))
}

// Activate godoc
// @Summary チケット種別を販売対象にする
// @Tags ticket-types
// @Produce json
// @Param id path string true "チケット種別ID"
// @Success 200 {object} TicketTypeResponse
// @Failure 404 {object} map[string]string
// @Router /ticket-types/{id}/activate [post]
func (h *TicketHandler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

// Deactivate godoc
// @Summary チケット種別を販売停止にする
// @Tags ticket-types
// @Produce json
// @Param id path string true "チケット種別ID"
// @Success 200 {object} TicketTypeResponse
// @Failure 404 {object} map[string]string
// @Router /ticket-types/{id}/deactivate [post]
func (h *TicketHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *TicketHandler) setActive(c echo.Context, active bool) error {
	id := c.Param("id")
	t, err := h.ticketService.SetTicketTypeActive(c.Request().Context(), id, active)
	if err != nil {
		if err == ticket.ErrTicketTypeNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "チケット種別が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toTicketTypeResponse(t))
}

// Delete godoc
// @Summary チケット種別を削除
// @Tags ticket-types
// @Param id path string true "チケット種別ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /ticket-types/{id} [delete]
func (h *TicketHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.ticketService.DeleteTicketType(c.Request().Context(), id); err != nil {
		if err == ticket.ErrTicketTypeNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "チケット種別が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
