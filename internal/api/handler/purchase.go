package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Mwvndva/bybloshq-ticketing/internal/application"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/availability"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/purchase"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
	"github.com/Mwvndva/bybloshq-ticketing/internal/infrastructure/gateway"
)

type PurchaseHandler struct {
	service PurchaseServiceInterface
}

func NewPurchaseHandler(s PurchaseServiceInterface) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

type CreatePurchaseRequest struct {
	TicketTypeID   string `json:"ticket_type_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity       int    `json:"quantity" validate:"required,gte=1" example:"2"`
	IdempotencyKey string `json:"idempotency_key" validate:"required" example:"order-2026-001"`
}

type PurchaseResponse struct {
	ID           string     `json:"id"`
	EventID      string     `json:"event_id"`
	TicketTypeID string     `json:"ticket_type_id"`
	UserID       string     `json:"user_id"`
	Quantity     int        `json:"quantity" example:"2"`
	UnitPrice    int        `json:"unit_price" example:"5000"`
	TotalAmount  int        `json:"total_amount" example:"10000"`
	Status       string     `json:"status" example:"completed"`
	PaymentRef   string     `json:"payment_ref,omitempty"`
	ExpiresAt    time.Time  `json:"expires_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toPurchaseResponse(p *purchase.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:           p.ID,
		EventID:      p.EventID,
		TicketTypeID: p.TicketTypeID,
		UserID:       p.UserID,
		Quantity:     p.Quantity,
		UnitPrice:    p.UnitPrice,
		TotalAmount:  p.TotalAmount,
		Status:       string(p.Status),
		PaymentRef:   p.PaymentRef,
		ExpiresAt:    p.ExpiresAt,
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
	}
}

// RejectionResponse は事前チェック却下時のレスポンス
type RejectionResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason" example:"above_maximum"`
	Limit  int    `json:"limit,omitempty" example:"10"`
}

// Create godoc
// @Summary チケットを購入
// @Description 事前チェックを通過した場合のみ外部決済を実行します
// @Tags purchases
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreatePurchaseRequest true "購入情報"
// @Success 201 {object} PurchaseResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} RejectionResponse
// @Failure 422 {object} RejectionResponse
// @Router /purchases [post]
func (h *PurchaseHandler) Create(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "X-User-ID ヘッダーが必要です"})
	}

	var req CreatePurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "リクエストの形式が不正です"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p, err := h.service.CreatePurchase(c.Request().Context(), application.CreatePurchaseInput{
		TicketTypeID:   req.TicketTypeID,
		UserID:         userID,
		Quantity:       req.Quantity,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return h.mapCreateError(c, err)
	}
	return c.JSON(http.StatusCreated, toPurchaseResponse(p))
}

// mapCreateError は購入失敗の理由をHTTPステータスに写す
func (h *PurchaseHandler) mapCreateError(c echo.Context, err error) error {
	var rej *availability.Rejection
	if errors.As(err, &rej) {
		status := http.StatusConflict
		if rej.Reason == availability.ReasonInvalidQuantity ||
			rej.Reason == availability.ReasonBelowMinimum ||
			rej.Reason == availability.ReasonAboveMaximum {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, RejectionResponse{
			Error:  rej.Error(),
			Reason: string(rej.Reason),
			Limit:  rej.Limit,
		})
	}

	switch {
	case errors.Is(err, ticket.ErrTicketTypeNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "チケット種別が見つかりません"})
	case errors.Is(err, application.ErrEventNotPurchasable):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ticket.ErrInsufficientInventory), errors.Is(err, gateway.ErrInventoryExhausted):
		return c.JSON(http.StatusConflict, map[string]string{"error": "在庫が不足しています"})
	case errors.Is(err, gateway.ErrPaymentDeclined):
		return c.JSON(http.StatusPaymentRequired, map[string]string{"error": "決済が拒否されました"})
	case errors.Is(err, gateway.ErrGatewayUnavailable):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "決済ゲートウェイに接続できません"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// GetByID godoc
// @Summary 購入を取得
// @Tags purchases
// @Produce json
// @Param id path string true "購入ID"
// @Success 200 {object} PurchaseResponse
// @Failure 404 {object} map[string]string
// @Router /purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	p, err := h.service.GetPurchase(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, purchase.ErrPurchaseNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "購入が見つかりません"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toPurchaseResponse(p))
}

// ListMine godoc
// @Summary 自分の購入一覧を取得
// @Tags purchases
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PurchaseResponse
// @Failure 401 {object} map[string]string
// @Router /purchases [get]
func (h *PurchaseHandler) ListMine(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "X-User-ID ヘッダーが必要です"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	purchases, err := h.service.GetUserPurchases(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	responses := make([]PurchaseResponse, len(purchases))
	for i, p := range purchases {
		responses[i] = toPurchaseResponse(p)
	}
	return c.JSON(http.StatusOK, responses)
}

// Refund godoc
// @Summary 購入を返金
// @Description 管理者の返金承認。外部決済へ返金指示を出し、在庫を戻します
// @Tags purchases
// @Produce json
// @Param id path string true "購入ID"
// @Success 200 {object} PurchaseResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /purchases/{id}/refund [post]
func (h *PurchaseHandler) Refund(c echo.Context) error {
	id := c.Param("id")
	p, err := h.service.RefundPurchase(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrPurchaseNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "購入が見つかりません"})
		case errors.Is(err, purchase.ErrPurchaseNotCompleted), errors.Is(err, purchase.ErrPurchaseAlreadyRefunded):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, toPurchaseResponse(p))
}
