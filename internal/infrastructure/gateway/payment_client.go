// Package gateway は外部決済・取引APIのHTTPクライアントを提供する。
// 決済と在庫の確定はこの外部API側が正であり、ローカルの在庫判定が
// 購入可と出ていても、ここでの失敗が最終結果となる。
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mwvndva/bybloshq-ticketing/internal/config"
)

var (
	ErrPaymentDeclined     = errors.New("決済が拒否されました")
	ErrInventoryExhausted  = errors.New("取引API側で在庫切れが確定しました")
	ErrGatewayUnavailable  = errors.New("決済ゲートウェイに接続できません")
	ErrTransactionNotFound = errors.New("取引が見つかりません")
)

// ChargeInput は決済リクエストの入力
type ChargeInput struct {
	PurchaseID   string `json:"purchase_id"`
	TicketTypeID string `json:"ticket_type_id"`
	UserID       string `json:"user_id"`
	Quantity     int    `json:"quantity"`
	Amount       int    `json:"amount"`
}

// ChargeResult は決済成功時の結果
type ChargeResult struct {
	PaymentRef string `json:"payment_ref"`
}

// RefundInput は返金リクエストの入力
type RefundInput struct {
	PaymentRef string `json:"payment_ref"`
	Amount     int    `json:"amount"`
}

// errorBody はゲートウェイのエラーレスポンス
type errorBody struct {
	Error string `json:"error"`
}

// Client は決済ゲートウェイのHTTPクライアント
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient は新しいClientを作成する
func NewClient(cfg *config.GatewayConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Charge は決済を実行する
func (c *Client) Charge(ctx context.Context, input ChargeInput) (*ChargeResult, error) {
	var result ChargeResult
	if err := c.post(ctx, "/v1/charges", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refund は返金を実行する
func (c *Client) Refund(ctx context.Context, input RefundInput) error {
	return c.post(ctx, "/v1/refunds", input, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("リクエストのエンコードに失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("レスポンスのデコードに失敗: %w", err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	return c.mapError(resp.StatusCode, eb.Error)
}

// mapError はゲートウェイのエラーコードを型付きエラーに写す
func (c *Client) mapError(status int, code string) error {
	switch {
	case code == "inventory_exhausted":
		return ErrInventoryExhausted
	case code == "payment_declined" || status == http.StatusPaymentRequired:
		return ErrPaymentDeclined
	case status == http.StatusNotFound:
		return ErrTransactionNotFound
	case status >= 500:
		return ErrGatewayUnavailable
	default:
		return fmt.Errorf("決済ゲートウェイエラー (status=%d, code=%s)", status, code)
	}
}
