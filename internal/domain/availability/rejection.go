package availability

import (
	"fmt"
	"time"

	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
)

// RejectionReason は購入リクエストの却下理由を表す（閉じた列挙）
type RejectionReason string

const (
	ReasonInvalidQuantity       RejectionReason = "invalid_quantity"
	ReasonInactive              RejectionReason = "inactive"
	ReasonNotYetOnSale          RejectionReason = "not_yet_on_sale"
	ReasonSalesEnded            RejectionReason = "sales_ended"
	ReasonSoldOut               RejectionReason = "sold_out"
	ReasonBelowMinimum          RejectionReason = "below_minimum"
	ReasonAboveMaximum          RejectionReason = "above_maximum"
	ReasonInsufficientInventory RejectionReason = "insufficient_inventory"
)

// Rejection は購入リクエストの却下を表すエラー
// Limit は BelowMinimum / AboveMaximum / InsufficientInventory の場合の境界値
type Rejection struct {
	Reason RejectionReason
	Limit  int
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonInvalidQuantity:
		return "購入枚数は1以上である必要があります"
	case ReasonInactive:
		return "このチケット種別は現在販売していません"
	case ReasonNotYetOnSale:
		return "このチケット種別はまだ販売開始前です"
	case ReasonSalesEnded:
		return "このチケット種別は販売終了しています"
	case ReasonSoldOut:
		return "このチケット種別は売り切れです"
	case ReasonBelowMinimum:
		return fmt.Sprintf("購入枚数は%d枚以上である必要があります", r.Limit)
	case ReasonAboveMaximum:
		return fmt.Sprintf("購入枚数は%d枚以下である必要があります", r.Limit)
	case ReasonInsufficientInventory:
		return fmt.Sprintf("在庫が不足しています（残り%d枚）", r.Limit)
	default:
		return "購入リクエストが却下されました"
	}
}

// ValidatePurchaseRequest は購入リクエストの事前チェックを行う
// 成功時は nil、却下時は *Rejection を返す。チェックは以下の固定順で
// 最初に失敗したものを返す:
//  1. 枚数が1未満
//  2. 種別が販売中でない（無効・開始前・終了後・売り切れをそのまま理由に写す）
//  3. 最低購入数未満
//  4. 最大購入数超過
//  5. 残数超過
//
// この関数は在庫を一切変更しない事前チェックであり、確定的な減算は
// 購入トランザクション側で行われる。ここで nil が返っても、確定処理が
// 在庫切れで失敗する可能性は残り、その場合は確定処理の結果が正となる。
func ValidatePurchaseRequest(t *ticket.TicketType, quantity int, now time.Time) error {
	if quantity < 1 {
		return &Rejection{Reason: ReasonInvalidQuantity}
	}
	st := EvaluateTicketType(t, now)
	switch st.Kind {
	case KindInactive:
		return &Rejection{Reason: ReasonInactive}
	case KindNotYetOnSale:
		return &Rejection{Reason: ReasonNotYetOnSale}
	case KindSalesEnded:
		return &Rejection{Reason: ReasonSalesEnded}
	case KindSoldOut:
		return &Rejection{Reason: ReasonSoldOut}
	}
	if quantity < t.MinPerOrder {
		return &Rejection{Reason: ReasonBelowMinimum, Limit: t.MinPerOrder}
	}
	if quantity > t.MaxPerOrder {
		return &Rejection{Reason: ReasonAboveMaximum, Limit: t.MaxPerOrder}
	}
	if quantity > st.Remaining {
		return &Rejection{Reason: ReasonInsufficientInventory, Limit: st.Remaining}
	}
	return nil
}
