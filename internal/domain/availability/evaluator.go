// Package availability はチケット種別の在庫・販売期間から販売可否を判定する
// 純粋な評価関数を提供する。I/Oや副作用を持たず、現在時刻は常に引数で受け取る。
//
// ここで返す判定はあくまでローカルスナップショットに対する参考値であり、
// 在庫の確定的な減算は購入トランザクション側で行われる。
package availability

import (
	"time"

	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/event"
	"github.com/Mwvndva/bybloshq-ticketing/internal/domain/ticket"
)

// Kind はチケット種別の販売状態を表す
type Kind string

const (
	KindInactive     Kind = "inactive"
	KindNotYetOnSale Kind = "not_yet_on_sale"
	KindSalesEnded   Kind = "sales_ended"
	KindSoldOut      Kind = "sold_out"
	KindAvailable    Kind = "available"
)

// Label は画面表示用のバッジ文言を返す
func (k Kind) Label() string {
	switch k {
	case KindInactive:
		return "Unavailable"
	case KindNotYetOnSale:
		return "Upcoming"
	case KindSalesEnded:
		return "Sales Ended"
	case KindSoldOut:
		return "Sold Out"
	case KindAvailable:
		return "On Sale"
	default:
		return string(k)
	}
}

// TypeStatus はチケット種別1件の判定結果を表す
// Remaining は Kind が KindAvailable の場合のみ意味を持つ
type TypeStatus struct {
	Kind      Kind
	Remaining int
}

// IsAvailable は販売可能な状態かを返す
func (s TypeStatus) IsAvailable() bool {
	return s.Kind == KindAvailable
}

// EvaluateTicketType はチケット種別1件の販売状態を判定する
// 複数の条件が同時に成立する場合の優先順位は固定で、
// 無効化 → 販売開始前 → 販売終了後 → 売り切れ → 販売中 の順に最初に
// 一致したものを返す。管理者による無効化が常に最優先となる。
func EvaluateTicketType(t *ticket.TicketType, now time.Time) TypeStatus {
	if !t.IsActive {
		return TypeStatus{Kind: KindInactive}
	}
	if t.SalesStart != nil && now.Before(*t.SalesStart) {
		return TypeStatus{Kind: KindNotYetOnSale}
	}
	if t.SalesEnd != nil && now.After(*t.SalesEnd) {
		return TypeStatus{Kind: KindSalesEnded}
	}
	remaining := t.QuantityAvailable()
	if remaining <= 0 {
		return TypeStatus{Kind: KindSoldOut}
	}
	return TypeStatus{Kind: KindAvailable, Remaining: remaining}
}

// TypeStatusEntry はチケット種別IDと判定結果の組
type TypeStatusEntry struct {
	TicketTypeID string
	Status       TypeStatus
}

// EventAvailability はイベント全体の集計結果を表す
type EventAvailability struct {
	// TotalAvailable は販売中のチケット種別の残数合計
	// 売り切れ・無効・期間外の種別は0として扱う（負にはならない）
	TotalAvailable int
	// IsPurchasable は現時点で購入可能か
	// 公開済み かつ 残数あり かつ イベント終了前 の場合のみ true
	IsPurchasable bool
	// PerType は入力順を保持した種別ごとの判定結果
	PerType []TypeStatusEntry
}

// EvaluateEvent はイベントのチケット種別一覧から集計結果を算出する
// チケット種別が0件の場合は TotalAvailable=0, IsPurchasable=false となる
func EvaluateEvent(e *event.Event, types []*ticket.TicketType, now time.Time) EventAvailability {
	perType := make([]TypeStatusEntry, len(types))
	total := 0
	for i, t := range types {
		st := EvaluateTicketType(t, now)
		perType[i] = TypeStatusEntry{TicketTypeID: t.ID, Status: st}
		if st.Kind == KindAvailable {
			total += st.Remaining
		}
	}
	return EventAvailability{
		TotalAvailable: total,
		IsPurchasable:  e.Status == event.StatusPublished && total > 0 && now.Before(e.EndAt),
		PerType:        perType,
	}
}

// EventBadge はイベント一覧・詳細画面で表示するバッジ文言を返す
func EventBadge(e *event.Event, totalAvailable int, now time.Time) string {
	switch {
	case e.Status == event.StatusCancelled:
		return "Cancelled"
	case e.Status == event.StatusCompleted || now.After(e.EndAt):
		return "Ended"
	case !now.Before(e.StartAt):
		return "Happening Now"
	case totalAvailable <= 0:
		return "Sold Out"
	default:
		return "Upcoming"
	}
}
