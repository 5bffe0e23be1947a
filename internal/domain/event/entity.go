package event

import "time"

// Status はイベントの公開状態を表す
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Event はイベントエンティティを表す
type Event struct {
	ID          string
	Name        string
	Description string
	Venue       string
	Status      Status
	StartAt     time.Time
	EndAt       time.Time
	// CapacityTotal / CapacitySold はチケット種別導入前のレガシー集計カラム。
	// チケット種別の行が1件でも存在するイベントでは参照しない。
	CapacityTotal int
	CapacitySold  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int // 楽観的ロック用
}

// NewEvent は新しいイベントを下書き状態で作成する
func NewEvent(name, description, venue string, startAt, endAt time.Time) *Event {
	now := time.Now()
	return &Event{
		Name:        name,
		Description: description,
		Venue:       venue,
		Status:      StatusDraft,
		StartAt:     startAt,
		EndAt:       endAt,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
}

// IsPublished はイベントが公開済みかを返す
func (e *Event) IsPublished() bool {
	return e.Status == StatusPublished
}

// Publish はイベントを公開する（下書きからのみ遷移可能）
func (e *Event) Publish() error {
	if e.Status != StatusDraft {
		return ErrEventNotDraft
	}
	e.Status = StatusPublished
	e.UpdatedAt = time.Now()
	return nil
}

// Cancel はイベントを中止する
func (e *Event) Cancel() error {
	if e.Status == StatusCancelled {
		return ErrEventAlreadyCancelled
	}
	if e.Status == StatusCompleted {
		return ErrEventAlreadyCompleted
	}
	e.Status = StatusCancelled
	e.UpdatedAt = time.Now()
	return nil
}

// Complete はイベントを終了済みにする（公開済みからのみ遷移可能）
func (e *Event) Complete() error {
	if e.Status != StatusPublished {
		return ErrEventNotPublished
	}
	e.Status = StatusCompleted
	e.UpdatedAt = time.Now()
	return nil
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.EndAt.Before(e.StartAt) {
		return ErrInvalidEventTime
	}
	if e.CapacityTotal < 0 || e.CapacitySold < 0 {
		return ErrInvalidCapacity
	}
	return nil
}
