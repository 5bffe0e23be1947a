package clock

import "time"

// Clock は現在時刻の取得を抽象化する
// 在庫判定は常に呼び出し側から時刻を渡す設計のため、
// アプリケーション層はこのインターフェース経由で時刻を取得する
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem は time.Now を使用するクロックを返す
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

type fixedClock struct {
	now time.Time
}

// NewFixed は常に同じ時刻を返すクロックを返す（テスト用）
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
