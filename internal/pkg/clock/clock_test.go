package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClock(t *testing.T) {
	clk := NewSystem()

	now := clk.Now()

	assert.WithinDuration(t, time.Now(), now, time.Second)
}

func TestFixedClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := NewFixed(fixed)

	assert.Equal(t, fixed, clk.Now())
	// 何度呼んでも同じ時刻を返す
	assert.Equal(t, fixed, clk.Now())
}
