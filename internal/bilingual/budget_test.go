package bilingual

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudget(t *testing.T) {
	b := NewBudget(2)
	assert.True(t, b.TryAcquire())
	assert.True(t, b.TryAcquire())
	assert.False(t, b.TryAcquire())
	assert.Equal(t, 0, b.Remaining())

	b.Release()
	assert.Equal(t, 1, b.Used())
	assert.Equal(t, 1, b.Remaining())

	b.Exhaust()
	assert.False(t, b.TryAcquire())
	assert.Equal(t, 0, b.Remaining())
}

func TestBudget_ZeroAndNil(t *testing.T) {
	assert.False(t, NewBudget(0).TryAcquire())
	assert.False(t, NewBudget(-3).TryAcquire())

	var b *Budget
	assert.False(t, b.TryAcquire())
	assert.Equal(t, 0, b.Remaining())
	b.Release()
}

func TestBudget_Concurrent(t *testing.T) {
	b := NewBudget(50)
	var acquired atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.TryAcquire() {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(50), acquired.Load())
	assert.Equal(t, 50, b.Used())
}
