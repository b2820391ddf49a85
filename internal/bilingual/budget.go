// Package bilingual добавляет к заголовкам китайский перевод из индекса, кэша или живого вызова.
package bilingual

import "sync/atomic"

// Budget ограничивает число успешных живых переводов за запуск.
// Безопасен для конкурентного использования.
type Budget struct {
	max    int64
	used   atomic.Int64
	closed atomic.Bool
}

// NewBudget создаёт бюджет; max <= 0 запрещает живые вызовы.
func NewBudget(max int) *Budget {
	if max < 0 {
		max = 0
	}
	return &Budget{max: int64(max)}
}

// TryAcquire резервирует слот под живой вызов.
func (b *Budget) TryAcquire() bool {
	if b == nil || b.closed.Load() {
		return false
	}
	for {
		cur := b.used.Load()
		if cur >= b.max {
			return false
		}
		if b.used.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Release возвращает слот после неудачного вызова.
func (b *Budget) Release() {
	if b == nil {
		return
	}
	for {
		cur := b.used.Load()
		if cur <= 0 {
			return
		}
		if b.used.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// Exhaust закрывает бюджет до конца запуска (например, провайдер исчерпал квоту).
func (b *Budget) Exhaust() {
	if b == nil {
		return
	}
	b.closed.Store(true)
}

// Used возвращает число занятых слотов.
func (b *Budget) Used() int {
	if b == nil {
		return 0
	}
	return int(b.used.Load())
}

// Remaining возвращает число свободных слотов.
func (b *Budget) Remaining() int {
	if b == nil || b.closed.Load() {
		return 0
	}
	r := b.max - b.used.Load()
	if r < 0 {
		return 0
	}
	return int(r)
}
