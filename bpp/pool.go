package bpp

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

var ErrPoolFrozen = errors.New("pattern pool is frozen")

// Pool is the append-only arena of known patterns. A pattern's position is
// its identity and never changes; the master problem keeps its variables in
// the same order.
type Pool struct {
	inst     *Instance
	patterns []Pattern
	keys     mapset.Set[string]
	frozen   bool
}

// NewPool seeds the pool with the n singleton patterns, so pattern i holds
// item i alone.
func NewPool(inst *Instance) *Pool {
	n := inst.Len()
	pool := &Pool{
		inst:     inst,
		patterns: make([]Pattern, 0, 2*n),
		keys:     mapset.NewThreadUnsafeSet[string](),
	}
	for i := 0; i < n; i++ {
		p, _ := NewPattern(n, i)
		pool.patterns = append(pool.patterns, p)
		pool.keys.Add(p.Key())
	}
	return pool
}

// Add appends p and returns its index. A pattern already in the pool is not
// appended again: its existing index is returned with added == false.
func (pool *Pool) Add(p Pattern) (int, bool, error) {
	if pool.frozen {
		return -1, false, ErrPoolFrozen
	}
	if p.Len() != pool.inst.Len() {
		return -1, false, fmt.Errorf("pattern has %d entries, instance has %d items", p.Len(), pool.inst.Len())
	}
	if p.Size() == 0 {
		return -1, false, errors.New("pattern is empty")
	}
	if w := p.Weight(pool.inst); w > pool.inst.Capacity {
		return -1, false, fmt.Errorf("pattern %v weighs %d, capacity is %d", p, w, pool.inst.Capacity)
	}
	key := p.Key()
	if !pool.keys.Add(key) {
		return pool.indexOf(key), false, nil
	}
	pool.patterns = append(pool.patterns, p)
	return len(pool.patterns) - 1, true, nil
}

func (pool *Pool) indexOf(key string) int {
	for i, p := range pool.patterns {
		if p.Key() == key {
			return i
		}
	}
	return -1
}

func (pool *Pool) Contains(p Pattern) bool {
	return pool.keys.Contains(p.Key())
}

func (pool *Pool) At(i int) Pattern {
	return pool.patterns[i]
}

func (pool *Pool) Len() int {
	return len(pool.patterns)
}

func (pool *Pool) Instance() *Instance {
	return pool.inst
}

// Freeze stops further growth; called before the integer solve.
func (pool *Pool) Freeze() {
	pool.frozen = true
}

func (pool *Pool) Frozen() bool {
	return pool.frozen
}
