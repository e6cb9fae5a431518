package service

import (
	"sync"

	"github.com/google/uuid"
)

// BudgetLocks serializes read-modify-write cycles on a single user's
// budget set within this process. Two overlapping expense submissions
// for the same user would otherwise both read a stale spent amount.
type BudgetLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewBudgetLocks() *BudgetLocks {
	return &BudgetLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *BudgetLocks) ForUser(userID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}
