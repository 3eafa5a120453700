package ledger

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// keyedLocks hands out one in-process mutex per key. Entries are dropped
// once nobody holds or waits on them.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*keyedLock)}
}

// lock acquires every key in sorted order. The returned func releases them.
func (k *keyedLocks) lock(ctx context.Context, keys ...string) (func(), error) {
	keys = append([]string(nil), keys...)
	sort.Strings(keys)

	var held []string
	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			k.release(held[i], true)
		}
	}

	for i, key := range keys {
		if i > 0 && key == keys[i-1] {
			continue
		}
		l := k.ref(key)
		if err := l.sem.Acquire(ctx, 1); err != nil {
			k.release(key, false)
			unlock()
			return nil, err
		}
		held = append(held, key)
	}
	return unlock, nil
}

func (k *keyedLocks) ref(key string) *keyedLock {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{sem: semaphore.NewWeighted(1)}
		k.locks[key] = l
	}
	l.refs++
	return l
}

func (k *keyedLocks) release(key string, acquired bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l := k.locks[key]
	if acquired {
		l.sem.Release(1)
	}
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

func ledgerKey(groupID, currency string) string {
	return groupID + "/" + currency
}
