package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyedLocks_Exclusive(t *testing.T) {
	locks := newKeyedLocks()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.lock(ctx, "g/USD")
			if err != nil {
				t.Errorf("lock failed: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("Expected one holder at a time, saw %d", maxInside)
	}
	if len(locks.locks) != 0 {
		t.Errorf("Expected idle keys to be dropped, %d left", len(locks.locks))
	}
}

func TestKeyedLocks_IndependentKeys(t *testing.T) {
	locks := newKeyedLocks()
	ctx := context.Background()

	unlockUSD, err := locks.lock(ctx, "g/USD")
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	defer unlockUSD()

	done := make(chan struct{})
	go func() {
		unlock, err := locks.lock(ctx, "g/EUR")
		if err == nil {
			unlock()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another key blocked")
	}
}

func TestKeyedLocks_ContextCancel(t *testing.T) {
	locks := newKeyedLocks()
	unlock, err := locks.lock(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := locks.lock(ctx, "b", "a"); err == nil {
		t.Fatal("Expected lock to fail when context expires")
	}

	unlock()
	if len(locks.locks) != 0 {
		t.Errorf("Expected all keys released, %d left", len(locks.locks))
	}
}
