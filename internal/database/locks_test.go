package database

import (
	"sync"
	"testing"
	"time"
)

func TestCardLocks_SerializesSameCard(t *testing.T) {
	locks := newCardLocks()

	var mu sync.Mutex
	active, maxActive := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("card-a")
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("Expected at most one holder, saw %d", maxActive)
	}
	if locks.size() != 0 {
		t.Errorf("Expected lock table to be empty, got %d entries", locks.size())
	}
}

func TestCardLocks_OppositeOrderDoesNotDeadlock(t *testing.T) {
	locks := newCardLocks()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				unlock := locks.lock("card-a", "card-b")
				unlock()
			}()
			go func() {
				defer wg.Done()
				unlock := locks.lock("card-b", "card-a")
				unlock()
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Lock acquisition deadlocked")
	}
}

func TestCardLocks_DuplicateIds(t *testing.T) {
	locks := newCardLocks()

	unlock := locks.lock("card-a", "card-a")
	if locks.size() != 1 {
		t.Errorf("Expected one entry, got %d", locks.size())
	}
	unlock()
	if locks.size() != 0 {
		t.Errorf("Expected lock table to be empty, got %d entries", locks.size())
	}
}
