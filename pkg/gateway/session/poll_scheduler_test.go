package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPollSchedulerFiresRepeatedly(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	s := newPollScheduler(nil, func(mac string) {
		mu.Lock()
		fired = append(fired, mac)
		mu.Unlock()
	})
	s.add("mac-1", 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go s.start(ctx)

	time.Sleep(90 * time.Millisecond)
	cancel()
	s.stop()

	mu.Lock()
	n := len(fired)
	mu.Unlock()
	if n < 2 {
		t.Fatalf("fired %d times in ~90ms at a 20ms interval, want at least 2", n)
	}
}

func TestPollSchedulerRemove(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	s := newPollScheduler(nil, func(mac string) {
		mu.Lock()
		fired = append(fired, mac)
		mu.Unlock()
	})
	s.add("mac-1", 15*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go s.start(ctx)

	time.Sleep(20 * time.Millisecond)
	s.remove("mac-1")
	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	n := len(fired)
	mu.Unlock()

	time.Sleep(40 * time.Millisecond)
	mu.Lock()
	n2 := len(fired)
	mu.Unlock()

	cancel()
	s.stop()

	if n2 != n {
		t.Fatalf("scheduler fired %d more times after remove, want 0", n2-n)
	}
}
