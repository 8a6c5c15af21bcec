package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryThrottle_LimitWithinWindow(t *testing.T) {
	gate := NewMemoryThrottle(10, time.Minute)
	userID := uuid.New()
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		allowed, err := gate.Allow(ctx, userID)
		if err != nil {
			t.Fatalf("Allow returned error on request %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i)
		}
	}

	allowed, err := gate.Allow(ctx, userID)
	if err != nil {
		t.Fatalf("Allow returned error on 11th request: %v", err)
	}
	if allowed {
		t.Error("Expected 11th request inside the window to be denied")
	}
}

func TestMemoryThrottle_UsersAreIndependent(t *testing.T) {
	gate := NewMemoryThrottle(1, time.Minute)
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()

	if allowed, _ := gate.Allow(ctx, first); !allowed {
		t.Fatal("Expected first user's request to be allowed")
	}
	if allowed, _ := gate.Allow(ctx, first); allowed {
		t.Error("Expected first user's second request to be denied")
	}
	if allowed, _ := gate.Allow(ctx, second); !allowed {
		t.Error("Expected second user to have an untouched window")
	}
}

func TestMemoryThrottle_WindowRolls(t *testing.T) {
	gate := NewMemoryThrottle(2, 50*time.Millisecond)
	userID := uuid.New()
	ctx := context.Background()

	gate.Allow(ctx, userID)
	gate.Allow(ctx, userID)

	if allowed, _ := gate.Allow(ctx, userID); allowed {
		t.Fatal("Expected third request inside the window to be denied")
	}

	time.Sleep(60 * time.Millisecond)

	if allowed, _ := gate.Allow(ctx, userID); !allowed {
		t.Error("Expected request after the window rolled to be allowed")
	}
}

func TestMemoryThrottle_ConcurrentBurst(t *testing.T) {
	const limit = 10
	gate := NewMemoryThrottle(limit, time.Minute)
	userID := uuid.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := gate.Allow(ctx, userID)
			if err != nil {
				t.Errorf("Allow returned error: %v", err)
				return
			}
			if allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != limit {
		t.Errorf("Expected exactly %d admitted from a concurrent burst, got %d", limit, admitted)
	}
}
