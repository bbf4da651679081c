package utils

import (
	"errors"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	cache := NewCache[string, int]()

	if _, ok := cache.Get("missing"); ok {
		t.Error("empty cache should miss")
	}

	cache.Set("a", 1)
	value, ok := cache.Get("a")
	if !ok || value != 1 {
		t.Errorf("Get(a) = %d, %v", value, ok)
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}
}

func TestCacheGetOrComputeOnce(t *testing.T) {
	cache := NewCache[string, string]()

	computed := 0
	for i := 0; i < 3; i++ {
		value, err := cache.GetOrCompute("key", func() (string, error) {
			computed++
			return "value", nil
		})
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
		if value != "value" {
			t.Errorf("GetOrCompute = %q", value)
		}
	}
	if computed != 1 {
		t.Errorf("compute ran %d times, want 1", computed)
	}
}

func TestCacheGetOrComputeFailureStoresNothing(t *testing.T) {
	cache := NewCache[string, string]()

	boom := errors.New("boom")
	if _, err := cache.GetOrCompute("key", func() (string, error) {
		return "", boom
	}); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}

	if cache.Size() != 0 {
		t.Errorf("failed compute should not be cached, Size() = %d", cache.Size())
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cache.Set(n%4, n)
			cache.Get(n % 4)
		}(i)
	}
	wg.Wait()

	if cache.Size() != 4 {
		t.Errorf("Size() = %d, want 4", cache.Size())
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	cache := NewCache[string, int]()
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Delete("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("deleted key should miss")
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d", cache.Size())
	}
}
