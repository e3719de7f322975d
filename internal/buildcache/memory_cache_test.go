package buildcache

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestMemoryCacheInstallAndLookupByAlias(t *testing.T) {
	cache := NewMemoryCache()
	handle := &ModuleHandle{ModuleName: "m1", Path: "/cache/m1"}

	cache.Install("m1", []string{"m1", "my-signature"}, handle)

	got, ok := cache.Lookup("my-signature")
	if !ok || got != handle {
		t.Fatalf("Lookup by alias failed: got=%v ok=%v", got, ok)
	}

	got, ok = cache.Lookup("m1")
	if !ok || got != handle {
		t.Fatalf("Lookup by canonical name failed: got=%v ok=%v", got, ok)
	}

	if _, ok := cache.Lookup("unknown"); ok {
		t.Fatal("Lookup of an unregistered identifier should miss")
	}
}

func TestMemoryCacheCoalesceRunsOnce(t *testing.T) {
	cache := NewMemoryCache()
	var calls int32

	var wg sync.WaitGroup
	results := make([]*ModuleHandle, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handle, err, _ := cache.Coalesce("shared-key", func() (*ModuleHandle, error) {
				atomic.AddInt32(&calls, 1)
				return &ModuleHandle{ModuleName: "shared"}, nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = handle
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected fn to run exactly once across concurrent callers sharing a key, ran %d times", got)
	}
	for i, r := range results {
		if r != results[0] {
			t.Errorf("result[%d] = %v, want the same handle shared by every waiter (%v)", i, r, results[0])
		}
	}
}

func TestMemoryCacheCoalesceKeysAreIndependent(t *testing.T) {
	cache := NewMemoryCache()
	var calls int32

	for _, key := range []string{"a", "b"} {
		_, err, _ := cache.Coalesce(key, func() (*ModuleHandle, error) {
			atomic.AddInt32(&calls, 1)
			return &ModuleHandle{ModuleName: key}, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected fn to run once per distinct key, ran %d times", got)
	}
}
