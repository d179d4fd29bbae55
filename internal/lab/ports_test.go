package lab

import (
	"errors"
	"sync"
	"testing"
)

func TestAllocateLowestFree(t *testing.T) {
	a := NewAllocator(55000, 55005)

	first, err := a.Allocate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 55000 {
		t.Fatalf("expected 55000, got %d", first)
	}

	second, err := a.Allocate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != 55001 {
		t.Fatalf("expected 55001, got %d", second)
	}

	a.Release(first)
	third, err := a.Allocate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third != first {
		t.Fatalf("expected released port %d to be reused, got %d", first, third)
	}
}

func TestAllocateConcurrentUniqueness(t *testing.T) {
	const rangeSize = 64
	a := NewAllocator(55000, 55000+rangeSize-1)

	var (
		mu    sync.Mutex
		ports = make(map[int]struct{}, rangeSize)
		wg    sync.WaitGroup
	)

	for i := 0; i < rangeSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := a.Allocate()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if p < 55000 || p > 55000+rangeSize-1 {
				t.Errorf("port %d out of range", p)
				return
			}
			mu.Lock()
			ports[p] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ports) != rangeSize {
		t.Fatalf("expected %d distinct ports, got %d", rangeSize, len(ports))
	}
}

func TestAllocateExhaustion(t *testing.T) {
	a := NewAllocator(55000, 55002)
	for i := 0; i < 3; i++ {
		if _, err := a.Allocate(); err != nil {
			t.Fatalf("unexpected error on allocation %d: %v", i, err)
		}
	}

	if _, err := a.Allocate(); !errors.Is(err, ErrPortsExhausted) {
		t.Fatalf("expected ErrPortsExhausted, got %v", err)
	}

	a.Release(55001)
	p, err := a.Allocate()
	if err != nil {
		t.Fatalf("unexpected error after release: %v", err)
	}
	if p != 55001 {
		t.Fatalf("expected 55001 after release, got %d", p)
	}
}

func TestReserve(t *testing.T) {
	a := NewAllocator(55000, 55010)

	if ok := a.Reserve(55005); !ok {
		t.Fatalf("expected reserve of free port to succeed")
	}
	if ok := a.Reserve(55005); ok {
		t.Fatalf("expected reserve of held port to fail")
	}

	// The reserved port must be skipped by the scan.
	for i := 0; i < 5; i++ {
		p, err := a.Allocate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p == 55005 {
			t.Fatalf("allocator handed out a reserved port")
		}
	}
}

func TestReleaseUnheldIsNoop(t *testing.T) {
	a := NewAllocator(55000, 55001)
	a.Release(55000)

	if got := a.InUse(); got != 0 {
		t.Fatalf("expected 0 ports in use, got %d", got)
	}
}
