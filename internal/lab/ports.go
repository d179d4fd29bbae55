package lab

import "sync"

// Allocator hands out host ports from a fixed inclusive range. Allocation
// scans from the bottom of the range and marks the first free port, so the
// allocate-and-mark step is atomic under a single mutex.
type Allocator struct {
	mu   sync.Mutex
	min  int
	max  int
	used map[int]struct{}
}

func NewAllocator(min, max int) *Allocator {
	return &Allocator{
		min:  min,
		max:  max,
		used: make(map[int]struct{}),
	}
}

// Allocate returns the lowest free port in the range and marks it used.
func (a *Allocator) Allocate() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for p := a.min; p <= a.max; p++ {
		if _, taken := a.used[p]; !taken {
			a.used[p] = struct{}{}
			return p, nil
		}
	}
	return 0, ErrPortsExhausted
}

// Reserve marks a specific port as used, regardless of range. It exists for
// the case where the container runtime, not the allocator, picked the bound
// port. Returns false if the port was already held.
func (a *Allocator) Reserve(port int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, taken := a.used[port]; taken {
		return false
	}
	a.used[port] = struct{}{}
	return true
}

// Release returns a port to the free set. Releasing an unheld port is a no-op.
func (a *Allocator) Release(port int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.used, port)
}

// InUse reports how many ports are currently held.
func (a *Allocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.used)
}
