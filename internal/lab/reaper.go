package lab

import (
	"context"
	"log"
	"time"
)

// StartReaper evicts labs whose files have not been touched for longer than
// ttl, releasing their ports and containers. A ttl of zero disables
// eviction entirely. The loop stops when ctx is cancelled.
func (s *Service) StartReaper(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reapIdle(ctx, ttl)
			}
		}
	}()
}

func (s *Service) reapIdle(ctx context.Context, ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	reaped := 0

	for _, sess := range s.registry.Snapshot() {
		if sess.LastActive().After(cutoff) {
			continue
		}
		if err := s.Teardown(ctx, sess.LabID); err != nil {
			log.Printf("lab: reap %s: %v", sess.LabID, err)
			continue
		}
		log.Printf("lab: reaped idle lab %s", sess.LabID)
		reaped++
	}
	return reaped
}
