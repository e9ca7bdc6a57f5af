package service

import (
	"context"
	"log"
	"sync"
)

// Mount restores the session if needed, then checks token expiry on every
// interval tick until the returned unmount func is called or ctx ends.
// Unmount blocks until the checker has stopped, so no check runs after it
// returns. Each Mount arms its own ticker.
func (m *SessionManager) Mount(ctx context.Context) (unmount func()) {
	m.Restore(ctx)

	ctx, cancel := context.WithCancel(ctx)
	ticker := m.clock.NewTicker(m.interval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				// Both cases may be ready at once; cancellation wins.
				if ctx.Err() != nil {
					return
				}
				if m.CheckExpiration(ctx) {
					log.Println("[SESSION] Auto-logout after token expiry")
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
