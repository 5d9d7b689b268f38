package token

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Revocations tracks access tokens invalidated by a logout before their natural expiry.
// An entry is only needed until its token would have expired anyway.
type Revocations interface {
	Revoke(jti string, until time.Time) error
	IsRevoked(jti string) bool
	Prune(now time.Time) int
}

// RevocationList keeps revoked token ids in memory, keyed by jti, with the token's expiry
type RevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time)}
}

func (l *RevocationList) Revoke(jti string, until time.Time) error {
	if jti == "" {
		return errors.New("[RevocationList.Revoke] token has no id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.entries[jti]; ok && prev.After(until) {
		return nil
	}
	l.entries[jti] = until
	return nil
}

func (l *RevocationList) IsRevoked(jti string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[jti]
	return ok
}

func (l *RevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Prune drops entries whose token has expired by now and returns how many went
func (l *RevocationList) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	pruned := 0
	for jti, until := range l.entries {
		if now.After(until) {
			delete(l.entries, jti)
			pruned++
		}
	}
	return pruned
}

// PruneEvery prunes r on each tick of interval, reading the time from clock, until ctx is done
func PruneEvery(ctx context.Context, r Revocations, interval time.Duration, clock func() time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(clock()); n > 0 {
				log.Debug().Int("pruned", n).Msg("Dropped expired token revocations")
			}
		}
	}
}
