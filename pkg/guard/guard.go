package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/reachflow/funnel/internal/logging"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
)

// DefaultTTL bounds how long a distributed claim survives a crashed holder.
const DefaultTTL = 30 * time.Second

// Guard is a ports.Submitter decorator that lets one identical submission through at a time.
type Guard struct {
	next ports.Submitter

	mu       sync.Mutex          // Global lock for the map
	inflight map[string]struct{} // Fingerprints currently being submitted

	locker ports.DistributedLocker // Optional distributed locker
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Guard.
type Option func(*Guard)

// WithLocker enables distributed claims.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(g *Guard) {
		g.locker = locker
	}
}

// WithTTL sets the lifetime of a distributed claim.
func WithTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithLogger configures a logger for the Guard.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New wraps next.
func New(next ports.Submitter, opts ...Option) *Guard {
	g := &Guard{
		next:     next,
		inflight: make(map[string]struct{}),
		ttl:      DefaultTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit forwards the lead unless an identical one is in flight, in which case it returns
// a failed result and an error wrapping domain.ErrSubmissionInFlight.
func (g *Guard) Submit(ctx context.Context, lead domain.LeadRecord) (domain.SubmissionResult, error) {
	key := Fingerprint(lead)

	if !g.acquire(key) {
		return duplicate(key)
	}
	defer g.release(key)

	if g.locker != nil {
		unlock, err := g.locker.TryLock(ctx, key, g.ttl)
		switch {
		case errors.Is(err, ports.ErrLocked):
			return duplicate(key)
		case err != nil:
			// Fail open: a locker outage must not drop leads.
			g.logger.Warn("distributed claim unavailable, submitting without it", "fingerprint", key[:12], "err", err)
		default:
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					g.logger.Warn("failed to release distributed claim (will expire via TTL)",
						"fingerprint", key[:12],
						"err", err,
					)
				}
			}()
		}
	}

	return g.next.Submit(ctx, lead)
}

// InFlight returns the number of local submissions in progress.
func (g *Guard) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}

// acquire claims key locally. It returns false if the key is already claimed.
func (g *Guard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

// release drops the claim so the map never outgrows the concurrent submissions.
func (g *Guard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}

func duplicate(key string) (domain.SubmissionResult, error) {
	return domain.SubmissionResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonDuplicate},
		fmt.Errorf("%w: fingerprint %s", domain.ErrSubmissionInFlight, key[:12])
}

// Fingerprint returns a stable digest of a Lead Record, independent of key order.
func Fingerprint(lead domain.LeadRecord) string {
	keys := make([]string, 0, len(lead))
	for k := range lead {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%d:%s=%d:%s;", len(k), k, len(lead[k]), lead[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}
