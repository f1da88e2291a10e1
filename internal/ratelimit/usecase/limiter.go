package usecase

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/NotSilaev/MrStone/internal/cache"
	rateLimitDomain "github.com/NotSilaev/MrStone/internal/ratelimit/domain"
)

// lockStripes is the number of mutexes shared by all keys on the non-atomic path.
const lockStripes = 256

// keyLocks serializes read-modify-write cycles per cache key inside one process.
type keyLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (k *keyLocks) get(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &k.stripes[h.Sum32()%lockStripes]
}

// limiter implements Limiter on top of a shared cache.
type limiter struct {
	cache   cache.Cache
	policy  rateLimitDomain.Policy
	timeout time.Duration
	logger  *slog.Logger
	locks   keyLocks
}

// NewLimiter creates a Limiter enforcing policy with counters stored in c.
//
// When c implements cache.Updater, each check is one atomic update of the client's entry.
// Otherwise get, ttl and set are issued separately under a per-key lock, which only
// protects against concurrent checks inside this process.
//
// Every check is bounded by timeout (no bound when timeout <= 0).
func NewLimiter(
	c cache.Cache,
	policy rateLimitDomain.Policy,
	timeout time.Duration,
	logger *slog.Logger,
) (Limiter, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &limiter{
		cache:   c,
		policy:  policy,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Check observes one request and returns the decision.
func (l *limiter) Check(
	ctx context.Context,
	clientIdentity string,
	now time.Time,
) (rateLimitDomain.Decision, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	key := rateLimitDomain.Key(clientIdentity)

	var decision rateLimitDomain.Decision
	apply := func(current cache.Item, found bool) (cache.Item, error) {
		var counter *rateLimitDomain.Counter
		if found {
			decoded, err := rateLimitDomain.DecodeCounter(current.Value)
			if err != nil {
				l.logger.Warn("discarding malformed rate limit counter",
					slog.String("key", key),
					slog.Any("error", err))
			} else {
				counter = &decoded
			}
		}

		var next rateLimitDomain.Counter
		var ttl time.Duration
		decision, next, ttl = l.policy.Observe(counter, current.TTL, now)

		value, err := next.Encode()
		if err != nil {
			return cache.Item{}, err
		}
		return cache.Item{Value: value, TTL: ttl}, nil
	}

	var err error
	if updater, ok := l.cache.(cache.Updater); ok {
		err = updater.Update(ctx, key, apply)
	} else {
		err = l.readModifyWrite(ctx, key, apply)
	}
	if err != nil {
		return rateLimitDomain.Decision{}, err
	}

	return decision, nil
}

// readModifyWrite emulates cache.Updater with separate calls under a per-key lock.
func (l *limiter) readModifyWrite(ctx context.Context, key string, fn cache.UpdateFunc) error {
	mu := l.locks.get(key)
	mu.Lock()
	defer mu.Unlock()

	value, found, err := l.cache.Get(ctx, key)
	if err != nil {
		return err
	}

	current := cache.Item{Value: value}
	if found {
		ttl, hasTTL, err := l.cache.TTL(ctx, key)
		if err != nil {
			return err
		}
		if hasTTL {
			current.TTL = ttl
		}
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}

	return l.cache.Set(ctx, key, next.Value, next.TTL)
}
