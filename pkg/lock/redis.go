package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript borra la clave solo si sigue siendo nuestra (compare-and-delete).
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// redisStore subconjunto de *redis.Client que usa el locker (permite fakes en tests).
type redisStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLocker lock distribuido por ítem: SET NX PX con token aleatorio y reintentos acotados.
type RedisLocker struct {
	store    redisStore
	prefix   string
	ttl      time.Duration
	attempts int
	backoff  time.Duration
}

// RedisOption ajusta el locker.
type RedisOption func(*RedisLocker)

// WithRetry cambia el número de intentos y la espera entre ellos.
func WithRetry(attempts int, backoff time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if attempts > 0 {
			l.attempts = attempts
		}
		l.backoff = backoff
	}
}

// NewRedisLocker construye el locker. ttl acota cuánto puede vivir un lock huérfano.
func NewRedisLocker(store redisStore, prefix string, ttl time.Duration, opts ...RedisOption) *RedisLocker {
	if prefix == "" {
		prefix = "inventario"
	}
	l := &RedisLocker{
		store:    store,
		prefix:   prefix,
		ttl:      ttl,
		attempts: 3,
		backoff:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Key devuelve la clave Redis del ítem.
func (l *RedisLocker) Key(itemID int) string {
	return fmt.Sprintf("%s:lock:item:%d", l.prefix, itemID)
}

// Lock intenta adquirir el lock; tras agotar los intentos devuelve ErrBusy.
func (l *RedisLocker) Lock(ctx context.Context, itemID int) (func(), error) {
	key := l.Key(itemID)
	token := uuid.NewString()

	for i := 0; i < l.attempts; i++ {
		ok, err := l.store.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// contexto propio: el del request puede estar cancelado al liberar
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = l.store.Eval(releaseCtx, releaseScript, []string{key}, token).Err()
			}, nil
		}
		if i < l.attempts-1 && l.backoff > 0 {
			select {
			case <-time.After(l.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, ErrBusy
}
