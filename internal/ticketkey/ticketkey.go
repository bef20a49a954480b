// Package ticketkey issues the human-facing ticket identifiers (TKT-000123).
package ticketkey

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Sequencer hands out strictly increasing sequence numbers.
type Sequencer interface {
	Next(ctx context.Context) (int64, error)
}

// Resyncer is implemented by sequencers that can be moved past keys already in use.
type Resyncer interface {
	Resync(ctx context.Context) error
}

// FloorFunc reports the highest sequence number already taken by a stored ticket.
type FloorFunc func(ctx context.Context) (int64, error)

// Generator formats sequence numbers into ticket keys.
type Generator struct {
	prefix string
	seq    Sequencer
}

// NewGenerator builds a generator; an empty prefix defaults to TKT.
func NewGenerator(prefix string, seq Sequencer) *Generator {
	if prefix == "" {
		prefix = "TKT"
	}
	return &Generator{prefix: prefix, seq: seq}
}

// Next returns the next ticket key.
func (g *Generator) Next(ctx context.Context) (string, error) {
	n, err := g.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("next ticket sequence: %w", err)
	}
	return Format(g.prefix, n), nil
}

// Resync moves the sequence past every stored key. Sequencers without a floor
// are left alone.
func (g *Generator) Resync(ctx context.Context) error {
	r, ok := g.seq.(Resyncer)
	if !ok {
		return nil
	}
	if err := r.Resync(ctx); err != nil {
		return fmt.Errorf("resync ticket sequence: %w", err)
	}
	return nil
}

// Format renders n zero-padded to at least six digits.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

// Sequence extracts the number from a key produced by Format.
func Sequence(key string) (int64, bool) {
	i := strings.LastIndexByte(key, '-')
	if i < 0 || i == len(key)-1 {
		return 0, false
	}
	n, err := strconv.ParseInt(key[i+1:], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

var (
	// incrExisting increments the counter only when it is present.
	incrExisting = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return redis.call('INCR', KEYS[1])
end
return -1`)

	// raiseTo lifts the counter to ARGV[1] and never lowers it.
	raiseTo = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if cur < floor then
  redis.call('SET', KEYS[1], floor)
end
return 0`)
)

// RedisSequencer increments a single counter key. A missing key (fresh Redis,
// flush, eviction) is seeded from floor before it is used.
type RedisSequencer struct {
	client *redis.Client
	key    string
	floor  FloorFunc
}

func NewRedisSequencer(client *redis.Client, keyPrefix string, floor FloorFunc) *RedisSequencer {
	return &RedisSequencer{client: client, key: keyPrefix + "ticket:seq", floor: floor}
}

func (s *RedisSequencer) Next(ctx context.Context) (int64, error) {
	n, err := incrExisting.Run(ctx, s.client, []string{s.key}).Int64()
	if err != nil {
		return 0, err
	}
	if n >= 0 {
		return n, nil
	}
	if err := s.Resync(ctx); err != nil {
		return 0, err
	}
	return s.client.Incr(ctx, s.key).Result()
}

func (s *RedisSequencer) Resync(ctx context.Context) error {
	var floor int64
	if s.floor != nil {
		var err error
		if floor, err = s.floor(ctx); err != nil {
			return err
		}
	}
	return raiseTo.Run(ctx, s.client, []string{s.key}, floor).Err()
}

// PostgresSequencer draws from the ticket_key_seq sequence.
type PostgresSequencer struct {
	pool  *pgxpool.Pool
	floor FloorFunc
}

func NewPostgresSequencer(pool *pgxpool.Pool, floor FloorFunc) *PostgresSequencer {
	return &PostgresSequencer{pool: pool, floor: floor}
}

func (s *PostgresSequencer) Next(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT nextval('ticket_key_seq')`).Scan(&n)
	return n, err
}

func (s *PostgresSequencer) Resync(ctx context.Context) error {
	if s.floor == nil {
		return nil
	}
	floor, err := s.floor(ctx)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`SELECT setval('ticket_key_seq', $1::bigint) WHERE $1::bigint > (SELECT last_value FROM ticket_key_seq)`,
		floor)
	return err
}

// MemorySequencer is a process-local counter.
type MemorySequencer struct {
	Floor FloorFunc

	mu sync.Mutex
	n  int64
}

func (s *MemorySequencer) Next(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n, nil
}

func (s *MemorySequencer) Resync(ctx context.Context) error {
	if s.Floor == nil {
		return nil
	}
	floor, err := s.Floor(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if floor > s.n {
		s.n = floor
	}
	return nil
}
