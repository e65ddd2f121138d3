package sync

import (
	"context"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/semaphore"
)

// DefaultShards is the shard count used by NewShardedMutex.
const DefaultShards = 64

// ShardedMutex spreads entity keys over a fixed set of mutexes. Two keys that
// land on the same shard serialize; that is acceptable for the short
// critical sections guarded here.
type ShardedMutex struct {
	shards []*semaphore.Weighted
}

func NewShardedMutex() *ShardedMutex {
	return NewShardedMutexN(DefaultShards)
}

// NewShardedMutexN builds a mutex with n shards; n < 1 is treated as 1.
func NewShardedMutexN(n int) *ShardedMutex {
	if n < 1 {
		n = 1
	}
	shards := make([]*semaphore.Weighted, n)
	for i := range shards {
		shards[i] = semaphore.NewWeighted(1)
	}
	return &ShardedMutex{shards: shards}
}

func (m *ShardedMutex) Lock(key string) {
	_ = m.shards[m.shardFor(key)].Acquire(context.Background(), 1)
}

func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Release(1)
}

// lockShard waits for shard until ctx is done.
func (m *ShardedMutex) lockShard(ctx context.Context, shard int) error {
	return m.shards[shard].Acquire(ctx, 1)
}

func (m *ShardedMutex) shardFor(key string) int {
	if len(m.shards) == 1 {
		return 0
	}
	return int(xxhash.Sum64String(key) % uint64(len(m.shards)))
}
