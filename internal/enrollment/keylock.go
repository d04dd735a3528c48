package enrollment

import (
	"hash/fnv"
	"sync"
)

const lockShards = 64

// keyLock serializes operations on the same registration number. A fixed shard
// table keeps the lock set bounded regardless of how many identities exist;
// unrelated keys may share a shard, which only costs a little extra contention.
type keyLock struct {
	shards [lockShards]sync.Mutex
}

func (l *keyLock) shard(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.shards[h.Sum32()%lockShards]
}

// Lock acquires the shard for key and returns its unlock function.
func (l *keyLock) Lock(key string) func() {
	mu := l.shard(key)
	mu.Lock()
	return mu.Unlock
}
