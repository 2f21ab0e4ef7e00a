package main

import (
	"sync"
	"sync/atomic"
)

const numShards = 64

// handleShard is one shard of the handle table.
type handleShard struct {
	mu      sync.RWMutex
	handles map[uint64]any
}

var (
	shards     [numShards]handleShard
	nextHandle atomic.Uint64
)

func init() {
	for i := range shards {
		shards[i].handles = make(map[uint64]any)
	}
	// 0 is the invalid handle returned to C on failure.
	nextHandle.Store(1)
}

func getShard(h uint64) *handleShard {
	return &shards[h%numShards]
}

// newHandle stores v and returns its handle.
func newHandle(v any) uint64 {
	h := nextHandle.Add(1) - 1
	shard := getShard(h)
	shard.mu.Lock()
	shard.handles[h] = v
	shard.mu.Unlock()
	return h
}

// getHandle returns the value for h, or nil.
func getHandle(h uint64) any {
	if h == 0 {
		return nil
	}
	shard := getShard(h)
	shard.mu.RLock()
	v := shard.handles[h]
	shard.mu.RUnlock()
	return v
}

// getHandleTyped returns the value for h if it is a T.
func getHandleTyped[T any](h uint64) (T, bool) {
	typed, ok := getHandle(h).(T)
	return typed, ok
}

// freeHandleTyped removes h and returns its value if it was a T. A value of
// another type is left in place.
func freeHandleTyped[T any](h uint64) (T, bool) {
	var zero T
	if h == 0 {
		return zero, false
	}
	shard := getShard(h)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	typed, ok := shard.handles[h].(T)
	if !ok {
		return zero, false
	}
	delete(shard.handles, h)
	return typed, true
}
