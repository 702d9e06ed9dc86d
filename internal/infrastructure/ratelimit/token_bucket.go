package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a token bucket refilled continuously at a fixed rate
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastSeen   time.Time
	now        func() time.Time
}

// NewTokenBucket creates a full bucket
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucketWithClock(capacity, refillRate, time.Now)
}

func newTokenBucketWithClock(capacity int, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastSeen:   now(),
		now:        now,
	}
}

// Allow consumes one token if available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

// Remaining returns the whole tokens currently available
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return int(tb.tokens)
}

// idleSince reports whether the bucket has been untouched since cutoff
func (tb *TokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastSeen.Before(cutoff)
}

// refill must be called with the lock held
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastSeen).Seconds()
	tb.lastSeen = now
	if elapsed <= 0 {
		return
	}
	tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
}

// ClientLimiter keeps one bucket per client
type ClientLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*TokenBucket
	capacity    int
	refillRate  float64
	idleTimeout time.Duration
	lastSweep   time.Time
	now         func() time.Time
}

// NewClientLimiter creates a per-client limiter. Buckets idle for longer
// than idleTimeout are dropped.
func NewClientLimiter(capacity int, refillRate float64, idleTimeout time.Duration) *ClientLimiter {
	return &ClientLimiter{
		buckets:     make(map[string]*TokenBucket),
		capacity:    capacity,
		refillRate:  refillRate,
		idleTimeout: idleTimeout,
		lastSweep:   time.Now(),
		now:         time.Now,
	}
}

// Allow consumes a token from the client's bucket and returns the tokens left
func (cl *ClientLimiter) Allow(clientID string) (bool, int) {
	bucket := cl.bucket(clientID)
	allowed := bucket.Allow()
	return allowed, bucket.Remaining()
}

// Clients returns the number of tracked clients
func (cl *ClientLimiter) Clients() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.buckets)
}

func (cl *ClientLimiter) bucket(clientID string) *TokenBucket {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.sweep()

	bucket, ok := cl.buckets[clientID]
	if !ok {
		bucket = newTokenBucketWithClock(cl.capacity, cl.refillRate, cl.now)
		cl.buckets[clientID] = bucket
	}
	return bucket
}

// sweep must be called with the lock held
func (cl *ClientLimiter) sweep() {
	now := cl.now()
	if now.Sub(cl.lastSweep) < cl.idleTimeout {
		return
	}

	cutoff := now.Add(-cl.idleTimeout)
	for id, bucket := range cl.buckets {
		if bucket.idleSince(cutoff) {
			delete(cl.buckets, id)
		}
	}
	cl.lastSweep = now
}
