// Package ratelimiter implements token bucket rate limiting with pluggable
// storage.
//
// A Bucket binds a Config (capacity, refill rate, refill interval) to a
// Store. MemoryStore keeps state in process; RedisStore keeps it in Redis
// so several replicas share one budget. The delivery transports use Wait
// to pace outgoing mail to five messages per second per transport:
//
//	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     5,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	if err := bucket.Wait(ctx, "smtp:submission"); err != nil {
//		return err
//	}
//
// Allow and AllowN never block. A denied request takes nothing from the
// bucket, so a caller that retries after RetryAfter is not pushed back.
//
// MemoryStore drops buckets idle for an hour (WithIdleTTL) while its
// sweep loop runs; start it with Run inside an errgroup.
package ratelimiter
