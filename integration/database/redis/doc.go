// Package redis connects to Redis. The service uses it for the shared
// delivery rate-limit buckets and the readiness probe.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Connect accepts redis:// and rediss:// URLs and retries the first ping
// RetryAttempts times within ConnectTimeout.
package redis
