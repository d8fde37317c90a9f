// Package redis connects to a Redis server with startup retries and exposes
// a healthcheck helper for readiness probes. It wraps the go-redis client;
// Config fields are populated from REDIS_* environment variables via
// github.com/caarlos0/env.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer client.Close()
//
// Sentinel errors (e.g. ErrRedisNotReady) wrap the underlying go-redis
// errors with errors.Join so callers can compare and unwrap.
package redis
