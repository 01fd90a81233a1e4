package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/parking-lot-reservation/internal/config"
)

// bucketScript refills KEYS[1] by whole intervals, then tries to take a
// token.  ARGV: now_ms, capacity, refill, interval_ms, ttl_s.
// Returns {allowed 0|1, tokens left, wait_ms}.
var bucketScript = redis.NewScript(`
local now, cap, refill, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local b = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens, ts = tonumber(b[1]), tonumber(b[2])
if tokens == nil or ts == nil then
  tokens, ts = cap, now
end
local n = math.floor(math.max(0, now - ts) / every)
if n > 0 then
  tokens = math.min(cap, tokens + n * refill)
  ts = ts + n * every
end
local ok, wait = 0, 0
if tokens > 0 then
  ok, tokens = 1, tokens - 1
else
  wait = math.max(0, every - (now - ts))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// bucketResult is the decoded reply of bucketScript.
type bucketResult struct {
	Allowed   bool
	Remaining int64
	Wait      time.Duration
}

func takeToken(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string, now time.Time) (bucketResult, error) {
	v, err := bucketScript.Run(ctx, rdb, []string{key},
		now.UnixMilli(), cfg.Capacity, cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(), int64(cfg.TTL/time.Second)).Slice()
	if err != nil {
		return bucketResult{}, err
	}
	if len(v) != 3 {
		return bucketResult{}, redis.Nil
	}
	return bucketResult{
		Allowed:   asInt64(v[0]) == 1,
		Remaining: asInt64(v[1]),
		Wait:      time.Duration(asInt64(v[2])) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests per key (see RateLimitConfig.KeyStrategy)
// with a token bucket held in Redis.  Without a client, or when Redis
// fails, requests pass through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			res, err := takeToken(c.Request().Context(), rdb, cfg, key, time.Now())
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] key=%s: %v", key, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if res.Allowed {
				return next(c)
			}

			secs := int(math.Ceil(res.Wait.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// rateKey joins the configured identity parts: ip, user (JWT subject or
// "anon") and route (method plus path template).
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	user := identityKey(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", user)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", user)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", user, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", user, "route", route)
	}
	return strings.Join(parts, ":")
}
