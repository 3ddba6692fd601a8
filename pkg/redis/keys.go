package redis

import "strings"

const (
	keyNamespace = "th"

	kindIdempotency = "idempotency"
	kindRateLimit   = "rate_limit"
	kindLock        = "lock"
)

// IdempotencyKey namespaces a cached HTTP response, e.g.
// th:idempotency:<user>|POST|/api/v1/orders:<key>.
func (c *Client) IdempotencyKey(scope, id string) string {
	return joinKey(kindIdempotency, scope, id)
}

// RateLimitKey namespaces a fixed window counter.
func (c *Client) RateLimitKey(scope string) string {
	return joinKey(kindRateLimit, scope)
}

// LockKey namespaces a distributed lock.
func (c *Client) LockKey(name string) string {
	return joinKey(kindLock, name)
}

func joinKey(kind string, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, keyNamespace, kind)
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return strings.Join(segments, ":")
}
