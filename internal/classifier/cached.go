package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/JaimeStill/emotive/pkg/cache"
)

const cachePrefix = "classify:"

// CachePrefix returns the key prefix under which namespace's distributions are stored.
func CachePrefix(namespace string) []byte {
	return []byte(cachePrefix + namespace + ":")
}

// Fingerprint returns the inputs besides the text that shape a backend's
// answer, such as its composed system prompt.
type Fingerprint func(ctx context.Context) (string, error)

// Cached wraps inner with a read-through store keyed by namespace, the
// fingerprint, and text. A nil fingerprint keys on text alone. Only
// distributions that pass Validate are stored. Store and fingerprint
// failures are logged and fall through to inner.
func Cached(inner Classifier, store cache.System, namespace string, fingerprint Fingerprint, logger *slog.Logger) Classifier {
	return &cached{
		inner:       inner,
		store:       store,
		prefix:      CachePrefix(namespace),
		fingerprint: fingerprint,
		logger:      logger.With("system", "classifier-cache", "namespace", namespace),
	}
}

type cached struct {
	inner       Classifier
	store       cache.System
	prefix      []byte
	fingerprint Fingerprint
	logger      *slog.Logger
}

func (c *cached) key(ctx context.Context, text string) ([]byte, error) {
	h := sha256.New()
	if c.fingerprint != nil {
		fp, err := c.fingerprint(ctx)
		if err != nil {
			return nil, err
		}
		h.Write([]byte(fp))
		h.Write([]byte{0})
	}
	h.Write([]byte(text))

	key := make([]byte, 0, len(c.prefix)+hex.EncodedLen(sha256.Size))
	key = append(key, c.prefix...)
	return hex.AppendEncode(key, h.Sum(nil)), nil
}

func (c *cached) Classify(ctx context.Context, text string) (ScoreDistribution, error) {
	key, err := c.key(ctx, text)
	if err != nil {
		c.logger.WarnContext(ctx, "cache bypassed, fingerprint failed", "error", err)
		return c.inner.Classify(ctx, text)
	}

	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "cache read failed", "error", err)
	} else if ok {
		var dist ScoreDistribution
		if err := json.Unmarshal(raw, &dist); err == nil {
			return dist, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cache entry")
	}

	dist, err := c.inner.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	if dist.Validate() == nil {
		raw, err := json.Marshal(dist)
		if err == nil {
			err = c.store.Set(ctx, key, raw)
		}
		if err != nil {
			c.logger.WarnContext(ctx, "cache write failed", "error", err)
		}
	}

	return dist, nil
}
