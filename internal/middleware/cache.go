// Package middleware holds the Redis-backed echo middleware: a response
// cache for event reads and a token bucket for booking requests.
package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-seat-booking/internal/config"
)

// captureWriter records the status and, up to limit bytes, the body while
// forwarding both to the client.
type captureWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.overflow {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.overflow = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// cachedResponse is what is stored per key.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h"`
	Body   []byte      `json:"b"`
}

// Cache caches successful GET responses in Redis.  Entries of routes with
// an :id parameter are grouped per event so that InvalidateEvent can drop
// them after a booking or an edit; list entries are dropped along with any
// event because they carry seat counts.
//
// Keys embed a generation counter that InvalidateEvent increments before
// deleting.  A response computed before an invalidation is therefore
// stored under the old generation and never served.
//
// A Cache without a Redis client, or with caching disabled, is a no-op.
type Cache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewCache returns a Cache for cfg.  rdb may be nil.
func NewCache(cfg config.CacheConfig, rdb *redis.Client) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &Cache{cfg: cfg, rdb: rdb}
}

func (ch *Cache) enabled() bool { return ch != nil && ch.cfg.Enabled && ch.rdb != nil }

// genKey names the generation counter of an event, or of the list entries
// when eventID is empty.
func (ch *Cache) genKey(eventID string) string {
	if eventID == "" {
		return ch.cfg.Prefix + ":gen:list"
	}
	return fmt.Sprintf("%s:gen:event:%s", ch.cfg.Prefix, eventID)
}

func (ch *Cache) generation(ctx context.Context, eventID string) (int64, error) {
	n, err := ch.rdb.Get(ctx, ch.genKey(eventID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// keyFor builds "<prefix>:event:<id>:g<gen>:<hash>" for per-event routes
// and "<prefix>:list:g<gen>:<hash>" otherwise.
func (ch *Cache) keyFor(c echo.Context, gen int64) string {
	r := c.Request()
	parts := []string{"route", c.Path()}
	if !strings.EqualFold(ch.cfg.KeyStrategy, "route") {
		parts = append(parts, "q", r.URL.RawQuery)
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	if id := c.Param("id"); id != "" {
		return fmt.Sprintf("%s:event:%s:g%d:%x", ch.cfg.Prefix, id, gen, sum)
	}
	return fmt.Sprintf("%s:list:g%d:%x", ch.cfg.Prefix, gen, sum)
}

// Middleware serves cached responses and stores fresh 200 responses.
func (ch *Cache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !ch.enabled() {
			return next
		}
		return func(c echo.Context) error {
			if !ch.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			gen, err := ch.generation(ctx, c.Param("id"))
			if err != nil {
				log.Printf("cache: generation: %v", err)
				return next(c)
			}
			key := ch.keyFor(c, gen)

			if raw, err := ch.rdb.Get(ctx, key).Bytes(); err == nil {
				var cr cachedResponse
				if err := json.Unmarshal(raw, &cr); err == nil {
					h := c.Response().Header()
					for k, vals := range cr.Header {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						h[k] = append([]string(nil), vals...)
					}
					h.Set("X-Cache", "HIT")
					return c.Blob(cr.Status, h.Get(echo.HeaderContentType), cr.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: ch.cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.overflow {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := json.Marshal(cachedResponse{Status: cw.status, Header: hdr, Body: cw.buf.Bytes()})
			if err != nil {
				return nil
			}
			if err := ch.rdb.Set(context.WithoutCancel(ctx), key, payload, ch.cfg.TTL).Err(); err != nil {
				log.Printf("cache: set %s: %v", key, err)
			}
			return nil
		}
	}
}

// InvalidateEvent bumps the generations of the event and of the list
// entries, then drops their stored responses.
func (ch *Cache) InvalidateEvent(ctx context.Context, eventID string) {
	if !ch.enabled() {
		return
	}
	if _, err := ch.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, ch.genKey(eventID))
		p.Incr(ctx, ch.genKey(""))
		return nil
	}); err != nil {
		log.Printf("cache: bump generation of %s: %v", eventID, err)
	}
	for _, pattern := range []string{
		fmt.Sprintf("%s:event:%s:*", ch.cfg.Prefix, eventID),
		ch.cfg.Prefix + ":list:*",
	} {
		if err := ch.deleteMatching(ctx, pattern); err != nil {
			log.Printf("cache: invalidate %s: %v", pattern, err)
		}
	}
}

func (ch *Cache) deleteMatching(ctx context.Context, pattern string) error {
	iter := ch.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return ch.rdb.Del(ctx, keys...).Err()
}
