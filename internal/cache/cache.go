// Package cache memoizes fetched pages in redis, keyed by URL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/maltedev/gatherer-scraper/internal/fetcher"
	"github.com/redis/go-redis/v9"
)

var ErrStoreUnavailable = errors.New("cache store unavailable")

type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
	// IgnoreCache always fetches and overwrites the stored page.
	IgnoreCache bool
	// Expire sets a time-to-live on stored pages when positive.
	Expire time.Duration
}

func DefaultOptions() *Options {
	return &Options{
		Host: "127.0.0.1",
		Port: 6379,
	}
}

// Conn is the part of a redis connection the cache uses.
type Conn interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	ExpireAt(ctx context.Context, key string, tm time.Time) *redis.BoolCmd
	Close() error
}

// Fetcher decorates a fetcher.Fetcher with a page cache. A store connection
// is taken for each Fetch call and released before it returns.
type Fetcher struct {
	next    fetcher.Fetcher
	opts    *Options
	client  *redis.Client
	connect func() Conn
	now     func() time.Time
	logger  *slog.Logger
}

// New wraps next. With nil opts every fetch passes straight through.
func New(next fetcher.Fetcher, opts *Options, logger *slog.Logger) *Fetcher {
	f := &Fetcher{
		next:   next,
		now:    time.Now,
		logger: logger.With("component", "page_cache"),
	}
	if opts == nil {
		return f
	}

	merged := *opts
	defaults := DefaultOptions()
	if merged.Host == "" {
		merged.Host = defaults.Host
	}
	if merged.Port == 0 {
		merged.Port = defaults.Port
	}

	f.opts = &merged
	f.client = redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(merged.Host, strconv.Itoa(merged.Port)),
		Password: merged.Password,
		DB:       merged.DB,
	})
	f.connect = func() Conn {
		return f.client.Conn()
	}

	return f
}

// Enabled reports whether pages go through the store.
func (f *Fetcher) Enabled() bool {
	return f.opts != nil
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.opts == nil {
		return f.next.Fetch(ctx, url)
	}

	conn := f.connect()
	defer func() {
		if err := conn.Close(); err != nil {
			f.logger.Warn("failed to release cache connection", "error", err)
		}
	}()

	if err := conn.Ping(ctx).Err(); err != nil {
		f.logger.Error("cache store unreachable", "error", err)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !f.opts.IgnoreCache {
		page, err := conn.Get(ctx, url).Result()
		switch {
		case err == nil && page != "":
			f.logger.Debug("cache hit", "url", url)
			return page, nil
		case err != nil && !errors.Is(err, redis.Nil):
			f.logger.Warn("cache lookup failed", "url", url, "error", err)
		}
	}

	return f.retrieveAndSave(ctx, conn, url)
}

func (f *Fetcher) retrieveAndSave(ctx context.Context, conn Conn, url string) (string, error) {
	page, err := f.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := conn.Set(ctx, url, page, 0).Err(); err != nil {
		f.logger.Warn("failed to store page", "url", url, "error", err)
		return page, nil
	}

	if f.opts.Expire > 0 {
		if err := conn.ExpireAt(ctx, url, f.now().Add(f.opts.Expire)).Err(); err != nil {
			f.logger.Warn("failed to set page expiry", "url", url, "error", err)
		}
	}

	return page, nil
}

// Close releases the connection pool.
func (f *Fetcher) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
