package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Config holds connection settings. URL uses the redis:// scheme.
type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultConfig(url string) Config {
	return Config{
		URL:          url,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Client wraps the go-redis client with health checking.
type Client struct {
	*redis.Client
}

// New connects and pings. Returns nil, nil if the URL is empty.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Check pings Redis; used as a readiness check.
func (c *Client) Check(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RegisterPoolMetrics exposes pool statistics as gauges read at scrape time.
func (c *Client) RegisterPoolMetrics(reg prometheus.Registerer) error {
	gauges := map[string]func(*redis.PoolStats) float64{
		"ridelink_redis_pool_total_conns": func(s *redis.PoolStats) float64 { return float64(s.TotalConns) },
		"ridelink_redis_pool_idle_conns":  func(s *redis.PoolStats) float64 { return float64(s.IdleConns) },
		"ridelink_redis_pool_hits":        func(s *redis.PoolStats) float64 { return float64(s.Hits) },
		"ridelink_redis_pool_misses":      func(s *redis.PoolStats) float64 { return float64(s.Misses) },
		"ridelink_redis_pool_timeouts":    func(s *redis.PoolStats) float64 { return float64(s.Timeouts) },
	}
	for name, read := range gauges {
		g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: name,
			Help: "Redis connection pool statistic " + name,
		}, func() float64 { return read(c.PoolStats()) })
		if err := reg.Register(g); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}
