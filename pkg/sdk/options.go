package crvs

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	eventsDir string

	// Empty addrs disables document storage.
	addrs     []string
	username  string
	password  string
	db        int
	keyPrefix string

	location        *time.Location
	minFilledParams int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEventsDir sets the directory of YAML event configurations. Required.
func WithEventsDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.eventsDir = dir
	})
}

// WithRedis enables document storage on a Redis 8+ instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisAuth sets the ACL username and logical database.
func WithRedisAuth(username string, db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.db = db
	})
}

// WithKeyPrefix sets the Redis key prefix of stored documents.
// Default: "crvs:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithLocation sets the timezone that calendar dates are interpreted in.
// Default: UTC.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(c *clientConfig) {
		c.location = loc
	})
}

// WithMinFilledParams sets how many filled parameters make an advanced
// search allowed. Default: 2.
func WithMinFilledParams(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minFilledParams = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
