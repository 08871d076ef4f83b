// Package config handles configuration for the server component: defaults,
// then an optional JSON file, then environment variables, then command-line
// flags, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/dmitrijs2005/memberkeeper/internal/logging"
)

// Config holds runtime settings for the memberkeeper server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses of the two transports.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing tokens (HS256). Required.
//   - HashIterations / HashMemoryKiB: argon2id cost parameters.
//   - HashWorkers: concurrent hashing slots; 0 means GOMAXPROCS.
//   - LogBackend: "slog" or "zap".
type Config struct {
	EndpointAddrHTTP string `env:"HTTP_ADDRESS"`
	EndpointAddrGRPC string `env:"GRPC_ADDRESS"`
	DatabaseDSN      string `env:"DATABASE_DSN"`
	SecretKey        string `env:"SECRET"`
	HashIterations   int    `env:"HASH_ITERATIONS"`
	HashMemoryKiB    int    `env:"HASH_MEMORY_KIB"`
	HashWorkers      int    `env:"HASH_WORKERS"`
	LogBackend       string `env:"LOG_BACKEND"`
}

// LoadDefaults populates Config with development defaults. SecretKey is left
// empty on purpose and must be supplied.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.HashIterations = 1
	c.HashMemoryKiB = 64 * 1024
	c.HashWorkers = 0
	c.LogBackend = logging.BackendSlog
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// MaxHashMemoryKiB caps argon2id memory at 4 GiB.
const MaxHashMemoryKiB = 4 << 20

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required (SECRET or -s)"))
	}
	if c.EndpointAddrHTTP == "" && c.EndpointAddrGRPC == "" {
		errs = append(errs, errors.New("at least one of the HTTP and gRPC addresses must be set"))
	}
	if c.HashIterations <= 0 || int64(c.HashIterations) > math.MaxUint32 {
		errs = append(errs, fmt.Errorf("hash iterations must be in 1..%d, got %d", uint32(math.MaxUint32), c.HashIterations))
	}
	if c.HashMemoryKiB <= 0 || c.HashMemoryKiB > MaxHashMemoryKiB {
		errs = append(errs, fmt.Errorf("hash memory must be in 1..%d KiB, got %d KiB", MaxHashMemoryKiB, c.HashMemoryKiB))
	}
	if c.HashWorkers < 0 {
		errs = append(errs, fmt.Errorf("hash workers must not be negative, got %d", c.HashWorkers))
	}
	switch c.LogBackend {
	case "", logging.BackendSlog, logging.BackendZap:
	default:
		errs = append(errs, fmt.Errorf("unknown log backend %q", c.LogBackend))
	}
	return errors.Join(errs...)
}
