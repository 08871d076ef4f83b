package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/memberkeeper/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-t int      argon2id iterations
//	-m int      argon2id memory, KiB
//	-w int      concurrent hashing slots
//	-l string   log backend (slog|zap)
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-t", "-m", "-w", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.IntVar(&config.HashIterations, "t", config.HashIterations, "argon2id iterations")
	fs.IntVar(&config.HashMemoryKiB, "m", config.HashMemoryKiB, "argon2id memory (KiB)")
	fs.IntVar(&config.HashWorkers, "w", config.HashWorkers, "concurrent hashing slots")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
