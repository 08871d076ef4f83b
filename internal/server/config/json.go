package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/memberkeeper/internal/flagx"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer fields
// distinguish an absent key from a zero value so absent keys keep defaults.
type JsonConfig struct {
	EndpointAddrHTTP *string `json:"endpoint_addr_http"`
	EndpointAddrGRPC *string `json:"endpoint_addr_grpc"`
	DatabaseDSN      *string `json:"database_dsn"`
	SecretKey        *string `json:"secret_key"`
	HashIterations   *int    `json:"hash_iterations"`
	HashMemoryKiB    *int    `json:"hash_memory_kib"`
	HashWorkers      *int    `json:"hash_workers"`
	LogBackend       *string `json:"log_backend"`
}

// parseJson loads configuration values from the file named by -c, -config or
// $CONFIG. When none is set nothing is loaded. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setInt(&config.HashIterations, c.HashIterations)
	setInt(&config.HashMemoryKiB, c.HashMemoryKiB)
	setInt(&config.HashWorkers, c.HashWorkers)
	setString(&config.LogBackend, c.LogBackend)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
