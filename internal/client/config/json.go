package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/memberkeeper/internal/flagx"
)

// JsonConfig is the on-disk shape of the CLI configuration file.
// RequestTimeout accepts Go duration strings such as "3s".
type JsonConfig struct {
	ServerEndpointAddr *string `json:"server_endpoint_addr"`
	RequestTimeout     *string `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c, -config or $CONFIG.
// Read, decode and duration errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.RequestTimeout != nil {
		d, err := time.ParseDuration(*jc.RequestTimeout)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
}
