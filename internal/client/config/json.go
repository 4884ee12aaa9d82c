package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/aichopaicho/internal/flagx"
	"github.com/dmitrijs2005/aichopaicho/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// are timex.Duration so the file can say "30s".
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	SyncInterval       timex.Duration `json:"sync_interval"`
	RemoteTimeout      timex.Duration `json:"remote_timeout"`
	DatabasePath       string         `json:"database_path"`
	LogFile            string         `json:"log_file"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Absent keys keep their current value. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.SyncInterval.Duration > 0 {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.RemoteTimeout.Duration > 0 {
		cfg.RemoteTimeout = jc.RemoteTimeout.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}
}
