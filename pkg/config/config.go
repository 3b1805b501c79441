// Package config resolves the runtime configuration for the CLI and
// server from, in increasing precedence: defaults, an optional dotenv
// file, and ORGVAULT_* environment variables. Flags override all of
// these at the command layer.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFilename is the dotenv file looked up in the working directory.
const DefaultFilename = ".orgvault"

// Environment variable names.
const (
	EnvVaultPath = "ORGVAULT_VAULT"
	EnvDBPath    = "ORGVAULT_DB"
	EnvAddr      = "ORGVAULT_ADDR"
	EnvDebounce  = "ORGVAULT_DEBOUNCE"
)

// Config is the resolved runtime configuration.
type Config struct {
	// VaultPath is the on-disk root of the document vault.
	VaultPath string
	// DBPath is the BoltDB file holding the canonical records; empty
	// means in-memory only.
	DBPath string
	// Addr is the HTTP listen address for the serve command.
	Addr string
	// Debounce is the quiet period before a rebuild fires.
	Debounce time.Duration
}

// Load resolves the configuration. The dotenv file at path is optional;
// a missing file is not an error. An empty path uses DefaultFilename.
func Load(path string) (Config, error) {
	cfg := Config{
		VaultPath: ".",
		Addr:      "localhost:8787",
		Debounce:  300 * time.Millisecond,
	}

	if path == "" {
		path = DefaultFilename
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("parsing config file %q: %w", path, err)
		}
		values = map[string]string{}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return values[key]
	}

	if v := lookup(EnvVaultPath); v != "" {
		cfg.VaultPath = v
	}
	if v := lookup(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := lookup(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := lookup(EnvDebounce); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: want milliseconds", EnvDebounce, v)
		}
		cfg.Debounce = time.Duration(ms) * time.Millisecond
	}
	return cfg, nil
}
