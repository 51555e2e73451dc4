package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is stripped from environment variables before they are mapped to
// config keys. A double underscore separates nested keys, so
// SLASHSQL_DATABASE__BUSY_TIMEOUT sets database.busy_timeout.
const EnvPrefix = "SLASHSQL_"

// ErrInvalidPort is returned by ParsePort for anything that is not a TCP port.
var ErrInvalidPort = errors.New("invalid port")

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"host":               "host",
	"busy-timeout":       "database.busy_timeout",
	"log-sql":            "database.log_sql",
	"fail-on-init-error": "database.fail_on_init_error",
	"allow":              "guard.allowed_verbs",
	"log-level":          "log.level",
	"log-format":         "log.format",
	"read-timeout":       "read_timeout",
	"write-timeout":      "write_timeout",
	"max-frame-bytes":    "max_frame_bytes",
	"addr":               "server_addr",
	"timeout":            "request_timeout",
}

// LoadServerConfig builds the server configuration.
// Precedence (highest to lowest): flags > env vars > defaults.
// The database path is always DefaultDatabasePath; neither env nor flags
// can move it.
func LoadServerConfig(flags *pflag.FlagSet) (ServerConfig, error) {
	var cfg ServerConfig
	err := load(&cfg, flags, map[string]interface{}{
		"host":                        DefaultHost,
		"port":                        DefaultPort,
		"database.busy_timeout":       DefaultBusyTimeout,
		"database.log_sql":            false,
		"database.fail_on_init_error": false,
		"guard.allowed_verbs":         "",
		"log.level":                   "info",
		"log.format":                  "text",
		"read_timeout":                0,
		"write_timeout":               0,
		"max_frame_bytes":             0,
	})
	cfg.Database.Path = DefaultDatabasePath
	return cfg, err
}

// LoadClientConfig builds the client configuration.
func LoadClientConfig(flags *pflag.FlagSet) (ClientConfig, error) {
	var cfg ClientConfig
	err := load(&cfg, flags, map[string]interface{}{
		"server_addr":     fmt.Sprintf("%s:%d", DefaultHost, DefaultPort),
		"request_timeout": DefaultRequestTimeout,
		"log.level":       "warn",
		"log.format":      "text",
	})
	return cfg, err
}

// ParsePort validates a positional port argument.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("%w %q", ErrInvalidPort, raw)
	}
	return port, nil
}

func load(target interface{}, flags *pflag.FlagSet, defaults map[string]interface{}) error {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return fmt.Errorf("failed to load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}
	return nil
}
