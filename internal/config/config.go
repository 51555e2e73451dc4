package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// ServerName identifies this service in logs. Existing log consumers
	// match on it.
	ServerName = "STOMP_PYTHON_SQL_SERVER"

	DefaultHost         = "127.0.0.1"
	DefaultPort         = 7778
	DefaultDatabasePath = "stomp_server.db"
	DefaultBusyTimeout  = 5 * time.Second

	DefaultRequestTimeout = 30 * time.Second
)

// ServerConfig holds settings for the TCP server runtime.
type ServerConfig struct {
	Host          string         `koanf:"host"`
	Port          int            `koanf:"port"`
	Database      DatabaseConfig `koanf:"database"`
	Guard         GuardConfig    `koanf:"guard"`
	Log           LogConfig      `koanf:"log"`
	ReadTimeout   time.Duration  `koanf:"read_timeout"`
	WriteTimeout  time.Duration  `koanf:"write_timeout"`
	MaxFrameBytes int            `koanf:"max_frame_bytes"`
}

// ListenAddr joins host and port into a dialable address.
func (c ServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	ServerAddr     string        `koanf:"server_addr"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	Log            LogConfig     `koanf:"log"`
}

// DatabaseConfig captures storage configuration.
type DatabaseConfig struct {
	Path            string        `koanf:"path"`
	BusyTimeout     time.Duration `koanf:"busy_timeout"`
	LogSQL          bool          `koanf:"log_sql"`
	FailOnInitError bool          `koanf:"fail_on_init_error"`
}

// GuardConfig restricts which leading keywords clients may execute.
// An empty list leaves execution unrestricted.
type GuardConfig struct {
	AllowedVerbs string `koanf:"allowed_verbs"`
}

// Verbs splits AllowedVerbs on commas and whitespace.
func (g GuardConfig) Verbs() []string {
	return strings.FieldsFunc(g.AllowedVerbs, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
