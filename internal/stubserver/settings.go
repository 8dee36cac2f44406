package stubserver

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/waypoint/internal/config"
)

const (
	// DefaultMaxBodyBytes limits request payloads to 1 MB.
	DefaultMaxBodyBytes int64 = 1 << 20
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes, including simulated latency.
	DefaultWriteTimeout = 60 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
	// DefaultTokenTTL is the lifetime of issued id tokens.
	DefaultTokenTTL = time.Hour
)

// Settings captures runtime configuration for the fixture server.
type Settings struct {
	Host         string
	Port         int
	Fixtures     string
	SigningKey   string
	Latency      time.Duration
	TokenTTL     time.Duration
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SettingsFromConfig builds Settings from the project's .waypoint config.
// Environment overrides were already applied when the config was loaded.
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := Settings{
		Host: config.DefaultStubHost,
		Port: config.DefaultStubPort,
	}
	if cfg != nil {
		raw := cfg.Project.Stub
		if host := strings.TrimSpace(raw.Host); host != "" {
			settings.Host = host
		}
		if isValidPort(raw.Port) {
			settings.Port = raw.Port
		}
		settings.Fixtures = raw.Fixtures
		settings.SigningKey = raw.SigningKey
		settings.Latency = raw.Latency
	}
	settings.normalize()
	return settings
}

func (s *Settings) normalize() {
	if s == nil {
		return
	}
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = config.DefaultStubHost
	}
	if s.Port < 0 || s.Port > 65535 {
		s.Port = config.DefaultStubPort
	}
	if s.Latency < 0 {
		s.Latency = 0
	}
	if s.TokenTTL <= 0 {
		s.TokenTTL = DefaultTokenTTL
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL for the server.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
