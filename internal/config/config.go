// internal/config/config.go
//
// This package handles configuration and the .waypoint directory structure.
// Every project directory waypoint runs in gets a .waypoint/ folder holding the
// config file, logs and exported itineraries.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in each project
	Dir = ".waypoint"

	DefaultAPIURL            = "http://localhost:8086"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 2.0
	DefaultBurst             = 2
	DefaultPreference        = "fastest"
	DefaultLogLevel          = "info"
	DefaultStubHost          = "127.0.0.1"
	DefaultStubPort          = 8086
)

const defaultProjectConfigYAML = `# waypoint project configuration
version: 1

# Place-discovery and itinerary-planning services.
services:
  base_url: http://localhost:8086
  timeout: 30s
  # Outbound requests per second and burst size.
  requests_per_second: 2
  burst: 2

# Identity provider used for sign-in and sign-up.
identity:
  base_url: http://localhost:8086
  # api_key: your-identity-api-key

planning:
  # fastest or cheapest
  default_preference: fastest

logging:
  level: info

# Local fixture server (waypoint stub).
stub:
  host: 127.0.0.1
  port: 8086
  # fixtures: fixtures.yaml
  # latency: 500ms
`

// ServicesConfig points at the discovery and planning endpoints.
type ServicesConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// IdentityConfig points at the identity provider.
type IdentityConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key,omitempty"`
}

// PlanningConfig captures planning preferences.
type PlanningConfig struct {
	DefaultPreference string `yaml:"default_preference"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StubConfig configures the local fixture server.
type StubConfig struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	Fixtures   string        `yaml:"fixtures,omitempty"`
	SigningKey string        `yaml:"signing_key,omitempty"`
	Latency    time.Duration `yaml:"latency,omitempty"`
}

// ProjectConfig models .waypoint/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Services ServicesConfig `yaml:"services"`
	Identity IdentityConfig `yaml:"identity"`
	Planning PlanningConfig `yaml:"planning"`
	Logging  LoggingConfig  `yaml:"logging"`
	Stub     StubConfig     `yaml:"stub"`
}

// Config holds the runtime configuration for waypoint.
type Config struct {
	// ProjectDir is the directory where the user ran `waypoint` from
	ProjectDir string

	// StateDir is ProjectDir/.waypoint
	StateDir string

	Project ProjectConfig
}

// InitDir creates the .waypoint directory structure in the given project directory.
//
// Structure created:
// .waypoint/
// ├── config.yaml
// ├── logs/      <- waypoint.log
// └── exports/   <- exported itineraries
func InitDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, Dir)
	dirs := []string{
		filepath.Join(stateDir, "logs"),
		filepath.Join(stateDir, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(stateDir, "config.yaml"))
}

// NewConfig loads .env, the project config file and environment overrides, in
// that order of increasing precedence.
func NewConfig(projectDir string) (*Config, error) {
	if err := loadDotEnv(projectDir); err != nil {
		return nil, err
	}
	cfg := &Config{
		ProjectDir: projectDir,
		StateDir:   filepath.Join(projectDir, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.Project.applyEnvOverrides()
	cfg.Project.normalize(projectDir)
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// ExportsDir returns the directory exported itineraries are written to
func (c *Config) ExportsDir() string {
	return filepath.Join(c.StateDir, "exports")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// DefaultPreference returns the configured optimization preference.
func (c *Config) DefaultPreference() string {
	return c.Project.Planning.DefaultPreference
}

// SetDefaultPreference updates the default optimization preference and
// persists it back to .waypoint/config.yaml so the next launch starts with it.
// Only the preference is written; environment overrides stay out of the file.
func (c *Config) SetDefaultPreference(pref string) error {
	pref = normalizeWord(pref)
	if !validPreference(pref) {
		return fmt.Errorf("config: preference must be 'fastest' or 'cheapest'")
	}
	onDisk, err := c.readProjectFile()
	if err != nil {
		return err
	}
	onDisk.Planning.DefaultPreference = pref
	if err := c.writeProjectFile(onDisk); err != nil {
		return err
	}
	c.Project.Planning.DefaultPreference = pref
	return nil
}

// StubAddress returns the stub server bind address in host:port form.
func (c *Config) StubAddress() string {
	return net.JoinHostPort(c.Project.Stub.Host, strconv.Itoa(c.Project.Stub.Port))
}

func loadDotEnv(projectDir string) error {
	path := filepath.Join(projectDir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadProjectConfig() error {
	parsed, err := c.readProjectFile()
	if err != nil {
		return err
	}
	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Project = parsed
	return nil
}

// readProjectFile returns the defaults overlaid with the file contents, without
// normalization or environment overrides.
func (c *Config) readProjectFile() (ProjectConfig, error) {
	parsed := defaultProjectConfig()
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return parsed, nil
		}
		return parsed, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return parsed, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return parsed, nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Services: ServicesConfig{
			BaseURL:           DefaultAPIURL,
			Timeout:           DefaultTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		Identity: IdentityConfig{BaseURL: DefaultAPIURL},
		Planning: PlanningConfig{DefaultPreference: DefaultPreference},
		Logging:  LoggingConfig{Level: DefaultLogLevel},
		Stub: StubConfig{
			Host: DefaultStubHost,
			Port: DefaultStubPort,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Services.Timeout <= 0 {
		pc.Services.Timeout = DefaultTimeout
	}
	if pc.Services.RequestsPerSecond < 0 {
		pc.Services.RequestsPerSecond = 0
	}
	if pc.Services.Burst <= 0 {
		pc.Services.Burst = DefaultBurst
	}
	if strings.TrimSpace(pc.Identity.BaseURL) == "" {
		pc.Identity.BaseURL = pc.Services.BaseURL
	}
	if strings.TrimSpace(pc.Planning.DefaultPreference) == "" {
		pc.Planning.DefaultPreference = DefaultPreference
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = DefaultLogLevel
	}
	if strings.TrimSpace(pc.Stub.Host) == "" {
		pc.Stub.Host = DefaultStubHost
	}
	if pc.Stub.Port == 0 {
		pc.Stub.Port = DefaultStubPort
	}
}

func (pc *ProjectConfig) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("WAYPOINT_API_URL")); value != "" {
		pc.Services.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("WAYPOINT_IDENTITY_URL")); value != "" {
		pc.Identity.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("WAYPOINT_IDENTITY_KEY")); value != "" {
		pc.Identity.APIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("WAYPOINT_PREFERENCE")); value != "" {
		pc.Planning.DefaultPreference = value
	}
	if value := strings.TrimSpace(os.Getenv("WAYPOINT_LOG_LEVEL")); value != "" {
		pc.Logging.Level = value
	}
	if value := strings.TrimSpace(os.Getenv("WAYPOINT_STUB_HOST")); value != "" {
		pc.Stub.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("WAYPOINT_STUB_PORT")); value != "" {
		if port, err := strconv.Atoi(value); err == nil {
			pc.Stub.Port = port
		}
	}
	if value := strings.TrimSpace(os.Getenv("WAYPOINT_SIGNING_KEY")); value != "" {
		pc.Stub.SigningKey = value
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Services.BaseURL = strings.TrimRight(strings.TrimSpace(pc.Services.BaseURL), "/")
	pc.Identity.BaseURL = strings.TrimRight(strings.TrimSpace(pc.Identity.BaseURL), "/")
	pc.Identity.APIKey = strings.TrimSpace(pc.Identity.APIKey)
	pc.Planning.DefaultPreference = normalizeWord(pc.Planning.DefaultPreference)
	pc.Logging.Level = normalizeWord(pc.Logging.Level)
	pc.Stub.Host = strings.TrimSpace(pc.Stub.Host)
	pc.Stub.Fixtures = resolvePath(base, pc.Stub.Fixtures)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if err := validateURL(pc.Services.BaseURL); err != nil {
		return fmt.Errorf("services.base_url: %w", err)
	}
	if err := validateURL(pc.Identity.BaseURL); err != nil {
		return fmt.Errorf("identity.base_url: %w", err)
	}
	if !validPreference(pc.Planning.DefaultPreference) {
		return fmt.Errorf("planning.default_preference must be 'fastest' or 'cheapest'")
	}
	switch pc.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error")
	}
	if pc.Stub.Port <= 0 || pc.Stub.Port > 65535 {
		return fmt.Errorf("stub.port must be between 1 and 65535")
	}
	if pc.Stub.Latency < 0 {
		return fmt.Errorf("stub.latency must not be negative")
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func validPreference(value string) bool {
	return value == "fastest" || value == "cheapest"
}

func normalizeWord(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) writeProjectFile(project ProjectConfig) error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	project.applyDefaults()
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure state dir: %w", err)
	}
	data, err := yaml.Marshal(project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
