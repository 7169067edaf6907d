// internal/config/config.go
//
// This package handles configuration and the .planner directory structure.
// Every directory the planner runs in gets a .planner/ folder holding the
// config file and logs; the data file itself defaults to the project root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// PlannerDir is the name of the directory we create in each project
	PlannerDir = ".planner"

	// DefaultDataFile is the planner document, relative to the project dir
	DefaultDataFile = "planner_data.json"

	DefaultWebHost = "127.0.0.1"
	DefaultWebPort = 5000

	defaultWebDeadlines  = 5
	defaultTextDeadlines = 3
	defaultLogLevel      = "info"
	defaultSessionKey    = "change-me-planner-session-key"
)

const defaultProjectConfigYAML = `# academic planner configuration
version: 1

# Where the planner document lives. Relative paths resolve against the project directory.
data_file: planner_data.json

web:
  host: 127.0.0.1
  port: 5000
  # Signs the flash-message cookie. Override with PLANNER_SESSION_KEY.
  session_key: change-me-planner-session-key

dashboard:
  web_deadlines: 5
  text_deadlines: 3

log:
  level: info
`

// WebConfig configures the HTML front end.
type WebConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	SessionKey string `yaml:"session_key"`
}

// DashboardConfig sets how many deadlines each front end lists.
type DashboardConfig struct {
	WebDeadlines  int `yaml:"web_deadlines"`
	TextDeadlines int `yaml:"text_deadlines"`
}

// LogConfig controls the structured log.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ProjectConfig models .planner/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	DataFile  string          `yaml:"data_file"`
	Web       WebConfig       `yaml:"web"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
}

// Config holds the runtime configuration for the planner.
type Config struct {
	// ProjectDir is the directory where the user ran `planner` from
	ProjectDir string

	// PlannerProjectDir is ProjectDir/.planner
	PlannerProjectDir string

	Project ProjectConfig
}

// InitPlannerDir creates the .planner directory structure in the given
// project directory and writes a default config.yaml if none exists.
//
// Structure created:
// .planner/
// ├── config.yaml
// └── logs/        <- planner.log (structured) and activity.log (journal)
func InitPlannerDir(projectDir string) error {
	plannerDir := filepath.Join(projectDir, PlannerDir)
	if err := os.MkdirAll(filepath.Join(plannerDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(plannerDir, "config.yaml"))
}

// NewConfig loads .env, .planner/config.yaml and PLANNER_* environment
// overrides, in that order of precedence (environment wins).
func NewConfig(projectDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
		return nil, err
	}
	cfg := &Config{
		ProjectDir:        projectDir,
		PlannerProjectDir: filepath.Join(projectDir, PlannerDir),
		Project:           defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.Project.applyEnv(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Project.normalize()
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// DataFilePath returns the absolute location of the planner document.
func (c *Config) DataFilePath() string {
	return resolvePath(c.ProjectDir, c.Project.DataFile)
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.PlannerProjectDir, "logs")
}

// ActivityLogPath is the human-readable journal both front ends append to.
func (c *Config) ActivityLogPath() string {
	return filepath.Join(c.LogsDir(), "activity.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.PlannerProjectDir, "config.yaml")
}

// WebAddress is host:port for the HTML front end.
func (c *Config) WebAddress() string {
	return fmt.Sprintf("%s:%d", c.Project.Web.Host, c.Project.Web.Port)
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:  1,
		DataFile: DefaultDataFile,
		Web: WebConfig{
			Host:       DefaultWebHost,
			Port:       DefaultWebPort,
			SessionKey: defaultSessionKey,
		},
		Dashboard: DashboardConfig{
			WebDeadlines:  defaultWebDeadlines,
			TextDeadlines: defaultTextDeadlines,
		},
		Log: LogConfig{Level: defaultLogLevel},
	}
}

func (pc *ProjectConfig) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PLANNER_DATA_FILE")); v != "" {
		pc.DataFile = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_WEB_HOST")); v != "" {
		pc.Web.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_WEB_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANNER_WEB_PORT must be a number, got %q", v)
		}
		pc.Web.Port = port
	}
	if v := os.Getenv("PLANNER_SESSION_KEY"); v != "" {
		pc.Web.SessionKey = v
	}
	if v := strings.TrimSpace(os.Getenv("PLANNER_LOG_LEVEL")); v != "" {
		pc.Log.Level = v
	}
	return nil
}

func (pc *ProjectConfig) normalize() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	pc.DataFile = strings.TrimSpace(pc.DataFile)
	if pc.DataFile == "" {
		pc.DataFile = DefaultDataFile
	}
	pc.Web.Host = strings.TrimSpace(pc.Web.Host)
	if pc.Web.Host == "" {
		pc.Web.Host = DefaultWebHost
	}
	if pc.Web.SessionKey == "" {
		pc.Web.SessionKey = defaultSessionKey
	}
	if pc.Dashboard.WebDeadlines <= 0 {
		pc.Dashboard.WebDeadlines = defaultWebDeadlines
	}
	if pc.Dashboard.TextDeadlines <= 0 {
		pc.Dashboard.TextDeadlines = defaultTextDeadlines
	}
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	if pc.Log.Level == "" {
		pc.Log.Level = defaultLogLevel
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Web.Port < 0 || pc.Web.Port > 65535 {
		return fmt.Errorf("web.port must be between 0 and 65535")
	}
	switch pc.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	// godotenv.Load never overrides variables already set in the process.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
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
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
