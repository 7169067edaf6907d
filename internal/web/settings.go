package web

import (
	"net"
	"strconv"
	"time"

	"github.com/kingrea/academic-planner/internal/config"
)

const (
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
	// DefaultMaxFormBytes limits form posts to 64 KB.
	DefaultMaxFormBytes int64 = 64 << 10
)

// Settings captures runtime configuration for the HTML front end.
type Settings struct {
	Host         string
	Port         int
	SessionKey   string
	Deadlines    int
	MaxFormBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SettingsFromConfig builds Settings from the project configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := Settings{
		Host:         config.DefaultWebHost,
		Port:         config.DefaultWebPort,
		Deadlines:    5,
		MaxFormBytes: DefaultMaxFormBytes,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}
	if cfg == nil {
		return settings
	}
	settings.Host = cfg.Project.Web.Host
	settings.Port = cfg.Project.Web.Port
	settings.SessionKey = cfg.Project.Web.SessionKey
	settings.Deadlines = cfg.Project.Dashboard.WebDeadlines
	return settings
}

// Address returns host:port for net.Listen.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL derived from the settings.
func (s Settings) URL() string {
	return "http://" + s.Address()
}
