package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, eg. DOCFLOW_BACKEND_URL.
const EnvPrefix = "DOCFLOW"

type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Sidebar SidebarConfig `mapstructure:"sidebar"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
}

type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UploadConfig struct {
	Debounce     time.Duration `mapstructure:"debounce"`
	StatusTTL    time.Duration `mapstructure:"status_ttl"`
	RefreshDelay time.Duration `mapstructure:"refresh_delay"`
	FollowUp     bool          `mapstructure:"follow_up"`
}

type SidebarConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type ChatConfig struct {
	TypingSpeed time.Duration `mapstructure:"typing_speed"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type UIConfig struct {
	AltScreen bool `mapstructure:"alt_screen"`
}

// SetDefaults registers every known key so env overrides resolve during
// Unmarshal even when no config file is present.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "http://localhost:5000")
	v.SetDefault("backend.timeout", time.Duration(0))
	v.SetDefault("upload.debounce", 500*time.Millisecond)
	v.SetDefault("upload.status_ttl", 3*time.Second)
	v.SetDefault("upload.refresh_delay", time.Second)
	v.SetDefault("upload.follow_up", false)
	v.SetDefault("sidebar.poll_interval", 5*time.Minute)
	v.SetDefault("chat.typing_speed", 5*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("ui.alt_screen", true)
}

// Load resolves configuration from defaults, an optional YAML file, the
// environment and any flags already bound to v.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Backend.URL = strings.TrimRight(cfg.Backend.URL, "/")
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" {
		return fmt.Errorf("backend.url must not be empty")
	}
	if c.Upload.Debounce <= 0 {
		return fmt.Errorf("upload.debounce must be positive, got %s", c.Upload.Debounce)
	}
	if c.Sidebar.PollInterval <= 0 {
		return fmt.Errorf("sidebar.poll_interval must be positive, got %s", c.Sidebar.PollInterval)
	}
	return nil
}
