package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"tcrb-alerts/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	AAVSO     AAVSOConfig     `mapstructure:"aavso"`
	Email     EmailConfig     `mapstructure:"email"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// SchedulerConfig governs polling cadence.
type SchedulerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// AAVSOConfig covers photometry data access.
type AAVSOConfig struct {
	Target         string        `mapstructure:"target"`
	Band           string        `mapstructure:"band"`
	ObsType        string        `mapstructure:"obs_type"`
	RollingDays    int           `mapstructure:"rolling_days"`
	LCGBaseURL     string        `mapstructure:"lcg_base_url"`
	VSXBaseURL     string        `mapstructure:"vsx_base_url"`
	EnableVSX      bool          `mapstructure:"enable_vsx_fallback"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// EmailConfig captures SMTP submission parameters.
type EmailConfig struct {
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	From       string        `mapstructure:"from"`
	Recipients []string      `mapstructure:"recipients"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// AlertingConfig defines the dimming threshold and dedup behaviour.
type AlertingConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	ThresholdMagnitude float64       `mapstructure:"threshold_magnitude"`
	Cooldown           time.Duration `mapstructure:"cooldown"`
}

// CacheConfig 描述告警去重状态文件。
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TCRBWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tcrbwatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "15m")
	v.SetDefault("scheduler.align_to_bucket", false)
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("aavso.target", "T CrB")
	v.SetDefault("aavso.band", "V")
	v.SetDefault("aavso.obs_type", "CCD")
	v.SetDefault("aavso.rolling_days", 14)
	v.SetDefault("aavso.lcg_base_url", "https://www.aavso.org/LCGv2/index.htm")
	v.SetDefault("aavso.vsx_base_url", "https://www.aavso.org/vsx/index.php")
	v.SetDefault("aavso.enable_vsx_fallback", true)
	v.SetDefault("aavso.request_timeout", "45s")
	v.SetDefault("aavso.user_agent", "tcrbwatcher/1.0")

	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 465)
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.timeout", "30s")

	v.SetDefault("alerting.enabled", true)
	v.SetDefault("alerting.threshold_magnitude", 8.5)
	v.SetDefault("alerting.cooldown", "30m")

	v.SetDefault("cache.path", "tcrb_monitor/state.json")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.AAVSO.Target == "" {
		return fmt.Errorf("aavso.target must not be empty")
	}
	if c.AAVSO.RollingDays <= 0 {
		return fmt.Errorf("aavso.rolling_days must be greater than zero")
	}
	if c.Alerting.ThresholdMagnitude <= 0 {
		return fmt.Errorf("alerting.threshold_magnitude must be greater than zero")
	}
	if c.Alerting.Cooldown < 0 {
		return fmt.Errorf("alerting.cooldown cannot be negative")
	}
	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path must not be empty")
	}
	if c.Alerting.Enabled {
		if c.Email.Host == "" {
			return fmt.Errorf("email.host 必须配置")
		}
		if len(c.Email.Recipients) == 0 {
			return fmt.Errorf("email.recipients 必须配置")
		}
	}
	return nil
}
