package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Cron      CronConfig      `mapstructure:"cron"`
	Valuation ValuationConfig `mapstructure:"valuation"`
	Autosave  AutosaveConfig  `mapstructure:"autosave"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Fase0     Fase0Config     `mapstructure:"fase0"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type AuthConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type CronConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	DocumentExpiry  string `mapstructure:"document_expiry"`
	StaleValuations string `mapstructure:"stale_valuations"`
	SessionGC       string `mapstructure:"session_gc"`
}

// ValuationConfig tunes the valuation engine. RangeBandPct is a fraction of
// the point estimate (0.15 => range at -15%/+15%).
type ValuationConfig struct {
	RangeBandPct   float64 `mapstructure:"range_band_pct"`
	GlobalMultiple float64 `mapstructure:"global_multiple"`
}

type AutosaveConfig struct {
	DebounceWindow time.Duration `mapstructure:"debounce_window"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type SessionsConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

type Fase0Config struct {
	DocumentValidity  time.Duration `mapstructure:"document_validity"`
	StaleValuationAge time.Duration `mapstructure:"stale_valuation_age"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VALORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "5m")
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.document_expiry", "@every 1h")
	v.SetDefault("cron.stale_valuations", "@every 6h")
	v.SetDefault("cron.session_gc", "@every 5m")
	v.SetDefault("valuation.range_band_pct", 0.15)
	v.SetDefault("valuation.global_multiple", 4.0)
	v.SetDefault("autosave.debounce_window", "2s")
	v.SetDefault("autosave.request_timeout", "15s")
	v.SetDefault("sessions.ttl", "2h")
	v.SetDefault("sessions.max_sessions", 10000)
	v.SetDefault("fase0.document_validity", "720h")
	v.SetDefault("fase0.stale_valuation_age", "168h")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
